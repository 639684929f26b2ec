package lifecycle

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate *validator.Validate
	strict   *bluemonday.Policy
	once     sync.Once
)

func initValidation() {
	validate = validator.New()
	strict = bluemonday.StrictPolicy()
}

// Validate checks v against its struct tags, returning a ValidationFailed
// error that names every bad field.
func Validate(v interface{}) error {
	once.Do(initValidation)
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return newError(ValidationFailed, "invalid request")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, prettyError(fe))
	}
	return newError(ValidationFailed, "%s", strings.Join(msgs, "; "))
}

func prettyError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	}
	return fe.Error()
}

// Sanitize strips markup from free text supplied by users. The result is
// plain text: entities the policy writes are decoded again, so HTML render
// sites must still escape it.
func Sanitize(s string) string {
	once.Do(initValidation)
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
