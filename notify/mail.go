package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/models"
	templates "github.com/linesmerrill/legal-aid-api/templates/html"
)

// Sender delivers a prepared email
type Sender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Mailer emails the other party of a case when it changes
type Mailer struct {
	Sender  Sender
	From    *mail.Email
	Users   databases.UserDatabase
	BaseURL string
	// Async sends from a goroutine so requests never wait on the mail API
	Async bool
}

// NewMailer returns a Mailer using the sendgrid API
func NewMailer(apiKey, fromEmail, fromName, baseURL string, users databases.UserDatabase) *Mailer {
	return &Mailer{
		Sender:  sendgrid.NewSendClient(apiKey),
		From:    mail.NewEmail(fromName, fromEmail),
		Users:   users,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Async:   true,
	}
}

// CaseChanged implements Notifier
func (m *Mailer) CaseChanged(ctx context.Context, e Event) {
	if m.Async {
		go m.deliver(context.WithoutCancel(ctx), e)
		return
	}
	m.deliver(ctx, e)
}

func (m *Mailer) deliver(ctx context.Context, e Event) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	for _, id := range e.Recipients() {
		if err := m.sendTo(ctx, id, e); err != nil {
			zap.S().Errorw("failed to send appointment email",
				"userId", id,
				"event", e.Type,
				"error", err)
		}
	}
}

func (m *Mailer) sendTo(ctx context.Context, userID string, e Event) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q", userID)
	}
	user, err := m.Users.FindByID(ctx, oid)
	if err != nil {
		return fmt.Errorf("failed to look up recipient: %w", err)
	}
	if user.Email == "" {
		return errors.New("recipient has no email address")
	}

	subject, body := Compose(e)
	link := ""
	if m.BaseURL != "" && e.Case != nil {
		link = m.BaseURL + "/appointments/" + e.Case.ID.Hex()
	}
	to := mail.NewEmail(user.Name, user.Email)
	message := mail.NewSingleEmail(m.From, subject, to, body, templates.RenderCaseEmail(subject, body, link))

	resp, err := m.Sender.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}
	zap.S().Infow("appointment email sent", "userId", userID, "event", e.Type, "statusCode", resp.StatusCode)
	return nil
}

// Compose builds the subject and plain text body for an event
func Compose(e Event) (string, string) {
	a := e.Case
	if a == nil {
		return "Appointment update", "One of your appointments was updated."
	}
	when := strings.TrimSpace(a.Date + " " + a.Slot)
	switch e.Type {
	case CaseCreated:
		return "New appointment request", fmt.Sprintf("A citizen has requested a consultation on %s.\n\n%s", when, a.Description)
	case StatusChanged:
		body := fmt.Sprintf("Your appointment on %s is now %s.", when, statusLabel(a.Status))
		if a.Remarks != "" {
			body += "\n\nRemarks: " + a.Remarks
		}
		return "Appointment " + statusLabel(a.Status), body
	case DocumentAdded:
		name := "A document"
		if n := len(a.Documents); n > 0 {
			name = a.Documents[n-1].FileName
		}
		return "New document on your appointment", fmt.Sprintf("%s was added to your appointment on %s.", name, when)
	case ReviewSubmitted:
		return "You received a review", fmt.Sprintf("Your client rated the consultation on %s %.0f out of 5.\n\n%s", when, a.Rating, a.Review)
	}
	return "Appointment update", fmt.Sprintf("Your appointment on %s was updated.", when)
}

func statusLabel(s models.Status) string {
	return strings.ReplaceAll(string(s), "_", " ")
}
