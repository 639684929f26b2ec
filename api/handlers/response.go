package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/api"
	"github.com/linesmerrill/legal-aid-api/config"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
)

// statusFor maps an engine error kind to its HTTP status
func statusFor(kind lifecycle.Kind) int {
	switch kind {
	case lifecycle.NotFound:
		return http.StatusNotFound
	case lifecycle.Unauthorized:
		return http.StatusUnauthorized
	case lifecycle.Forbidden:
		return http.StatusForbidden
	case lifecycle.ValidationFailed:
		return http.StatusBadRequest
	case lifecycle.StateConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// engineError writes err as an error response. The cause of a dependency
// failure is logged and kept out of the body.
func engineError(w http.ResponseWriter, err error) {
	kind := lifecycle.KindOf(err)
	if kind == lifecycle.DependencyFailure {
		zap.S().Errorw("dependency failure", "error", err)
	}
	config.ErrorKindStatus(lifecycle.MessageOf(err), string(kind), statusFor(kind), w, nil)
}

func badRequest(w http.ResponseWriter, message string, err error) {
	config.ErrorKindStatus(message, string(lifecycle.ValidationFailed), http.StatusBadRequest, w, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// actorFrom returns the authenticated actor, writing a 401 when the request
// did not pass through the auth middleware
func actorFrom(w http.ResponseWriter, r *http.Request) (lifecycle.Actor, bool) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorKindStatus("unauthorized", string(lifecycle.Unauthorized), http.StatusUnauthorized, w, nil)
	}
	return actor, ok
}
