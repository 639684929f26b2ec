package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/config"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
	"github.com/linesmerrill/legal-aid-api/notify"
)

// Authenticator resolves the actor behind a request
type Authenticator interface {
	Authenticate(r *http.Request) (lifecycle.Actor, error)
}

// Notification serves the live case event feed
type Notification struct {
	Auth Authenticator
	Hub  *notify.Hub
}

// NotificationsWebSocketHandler upgrades an authenticated request to a
// websocket. Browsers cannot set headers on a websocket handshake so the
// token may also be passed as ?token=.
func (n Notification) NotificationsWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get("token"); token != "" && r.Header.Get("Authorization") == "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	actor, err := n.Auth.Authenticate(r)
	if err != nil {
		zap.S().Warnw("rejected notification socket", "error", err)
		config.ErrorKindStatus("unauthorized", string(lifecycle.Unauthorized), http.StatusUnauthorized, w, nil)
		return
	}
	n.Hub.Serve(w, r, actor.ID)
}
