package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/assistant"
	"github.com/linesmerrill/legal-aid-api/config"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
)

// askTimeout bounds one round trip to the model
const askTimeout = 60 * time.Second

// AI answers legal questions through the assistant
type AI struct {
	Asker assistant.Asker
}

// AskRequest is a question plus the conversation so far
type AskRequest struct {
	Question string           `json:"question"`
	History  []assistant.Turn `json:"history"`
}

// AskResponse carries the model's answer
type AskResponse struct {
	Answer string `json:"answer"`
}

// AskHandler forwards a question to the assistant
func (a AI) AskHandler(w http.ResponseWriter, r *http.Request) {
	var in AskRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "failed to decode request", err)
		return
	}
	if a.Asker == nil {
		config.ErrorKindStatus(assistant.ErrNotConfigured.Error(), string(lifecycle.DependencyFailure), http.StatusBadGateway, w, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), askTimeout)
	defer cancel()

	answer, err := a.Asker.Ask(ctx, in.Question, in.History)
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		badRequest(w, err.Error(), nil)
		return
	case errors.Is(err, assistant.ErrNotConfigured):
		config.ErrorKindStatus(err.Error(), string(lifecycle.DependencyFailure), http.StatusBadGateway, w, nil)
		return
	case err != nil:
		zap.S().Errorw("assistant failed", "error", err)
		config.ErrorKindStatus("failed to get an answer from the AI assistant", string(lifecycle.DependencyFailure), http.StatusBadGateway, w, nil)
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{Answer: answer})
}
