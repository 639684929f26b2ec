package notify

import (
	"context"

	"github.com/linesmerrill/legal-aid-api/models"
)

// EventType names what happened to a case
type EventType string

// Case events
const (
	CaseCreated     EventType = "case_created"
	StatusChanged   EventType = "status_changed"
	DocumentAdded   EventType = "document_added"
	ReviewSubmitted EventType = "review_submitted"
)

// Event is pushed to the parties of a case after a successful change
type Event struct {
	Type    EventType           `json:"type"`
	Case    *models.Appointment `json:"appointment"`
	ActorID string              `json:"actorId"`
}

// Recipients returns the parties of the case other than the actor
func (e Event) Recipients() []string {
	if e.Case == nil {
		return nil
	}
	var out []string
	for _, id := range []string{e.Case.CitizenID, e.Case.LawyerID} {
		if id != "" && id != e.ActorID {
			out = append(out, id)
		}
	}
	return out
}

// Notifier delivers case events. Delivery problems are logged by the
// implementation and never reported to the caller.
type Notifier interface {
	CaseChanged(ctx context.Context, e Event)
}

// Multi fans an event out to every notifier in order
type Multi []Notifier

// CaseChanged implements Notifier
func (m Multi) CaseChanged(ctx context.Context, e Event) {
	for _, n := range m {
		if n != nil {
			n.CaseChanged(ctx, e)
		}
	}
}

// Discard drops every event
type Discard struct{}

// CaseChanged implements Notifier
func (Discard) CaseChanged(context.Context, Event) {}
