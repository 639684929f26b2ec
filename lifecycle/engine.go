package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/legal-aid-api/cache"
	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/models"
	"github.com/linesmerrill/legal-aid-api/storage"
)

// Slots are the consultation times a case can be booked into
var Slots = []string{"10:00 AM", "12:00 PM", "04:00 PM"}

// Engine runs every operation on case records
type Engine struct {
	Appointments databases.AppointmentDatabase
	Users        databases.UserDatabase
	Ratings      *Aggregator
	Store        storage.Store
	Policy       storage.Policy
	// RefundWindow is how long after booking a citizen may ask for a refund.
	// Zero disables the limit.
	RefundWindow time.Duration
	Now          func() time.Time
}

// New builds an Engine with the default document policy
func New(appointments databases.AppointmentDatabase, users databases.UserDatabase, store storage.Store, c cache.Cache, refundWindow time.Duration) *Engine {
	return &Engine{
		Appointments: appointments,
		Users:        users,
		Ratings:      NewAggregator(appointments, users, c),
		Store:        store,
		Policy:       storage.DefaultPolicy(),
		RefundWindow: refundWindow,
		Now:          time.Now,
	}
}

// NewCase is a citizen's booking request
type NewCase struct {
	LawyerID       string `json:"lawyerId" validate:"required"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot           string `json:"slot" validate:"required"`
	Description    string `json:"description" validate:"required,max=2000"`
	TransactionRef string `json:"transactionId" validate:"max=100"`
}

// CreateCase books a pending case between the citizen and a lawyer
func (e *Engine) CreateCase(ctx context.Context, actor Actor, in NewCase) (*models.Appointment, error) {
	if actor.Role != Citizen {
		return nil, newError(Forbidden, "only citizens can book appointments")
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	if !validSlot(in.Slot) {
		return nil, newError(ValidationFailed, "slot must be one of %v", Slots)
	}
	description := Sanitize(in.Description)
	if description == "" {
		return nil, newError(ValidationFailed, "Description is required")
	}

	citizen, err := e.findUser(ctx, actor.ID, "citizen")
	if err != nil {
		return nil, err
	}
	if citizen.Role != models.RoleCitizen {
		return nil, newError(ValidationFailed, "booking user is not a citizen")
	}
	lawyer, err := e.findUser(ctx, in.LawyerID, "lawyer")
	if err != nil {
		return nil, err
	}
	if lawyer.Role != models.RoleLawyer {
		return nil, newError(ValidationFailed, "selected user is not a lawyer")
	}

	now := primitive.NewDateTimeFromTime(e.now())
	appointment := &models.Appointment{
		ID:             primitive.NewObjectID(),
		CitizenID:      actor.ID,
		LawyerID:       in.LawyerID,
		Date:           in.Date,
		Slot:           in.Slot,
		Description:    description,
		TransactionRef: Sanitize(in.TransactionRef),
		Status:         models.StatusPending,
		Documents:      []models.Document{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.Appointments.InsertOne(ctx, appointment); err != nil {
		return nil, dependency("failed to create appointment", err)
	}
	return appointment, nil
}

// ListCases returns the actor's cases, newest date first
func (e *Engine) ListCases(ctx context.Context, actor Actor) ([]models.Appointment, error) {
	var field string
	switch actor.Role {
	case Citizen:
		field = databases.CitizenField
	case Lawyer:
		field = databases.LawyerField
	default:
		return nil, newError(Unauthorized, "unknown role")
	}
	appointments, err := e.Appointments.FindByParty(ctx, field, actor.ID)
	if err != nil {
		return nil, dependency("failed to list appointments", err)
	}
	refs := make([]*models.Appointment, len(appointments))
	for i := range appointments {
		refs[i] = &appointments[i]
	}
	if err := e.withParties(ctx, refs...); err != nil {
		return nil, err
	}
	return appointments, nil
}

// GetCase returns one case to either of its parties
func (e *Engine) GetCase(ctx context.Context, caseID string, actor Actor) (*models.Appointment, error) {
	appointment, err := e.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !partyOf(actor, appointment) {
		return nil, newError(Unauthorized, "not a party to this appointment")
	}
	if err := e.withParties(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// withParties attaches the citizen and lawyer summaries with one directory
// read. Users that no longer exist are left out.
func (e *Engine) withParties(ctx context.Context, appointments ...*models.Appointment) error {
	seen := map[string]bool{}
	var ids []primitive.ObjectID
	for _, a := range appointments {
		for _, hex := range []string{a.CitizenID, a.LawyerID} {
			if seen[hex] {
				continue
			}
			seen[hex] = true
			if id, err := primitive.ObjectIDFromHex(hex); err == nil {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	users, err := e.Users.FindByIDs(ctx, ids)
	if err != nil {
		return dependency("failed to load appointment parties", err)
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID.Hex()] = u
	}
	for _, a := range appointments {
		if u, ok := byID[a.CitizenID]; ok {
			a.Citizen = models.CitizenParty(u)
		}
		if u, ok := byID[a.LawyerID]; ok {
			a.Lawyer = models.LawyerParty(u)
		}
	}
	return nil
}

// UpdateStatus moves a case along the transition table. The write only
// succeeds if the status is still the one the checks were made against.
func (e *Engine) UpdateStatus(ctx context.Context, caseID string, actor Actor, to models.Status, remarks *string) (*models.Appointment, error) {
	appointment, err := e.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !partyOf(actor, appointment) {
		return nil, newError(Unauthorized, "not a party to this appointment")
	}
	if to == "" {
		return nil, newError(ValidationFailed, "status is required")
	}
	// unknown targets are not in the table and come back Forbidden
	from := appointment.Status
	if !Allowed(actor.Role, from, to) {
		return nil, newError(Forbidden, "a %s cannot change an appointment from %s to %s", actor.Role, from, to)
	}

	var note *string
	if actor.Role == Lawyer && remarks != nil {
		if cleaned := Sanitize(*remarks); cleaned != "" {
			note = &cleaned
		}
	}
	if requiresRemarks(actor.Role, from, to) && note == nil {
		return nil, newError(ValidationFailed, "remarks are required to move an appointment to %s", to)
	}
	if to == models.StatusRefundRequested && e.refundWindowClosed(appointment) {
		return nil, newError(StateConflict, "refunds can only be requested within %d days of booking", int(e.RefundWindow.Hours()/24))
	}

	updated, err := e.Appointments.UpdateStatus(ctx, appointment.ID, from, to, note)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, newError(StateConflict, "appointment was modified concurrently, reload and retry")
	}
	if err != nil {
		return nil, dependency("failed to update appointment", err)
	}
	return updated, nil
}

func (e *Engine) refundWindowClosed(appointment *models.Appointment) bool {
	if e.RefundWindow <= 0 {
		return false
	}
	return e.now().Sub(appointment.CreatedAt.Time()) > e.RefundWindow
}

func (e *Engine) load(ctx context.Context, caseID string) (*models.Appointment, error) {
	id, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, newError(NotFound, "appointment not found")
	}
	appointment, err := e.Appointments.FindByID(ctx, id)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, newError(NotFound, "appointment not found")
	}
	if err != nil {
		return nil, dependency("failed to load appointment", err)
	}
	return appointment, nil
}

func (e *Engine) findUser(ctx context.Context, userID, label string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, newError(NotFound, "%s not found", label)
	}
	user, err := e.Users.FindByID(ctx, id)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, newError(NotFound, "%s not found", label)
	}
	if err != nil {
		return nil, dependency(fmt.Sprintf("failed to load %s", label), err)
	}
	return user, nil
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func validSlot(slot string) bool {
	for _, s := range Slots {
		if s == slot {
			return true
		}
	}
	return false
}
