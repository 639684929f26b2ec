package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/api"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
	"github.com/linesmerrill/legal-aid-api/models"
	"github.com/linesmerrill/legal-aid-api/notify"
	"github.com/linesmerrill/legal-aid-api/storage"
)

// uploadTimeout bounds a document upload including the blob store write
const uploadTimeout = 2 * time.Minute

// multipartOverhead is the room left for form boundaries and headers on top
// of the file itself
const multipartOverhead = 1 << 20

// Appointment exposes the case lifecycle over http
type Appointment struct {
	Engine   *lifecycle.Engine
	Notifier notify.Notifier
}

// StatusRequest is the body of a status change
type StatusRequest struct {
	Status  models.Status `json:"status"`
	Remarks *string       `json:"remarks"`
}

// ReviewRequest is the body of a review submission
type ReviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// CreateAppointmentHandler books a new appointment for the signed in citizen
func (a Appointment) CreateAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in lifecycle.NewCase
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	appointment, err := a.Engine.CreateCase(ctx, actor, in)
	if err != nil {
		engineError(w, err)
		return
	}
	zap.S().Infow("appointment booked", "appointmentId", appointment.ID.Hex(), "citizenId", actor.ID, "lawyerId", appointment.LawyerID)
	a.notify(r.Context(), notify.CaseCreated, appointment, actor)
	writeJSON(w, http.StatusCreated, appointment)
}

// AppointmentsHandler lists the appointments of the signed in user
func (a Appointment) AppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	appointments, err := a.Engine.ListCases(ctx, actor)
	if err != nil {
		engineError(w, err)
		return
	}
	// Because the frontend requires that the data elements inside models.Appointment exist,
	// if len == 0 then we will just return an empty data object
	if len(appointments) == 0 {
		appointments = []models.Appointment{}
	}
	writeJSON(w, http.StatusOK, appointments)
}

// AppointmentByIDHandler returns one appointment to either of its parties
func (a Appointment) AppointmentByIDHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	appointment, err := a.Engine.GetCase(ctx, mux.Vars(r)["id"], actor)
	if err != nil {
		engineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

// UpdateAppointmentStatusHandler moves an appointment to a new status
func (a Appointment) UpdateAppointmentStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	appointment, err := a.Engine.UpdateStatus(ctx, mux.Vars(r)["id"], actor, in.Status, in.Remarks)
	if err != nil {
		engineError(w, err)
		return
	}
	zap.S().Infow("appointment status changed", "appointmentId", appointment.ID.Hex(), "status", appointment.Status, "by", actor.ID)
	a.notify(r.Context(), notify.StatusChanged, appointment, actor)
	writeJSON(w, http.StatusOK, appointment)
}

// ReviewAppointmentHandler records the citizen's rating of a completed
// appointment
func (a Appointment) ReviewAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	appointment, err := a.Engine.SubmitReview(ctx, mux.Vars(r)["id"], actor, in.Rating, in.Review)
	if err != nil {
		engineError(w, err)
		return
	}
	a.notify(r.Context(), notify.ReviewSubmitted, appointment, actor)
	writeJSON(w, http.StatusOK, appointment)
}

// UploadDocumentHandler stores the multipart "file" field and attaches it to
// the appointment
func (a Appointment) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	limit := a.Engine.Policy.MaxSize
	if limit <= 0 {
		limit = storage.MaxFileSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(w, fmt.Sprintf("file too large, limit is %d bytes", limit), nil)
			return
		}
		badRequest(w, "failed to parse upload", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file is required", err)
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	appointment, err := a.Engine.UploadDocument(ctx, mux.Vars(r)["id"], actor, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		engineError(w, err)
		return
	}
	zap.S().Infow("document attached", "appointmentId", appointment.ID.Hex(), "fileName", header.Filename, "by", actor.ID)
	a.notify(r.Context(), notify.DocumentAdded, appointment, actor)
	writeJSON(w, http.StatusOK, appointment)
}

func (a Appointment) notify(ctx context.Context, t notify.EventType, appointment *models.Appointment, actor lifecycle.Actor) {
	if a.Notifier == nil {
		return
	}
	a.Notifier.CaseChanged(ctx, notify.Event{Type: t, Case: appointment, ActorID: actor.ID})
}
