package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/models"
	"github.com/linesmerrill/legal-aid-api/storage"
)

// FileMeta describes a blob already written to the document store
type FileMeta struct {
	FileName    string
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// AttachDocument appends a document reference to a case. Existing
// documents are never touched.
func (e *Engine) AttachDocument(ctx context.Context, caseID string, actor Actor, meta FileMeta) (*models.Appointment, error) {
	appointment, err := e.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !partyOf(actor, appointment) {
		return nil, newError(Unauthorized, "not a party to this appointment")
	}
	return e.attach(ctx, appointment.ID, actor, meta)
}

func (e *Engine) attach(ctx context.Context, id primitive.ObjectID, actor Actor, meta FileMeta) (*models.Appointment, error) {
	if err := e.Policy.Check(meta.FileName, meta.ContentType, meta.Size); err != nil {
		return nil, newError(ValidationFailed, "%v", err)
	}
	if meta.Key == "" {
		return nil, newError(ValidationFailed, "document has no storage key")
	}

	doc := models.Document{
		FileName:    filepath.Base(meta.FileName),
		FilePath:    meta.Key,
		URL:         meta.URL,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		UploadedBy:  actor.ID,
		UploadedAt:  primitive.NewDateTimeFromTime(e.now()),
	}
	updated, err := e.Appointments.PushDocument(ctx, id, doc)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, newError(NotFound, "appointment not found")
	}
	if err != nil {
		return nil, dependency("failed to attach document", err)
	}
	return updated, nil
}

// UploadDocument checks and stores an uploaded file, then attaches it to the
// case. Nothing is stored for an actor who is not a party.
func (e *Engine) UploadDocument(ctx context.Context, caseID string, actor Actor, fileName, contentType string, r io.Reader) (*models.Appointment, error) {
	appointment, err := e.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !partyOf(actor, appointment) {
		return nil, newError(Unauthorized, "not a party to this appointment")
	}
	if e.Store == nil {
		return nil, dependency("document storage is not configured", nil)
	}

	data, err := io.ReadAll(io.LimitReader(r, e.Policy.MaxSize+1))
	if err != nil {
		return nil, newError(ValidationFailed, "failed to read upload: %v", err)
	}
	size := int64(len(data))
	contentType = storage.ContentType(fileName, contentType, data)
	if err := e.Policy.Check(fileName, contentType, size); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, newError(ValidationFailed, "%v", fmt.Errorf("%w: limit is %d bytes", storage.ErrTooLarge, e.Policy.MaxSize))
		}
		return nil, newError(ValidationFailed, "%v", err)
	}

	obj, err := e.Store.Put(ctx, storage.NewKey(caseID, fileName), bytes.NewReader(data), size, contentType)
	if err != nil {
		return nil, dependency("failed to store document", err)
	}
	return e.attach(ctx, appointment.ID, actor, FileMeta{
		FileName:    fileName,
		Key:         obj.Key,
		URL:         obj.URL,
		ContentType: contentType,
		Size:        size,
	})
}
