package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/legal-aid-api/cache"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
	"github.com/linesmerrill/legal-aid-api/models"
)

type fixture struct {
	engine       *lifecycle.Engine
	appointments *memAppointments
	users        *memUsers
	store        *memStore
	now          time.Time

	citizen      lifecycle.Actor
	lawyer       lifecycle.Actor
	otherCitizen lifecycle.Actor
	otherLawyer  lifecycle.Actor
}

func newFixture() *fixture {
	citizenID := primitive.NewObjectID()
	lawyerID := primitive.NewObjectID()
	otherCitizenID := primitive.NewObjectID()
	otherLawyerID := primitive.NewObjectID()

	f := &fixture{
		appointments: newMemAppointments(),
		users: newMemUsers(
			models.User{ID: citizenID, Name: "Ravi", Email: "ravi@example.com", Phone: "98450 12345", Role: models.RoleCitizen},
			models.User{ID: lawyerID, Name: "Asha", Email: "asha@example.com", Specialization: "Tenancy", Role: models.RoleLawyer},
			models.User{ID: otherCitizenID, Name: "Meera", Role: models.RoleCitizen},
			models.User{ID: otherLawyerID, Name: "Karan", Role: models.RoleLawyer},
		),
		store:        newMemStore(),
		now:          time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		citizen:      lifecycle.Actor{ID: citizenID.Hex(), Role: lifecycle.Citizen},
		lawyer:       lifecycle.Actor{ID: lawyerID.Hex(), Role: lifecycle.Lawyer},
		otherCitizen: lifecycle.Actor{ID: otherCitizenID.Hex(), Role: lifecycle.Citizen},
		otherLawyer:  lifecycle.Actor{ID: otherLawyerID.Hex(), Role: lifecycle.Lawyer},
	}
	f.engine = lifecycle.New(f.appointments, f.users, f.store, cache.Noop{}, 7*24*time.Hour)
	f.engine.Now = func() time.Time { return f.now }
	return f
}

// seed stores a case between the fixture's citizen and lawyer booked a day ago
func (f *fixture) seed(status models.Status) models.Appointment {
	a := models.Appointment{
		ID:        primitive.NewObjectID(),
		CitizenID: f.citizen.ID,
		LawyerID:  f.lawyer.ID,
		Date:      "2026-03-12",
		Slot:      "10:00 AM",
		Status:    status,
		CreatedAt: primitive.NewDateTimeFromTime(f.now.Add(-24 * time.Hour)),
	}
	f.appointments.put(a)
	return a
}

func remarks(s string) *string { return &s }

func assertKind(t *testing.T, want lifecycle.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, lifecycle.KindOf(err), err.Error())
}

func TestScenarioAcceptThenComplete(t *testing.T) {
	f := newFixture()
	a, err := f.engine.CreateCase(context.Background(), f.citizen, lifecycle.NewCase{
		LawyerID:    f.lawyer.ID,
		Date:        "2026-03-12",
		Slot:        "12:00 PM",
		Description: "Landlord is withholding my deposit",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, a.Status)

	a, err = f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.lawyer, models.StatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, a.Status)

	a, err = f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.lawyer, models.StatusCompleted, remarks("Advice given"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, a.Status)
	assert.Equal(t, "Advice given", a.Remarks)
}

func TestScenarioRefundThenCancelIsTerminal(t *testing.T) {
	f := newFixture()
	id := f.seed(models.StatusAccepted).ID.Hex()

	a, err := f.engine.UpdateStatus(context.Background(), id, f.citizen, models.StatusRefundRequested, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRefundRequested, a.Status)

	a, err = f.engine.UpdateStatus(context.Background(), id, f.lawyer, models.StatusCancelled, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, a.Status)

	_, err = f.engine.UpdateStatus(context.Background(), id, f.lawyer, models.StatusAccepted, nil)
	assertKind(t, lifecycle.Forbidden, err)
	assert.Equal(t, models.StatusCancelled, f.appointments.get(a.ID).Status)
}

func TestScenarioCitizenCannotAccept(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusPending)

	_, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.citizen, models.StatusAccepted, nil)

	assertKind(t, lifecycle.Forbidden, err)
	assert.Equal(t, models.StatusPending, f.appointments.get(a.ID).Status)
}

func TestUpdateStatusForbiddenLeavesStatusUnchanged(t *testing.T) {
	for _, from := range models.ValidStatuses() {
		for _, to := range models.ValidStatuses() {
			for _, role := range []lifecycle.Role{lifecycle.Citizen, lifecycle.Lawyer} {
				if lifecycle.Allowed(role, from, to) {
					continue
				}
				f := newFixture()
				a := f.seed(from)
				actor := f.citizen
				if role == lifecycle.Lawyer {
					actor = f.lawyer
				}

				_, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), actor, to, remarks("note"))

				assertKind(t, lifecycle.Forbidden, err)
				assert.Equal(t, from, f.appointments.get(a.ID).Status, "%s %s->%s", role, from, to)
			}
		}
	}
}

func TestUpdateStatusAllowedTransitionsStayInGraph(t *testing.T) {
	for _, from := range models.ValidStatuses() {
		for _, role := range []lifecycle.Role{lifecycle.Citizen, lifecycle.Lawyer} {
			for _, to := range lifecycle.NextStatuses(role, from) {
				f := newFixture()
				a := f.seed(from)
				actor := f.citizen
				if role == lifecycle.Lawyer {
					actor = f.lawyer
				}

				updated, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), actor, to, remarks("note"))

				require.NoError(t, err, "%s %s->%s", role, from, to)
				assert.Equal(t, to, updated.Status)
				assert.True(t, updated.Status.IsValid())
			}
		}
	}
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, s := range []models.Status{models.StatusRejected, models.StatusCompleted, models.StatusCancelled} {
		assert.Empty(t, lifecycle.NextStatuses(lifecycle.Lawyer, s), s)
		assert.Empty(t, lifecycle.NextStatuses(lifecycle.Citizen, s), s)
	}
}

func TestNonPartiesAreUnauthorized(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusCompleted)
	id := a.ID.Hex()
	ctx := context.Background()

	// the citizen's id presented with the lawyer role is not the lawyer
	impostor := lifecycle.Actor{ID: f.citizen.ID, Role: lifecycle.Lawyer}

	for _, actor := range []lifecycle.Actor{f.otherCitizen, f.otherLawyer, impostor, {}} {
		_, err := f.engine.GetCase(ctx, id, actor)
		assertKind(t, lifecycle.Unauthorized, err)

		_, err = f.engine.UpdateStatus(ctx, id, actor, models.StatusCancelled, remarks("x"))
		assertKind(t, lifecycle.Unauthorized, err)

		_, err = f.engine.SubmitReview(ctx, id, actor, 5, "")
		assertKind(t, lifecycle.Unauthorized, err)

		_, err = f.engine.AttachDocument(ctx, id, actor, lifecycle.FileMeta{FileName: "a.pdf", Key: "k", ContentType: "application/pdf", Size: 1})
		assertKind(t, lifecycle.Unauthorized, err)

		_, err = f.engine.UploadDocument(ctx, id, actor, "a.pdf", "application/pdf", nil)
		assertKind(t, lifecycle.Unauthorized, err)
	}
	assert.Equal(t, 0, f.appointments.writes)
	assert.Equal(t, 0, f.store.count())
}

func TestUnknownCaseIsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.engine.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), f.lawyer, models.StatusAccepted, nil)
	assertKind(t, lifecycle.NotFound, err)

	_, err = f.engine.GetCase(context.Background(), "not-an-id", f.lawyer)
	assertKind(t, lifecycle.NotFound, err)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusPending)

	_, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.lawyer, models.Status("archived"), nil)
	assertKind(t, lifecycle.Forbidden, err)

	_, err = f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.citizen, models.Status("archived"), nil)
	assertKind(t, lifecycle.Forbidden, err)

	_, err = f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.lawyer, "", nil)
	assertKind(t, lifecycle.ValidationFailed, err)

	assert.Equal(t, models.StatusPending, f.appointments.get(a.ID).Status)
}

func TestUpdateStatusClosingRequiresRemarks(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusAccepted)

	_, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.lawyer, models.StatusCompleted, nil)
	assertKind(t, lifecycle.ValidationFailed, err)

	_, err = f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.lawyer, models.StatusCancelled, remarks("  <b></b> "))
	assertKind(t, lifecycle.ValidationFailed, err)

	assert.Equal(t, models.StatusAccepted, f.appointments.get(a.ID).Status)
}

func TestUpdateStatusCitizenRemarksIgnored(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusAccepted)

	updated, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.citizen, models.StatusCancelled, remarks("changed my mind"))

	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Empty(t, updated.Remarks)
}

func TestUpdateStatusRemarksSanitised(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusAccepted)

	updated, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.lawyer, models.StatusCompleted, remarks("<script>alert(1)</script>Filed the petition"))

	require.NoError(t, err)
	assert.Equal(t, "Filed the petition", updated.Remarks)
}

func TestUpdateStatusRemarksKeepPunctuation(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusAccepted)

	updated, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.lawyer, models.StatusCompleted, remarks("Client's deposit & rent settled"))

	require.NoError(t, err)
	assert.Equal(t, "Client's deposit & rent settled", updated.Remarks)
	assert.Equal(t, "Client's deposit & rent settled", f.appointments.get(a.ID).Remarks)
}

func TestRefundWindow(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusAccepted)

	f.now = f.now.Add(7 * 24 * time.Hour)
	_, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.citizen, models.StatusRefundRequested, nil)
	assertKind(t, lifecycle.StateConflict, err)
	assert.Equal(t, models.StatusAccepted, f.appointments.get(a.ID).Status)

	// cancelling is not bound by the window
	_, err = f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.citizen, models.StatusCancelled, nil)
	assert.NoError(t, err)
}

func TestRefundWindowDisabled(t *testing.T) {
	f := newFixture()
	f.engine.RefundWindow = 0
	a := f.seed(models.StatusPending)

	f.now = f.now.Add(365 * 24 * time.Hour)
	_, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.citizen, models.StatusRefundRequested, nil)

	assert.NoError(t, err)
}

func TestUpdateStatusConcurrentChange(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusPending)
	f.appointments.beforeUpdate = func(a *models.Appointment) {
		a.Status = models.StatusCancelled
	}

	_, err := f.engine.UpdateStatus(context.Background(), a.ID.Hex(), f.lawyer, models.StatusAccepted, nil)

	assertKind(t, lifecycle.StateConflict, err)
	assert.Equal(t, models.StatusCancelled, f.appointments.get(a.ID).Status)
}

func TestCreateCase(t *testing.T) {
	f := newFixture()

	a, err := f.engine.CreateCase(context.Background(), f.citizen, lifecycle.NewCase{
		LawyerID:       f.lawyer.ID,
		Date:           "2026-04-01",
		Slot:           "04:00 PM",
		Description:    "Property <i>dispute</i> with neighbour",
		TransactionRef: "UPI-12345",
	})

	require.NoError(t, err)
	assert.Equal(t, f.citizen.ID, a.CitizenID)
	assert.Equal(t, f.lawyer.ID, a.LawyerID)
	assert.Equal(t, models.StatusPending, a.Status)
	assert.Equal(t, "Property dispute with neighbour", a.Description)
	assert.Equal(t, "UPI-12345", a.TransactionRef)
	assert.NotNil(t, a.Documents)
	assert.Zero(t, a.Rating)
	assert.Equal(t, f.now.UnixMilli(), a.CreatedAt.Time().UnixMilli())

	stored := f.appointments.get(a.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestCreateCaseRejections(t *testing.T) {
	f := newFixture()
	valid := lifecycle.NewCase{LawyerID: f.lawyer.ID, Date: "2026-04-01", Slot: "10:00 AM", Description: "Unpaid wages"}

	tests := []struct {
		name  string
		actor lifecycle.Actor
		edit  func(c *lifecycle.NewCase)
		want  lifecycle.Kind
	}{
		{"lawyer books", f.lawyer, func(*lifecycle.NewCase) {}, lifecycle.Forbidden},
		{"missing lawyer", f.citizen, func(c *lifecycle.NewCase) { c.LawyerID = "" }, lifecycle.ValidationFailed},
		{"missing description", f.citizen, func(c *lifecycle.NewCase) { c.Description = "" }, lifecycle.ValidationFailed},
		{"markup only description", f.citizen, func(c *lifecycle.NewCase) { c.Description = "<b> </b>" }, lifecycle.ValidationFailed},
		{"bad date", f.citizen, func(c *lifecycle.NewCase) { c.Date = "01/04/2026" }, lifecycle.ValidationFailed},
		{"bad slot", f.citizen, func(c *lifecycle.NewCase) { c.Slot = "11:00 AM" }, lifecycle.ValidationFailed},
		{"unknown lawyer", f.citizen, func(c *lifecycle.NewCase) { c.LawyerID = primitive.NewObjectID().Hex() }, lifecycle.NotFound},
		{"malformed lawyer", f.citizen, func(c *lifecycle.NewCase) { c.LawyerID = "nope" }, lifecycle.NotFound},
		{"lawyer is a citizen", f.citizen, func(c *lifecycle.NewCase) { c.LawyerID = f.otherCitizen.ID }, lifecycle.ValidationFailed},
		{"unknown citizen", lifecycle.Actor{ID: primitive.NewObjectID().Hex(), Role: lifecycle.Citizen}, func(*lifecycle.NewCase) {}, lifecycle.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			_, err := f.engine.CreateCase(context.Background(), tt.actor, in)
			assertKind(t, tt.want, err)
		})
	}
	assert.Equal(t, 0, len(f.appointments.byID))
}

func TestListCases(t *testing.T) {
	f := newFixture()
	older := f.seed(models.StatusPending)
	newer := f.seed(models.StatusAccepted)
	newer.Date = "2026-05-01"
	f.appointments.put(newer)
	f.appointments.put(models.Appointment{ID: primitive.NewObjectID(), CitizenID: f.otherCitizen.ID, LawyerID: f.otherLawyer.ID, Date: "2026-06-01"})

	for _, actor := range []lifecycle.Actor{f.citizen, f.lawyer} {
		list, err := f.engine.ListCases(context.Background(), actor)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older.ID, list[1].ID)
		for _, a := range list {
			require.NotNil(t, a.Citizen)
			require.NotNil(t, a.Lawyer)
			assert.Equal(t, "Ravi", a.Citizen.Name)
			assert.Equal(t, "ravi@example.com", a.Citizen.Email)
			assert.Equal(t, "98450 12345", a.Citizen.Phone)
			assert.Equal(t, "Asha", a.Lawyer.Name)
			assert.Equal(t, "Tenancy", a.Lawyer.Specialization)
			assert.Empty(t, a.Lawyer.Email)
		}
	}

	_, err := f.engine.ListCases(context.Background(), lifecycle.Actor{ID: f.citizen.ID, Role: "admin"})
	assertKind(t, lifecycle.Unauthorized, err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, lifecycle.Kind(""), lifecycle.KindOf(nil))
	assert.Equal(t, lifecycle.DependencyFailure, lifecycle.KindOf(errors.New("boom")))
	assert.Equal(t, lifecycle.Forbidden, lifecycle.KindOf(&lifecycle.Error{Kind: lifecycle.Forbidden}))

	wrapped := &lifecycle.Error{Kind: lifecycle.DependencyFailure, Message: "failed to save", Err: errors.New("socket closed")}
	assert.EqualError(t, wrapped, "failed to save: socket closed")
	assert.Equal(t, "failed to save", lifecycle.MessageOf(wrapped))
	assert.Equal(t, "internal dependency failure", lifecycle.MessageOf(errors.New("socket closed")))
}

func TestParseRole(t *testing.T) {
	r, ok := lifecycle.ParseRole("lawyer")
	assert.True(t, ok)
	assert.Equal(t, lifecycle.Lawyer, r)

	_, ok = lifecycle.ParseRole("admin")
	assert.False(t, ok)
}

func TestGetCaseAttachesParties(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusPending)

	got, err := f.engine.GetCase(context.Background(), a.ID.Hex(), f.lawyer)
	require.NoError(t, err)
	require.NotNil(t, got.Citizen)
	assert.Equal(t, "Ravi", got.Citizen.Name)
	assert.Equal(t, "98450 12345", got.Citizen.Phone)
	require.NotNil(t, got.Lawyer)
	assert.Equal(t, "Asha", got.Lawyer.Name)
}

func TestGetCaseMissingPartyLeftOut(t *testing.T) {
	f := newFixture()
	a := f.seed(models.StatusPending)
	a.LawyerID = primitive.NewObjectID().Hex()
	f.appointments.put(a)

	got, err := f.engine.GetCase(context.Background(), a.ID.Hex(), f.citizen)
	require.NoError(t, err)
	assert.NotNil(t, got.Citizen)
	assert.Nil(t, got.Lawyer)
}

func TestListCasesDirectoryFailure(t *testing.T) {
	f := newFixture()
	f.seed(models.StatusPending)
	f.users.lookupErr = errors.New("mocked-error")

	_, err := f.engine.ListCases(context.Background(), f.citizen)
	assertKind(t, lifecycle.DependencyFailure, err)
}
