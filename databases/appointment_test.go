package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/databases/mocks"
	"github.com/linesmerrill/legal-aid-api/models"
)

func TestAppointmentDatabase_FindByID(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperMissing databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperMissing = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	errID := primitive.NewObjectID()
	missingID := primitive.NewObjectID()
	okID := primitive.NewObjectID()

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperMissing.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(mongo.ErrNoDocuments)

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Appointment)
		(*arg).ID = okID
		(*arg).Status = models.StatusPending
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": errID}).
		Return(srHelperErr)
	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": missingID}).
		Return(srHelperMissing)
	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"_id": okID}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "appointments").Return(collectionHelper)

	appointmentDba := databases.NewAppointmentDatabase(dbHelper)

	appointment, err := appointmentDba.FindByID(context.Background(), errID)
	assert.Empty(t, appointment)
	assert.EqualError(t, err, "mocked-error")

	appointment, err = appointmentDba.FindByID(context.Background(), missingID)
	assert.Nil(t, appointment)
	assert.ErrorIs(t, err, databases.ErrNotFound)

	appointment, err = appointmentDba.FindByID(context.Background(), okID)
	assert.NoError(t, err)
	assert.Equal(t, &models.Appointment{ID: okID, Status: models.StatusPending}, appointment)
}

func TestAppointmentDatabase_InsertOneInitialisesDocuments(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("InsertOne", context.Background(), mock.MatchedBy(func(a *models.Appointment) bool {
		return a.Documents != nil && len(a.Documents) == 0
	})).Return(&mocks.InsertOneResultHelper{}, nil)
	dbHelper.On("Collection", "appointments").Return(collectionHelper)

	appointment := &models.Appointment{ID: primitive.NewObjectID(), Status: models.StatusPending}
	err := databases.NewAppointmentDatabase(dbHelper).InsertOne(context.Background(), appointment)

	assert.NoError(t, err)
	assert.NotNil(t, appointment.Documents)
	collectionHelper.AssertExpectations(t)
}

func TestAppointmentDatabase_FindByParty(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("All", context.Background(), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Appointment)
		*arg = []models.Appointment{{Date: "2026-03-02"}, {Date: "2026-01-15"}}
	})
	cursorHelper.On("Close", context.Background()).Return(nil)
	collectionHelper.On("Find", context.Background(), bson.M{"lawyerId": "lawyer-1"}, mock.Anything).Return(cursorHelper, nil)
	dbHelper.On("Collection", "appointments").Return(collectionHelper)

	appointments, err := databases.NewAppointmentDatabase(dbHelper).FindByParty(context.Background(), databases.LawyerField, "lawyer-1")

	assert.NoError(t, err)
	assert.Len(t, appointments, 2)
	assert.Equal(t, "2026-03-02", appointments[0].Date)
	cursorHelper.AssertCalled(t, "Close", context.Background())
}

func TestAppointmentDatabase_FindByPartyEmpty(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("All", context.Background(), mock.Anything).Return(nil)
	cursorHelper.On("Close", context.Background()).Return(nil)
	collectionHelper.On("Find", context.Background(), bson.M{"citizenId": "citizen-1"}, mock.Anything).Return(cursorHelper, nil)
	dbHelper.On("Collection", "appointments").Return(collectionHelper)

	appointments, err := databases.NewAppointmentDatabase(dbHelper).FindByParty(context.Background(), databases.CitizenField, "citizen-1")

	assert.NoError(t, err)
	assert.NotNil(t, appointments)
	assert.Empty(t, appointments)
}

func TestAppointmentDatabase_FindByPartyFindError(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("Find", context.Background(), mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	dbHelper.On("Collection", "appointments").Return(collectionHelper)

	appointments, err := databases.NewAppointmentDatabase(dbHelper).FindByParty(context.Background(), databases.CitizenField, "citizen-1")

	assert.Nil(t, appointments)
	assert.EqualError(t, err, "mocked-error")
}

func TestAppointmentDatabase_UpdateStatusFiltersOnCurrentStatus(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}
	id := primitive.NewObjectID()
	remarks := "Advice given"

	srHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Appointment)
		(*arg).ID = id
		(*arg).Status = models.StatusCompleted
		(*arg).Remarks = remarks
	})
	collectionHelper.On("FindOneAndUpdate", context.Background(),
		bson.M{"_id": id, "status": models.StatusAccepted},
		mock.MatchedBy(func(update bson.M) bool {
			set, ok := update["$set"].(bson.M)
			return ok && set["status"] == models.StatusCompleted && set["remarks"] == remarks
		}),
		mock.Anything,
	).Return(srHelper)
	dbHelper.On("Collection", "appointments").Return(collectionHelper)

	appointment, err := databases.NewAppointmentDatabase(dbHelper).UpdateStatus(context.Background(), id, models.StatusAccepted, models.StatusCompleted, &remarks)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, appointment.Status)
	assert.Equal(t, "Advice given", appointment.Remarks)
}

func TestAppointmentDatabase_UpdateStatusLeavesRemarksAlone(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}
	id := primitive.NewObjectID()

	srHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	collectionHelper.On("FindOneAndUpdate", context.Background(), mock.Anything,
		mock.MatchedBy(func(update bson.M) bool {
			_, has := update["$set"].(bson.M)["remarks"]
			return !has
		}),
		mock.Anything,
	).Return(srHelper)
	dbHelper.On("Collection", "appointments").Return(collectionHelper)

	appointment, err := databases.NewAppointmentDatabase(dbHelper).UpdateStatus(context.Background(), id, models.StatusPending, models.StatusAccepted, nil)

	assert.Nil(t, appointment)
	assert.ErrorIs(t, err, databases.ErrNotFound)
}

func TestAppointmentDatabase_SetReviewRequiresCompleted(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}
	id := primitive.NewObjectID()

	srHelper.On("Decode", mock.Anything).Return(nil)
	collectionHelper.On("FindOneAndUpdate", context.Background(),
		bson.M{"_id": id, "status": models.StatusCompleted},
		mock.Anything, mock.Anything,
	).Return(srHelper)
	dbHelper.On("Collection", "appointments").Return(collectionHelper)

	_, err := databases.NewAppointmentDatabase(dbHelper).SetReview(context.Background(), id, 5, "great")

	assert.NoError(t, err)
	collectionHelper.AssertExpectations(t)
}

func TestAppointmentDatabase_PushDocumentUsesPush(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelper := &mocks.SingleResultHelper{}
	id := primitive.NewObjectID()
	doc := models.Document{FileName: "contract.pdf", FilePath: "cases/x/contract.pdf", UploadedBy: "citizen-1"}

	srHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Appointment)
		(*arg).Documents = []models.Document{doc}
	})
	collectionHelper.On("FindOneAndUpdate", context.Background(),
		bson.M{"_id": id},
		mock.MatchedBy(func(update bson.M) bool {
			push, ok := update["$push"].(bson.M)
			return ok && push["documents"] == doc
		}),
		mock.Anything,
	).Return(srHelper)
	dbHelper.On("Collection", "appointments").Return(collectionHelper)

	appointment, err := databases.NewAppointmentDatabase(dbHelper).PushDocument(context.Background(), id, doc)

	assert.NoError(t, err)
	assert.Len(t, appointment.Documents, 1)
}

func TestAppointmentDatabase_FindRatedByLawyer(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("All", context.Background(), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Appointment)
		*arg = []models.Appointment{{Rating: 5}, {Rating: 3}}
	})
	cursorHelper.On("Close", context.Background()).Return(nil)
	collectionHelper.On("Find", context.Background(), bson.M{"lawyerId": "lawyer-1", "rating": bson.M{"$gt": 0}}, mock.Anything).Return(cursorHelper, nil)
	dbHelper.On("Collection", "appointments").Return(collectionHelper)

	rated, err := databases.NewAppointmentDatabase(dbHelper).FindRatedByLawyer(context.Background(), "lawyer-1")

	assert.NoError(t, err)
	assert.Len(t, rated, 2)
}
