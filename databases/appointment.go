package databases

// go generate: mockery --name AppointmentDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/legal-aid-api/models"
)

const appointmentName = "appointments"

// Party fields an appointment can be listed by
const (
	CitizenField = "citizenId"
	LawyerField  = "lawyerId"
)

// AppointmentDatabase contains the methods to use with the appointment database.
// Every mutation is a single conditional document update so that concurrent
// requests on the same appointment cannot overwrite each other.
type AppointmentDatabase interface {
	InsertOne(ctx context.Context, appointment *models.Appointment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	FindByParty(ctx context.Context, field, userID string) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.Status, remarks *string) (*models.Appointment, error)
	SetReview(ctx context.Context, id primitive.ObjectID, rating float64, review string) (*models.Appointment, error)
	PushDocument(ctx context.Context, id primitive.ObjectID, doc models.Document) (*models.Appointment, error)
	FindRatedByLawyer(ctx context.Context, lawyerID string) ([]models.Appointment, error)
	EnsureIndexes(ctx context.Context) error
}

type appointmentDatabase struct {
	db DatabaseHelper
}

// NewAppointmentDatabase initializes a new instance of appointment database with the provided db connection
func NewAppointmentDatabase(db DatabaseHelper) AppointmentDatabase {
	return &appointmentDatabase{
		db: db,
	}
}

func (a *appointmentDatabase) InsertOne(ctx context.Context, appointment *models.Appointment) error {
	// $push needs an array, never a null
	if appointment.Documents == nil {
		appointment.Documents = []models.Document{}
	}
	_, err := a.db.Collection(appointmentName).InsertOne(ctx, appointment)
	return err
}

func (a *appointmentDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	appointment := &models.Appointment{}
	err := decodeOne(a.db.Collection(appointmentName).FindOne(ctx, bson.M{"_id": id}), &appointment)
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

func (a *appointmentDatabase) FindByParty(ctx context.Context, field, userID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	curr, err := a.db.Collection(appointmentName).Find(ctx, bson.M{field: userID}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &appointments)
	if err != nil {
		return nil, err
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return appointments, nil
}

func (a *appointmentDatabase) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.Status, remarks *string) (*models.Appointment, error) {
	set := bson.M{
		"status":    to,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}
	if remarks != nil {
		set["remarks"] = *remarks
	}
	return a.findOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
}

func (a *appointmentDatabase) SetReview(ctx context.Context, id primitive.ObjectID, rating float64, review string) (*models.Appointment, error) {
	update := bson.M{"$set": bson.M{
		"rating":    rating,
		"review":    review,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}}
	return a.findOneAndUpdate(ctx, bson.M{"_id": id, "status": models.StatusCompleted}, update)
}

func (a *appointmentDatabase) PushDocument(ctx context.Context, id primitive.ObjectID, doc models.Document) (*models.Appointment, error) {
	update := bson.M{
		"$push": bson.M{"documents": doc},
		"$set":  bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	}
	return a.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

func (a *appointmentDatabase) FindRatedByLawyer(ctx context.Context, lawyerID string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	filter := bson.M{"lawyerId": lawyerID, "rating": bson.M{"$gt": 0}}
	curr, err := a.db.Collection(appointmentName).Find(ctx, filter, options.Find().SetProjection(bson.M{"rating": 1, "lawyerId": 1}))
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	if err = curr.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (a *appointmentDatabase) EnsureIndexes(ctx context.Context) error {
	return a.db.Collection(appointmentName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "lawyerId", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "citizenId", Value: 1}, {Key: "date", Value: -1}}},
	})
}

func (a *appointmentDatabase) findOneAndUpdate(ctx context.Context, filter, update interface{}) (*models.Appointment, error) {
	appointment := &models.Appointment{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := decodeOne(a.db.Collection(appointmentName).FindOneAndUpdate(ctx, filter, update, opts), &appointment)
	if err != nil {
		return nil, err
	}
	return appointment, nil
}
