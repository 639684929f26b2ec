package databases

// go generate: mockery --name UserDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/legal-aid-api/models"
)

const userName = "users"

// UserDatabase contains the methods to use with the user database
type UserDatabase interface {
	InsertOne(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByRole(ctx context.Context, role string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate, lawyer bool) (*models.User, error)
	UpdateRating(ctx context.Context, id primitive.ObjectID, rating float64, count int) error
	EnsureIndexes(ctx context.Context) error
}

type userDatabase struct {
	db DatabaseHelper
}

// NewUserDatabase initializes a new instance of user database with the provided db connection
func NewUserDatabase(db DatabaseHelper) UserDatabase {
	return &userDatabase{
		db: db,
	}
}

func (u *userDatabase) InsertOne(ctx context.Context, user *models.User) error {
	_, err := u.db.Collection(userName).InsertOne(ctx, user)
	return err
}

func (u *userDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return u.findOne(ctx, bson.M{"_id": id})
}

func (u *userDatabase) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var users []models.User
	curr, err := u.db.Collection(userName).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"password": 0}))
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	if err = curr.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (u *userDatabase) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.findOne(ctx, bson.M{"email": email})
}

func (u *userDatabase) FindByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	curr, err := u.db.Collection(userName).Find(ctx, bson.M{"role": role}, options.Find().SetProjection(bson.M{"password": 0}))
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	if err = curr.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (u *userDatabase) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate, lawyer bool) (*models.User, error) {
	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if update.Name != nil && *update.Name != "" {
		set["name"] = *update.Name
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Address != nil {
		set["address"] = *update.Address
	}
	if lawyer {
		if update.Specialization != nil {
			set["specialization"] = *update.Specialization
		}
		if update.Experience != nil {
			set["experience"] = *update.Experience
		}
		if update.BarNumber != nil {
			set["barNumber"] = *update.BarNumber
		}
		if update.PaymentQrCode != nil {
			set["paymentQrCode"] = *update.PaymentQrCode
		}
		if update.ConsultationFee != nil {
			set["consultationFee"] = *update.ConsultationFee
		}
	}

	user := &models.User{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := decodeOne(u.db.Collection(userName).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts), &user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userDatabase) UpdateRating(ctx context.Context, id primitive.ObjectID, rating float64, count int) error {
	res, err := u.db.Collection(userName).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating":      rating,
		"ratingCount": count,
	}})
	if err != nil {
		return err
	}
	if res != nil && res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (u *userDatabase) EnsureIndexes(ctx context.Context) error {
	return u.db.Collection(userName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
}

func (u *userDatabase) findOne(ctx context.Context, filter interface{}) (*models.User, error) {
	user := &models.User{}
	err := decodeOne(u.db.Collection(userName).FindOne(ctx, filter), &user)
	if err != nil {
		return nil, err
	}
	return user, nil
}
