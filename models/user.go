package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role values stored on user records
const (
	RoleCitizen = "citizen"
	RoleLawyer  = "lawyer"
)

// DefaultConsultationFee is applied to new lawyer profiles
const DefaultConsultationFee = 500

// User holds the structure for the users collection in mongo
type User struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"`
	Role     string             `json:"role" bson:"role"`
	Phone    string             `json:"phone" bson:"phone"`
	Address  string             `json:"address" bson:"address"`

	// lawyer profile
	Specialization  string  `json:"specialization" bson:"specialization"`
	Experience      int     `json:"experience" bson:"experience"`
	BarNumber       string  `json:"barNumber" bson:"barNumber"`
	PaymentQrCode   string  `json:"paymentQrCode" bson:"paymentQrCode"` // base64 data url
	ConsultationFee float64 `json:"consultationFee" bson:"consultationFee"`

	Rating      float64 `json:"rating" bson:"rating"`
	RatingCount int     `json:"ratingCount" bson:"ratingCount"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ProfileUpdate holds the optional fields a user may change on their own
// profile. Nil fields are left untouched.
type ProfileUpdate struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Phone           *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address         *string  `json:"address,omitempty" validate:"omitempty,max=300"`
	Specialization  *string  `json:"specialization,omitempty" validate:"omitempty,max=100"`
	Experience      *int     `json:"experience,omitempty" validate:"omitempty,min=0,max=80"`
	BarNumber       *string  `json:"barNumber,omitempty" validate:"omitempty,max=50"`
	PaymentQrCode   *string  `json:"paymentQrCode,omitempty" validate:"omitempty,max=2000000"`
	ConsultationFee *float64 `json:"consultationFee,omitempty" validate:"omitempty,min=0"`
}
