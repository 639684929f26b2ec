package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Status is the lifecycle state of an appointment
type Status string

// Predefined Status values
const (
	StatusPending         Status = "pending"
	StatusAccepted        Status = "accepted"
	StatusRejected        Status = "rejected"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
	StatusRefundRequested Status = "refund_requested"
)

// ValidStatuses returns all valid Status values
func ValidStatuses() []Status {
	return []Status{
		StatusPending,
		StatusAccepted,
		StatusRejected,
		StatusCompleted,
		StatusCancelled,
		StatusRefundRequested,
	}
}

// IsValid checks if the Status value is one of the predefined constants
func (s Status) IsValid() bool {
	for _, validStatus := range ValidStatuses() {
		if s == validStatus {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave the status
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// String returns the string representation of the Status
func (s Status) String() string {
	return string(s)
}

// Appointment holds the structure for the appointments collection in mongo.
// An appointment is the case record shared by one citizen and one lawyer.
type Appointment struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	CitizenID      string             `json:"citizenId" bson:"citizenId"`
	LawyerID       string             `json:"lawyerId" bson:"lawyerId"`
	Date           string             `json:"date" bson:"date"` // YYYY-MM-DD
	Slot           string             `json:"slot" bson:"slot"`
	Description    string             `json:"description" bson:"description"`
	TransactionRef string             `json:"transactionRef" bson:"transactionRef"`
	Status         Status             `json:"status" bson:"status"`
	Documents      []Document         `json:"documents" bson:"documents"`
	Rating         float64            `json:"rating" bson:"rating"`
	Review         string             `json:"review" bson:"review"`
	Remarks        string             `json:"remarks" bson:"remarks"`
	CreatedAt      primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime `json:"updatedAt" bson:"updatedAt"`

	// filled from the users collection when the appointment is read
	Citizen *Party `json:"citizen,omitempty" bson:"-"`
	Lawyer  *Party `json:"lawyer,omitempty" bson:"-"`
}

// Party is the contact summary of one side of an appointment
type Party struct {
	ID             primitive.ObjectID `json:"_id"`
	Name           string             `json:"name"`
	Email          string             `json:"email,omitempty"`
	Phone          string             `json:"phone,omitempty"`
	Specialization string             `json:"specialization,omitempty"`
}

// CitizenParty is what a lawyer sees of the citizen who booked
func CitizenParty(u User) *Party {
	return &Party{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// LawyerParty is what a citizen sees of the lawyer they booked
func LawyerParty(u User) *Party {
	return &Party{ID: u.ID, Name: u.Name, Specialization: u.Specialization}
}

// Document is the metadata of a file attached to an appointment. The bytes
// live in the blob store under FilePath.
type Document struct {
	FileName    string             `json:"fileName" bson:"fileName"`
	FilePath    string             `json:"filePath" bson:"filePath"`
	URL         string             `json:"url,omitempty" bson:"url,omitempty"`
	ContentType string             `json:"contentType" bson:"contentType"`
	Size        int64              `json:"size" bson:"size"`
	UploadedBy  string             `json:"uploadedBy" bson:"uploadedBy"`
	UploadedAt  primitive.DateTime `json:"uploadedAt" bson:"uploadedAt"`
}
