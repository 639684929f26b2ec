package lifecycle

import "github.com/linesmerrill/legal-aid-api/models"

// Role is the part a user plays in a case
type Role string

// Roles
const (
	Citizen Role = models.RoleCitizen
	Lawyer  Role = models.RoleLawyer
)

// ParseRole converts a stored role string, reporting whether it is known
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case Citizen, Lawyer:
		return Role(s), true
	}
	return "", false
}

// Actor is the authenticated identity performing an operation
type Actor struct {
	ID   string
	Role Role
}

// partyOf reports whether the actor is the party the case names for their role
func partyOf(a Actor, appointment *models.Appointment) bool {
	switch a.Role {
	case Citizen:
		return a.ID != "" && a.ID == appointment.CitizenID
	case Lawyer:
		return a.ID != "" && a.ID == appointment.LawyerID
	}
	return false
}
