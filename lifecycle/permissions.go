package lifecycle

import "github.com/linesmerrill/legal-aid-api/models"

type transition struct {
	from, to models.Status
}

type rule struct {
	roles          []Role
	requireRemarks bool
}

// transitions lists every legal status change. Anything absent is Forbidden,
// which covers every move out of a terminal state.
var transitions = map[transition]rule{
	{models.StatusPending, models.StatusAccepted}:          {roles: []Role{Lawyer}},
	{models.StatusPending, models.StatusRejected}:          {roles: []Role{Lawyer}},
	{models.StatusAccepted, models.StatusCompleted}:        {roles: []Role{Lawyer}, requireRemarks: true},
	{models.StatusAccepted, models.StatusCancelled}:        {roles: []Role{Lawyer, Citizen}, requireRemarks: true},
	{models.StatusRefundRequested, models.StatusCancelled}: {roles: []Role{Lawyer}},
	{models.StatusRefundRequested, models.StatusAccepted}:  {roles: []Role{Lawyer}},

	{models.StatusPending, models.StatusCancelled}:        {roles: []Role{Citizen}},
	{models.StatusPending, models.StatusRefundRequested}:  {roles: []Role{Citizen}},
	{models.StatusAccepted, models.StatusRefundRequested}: {roles: []Role{Citizen}},
}

// Allowed reports whether role may move a case from one status to another
func Allowed(role Role, from, to models.Status) bool {
	r, ok := transitions[transition{from, to}]
	if !ok {
		return false
	}
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// requiresRemarks reports whether the lawyer must explain the change
func requiresRemarks(role Role, from, to models.Status) bool {
	return role == Lawyer && transitions[transition{from, to}].requireRemarks
}

// NextStatuses lists the statuses role can move a case to from its current one
func NextStatuses(role Role, from models.Status) []models.Status {
	var next []models.Status
	for _, s := range models.ValidStatuses() {
		if Allowed(role, from, s) {
			next = append(next, s)
		}
	}
	return next
}
