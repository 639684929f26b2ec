package lifecycle

import (
	"context"
	"errors"
	"math"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/cache"
	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/models"
)

const maxReviewLength = 2000

// SubmitReview records the citizen's rating of a completed case and
// refreshes the lawyer's aggregate. A failure to refresh the aggregate is
// logged and does not fail the review.
func (e *Engine) SubmitReview(ctx context.Context, caseID string, actor Actor, rating int, review string) (*models.Appointment, error) {
	appointment, err := e.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !partyOf(actor, appointment) {
		return nil, newError(Unauthorized, "not a party to this appointment")
	}
	if actor.Role != Citizen {
		return nil, newError(Forbidden, "only the citizen can review an appointment")
	}
	if rating < 1 || rating > 5 {
		return nil, newError(ValidationFailed, "rating must be between 1 and 5")
	}
	review = Sanitize(review)
	if utf8.RuneCountInString(review) > maxReviewLength {
		return nil, newError(ValidationFailed, "review must be at most %d characters", maxReviewLength)
	}
	if appointment.Status != models.StatusCompleted {
		return nil, newError(StateConflict, "only completed appointments can be reviewed")
	}

	updated, err := e.Appointments.SetReview(ctx, appointment.ID, float64(rating), review)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, newError(StateConflict, "only completed appointments can be reviewed")
	}
	if err != nil {
		return nil, dependency("failed to save review", err)
	}

	if e.Ratings != nil {
		if _, err := e.Ratings.Recompute(ctx, updated.LawyerID); err != nil {
			zap.S().Errorw("failed to recompute lawyer rating",
				"lawyerId", updated.LawyerID,
				"appointmentId", updated.ID.Hex(),
				"error", err)
		}
	}
	return updated, nil
}

// Rating is a lawyer's aggregate score
type Rating struct {
	Average float64 `json:"rating"`
	Count   int     `json:"ratingCount"`
}

// Aggregator derives lawyer ratings from their reviewed cases
type Aggregator struct {
	Appointments databases.AppointmentDatabase
	Users        databases.UserDatabase
	Cache        cache.Cache
}

// NewAggregator returns an Aggregator, a nil cache disables invalidation
func NewAggregator(appointments databases.AppointmentDatabase, users databases.UserDatabase, c cache.Cache) *Aggregator {
	if c == nil {
		c = cache.Noop{}
	}
	return &Aggregator{Appointments: appointments, Users: users, Cache: c}
}

// Recompute rebuilds the lawyer's rating from every rated case. Running it
// twice over the same reviews gives the same result.
func (a *Aggregator) Recompute(ctx context.Context, lawyerID string) (Rating, error) {
	id, err := primitive.ObjectIDFromHex(lawyerID)
	if err != nil {
		return Rating{}, newError(NotFound, "lawyer not found")
	}
	rated, err := a.Appointments.FindRatedByLawyer(ctx, lawyerID)
	if err != nil {
		return Rating{}, dependency("failed to load reviews", err)
	}

	r := Average(rated)
	err = a.Users.UpdateRating(ctx, id, r.Average, r.Count)
	if errors.Is(err, databases.ErrNotFound) {
		return Rating{}, newError(NotFound, "lawyer not found")
	}
	if err != nil {
		return Rating{}, dependency("failed to update lawyer rating", err)
	}

	if err := a.Cache.Delete(ctx, cache.LawyersKey); err != nil {
		zap.S().Warnw("failed to invalidate lawyer cache", "error", err)
	}
	return r, nil
}

// RecomputeAll refreshes every lawyer's rating and returns how many were
// updated. It keeps going past individual failures and reports them together.
func (a *Aggregator) RecomputeAll(ctx context.Context) (int, error) {
	lawyers, err := a.Users.FindByRole(ctx, models.RoleLawyer)
	if err != nil {
		return 0, dependency("failed to list lawyers", err)
	}
	var (
		updated int
		errs    []error
	)
	for _, lawyer := range lawyers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := a.Recompute(ctx, lawyer.ID.Hex()); err != nil {
			errs = append(errs, err)
			continue
		}
		updated++
	}
	return updated, errors.Join(errs...)
}

// Average is the mean of the non-zero ratings, rounded to one decimal
func Average(appointments []models.Appointment) Rating {
	var (
		sum   float64
		count int
	)
	for _, a := range appointments {
		if a.Rating > 0 {
			sum += a.Rating
			count++
		}
	}
	if count == 0 {
		return Rating{}
	}
	return Rating{Average: math.Round(sum/float64(count)*10) / 10, Count: count}
}
