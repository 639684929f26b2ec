package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/legal-aid-api/api"
	"github.com/linesmerrill/legal-aid-api/cache"
	"github.com/linesmerrill/legal-aid-api/config"
	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
	"github.com/linesmerrill/legal-aid-api/models"
)

// defaultSpecialization is given to lawyers who register without one
const defaultSpecialization = "General"

// User handles accounts and the public lawyer directory
type User struct {
	DB       databases.UserDatabase
	Cache    cache.Cache
	Secret   []byte
	TokenTTL time.Duration
}

// RegisterRequest is the body of a sign up
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=citizen lawyer"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"max=300"`

	Specialization string `json:"specialization" validate:"max=100"`
	Experience     int    `json:"experience" validate:"min=0,max=80"`
	BarNumber      string `json:"barNumber" validate:"max=50"`
}

// AuthResponse carries a fresh access token
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// RegisterHandler creates a citizen or lawyer account and signs it in
func (u User) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "failed to decode request", err)
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := lifecycle.Validate(in); err != nil {
		engineError(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := u.DB.FindByEmail(ctx, in.Email)
	if err == nil {
		badRequest(w, "user already exists", nil)
		return
	}
	if !errors.Is(err, databases.ErrNotFound) {
		zap.S().Errorw("failed to look up email", "error", err)
		config.ErrorKindStatus("failed to register user", string(lifecycle.DependencyFailure), http.StatusBadGateway, w, nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, nil)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      lifecycle.Sanitize(in.Name),
		Email:     in.Email,
		Password:  string(hash),
		Role:      in.Role,
		Phone:     lifecycle.Sanitize(in.Phone),
		Address:   lifecycle.Sanitize(in.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Role == models.RoleLawyer {
		user.Specialization = lifecycle.Sanitize(in.Specialization)
		if user.Specialization == "" {
			user.Specialization = defaultSpecialization
		}
		user.Experience = in.Experience
		user.BarNumber = lifecycle.Sanitize(in.BarNumber)
		user.ConsultationFee = models.DefaultConsultationFee
	}

	if err := u.DB.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			badRequest(w, "user already exists", nil)
			return
		}
		zap.S().Errorw("failed to insert user", "error", err)
		config.ErrorKindStatus("failed to register user", string(lifecycle.DependencyFailure), http.StatusBadGateway, w, nil)
		return
	}
	if user.Role == models.RoleLawyer {
		u.invalidateLawyers(r)
	}
	zap.S().Infow("user registered", "userId", user.ID.Hex(), "role", user.Role)
	u.respondWithToken(w, http.StatusCreated, user)
}

// CreateTokenHandler issues an access token to a user who signed in with
// basic auth or an older token
func (u User) CreateTokenHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := u.currentUser(w, r)
	if !ok {
		return
	}
	u.respondWithToken(w, http.StatusOK, user)
}

// MeHandler returns the signed in user
func (u User) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := u.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfileHandler changes the signed in user's profile. Lawyer only
// fields are ignored for citizens.
func (u User) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var in models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "failed to decode request", err)
		return
	}
	if err := lifecycle.Validate(in); err != nil {
		engineError(w, err)
		return
	}
	if in.PaymentQrCode != nil && *in.PaymentQrCode != "" && !strings.HasPrefix(*in.PaymentQrCode, "data:image/") {
		badRequest(w, "paymentQrCode must be an image data url", nil)
		return
	}
	for _, field := range []*string{in.Name, in.Phone, in.Address, in.Specialization, in.BarNumber} {
		if field != nil {
			*field = lifecycle.Sanitize(*field)
		}
	}

	id, err := primitive.ObjectIDFromHex(actor.ID)
	if err != nil {
		config.ErrorKindStatus("user not found", string(lifecycle.NotFound), http.StatusNotFound, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.UpdateProfile(ctx, id, in, actor.Role == lifecycle.Lawyer)
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorKindStatus("user not found", string(lifecycle.NotFound), http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		zap.S().Errorw("failed to update profile", "userId", actor.ID, "error", err)
		config.ErrorKindStatus("failed to update profile", string(lifecycle.DependencyFailure), http.StatusBadGateway, w, nil)
		return
	}
	if actor.Role == lifecycle.Lawyer {
		u.invalidateLawyers(r)
	}
	writeJSON(w, http.StatusOK, user)
}

// LawyersHandler returns the public lawyer directory with ratings
func (u User) LawyersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var lawyers []models.User
	if err := u.cache().Get(ctx, cache.LawyersKey, &lawyers); err == nil {
		writeJSON(w, http.StatusOK, lawyers)
		return
	} else if !errors.Is(err, cache.ErrMiss) {
		zap.S().Warnw("failed to read lawyer cache", "error", err)
	}

	lawyers, err := u.DB.FindByRole(ctx, models.RoleLawyer)
	if err != nil {
		zap.S().Errorw("failed to list lawyers", "error", err)
		config.ErrorKindStatus("failed to list lawyers", string(lifecycle.DependencyFailure), http.StatusBadGateway, w, nil)
		return
	}
	if err := u.cache().Set(ctx, cache.LawyersKey, lawyers, cache.DefaultTTL); err != nil {
		zap.S().Warnw("failed to cache lawyers", "error", err)
	}
	writeJSON(w, http.StatusOK, lawyers)
}

func (u User) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return nil, false
	}
	id, err := primitive.ObjectIDFromHex(actor.ID)
	if err != nil {
		config.ErrorKindStatus("user not found", string(lifecycle.NotFound), http.StatusNotFound, w, nil)
		return nil, false
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindByID(ctx, id)
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorKindStatus("user not found", string(lifecycle.NotFound), http.StatusNotFound, w, nil)
		return nil, false
	}
	if err != nil {
		zap.S().Errorw("failed to get user by ID", "userId", actor.ID, "error", err)
		config.ErrorKindStatus("failed to get user", string(lifecycle.DependencyFailure), http.StatusBadGateway, w, nil)
		return nil, false
	}
	return user, true
}

func (u User) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, expiresAt, err := api.IssueToken(u.Secret, user, u.TokenTTL, time.Now())
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, status, AuthResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

func (u User) invalidateLawyers(r *http.Request) {
	if err := u.cache().Delete(r.Context(), cache.LawyersKey); err != nil {
		zap.S().Warnw("failed to invalidate lawyer cache", "error", err)
	}
}

func (u User) cache() cache.Cache {
	if u.Cache == nil {
		return cache.Noop{}
	}
	return u.Cache
}
