package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
)

// tokenCacheTTL bounds how long a verified token is trusted without
// checking it again
const tokenCacheTTL = 5 * time.Minute

// MiddlewareDB authenticates requests against the user database
type MiddlewareDB struct {
	DB     databases.UserDatabase
	Secret []byte

	authenticator auth.Authenticator
}

// SetupGoGuardian enables basic auth with email and password and bearer
// auth with signed access tokens
func (m *MiddlewareDB) SetupGoGuardian(ctx context.Context) {
	m.authenticator = auth.New()
	basicCache := store.NewFIFO(ctx, tokenCacheTTL)
	tokenCache := store.NewFIFO(ctx, tokenCacheTTL)

	m.authenticator.EnableStrategy(basic.StrategyKey, basic.New(m.ValidateUser, basicCache))
	m.authenticator.EnableStrategy(bearer.CachedStrategyKey, bearer.New(m.ValidateToken, tokenCache))
}

// Middleware authenticates the request and stores the actor in its context
func (m *MiddlewareDB) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := m.Authenticate(r)
		if err != nil {
			zap.S().Warnw("unauthorized",
				"url", r.URL.Path,
				"error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"response": {"message": "unauthorized", "kind": "Unauthorized"}}`))
			return
		}
		zap.S().Debugw("user authenticated", "userId", actor.ID, "role", actor.Role)
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// Authenticate runs the enabled strategies and returns the actor
func (m *MiddlewareDB) Authenticate(r *http.Request) (lifecycle.Actor, error) {
	if m.authenticator == nil {
		return lifecycle.Actor{}, errors.New("authenticator is not set up")
	}
	info, err := m.authenticator.Authenticate(r)
	if err != nil {
		return lifecycle.Actor{}, err
	}
	return actorFromInfo(info)
}

// ValidateUser checks an email and password pair
func (m *MiddlewareDB) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	ctx, cancel := WithQueryTimeout(ctx)
	defer cancel()

	user, err := m.DB.FindByEmail(ctx, email)
	if errors.Is(err, databases.ErrNotFound) {
		return nil, errors.New("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.New("invalid credentials")
	}
	return auth.NewDefaultUser(user.Email, user.ID.Hex(), []string{user.Role}, nil), nil
}

// ValidateToken checks a bearer access token
func (m *MiddlewareDB) ValidateToken(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	claims, err := ParseToken(m.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return auth.NewDefaultUser(claims.Email, claims.Subject, []string{claims.Role}, nil), nil
}

func actorFromInfo(info auth.Info) (lifecycle.Actor, error) {
	groups := info.Groups()
	if info.ID() == "" || len(groups) == 0 {
		return lifecycle.Actor{}, errors.New("identity has no id or role")
	}
	role, ok := lifecycle.ParseRole(groups[0])
	if !ok {
		return lifecycle.Actor{}, fmt.Errorf("unknown role %q", groups[0])
	}
	return lifecycle.Actor{ID: info.ID(), Role: role}, nil
}
