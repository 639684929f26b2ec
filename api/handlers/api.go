package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/api"
	"github.com/linesmerrill/legal-aid-api/assistant"
	"github.com/linesmerrill/legal-aid-api/cache"
	"github.com/linesmerrill/legal-aid-api/config"
	"github.com/linesmerrill/legal-aid-api/databases"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
	"github.com/linesmerrill/legal-aid-api/notify"
	"github.com/linesmerrill/legal-aid-api/storage"
)

// requestTimeout bounds every /api/v1 route except uploads and the socket
const requestTimeout = 30 * time.Second

// App stores the router and its dependencies, so they can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Metrics  *api.Metrics
	Engine   *lifecycle.Engine
	Users    databases.UserDatabase
	Cache    cache.Cache
	Asker    assistant.Asker
	Hub      *notify.Hub
	Notifier notify.Notifier

	client  databases.ClientHelper
	closers []io.Closer
}

// New creates a new mux router and all the routes
func (a *App) New(ctx context.Context) *mux.Router {
	if a.Metrics == nil {
		a.Metrics = api.NewMetrics()
	}
	if a.Hub == nil {
		a.Hub = notify.NewHub()
	}

	// setup go-guardian for middleware
	m := &api.MiddlewareDB{DB: a.Users, Secret: []byte(a.Config.JWTSecret)}
	m.SetupGoGuardian(ctx)

	u := User{DB: a.Users, Cache: a.Cache, Secret: []byte(a.Config.JWTSecret), TokenTTL: a.Config.TokenTTL}
	ap := Appointment{Engine: a.Engine, Notifier: a.Notifier}
	ai := AI{Asker: a.Asker}
	n := Notification{Auth: m, Hub: a.Hub}
	mh := MetricsHandler{Metrics: a.Metrics}

	r := api.New(a.Metrics)

	// routes that stream or hijack the connection skip the timeout handler
	r.HandleFunc("/ws/notifications", n.NotificationsWebSocketHandler).Methods("GET")
	r.Handle("/api/v1/appointments/{id}/upload", m.Middleware(http.HandlerFunc(ap.UploadDocumentHandler))).Methods("POST")
	if a.Config.StorageDriver == "" || a.Config.StorageDriver == storage.DriverLocal {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.Config.UploadDir))))
	}

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(requestTimeout))

	apiCreate.Handle("/auth/token", m.Middleware(http.HandlerFunc(u.CreateTokenHandler))).Methods("POST")

	apiCreate.Handle("/users/register", http.HandlerFunc(u.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/users/lawyers", http.HandlerFunc(u.LawyersHandler)).Methods("GET")
	apiCreate.Handle("/users/me", m.Middleware(http.HandlerFunc(u.MeHandler))).Methods("GET")
	apiCreate.Handle("/users/profile", m.Middleware(http.HandlerFunc(u.UpdateProfileHandler))).Methods("PUT")

	apiCreate.Handle("/appointments", m.Middleware(http.HandlerFunc(ap.CreateAppointmentHandler))).Methods("POST")
	apiCreate.Handle("/appointments", m.Middleware(http.HandlerFunc(ap.AppointmentsHandler))).Methods("GET")
	apiCreate.Handle("/appointments/{id}", m.Middleware(http.HandlerFunc(ap.AppointmentByIDHandler))).Methods("GET")
	apiCreate.Handle("/appointments/{id}", m.Middleware(http.HandlerFunc(ap.UpdateAppointmentStatusHandler))).Methods("PUT")
	apiCreate.Handle("/appointments/{id}/review", m.Middleware(http.HandlerFunc(ap.ReviewAppointmentHandler))).Methods("POST")

	apiCreate.Handle("/ai/ask", m.Middleware(http.HandlerFunc(ai.AskHandler))).Methods("POST")

	apiCreate.Handle("/metrics", m.Middleware(http.HandlerFunc(mh.GetMetricsDashboard))).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and the other
// backing services and create a router
func (a *App) Initialize(ctx context.Context) error {
	client, err := databases.NewClient(ctx, &a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().Errorw("failed to create new client", "error", err)
		return err
	}
	a.client = client

	pingCtx, cancel := api.WithQueryTimeout(ctx)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		zap.S().Errorw("failed to connect to database", "error", err)
		return err
	}
	zap.S().Info("legal-aid-api has connected to the database")

	dbHelper := databases.NewDatabase(&a.Config, client)
	a.Users = databases.NewUserDatabase(dbHelper)
	appointments := databases.NewAppointmentDatabase(dbHelper)

	indexCtx, cancelIndex := api.WithQueryTimeout(ctx)
	defer cancelIndex()
	if err := a.Users.EnsureIndexes(indexCtx); err != nil {
		zap.S().Warnw("failed to ensure user indexes", "error", err)
	}
	if err := appointments.EnsureIndexes(indexCtx); err != nil {
		zap.S().Warnw("failed to ensure appointment indexes", "error", err)
	}

	store, err := storage.Open(ctx, &a.Config)
	if err != nil {
		zap.S().Errorw("failed to open document storage", "error", err)
		return err
	}

	a.Cache = cache.Noop{}
	if a.Config.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, a.Config.RedisURL)
		if err != nil {
			zap.S().Warnw("redis unavailable, lawyer directory will not be cached", "error", err)
		} else {
			a.Cache = rc
			a.closers = append(a.closers, rc)
		}
	}

	gemini, err := assistant.NewGemini(ctx, a.Config.GeminiAPIKey, a.Config.GeminiModel)
	if err != nil {
		zap.S().Warnw("AI assistant disabled", "error", err)
	} else {
		a.Asker = gemini
		a.closers = append(a.closers, gemini)
	}

	a.Hub = notify.NewHub()
	notifiers := notify.Multi{a.Hub}
	if a.Config.SendgridAPIKey != "" {
		notifiers = append(notifiers, notify.NewMailer(a.Config.SendgridAPIKey, a.Config.SendgridFromEmail, a.Config.SendgridFromName, a.Config.BaseURL, a.Users))
	}
	a.Notifier = notifiers

	a.Engine = lifecycle.New(appointments, a.Users, store, a.Cache, a.Config.RefundWindow)

	// initialize api router
	a.Router = a.New(ctx)
	return nil
}

// Close releases every connection opened by Initialize
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
