package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/legal-aid-api/models"
)

// New creates a new mux router with the health route and the request
// logging and panic recovery middleware
func New(m *Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger(m), Recoverer)
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	w.Write(b)
}
