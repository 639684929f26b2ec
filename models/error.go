package models

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
	Kind    string `json:",omitempty"`
}

// HealthCheckResponse is the body of GET /health
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
