package api

import (
	"net/http"
	"time"
)

const timeoutBody = `{"response": {"message": "the request took too long to process", "kind": "DependencyFailure"}}`

// TimeoutMiddleware bounds how long a handler may take before the client
// gets a 503. It must not wrap websocket routes, the writer it hands down
// cannot be hijacked.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
