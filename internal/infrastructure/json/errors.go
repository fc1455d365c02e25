package json

import (
	"net/http"
	"strconv"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteErrorMessage answers {"error": msg}.
func WriteErrorMessage(w http.ResponseWriter, status int, msg string) {
	_ = Write(w, status, ErrorResponse{Error: msg})
}

// WriteRateLimitError answers 429. retryAfter is in seconds and omitted
// from the headers when not positive.
func WriteRateLimitError(w http.ResponseWriter, retryAfter int) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	_ = Write(w, http.StatusTooManyRequests, ErrorResponse{
		Error:   http.StatusText(http.StatusTooManyRequests),
		Message: "Too many requests. Please try again later.",
	})
}
