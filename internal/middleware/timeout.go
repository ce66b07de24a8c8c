package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"hr-portal/internal/model"
)

// Timeout cuts off slow handlers with the API's standard error envelope, so
// timeout bodies decode the same way every other error does.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "Request timed out",
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
