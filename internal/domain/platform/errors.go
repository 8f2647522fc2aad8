package platform

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError carries a non-2xx response from a platform API. The status code
// and raw body are preserved so callers can surface them unchanged.
type APIError struct {
	Platform   Platform
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API error (%d): %s", e.Platform, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error (%d)", e.Platform, e.StatusCode)
}

// IsConflict reports whether the error is a platform optimistic-concurrency
// conflict (stale SyncToken or equivalent), which callers surface as 409
// rather than a generic failure.
func IsConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusConflict {
		return true
	}
	body := strings.ToLower(apiErr.Body + " " + apiErr.Message)
	return strings.Contains(body, "stale object") ||
		strings.Contains(body, "synctoken") ||
		strings.Contains(body, "sync token")
}
