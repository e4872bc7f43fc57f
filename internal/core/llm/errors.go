package llm

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// UserFacingError maps a provider failure to an HTTP status and a generic
// message safe to show the client. Upstream 401/429 keep their codes;
// everything else becomes a 500.
func UserFacingError(err error) (int, string) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return http.StatusUnauthorized, "Invalid API key."
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests, "Rate limited, please try again shortly."
		}
	}
	return http.StatusInternalServerError, "AI provider error. Please try again."
}
