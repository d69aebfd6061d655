package hubsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/hub/pkg/httpx"
)

// Error codes.
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeAccessDenied     = "access_denied"
	ErrorCodeInvalidToken     = "invalid_token"
	ErrorCodeUnauthorized     = "unauthorized"
	ErrorCodeForbidden        = "forbidden"
	ErrorCodeRejected         = "rejected"
	ErrorCodeServerError      = "server_error"
	ErrorCodeRateLimited      = "rate_limit_exceeded"
	ErrorCodeTokenConflict    = "token_conflict"
	ErrorCodeInvalidDecision  = "invalid_decision"
	ErrorCodeMethodNotAllowed = "method_not_allowed"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse = httpx.ErrorResponse

// APIError is a non-2xx response. Handlers use the predefined values to write
// responses and clients get them back from every call.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

var (
	// ErrAccessDenied is the single answer to every failed login.
	ErrAccessDenied = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	// ErrRejected is the single answer to every invitation that can not be sent.
	ErrRejected = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeRejected,
		Description: "invitation could not be sent",
	}

	ErrInvalidDecision = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidDecision,
		Description: "decision must be accepted or rejected",
	}

	ErrTokenConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeTokenConflict,
		Description: "token value is already in use",
	}

	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "operation requires the administrative credential",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewInvalidRequest builds a 400 with a specific description.
func NewInvalidRequest(description string) *APIError {
	return &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: description,
	}
}

// IsAccessDenied reports whether err is a rejected login.
func IsAccessDenied(err error) bool { return hasCode(err, ErrorCodeAccessDenied) }

// IsRejected reports whether err is a rejected invitation.
func IsRejected(err error) bool { return hasCode(err, ErrorCodeRejected) }

// IsUnauthorized reports whether the bearer token did not match the live session.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func hasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse converts a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
