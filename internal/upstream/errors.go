package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is any non-2xx answer from the pricing API. Classification is a
// pure function of the stored status code.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("upstream API error %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("upstream API error %d: %s", e.Status, e.Message)
}

func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

func (e *APIError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func (e *APIError) IsRateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

func (e *APIError) IsUnavailable() bool {
	return e.Status == http.StatusServiceUnavailable
}

// newAPIError builds an APIError from a response body, best-effort parsing
// the upstream {error, message} convention and falling back to the HTTP
// status text.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}

	switch {
	case parsed.Error != "" && parsed.Message != "":
		apiErr.Message = parsed.Error
		apiErr.Details = parsed.Message
	case parsed.Error != "":
		apiErr.Message = parsed.Error
	case parsed.Message != "":
		apiErr.Message = parsed.Message
	}
	return apiErr
}
