package common

import "errors"

// APIError is a classified platform failure. Status is the HTTP status code
// when one was received, zero otherwise.
type APIError struct {
	Message string
	Status  int
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, status int) *APIError {
	return &APIError{Message: message, Status: status}
}

// AsAPIError unwraps err to an *APIError if one is in its chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
