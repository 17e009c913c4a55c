package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/postkeeper/internal/common"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrNotLoggedIn = errors.New("not logged in")
	ErrUnexpected  = errors.New("unexpected server response")
)

// APIError is a non-2xx answer from the server. It unwraps to the matching
// common sentinel so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	case http.StatusBadRequest:
		return common.ErrorValidation
	default:
		return ErrUnexpected
	}
}
