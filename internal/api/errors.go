package api

import "fmt"

// APIError carries the backend's human-readable failure message for
// a non-2xx response. Transport failures are plain wrapped errors,
// not APIErrors.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}
