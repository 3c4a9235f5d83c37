package client

import (
	"fmt"
	"net/http"
)

// HTTPError is returned when the lookup service answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
	Headers    http.Header
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("cardbrand client http error %d (%s): %s", e.StatusCode, e.Status, e.Body)
}
