package gateway

import (
	"errors"
	"fmt"
)

// CommunicationError is a transport or protocol failure reaching the
// external endpoint. It is always caught at the orchestrator's dispatch
// choke point and converted into a logged error entry plus a failed outcome.
type CommunicationError struct {
	Gateway string
	Op      string
	Err     error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("gateway %s: %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

func IsCommunicationError(err error) (*CommunicationError, bool) {
	var commErr *CommunicationError
	ok := errors.As(err, &commErr)
	return commErr, ok
}
