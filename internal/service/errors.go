package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// NewErrNotFound reports a missing resource.
func NewErrNotFound(resource string, id uuid.UUID) error {
	return &ErrResourceNotFound{Resource: resource, ID: id}
}

type ErrResourceNotFound struct {
	Resource string
	ID       uuid.UUID
}

func (e *ErrResourceNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ErrGateViolation is returned when a control action is issued against a job
// whose current stage does not allow it, for example approving a job that is
// not awaiting review.
type ErrGateViolation struct {
	ID     uuid.UUID
	Stage  string
	Action string
}

func (e *ErrGateViolation) Error() string {
	return fmt.Sprintf("cannot %s job %s in stage %s", e.Action, e.ID, e.Stage)
}

// ErrActionConflict is returned when a control action lost a compare-and-swap
// race. The caller should re-read the job and retry the action.
type ErrActionConflict struct {
	ID     uuid.UUID
	Action string
}

func (e *ErrActionConflict) Error() string {
	return fmt.Sprintf("job %s changed concurrently, %s not applied", e.ID, e.Action)
}

// ErrInvalidRequest covers semantic validation failures the field validator
// cannot catch, like referencing an unknown niche.
type ErrInvalidRequest struct {
	Message string
}

func (e *ErrInvalidRequest) Error() string {
	return e.Message
}

func IsNotFound(err error) bool {
	var e *ErrResourceNotFound
	return errors.As(err, &e)
}

func IsGateViolation(err error) bool {
	var e *ErrGateViolation
	return errors.As(err, &e)
}

func IsActionConflict(err error) bool {
	var e *ErrActionConflict
	return errors.As(err, &e)
}

func IsInvalidRequest(err error) bool {
	var e *ErrInvalidRequest
	return errors.As(err, &e)
}
