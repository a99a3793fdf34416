package domain

import (
	"errors"
	"fmt"
)

// Error values whose Error() text is the exact status string sent to the
// client. The wire layer never formats these itself, it only decides
// between a plain status reply and a wrapped store failure.
var (
	ErrNotAuthenticated     = errors.New("Not logged in")
	ErrAlreadyAuthenticated = errors.New("Please logout first")
	ErrAlreadyLoggedIn      = errors.New("Already logged in in another connection")
	ErrWrongCredentials     = errors.New("Wrong login/password")
	ErrPermissionDenied     = errors.New("Permission denied")
	ErrOwnerOnly            = errors.New("Only owner can change permissions")
	ErrNotFoundOrDenied     = errors.New("Not found or permission denied")
	ErrDuplicateList        = errors.New("Tasklist already exists")
	ErrDuplicateTask        = errors.New("Task names should be distinct")
	ErrAlreadyAllowed       = errors.New("User already has permissions")
	ErrNotAllowed           = errors.New("User didn't have permissions")
	ErrRevokeOwner          = errors.New("Can't revoke the owner")
	ErrAlreadyClosed        = errors.New("Already closed")
	ErrAlreadyOpen          = errors.New("Already open")
	ErrAssignClosed         = errors.New("Already closed. Reopen first to assign")
	ErrReopenViaState       = errors.New("Can't change state to open, use reopened state")
)

type EntityKind string

const (
	KindTaskList EntityKind = "tasklist"
	KindTask     EntityKind = "task"
	KindUser     EntityKind = "user"
)

// NotFoundError identifies the missing entity so the boundary can render
// the message the protocol has always used.
type NotFoundError struct {
	Kind     EntityKind
	Name     string
	TaskList string // set for tasks, names the containing list
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case KindTaskList:
		return fmt.Sprintf("Tasklist %s not found", e.Name)
	case KindTask:
		if e.TaskList != "" {
			return fmt.Sprintf("Task %s not found in tasklist %s", e.Name, e.TaskList)
		}
		return fmt.Sprintf("Task %s not found", e.Name)
	default:
		return "User not found"
	}
}

// InvalidStateError reports an unknown setstate target.
type InvalidStateError struct {
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("Invalid state %s", e.State)
}

var userFacing = []error{
	ErrNotAuthenticated,
	ErrAlreadyAuthenticated,
	ErrAlreadyLoggedIn,
	ErrWrongCredentials,
	ErrPermissionDenied,
	ErrOwnerOnly,
	ErrNotFoundOrDenied,
	ErrDuplicateList,
	ErrDuplicateTask,
	ErrAlreadyAllowed,
	ErrNotAllowed,
	ErrRevokeOwner,
	ErrAlreadyClosed,
	ErrAlreadyOpen,
	ErrAssignClosed,
	ErrReopenViaState,
}

// IsUserFacing reports whether err maps to a plain status reply. Anything
// else is a store or transport failure and gets the generic Error reply.
func IsUserFacing(err error) bool {
	for _, e := range userFacing {
		if errors.Is(err, e) {
			return true
		}
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return true
	}
	var is *InvalidStateError
	return errors.As(err, &is)
}
