package domain

import (
	"slices"
	"time"
)

// Task status values. "open" is the initial status and is never a legal
// setstate target; reopening goes through "reopened". The assignee is an
// attribute next to the status, assigning a task does not change whether
// it counts as open or closed.
const (
	StatusOpen     = "open"
	StatusClosed   = "closed"
	StatusReopened = "reopened"

	// StateAssigned is a setstate target only, not a stored status.
	StateAssigned = "assigned"
)

type Comment struct {
	Author string    `json:"author"`
	Text   string    `json:"text"`
	Date   time.Time `json:"date"`
}

type Task struct {
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Comments    []Comment `json:"comments"`
	Assignee    string    `json:"assignee,omitempty"`
}

// TaskList is the persisted document. Version is the store's optimistic
// lock counter and never leaves the process.
type TaskList struct {
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Allowed []string `json:"allowed"`
	Tasks   []Task   `json:"tasks"`
	Version int64    `json:"-"`
}

func NewTaskList(name, owner string) *TaskList {
	return &TaskList{
		Name:    name,
		Owner:   owner,
		Allowed: []string{owner},
		Tasks:   []Task{},
	}
}

// CanModify reports whether login may mutate tasks on this list.
func (tl *TaskList) CanModify(login string) bool {
	return slices.Contains(tl.Allowed, login)
}

func (tl *TaskList) findTask(description string) *Task {
	for i := range tl.Tasks {
		if tl.Tasks[i].Description == description {
			return &tl.Tasks[i]
		}
	}
	return nil
}

// AddTask appends a new open task. Descriptions are the natural key and
// must be unique within the list.
func (tl *TaskList) AddTask(description string) error {
	if tl.findTask(description) != nil {
		return ErrDuplicateTask
	}
	tl.Tasks = append(tl.Tasks, Task{
		Description: description,
		Status:      StatusOpen,
		Comments:    []Comment{},
	})
	return nil
}

// RemoveTask removes exactly the named task, the rest of the list keeps
// its order.
func (tl *TaskList) RemoveTask(description string) error {
	for i := range tl.Tasks {
		if tl.Tasks[i].Description == description {
			tl.Tasks = append(tl.Tasks[:i], tl.Tasks[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Kind: KindTask, Name: description, TaskList: tl.Name}
}

// SetStatus applies the closed/reopened cycle to the named task.
// "assigned" is handled by AssignTask, callers route it there first.
func (tl *TaskList) SetStatus(description, status string) error {
	task := tl.findTask(description)
	if task == nil {
		return &NotFoundError{Kind: KindTask, Name: description}
	}

	switch status {
	case StatusOpen:
		return ErrReopenViaState
	case StatusClosed:
		if task.Status == StatusClosed {
			return ErrAlreadyClosed
		}
	case StatusReopened:
		if task.Status != StatusClosed {
			return ErrAlreadyOpen
		}
	default:
		return &InvalidStateError{State: status}
	}

	task.Status = status
	return nil
}

// AssignTask sets the assignee on an open or reopened task. Caller has
// already checked that the user exists.
func (tl *TaskList) AssignTask(description, user string) error {
	task := tl.findTask(description)
	if task == nil {
		return &NotFoundError{Kind: KindTask, Name: description}
	}
	if task.Status == StatusClosed {
		return ErrAssignClosed
	}
	task.Assignee = user
	return nil
}

// AddComment appends an immutable comment to the named task. Comments are
// open to any authenticated user, there is no allowed-set check here.
func (tl *TaskList) AddComment(description, author, text string, date time.Time) error {
	task := tl.findTask(description)
	if task == nil {
		return &NotFoundError{Kind: KindTask, Name: description}
	}
	task.Comments = append(task.Comments, Comment{Author: author, Text: text, Date: date})
	return nil
}

// Grant adds user to the allowed set.
func (tl *TaskList) Grant(user string) error {
	if slices.Contains(tl.Allowed, user) {
		return ErrAlreadyAllowed
	}
	tl.Allowed = append(tl.Allowed, user)
	return nil
}

// Revoke removes user from the allowed set. The owner is always allowed
// and cannot be revoked.
func (tl *TaskList) Revoke(user string) error {
	if user == tl.Owner {
		return ErrRevokeOwner
	}
	i := slices.Index(tl.Allowed, user)
	if i == -1 {
		return ErrNotAllowed
	}
	tl.Allowed = append(tl.Allowed[:i], tl.Allowed[i+1:]...)
	return nil
}
