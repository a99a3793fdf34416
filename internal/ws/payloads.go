package ws

import "taskboard/internal/domain"

// Command names. One JSON object per frame, the type field selects the
// command; each command decodes into its own payload struct so a missing
// field is a zero value, never a runtime presence check.
const (
	CmdLogin      = "login"
	CmdID         = "id"
	CmdLogout     = "logout"
	CmdNewTL      = "newtl"
	CmdDelTL      = "deltl"
	CmdGetAll     = "getall"
	CmdGetTL      = "gettl"
	CmdAddTask    = "addtask"
	CmdRemoveTask = "removetask"
	CmdSetState   = "setstate"
	CmdComment    = "comment"
	CmdGrant      = "grant"
	CmdRevoke     = "revoke"
)

type envelope struct {
	Type string `json:"type"`
}

type loginCmd struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// nameCmd covers newtl, deltl and gettl.
type nameCmd struct {
	Name string `json:"name"`
}

// taskCmd covers addtask and removetask.
type taskCmd struct {
	TaskList    string `json:"tasklist"`
	Description string `json:"description"`
}

type setStateCmd struct {
	TaskList string `json:"tasklist"`
	Task     string `json:"task"`
	State    string `json:"state"`
	User     string `json:"user"`
}

type commentCmd struct {
	TaskList string `json:"tasklist"`
	Task     string `json:"task"`
	Comment  string `json:"comment"`
}

// permCmd covers grant and revoke.
type permCmd struct {
	TaskList string `json:"tasklist"`
	User     string `json:"user"`
}

const statusOK = "OK"

type statusReply struct {
	Status string `json:"status"`
}

type errorReply struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type idReply struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type taskListsReply struct {
	Status    string             `json:"status"`
	Type      string             `json:"type"`
	TaskLists []*domain.TaskList `json:"tasklists"`
}

type taskListReply struct {
	Status   string           `json:"status"`
	Type     string           `json:"type"`
	TaskList *domain.TaskList `json:"tasklist"`
}
