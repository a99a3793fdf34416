package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/service"
	"taskboard/internal/session"
)

// Router decodes inbound frames into typed commands and runs them. The
// switch in dispatch is the complete command set; adding a command means
// adding a payload type and a handler, there is no string-keyed table.
type Router struct {
	auth     *service.AuthService
	lists    *service.TaskListService
	registry *session.Registry
	notifier *session.Notifier
}

func NewRouter(auth *service.AuthService, lists *service.TaskListService, registry *session.Registry, notifier *session.Notifier) *Router {
	return &Router{
		auth:     auth,
		lists:    lists,
		registry: registry,
		notifier: notifier,
	}
}

// Handle runs one command to completion, reply included. Called from the
// client's read loop only.
func (r *Router) Handle(c *Client, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.status("Invalid message")
		commandsTotal.WithLabelValues("invalid", "error").Inc()
		return
	}

	err := r.dispatch(c, env.Type, raw)
	outcome := "ok"
	if err != nil {
		r.fail(c, env.Type, err)
		outcome = "error"
	}
	commandsTotal.WithLabelValues(env.Type, outcome).Inc()
}

func (r *Router) dispatch(c *Client, cmdType string, raw []byte) error {
	ctx := context.Background()

	switch cmdType {
	case CmdLogin:
		var cmd loginCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleLogin(ctx, c, cmd)
	case CmdID:
		return r.handleID(c)
	case CmdLogout:
		return r.handleLogout(c)
	case CmdNewTL:
		var cmd nameCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleNewTL(ctx, c, cmd)
	case CmdDelTL:
		var cmd nameCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleDelTL(ctx, c, cmd)
	case CmdGetAll:
		return r.handleGetAll(ctx, c)
	case CmdGetTL:
		var cmd nameCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleGetTL(ctx, c, cmd)
	case CmdAddTask:
		var cmd taskCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleAddTask(ctx, c, cmd)
	case CmdRemoveTask:
		var cmd taskCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleRemoveTask(ctx, c, cmd)
	case CmdSetState:
		var cmd setStateCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleSetState(ctx, c, cmd)
	case CmdComment:
		var cmd commentCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleComment(ctx, c, cmd)
	case CmdGrant:
		var cmd permCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleGrant(ctx, c, cmd)
	case CmdRevoke:
		var cmd permCmd
		if err := json.Unmarshal(raw, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", cmdType, err)
		}
		return r.handleRevoke(ctx, c, cmd)
	default:
		c.status("Unknown command " + cmdType)
		return nil
	}
}

// fail turns an error into the reply the caller sees. Domain errors carry
// their wire text; everything else is a store or decode failure and gets
// the generic Error shape.
func (r *Router) fail(c *Client, cmdType string, err error) {
	var nf *domain.NotFoundError
	if cmdType == CmdGetTL && errors.As(err, &nf) && nf.Kind == domain.KindTaskList {
		c.status("Not found")
		return
	}
	if domain.IsUserFacing(err) {
		c.status(err.Error())
		return
	}
	logger.Error("command failed", "command", cmdType, "error", err)
	c.reply(errorReply{Status: "Error", Error: err.Error()})
}

func (r *Router) handleLogin(ctx context.Context, c *Client, cmd loginCmd) error {
	if c.login != "" {
		return domain.ErrAlreadyAuthenticated
	}
	if err := r.auth.Authenticate(ctx, cmd.Login, cmd.Password); err != nil {
		return err
	}
	if err := r.registry.Register(cmd.Login, c); err != nil {
		return err
	}
	c.login = cmd.Login
	c.ok()
	return nil
}

func (r *Router) handleID(c *Client) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	c.reply(idReply{Status: statusOK, ID: c.login})
	return nil
}

func (r *Router) handleLogout(c *Client) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	r.registry.Unregister(c.login, c)
	c.login = ""
	c.ok()
	return nil
}

func (r *Router) handleNewTL(ctx context.Context, c *Client, cmd nameCmd) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	if _, err := r.lists.Create(ctx, cmd.Name, c.login); err != nil {
		return err
	}
	c.ok()
	r.notifier.NotifyAll(c.login + " has created a tasklist " + cmd.Name)
	return nil
}

func (r *Router) handleDelTL(ctx context.Context, c *Client, cmd nameCmd) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	if err := r.lists.Delete(ctx, cmd.Name, c.login); err != nil {
		return err
	}
	c.ok()
	r.notifier.NotifyAll(c.login + " has deleted tasklist " + cmd.Name)
	return nil
}

func (r *Router) handleGetAll(ctx context.Context, c *Client) error {
	lists, err := r.lists.All(ctx)
	if err != nil {
		return err
	}
	if lists == nil {
		lists = []*domain.TaskList{}
	}
	c.reply(taskListsReply{Status: statusOK, Type: "tasklists", TaskLists: lists})
	return nil
}

func (r *Router) handleGetTL(ctx context.Context, c *Client, cmd nameCmd) error {
	tl, err := r.lists.Get(ctx, cmd.Name)
	if err != nil {
		return err
	}
	c.reply(taskListReply{Status: statusOK, Type: "tasklist", TaskList: tl})
	return nil
}

func (r *Router) handleAddTask(ctx context.Context, c *Client, cmd taskCmd) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	tl, err := r.lists.AddTask(ctx, cmd.TaskList, c.login, cmd.Description)
	if err != nil {
		return err
	}
	c.ok()
	r.notifyAllowed(tl, c.login+" added new task "+cmd.Description+" in tasklist "+cmd.TaskList)
	return nil
}

func (r *Router) handleRemoveTask(ctx context.Context, c *Client, cmd taskCmd) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	tl, err := r.lists.RemoveTask(ctx, cmd.TaskList, c.login, cmd.Description)
	if err != nil {
		return err
	}
	c.ok()
	r.notifyAllowed(tl, c.login+" removed task "+cmd.Description+" in tasklist "+cmd.TaskList)
	return nil
}

func (r *Router) handleSetState(ctx context.Context, c *Client, cmd setStateCmd) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	tl, err := r.lists.SetState(ctx, cmd.TaskList, c.login, cmd.Task, cmd.State, cmd.User)
	if err != nil {
		return err
	}
	c.ok()
	r.notifyAllowed(tl, "State of task "+cmd.Task+" in tasklist "+cmd.TaskList+" has been changed to "+cmd.State)
	return nil
}

func (r *Router) handleComment(ctx context.Context, c *Client, cmd commentCmd) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	tl, err := r.lists.Comment(ctx, cmd.TaskList, c.login, cmd.Task, cmd.Comment)
	if err != nil {
		return err
	}
	c.ok()
	r.notifyAllowed(tl, c.login+" posted a new comment on task "+cmd.Task+" in tasklist "+cmd.TaskList)
	return nil
}

func (r *Router) handleGrant(ctx context.Context, c *Client, cmd permCmd) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	if _, err := r.lists.Grant(ctx, cmd.TaskList, c.login, cmd.User); err != nil {
		return err
	}
	c.ok()
	r.notifier.Notify(cmd.User, "Now you have modification rights for tasklist "+cmd.TaskList)
	return nil
}

func (r *Router) handleRevoke(ctx context.Context, c *Client, cmd permCmd) error {
	if c.login == "" {
		return domain.ErrNotAuthenticated
	}
	if _, err := r.lists.Revoke(ctx, cmd.TaskList, c.login, cmd.User); err != nil {
		return err
	}
	c.ok()
	r.notifier.Notify(cmd.User, "Now you don't have modification rights for tasklist "+cmd.TaskList)
	return nil
}

func (r *Router) notifyAllowed(tl *domain.TaskList, text string) {
	for _, login := range tl.Allowed {
		r.notifier.Notify(login, text)
	}
}

func (c *Client) reply(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("encode reply", "error", err)
		return
	}
	c.Push(b)
}

func (c *Client) ok() {
	c.reply(statusReply{Status: statusOK})
}

func (c *Client) status(msg string) {
	c.reply(statusReply{Status: msg})
}
