package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/service"
	"taskboard/internal/session"
	"taskboard/internal/store"
)

func newTestRouter(t *testing.T, logins ...string) *Router {
	t.Helper()
	st := store.NewMemory()
	for _, l := range logins {
		if err := st.InsertUser(context.Background(), &domain.User{Login: l, Password: "p"}); err != nil {
			t.Fatalf("seed user %s: %v", l, err)
		}
	}
	registry := session.NewRegistry()
	return NewRouter(
		service.NewAuthService(st),
		service.NewTaskListService(st),
		registry,
		session.NewNotifier(registry),
	)
}

func newTestClient() *Client {
	return &Client{send: make(chan []byte, 16)}
}

// next pops the next outbound frame, decoded into a generic map.
func next(t *testing.T, c *Client) map[string]any {
	t.Helper()
	select {
	case msg := <-c.send:
		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err != nil {
			t.Fatalf("bad frame %s: %v", msg, err)
		}
		return obj
	case <-time.After(time.Second):
		t.Fatal("no frame")
		return nil
	}
}

func wantStatus(t *testing.T, c *Client, want string) {
	t.Helper()
	obj := next(t, c)
	if obj["status"] != want {
		t.Fatalf("status = %v; want %q (frame %v)", obj["status"], want, obj)
	}
}

func wantInfo(t *testing.T, c *Client, want string) {
	t.Helper()
	obj := next(t, c)
	if obj["info"] != want {
		t.Fatalf("info = %v; want %q (frame %v)", obj["info"], want, obj)
	}
}

func sendCmd(r *Router, c *Client, frame string) {
	r.Handle(c, []byte(frame))
}

func loginAs(t *testing.T, r *Router, c *Client, login string) {
	t.Helper()
	sendCmd(r, c, `{"type":"login","login":"`+login+`","password":"p"}`)
	wantStatus(t, c, "OK")
}

func TestLogin(t *testing.T) {
	r := newTestRouter(t, "u")
	c := newTestClient()

	sendCmd(r, c, `{"type":"login","login":"u","password":"wrong"}`)
	wantStatus(t, c, "Wrong login/password")

	sendCmd(r, c, `{"type":"login","login":"u","password":"p"}`)
	wantStatus(t, c, "OK")

	// second login on the same connection
	sendCmd(r, c, `{"type":"login","login":"u","password":"p"}`)
	wantStatus(t, c, "Please logout first")

	// same identity from another connection
	c2 := newTestClient()
	sendCmd(r, c2, `{"type":"login","login":"u","password":"p"}`)
	wantStatus(t, c2, "Already logged in in another connection")
}

func TestIDAndLogout(t *testing.T) {
	r := newTestRouter(t, "u")
	c := newTestClient()

	sendCmd(r, c, `{"type":"id"}`)
	wantStatus(t, c, "Not logged in")

	loginAs(t, r, c, "u")

	sendCmd(r, c, `{"type":"id"}`)
	obj := next(t, c)
	if obj["status"] != "OK" || obj["id"] != "u" {
		t.Fatalf("id reply = %v", obj)
	}

	sendCmd(r, c, `{"type":"logout"}`)
	wantStatus(t, c, "OK")

	sendCmd(r, c, `{"type":"id"}`)
	wantStatus(t, c, "Not logged in")

	// identity is free again after logout
	c2 := newTestClient()
	loginAs(t, r, c2, "u")
}

func TestSessionRequiredCommands(t *testing.T) {
	r := newTestRouter(t, "u")
	c := newTestClient()

	frames := []string{
		`{"type":"logout"}`,
		`{"type":"newtl","name":"L"}`,
		`{"type":"deltl","name":"L"}`,
		`{"type":"addtask","tasklist":"L","description":"A"}`,
		`{"type":"removetask","tasklist":"L","description":"A"}`,
		`{"type":"setstate","tasklist":"L","task":"A","state":"closed"}`,
		`{"type":"comment","tasklist":"L","task":"A","comment":"hi"}`,
		`{"type":"grant","tasklist":"L","user":"u"}`,
		`{"type":"revoke","tasklist":"L","user":"u"}`,
	}
	for _, f := range frames {
		sendCmd(r, c, f)
		wantStatus(t, c, "Not logged in")
	}
}

func TestTaskListLifecycle(t *testing.T) {
	r := newTestRouter(t, "u", "v")
	u := newTestClient()
	v := newTestClient()
	loginAs(t, r, u, "u")
	loginAs(t, r, v, "v")

	sendCmd(r, u, `{"type":"newtl","name":"L"}`)
	wantStatus(t, u, "OK")
	// both sessions get the broadcast
	wantInfo(t, u, "u has created a tasklist L")
	wantInfo(t, v, "u has created a tasklist L")

	sendCmd(r, u, `{"type":"getall"}`)
	obj := next(t, u)
	if obj["status"] != "OK" || obj["type"] != "tasklists" {
		t.Fatalf("getall reply = %v", obj)
	}
	lists := obj["tasklists"].([]any)
	if len(lists) != 1 {
		t.Fatalf("tasklists = %v", lists)
	}
	l := lists[0].(map[string]any)
	if l["name"] != "L" || l["owner"] != "u" {
		t.Fatalf("list = %v", l)
	}
	if allowed := l["allowed"].([]any); len(allowed) != 1 || allowed[0] != "u" {
		t.Fatalf("allowed = %v", allowed)
	}
	if tasks := l["tasks"].([]any); len(tasks) != 0 {
		t.Fatalf("tasks = %v", tasks)
	}

	// deletion by a different user fails, nothing is removed
	sendCmd(r, v, `{"type":"deltl","name":"L"}`)
	wantStatus(t, v, "Not found or permission denied")

	sendCmd(r, u, `{"type":"deltl","name":"L"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "u has deleted tasklist L")
	wantInfo(t, v, "u has deleted tasklist L")

	sendCmd(r, u, `{"type":"gettl","name":"L"}`)
	wantStatus(t, u, "Not found")
}

func TestAddTaskRoundTrip(t *testing.T) {
	r := newTestRouter(t, "u")
	u := newTestClient()
	loginAs(t, r, u, "u")

	sendCmd(r, u, `{"type":"newtl","name":"L"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "u has created a tasklist L")

	sendCmd(r, u, `{"type":"addtask","tasklist":"L","description":"A"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "u added new task A in tasklist L")

	sendCmd(r, u, `{"type":"addtask","tasklist":"L","description":"A"}`)
	wantStatus(t, u, "Task names should be distinct")

	sendCmd(r, u, `{"type":"gettl","name":"L"}`)
	obj := next(t, u)
	tl := obj["tasklist"].(map[string]any)
	tasks := tl["tasks"].([]any)
	task := tasks[0].(map[string]any)
	if task["description"] != "A" || task["status"] != "open" {
		t.Fatalf("task = %v", task)
	}
	if comments := task["comments"].([]any); len(comments) != 0 {
		t.Fatalf("comments = %v", comments)
	}
}

func TestAddTaskPermissionDeniedOnWire(t *testing.T) {
	r := newTestRouter(t, "u", "v")
	u := newTestClient()
	v := newTestClient()
	loginAs(t, r, u, "u")
	loginAs(t, r, v, "v")

	sendCmd(r, u, `{"type":"newtl","name":"L"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "u has created a tasklist L")
	wantInfo(t, v, "u has created a tasklist L")

	sendCmd(r, v, `{"type":"addtask","tasklist":"L","description":"A"}`)
	wantStatus(t, v, "Permission denied")

	sendCmd(r, v, `{"type":"addtask","tasklist":"M","description":"A"}`)
	wantStatus(t, v, "Tasklist M not found")
}

func TestSetStateOnWire(t *testing.T) {
	r := newTestRouter(t, "u")
	u := newTestClient()
	loginAs(t, r, u, "u")

	sendCmd(r, u, `{"type":"newtl","name":"L"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "u has created a tasklist L")
	sendCmd(r, u, `{"type":"addtask","tasklist":"L","description":"A"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "u added new task A in tasklist L")

	sendCmd(r, u, `{"type":"setstate","tasklist":"L","task":"A","state":"closed"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "State of task A in tasklist L has been changed to closed")

	sendCmd(r, u, `{"type":"setstate","tasklist":"L","task":"A","state":"closed"}`)
	wantStatus(t, u, "Already closed")

	sendCmd(r, u, `{"type":"setstate","tasklist":"L","task":"A","state":"open"}`)
	wantStatus(t, u, "Can't change state to open, use reopened state")

	sendCmd(r, u, `{"type":"setstate","tasklist":"L","task":"A","state":"reopened"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "State of task A in tasklist L has been changed to reopened")

	sendCmd(r, u, `{"type":"setstate","tasklist":"L","task":"A","state":"banana"}`)
	wantStatus(t, u, "Invalid state banana")
}

func TestCommentByNonMember(t *testing.T) {
	r := newTestRouter(t, "u", "v")
	u := newTestClient()
	v := newTestClient()
	loginAs(t, r, u, "u")
	loginAs(t, r, v, "v")

	sendCmd(r, u, `{"type":"newtl","name":"L"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "u has created a tasklist L")
	wantInfo(t, v, "u has created a tasklist L")
	sendCmd(r, u, `{"type":"addtask","tasklist":"L","description":"A"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "u added new task A in tasklist L")

	// v is not in allowed but may comment; the allowed set (u) is notified
	sendCmd(r, v, `{"type":"comment","tasklist":"L","task":"A","comment":"hi"}`)
	wantStatus(t, v, "OK")
	wantInfo(t, u, "v posted a new comment on task A in tasklist L")
}

func TestGrantNotifiesTarget(t *testing.T) {
	r := newTestRouter(t, "u", "v")
	u := newTestClient()
	v := newTestClient()
	loginAs(t, r, u, "u")
	loginAs(t, r, v, "v")

	sendCmd(r, u, `{"type":"newtl","name":"L"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, u, "u has created a tasklist L")
	wantInfo(t, v, "u has created a tasklist L")

	sendCmd(r, u, `{"type":"grant","tasklist":"L","user":"v"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, v, "Now you have modification rights for tasklist L")

	sendCmd(r, u, `{"type":"grant","tasklist":"L","user":"v"}`)
	wantStatus(t, u, "User already has permissions")

	sendCmd(r, u, `{"type":"revoke","tasklist":"L","user":"v"}`)
	wantStatus(t, u, "OK")
	wantInfo(t, v, "Now you don't have modification rights for tasklist L")

	sendCmd(r, u, `{"type":"revoke","tasklist":"L","user":"v"}`)
	wantStatus(t, u, "User didn't have permissions")

	sendCmd(r, u, `{"type":"grant","tasklist":"L","user":"ghost"}`)
	wantStatus(t, u, "User not found")

	sendCmd(r, v, `{"type":"grant","tasklist":"L","user":"v"}`)
	wantStatus(t, v, "Only owner can change permissions")
}

func TestUnauthenticatedReads(t *testing.T) {
	r := newTestRouter(t, "u")
	u := newTestClient()
	loginAs(t, r, u, "u")
	sendCmd(r, u, `{"type":"newtl","name":"L"}`)
	wantStatus(t, u, "OK")

	anon := newTestClient()
	sendCmd(r, anon, `{"type":"getall"}`)
	obj := next(t, anon)
	if obj["status"] != "OK" {
		t.Fatalf("getall unauthenticated = %v", obj)
	}
	sendCmd(r, anon, `{"type":"gettl","name":"L"}`)
	obj = next(t, anon)
	if obj["status"] != "OK" {
		t.Fatalf("gettl unauthenticated = %v", obj)
	}
}

func TestMalformedAndUnknown(t *testing.T) {
	r := newTestRouter(t)
	c := newTestClient()

	sendCmd(r, c, `not json`)
	wantStatus(t, c, "Invalid message")

	sendCmd(r, c, `{"type":"fly"}`)
	wantStatus(t, c, "Unknown command fly")
}

func TestGetAllEmptyIsArray(t *testing.T) {
	r := newTestRouter(t)
	c := newTestClient()

	sendCmd(r, c, `{"type":"getall"}`)
	obj := next(t, c)
	lists, ok := obj["tasklists"].([]any)
	if !ok || len(lists) != 0 {
		t.Fatalf("tasklists = %v; want empty array", obj["tasklists"])
	}
}
