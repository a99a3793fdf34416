package session

import (
	"encoding/json"

	"taskboard/internal/logger"
)

type infoMessage struct {
	Info string `json:"info"`
}

// Notifier pushes informational messages to live sessions. Delivery is
// best-effort and at-most-once: no session, full buffer or broken socket
// all end as a silent drop, never as a failure of the command that
// triggered the push.
type Notifier struct {
	registry *Registry
}

func NewNotifier(registry *Registry) *Notifier {
	return &Notifier{registry: registry}
}

// Notify delivers text to login if it currently has a session.
func (n *Notifier) Notify(login, text string) {
	c, ok := n.registry.Lookup(login)
	if !ok {
		notificationsTotal.WithLabelValues("skipped").Inc()
		return
	}
	n.push(c, login, text)
}

// NotifyAll delivers text to every registered identity.
func (n *Notifier) NotifyAll(text string) {
	for _, login := range n.registry.Logins() {
		if c, ok := n.registry.Lookup(login); ok {
			n.push(c, login, text)
		}
	}
}

func (n *Notifier) push(c Conn, login, text string) {
	msg, err := json.Marshal(infoMessage{Info: text})
	if err != nil {
		notificationsTotal.WithLabelValues("dropped").Inc()
		return
	}
	if !c.Push(msg) {
		logger.Warn("notification dropped", "login", login)
		notificationsTotal.WithLabelValues("dropped").Inc()
		return
	}
	notificationsTotal.WithLabelValues("delivered").Inc()
}
