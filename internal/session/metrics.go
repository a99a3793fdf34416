package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Number of identities with a live session",
		},
	)
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Push notifications by delivery result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(activeSessions)
	prometheus.MustRegister(notificationsTotal)
}
