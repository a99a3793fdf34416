package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var commandsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ws_commands_total",
		Help: "Commands handled over the socket, by command and outcome",
	},
	[]string{"command", "outcome"},
)

func init() {
	prometheus.MustRegister(commandsTotal)
}
