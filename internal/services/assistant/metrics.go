package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "geniepay_assistant_commands_total",
	Help: "Количество исполненных команд ассистента по действиям.",
}, []string{"action"})
