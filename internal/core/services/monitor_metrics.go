package services

import "github.com/prometheus/client_golang/prometheus"

type monitorMetrics struct {
	eventsHandled      *prometheus.CounterVec
	handlerErrors      *prometheus.CounterVec
	subscriptionErrors *prometheus.CounterVec
}

func newMonitorMetrics(registry prometheus.Registerer) *monitorMetrics {
	m := &monitorMetrics{
		eventsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_monitor_events_handled_total",
			Help: "Ledger events handled successfully, by event kind",
		}, []string{"kind"}),
		handlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_monitor_handler_errors_total",
			Help: "Ledger event handler failures, by event kind",
		}, []string{"kind"}),
		subscriptionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_monitor_subscription_errors_total",
			Help: "Ledger event subscription failures, by event kind",
		}, []string{"kind"}),
	}
	if registry != nil {
		registry.MustRegister(m.eventsHandled, m.handlerErrors, m.subscriptionErrors)
	}
	return m
}
