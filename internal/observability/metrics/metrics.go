// Package metrics registers the Prometheus counters the bot exposes on
// /metrics.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "rentbot_"

var (
	registerOnce sync.Once

	commandsTotal    *prometheus.CounterVec
	webhookLatency   prometheus.Histogram
	chargeFetchTotal *prometheus.CounterVec
	remindersTotal   prometheus.Counter
)

// Init registers the bot's metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		commandsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Total chat commands by kind and outcome",
			},
			[]string{"kind", "status"},
		)
		webhookLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "webhook_latency_seconds",
				Help:    "Webhook handling latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		chargeFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "charge_fetch_total",
				Help: "Total charge fetch attempts by result",
			},
			[]string{"result"},
		)
		remindersTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "reminders_total",
				Help: "Total monthly reminders posted",
			},
		)

		prometheus.MustRegister(
			commandsTotal,
			webhookLatency,
			chargeFetchTotal,
			remindersTotal,
		)
	})
}

// ObserveCommand counts one dispatched chat command.
func ObserveCommand(kind, status string) {
	if commandsTotal == nil {
		return
	}
	commandsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveWebhookLatency records how long a webhook request took.
func ObserveWebhookLatency(d time.Duration) {
	if webhookLatency == nil {
		return
	}
	webhookLatency.Observe(d.Seconds())
}

// ObserveChargeFetch counts one charge fetch attempt.
func ObserveChargeFetch(success bool) {
	if chargeFetchTotal == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	chargeFetchTotal.WithLabelValues(result).Inc()
}

// ObserveReminder counts one posted monthly reminder.
func ObserveReminder() {
	if remindersTotal == nil {
		return
	}
	remindersTotal.Inc()
}
