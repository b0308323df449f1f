package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsIngested counts ingestion events per transport adapter.
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agroboost_ingest_events_total",
		Help: "Telemetry events accepted for ingestion, by transport.",
	}, []string{"transport"})

	// ReadingsStored counts individual sensor readings appended.
	ReadingsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agroboost_readings_stored_total",
		Help: "Sensor readings appended to the reading store.",
	})

	// ThresholdAlerts counts threshold alert notifications, by check.
	ThresholdAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agroboost_threshold_alerts_total",
		Help: "Threshold alert notifications emitted, by check.",
	}, []string{"check"})

	// PumpCommands counts outbound pump command publish attempts.
	PumpCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agroboost_pump_commands_total",
		Help: "Pump command publish attempts, by command.",
	}, []string{"command"})
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
