package metrics

import (
	"time"

	"github.com/stellium/stellium/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Admission metrics
	AdmissionDecisionsTotal = "app_admission_decisions_total"
	AdmissionWindowsActive  = "app_admission_windows_active"

	// Provider integration metrics
	ProviderExchangesTotal = "app_provider_exchanges_total"
	ProviderCallsTotal     = "app_provider_calls_total"

	// Auto-reply metrics
	AutoRepliesTotal = "app_auto_replies_total"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordAdmission records an admission decision for a class
func RecordAdmission(class string, allowed bool) {
	status := "allowed"
	if !allowed {
		status = "denied"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			AdmissionDecisionsTotal,
			1,
			map[string]string{
				"class":  class,
				"status": status,
			},
		)
	}
}

// SetAdmissionWindows sets the current number of live admission windows
func SetAdmissionWindows(count int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			AdmissionWindowsActive,
			float64(count),
			nil,
		)
	}
}

// RecordProviderExchange records the outcome of a token exchange
func RecordProviderExchange(provider string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ProviderExchangesTotal,
			1,
			map[string]string{
				"provider": provider,
				"status":   status,
			},
		)
	}
}

// RecordProviderCall records a resource call against a provider API
func RecordProviderCall(provider string, outcome string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ProviderCallsTotal,
			1,
			map[string]string{
				"provider": provider,
				"outcome":  outcome,
			},
		)
	}
}

// RecordAutoReply records a scheduled persona reply outcome
func RecordAutoReply(outcome string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			AutoRepliesTotal,
			1,
			map[string]string{
				"outcome": outcome,
			},
		)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}

// SetServerUptime records the server uptime in seconds
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerUptime,
			float64(seconds),
			nil,
		)
	}
}
