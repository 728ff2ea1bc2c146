package observability

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inbound message metrics
	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novadesk_messages_received_total",
		Help: "Total number of inbound chat messages",
	}, []string{"channel"}) // channel: whatsapp, web, websocket

	replies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novadesk_replies_total",
		Help: "Total number of replies by the responder that produced them",
	}, []string{"path"}) // path: demo, remote, fallback

	// Provider metrics
	providerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novadesk_provider_requests_total",
		Help: "Total number of generative provider calls",
	}, []string{"status"})

	providerLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "novadesk_provider_latency_seconds",
		Help:    "Generative provider latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})

	// Gateway metrics
	gatewaySends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novadesk_gateway_sends_total",
		Help: "Total number of outbound WhatsApp sends",
	}, []string{"status"})

	statusCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novadesk_status_callbacks_total",
		Help: "Total number of delivery status callbacks",
	}, []string{"message_status"})

	// Tramite store metrics
	tramiteOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novadesk_tramite_operations_total",
		Help: "Total number of tramite store operations",
	}, []string{"op", "status"})

	// HTTP metrics
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novadesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "code"})

	httpLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "novadesk_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "novadesk_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"service"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "novadesk_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"service"})
)

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordMessageReceived counts one inbound message on channel
func RecordMessageReceived(channel string) {
	messagesReceived.WithLabelValues(channel).Inc()
}

// RecordReply counts one reply produced through path
func RecordReply(path string) {
	replies.WithLabelValues(path).Inc()
}

// ObserveProviderCall records the latency and outcome of one provider call
func ObserveProviderCall(d time.Duration, success bool) {
	providerLatency.Observe(d.Seconds())
	providerRequests.WithLabelValues(statusLabel(success)).Inc()
}

// RecordGatewaySend counts one outbound send
func RecordGatewaySend(success bool) {
	gatewaySends.WithLabelValues(statusLabel(success)).Inc()
}

// messageStatuses are the delivery states Twilio reports for a message
var messageStatuses = map[string]bool{
	"accepted": true, "scheduled": true, "canceled": true, "queued": true,
	"sending": true, "sent": true, "failed": true, "delivered": true,
	"undelivered": true, "receiving": true, "received": true, "read": true,
}

// RecordStatusCallback counts one delivery status callback
func RecordStatusCallback(messageStatus string) {
	statusCallbacks.WithLabelValues(messageStatusLabel(messageStatus)).Inc()
}

// messageStatusLabel keeps the label set bounded whatever the caller posts
func messageStatusLabel(messageStatus string) string {
	status := strings.ToLower(strings.TrimSpace(messageStatus))
	switch {
	case status == "":
		return "unknown"
	case messageStatuses[status]:
		return status
	default:
		return "other"
	}
}

// RecordTramiteOp counts one tramite store operation
func RecordTramiteOp(op string, success bool) {
	tramiteOps.WithLabelValues(op, statusLabel(success)).Inc()
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(method string, code int, d time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpLatency.Observe(d.Seconds())
}

// UpdateCircuitBreakerState updates circuit breaker state metric
func UpdateCircuitBreakerState(service string, state int) {
	circuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments circuit breaker failure counter
func IncrementCircuitBreakerFailures(service string) {
	circuitBreakerFailures.WithLabelValues(service).Inc()
}
