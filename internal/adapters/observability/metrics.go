package observability

import (
	"fmt"
	"github.com/rs/zerolog/log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "immodash"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	ChatIntents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "chat_intents_total", Help: "Assistant replies by intent."},
		[]string{"intent"},
	)
	ClassifiedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "classified_messages_total", Help: "Publications by triage outcome."},
		[]string{"bucket"}, // bucket: agent_demand|private|discarded|duplicate
	)
	GeocodeSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "geocode_resolutions_total", Help: "Coordinates by resolution step."},
		[]string{"step"},
	)
	PipelineMoves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "pipeline_moves_total", Help: "Pipeline card moves by outcome."},
		[]string{"outcome"}, // outcome: committed|failed|rejected|noop
	)
	SnapshotRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "snapshot_refreshes_total", Help: "Snapshot reloads by result."},
		[]string{"result"}, // result: ok|error|stale
	)
)

// Serve exposes /metrics on its own listener. An empty addr disables it.
func Serve(reg *prometheus.Registry, addr string) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		ChatIntents, ClassifiedMessages, GeocodeSteps, PipelineMoves, SnapshotRefreshes,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveIntent(intent string) { ChatIntents.WithLabelValues(intent).Inc() }

// ObserveTriage records one classifier run.
func ObserveTriage(demands, private, discarded, duplicates int) {
	ClassifiedMessages.WithLabelValues("agent_demand").Add(float64(demands))
	ClassifiedMessages.WithLabelValues("private").Add(float64(private))
	ClassifiedMessages.WithLabelValues("discarded").Add(float64(discarded))
	ClassifiedMessages.WithLabelValues("duplicate").Add(float64(duplicates))
}

func ObserveGeocode(step string) { GeocodeSteps.WithLabelValues(step).Inc() }

func ObservePipelineMove(outcome string) { PipelineMoves.WithLabelValues(outcome).Inc() }

func ObserveSnapshot(result string) { SnapshotRefreshes.WithLabelValues(result).Inc() }

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
