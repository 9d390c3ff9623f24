package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/HannahMarsh/onionnet/pkg/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	PROCESSING_TIME    = "onionProcessingTime"
	ONION_COUNT        = "onionCounter"
	ONION_SIZE         = "onionSizeBytes"
	MESSAGES_SENT      = "messagesSent"
	MESSAGES_DELIVERED = "messagesDelivered"
)

var collectors = map[string]prometheus.Collector{
	PROCESSING_TIME: prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    PROCESSING_TIME,
		Help:    "Time a relay spends peeling one onion, in seconds",
		Buckets: prometheus.DefBuckets,
	}),
	ONION_COUNT: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: ONION_COUNT,
			Help: "Number of onions handled by a relay, labeled by outcome",
		},
		[]string{"outcome"},
	),
	ONION_SIZE: prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ONION_SIZE,
		Help:    "Size of received onions in bytes",
		Buckets: prometheus.ExponentialBuckets(256, 2, 10),
	}),
	MESSAGES_SENT: prometheus.NewCounter(prometheus.CounterOpts{
		Name: MESSAGES_SENT,
		Help: "Number of messages a user has sent into the network",
	}),
	MESSAGES_DELIVERED: prometheus.NewCounter(prometheus.CounterOpts{
		Name: MESSAGES_DELIVERED,
		Help: "Number of messages delivered to a user",
	}),
}

// RelayCollectors are the collectors a relay exposes.
var RelayCollectors = []string{PROCESSING_TIME, ONION_COUNT, ONION_SIZE}

// UserCollectors are the collectors a user exposes.
var UserCollectors = []string{MESSAGES_SENT, MESSAGES_DELIVERED}

func Observe(id string, value float64) {
	if collector, ok := collectors[id].(prometheus.Observer); ok {
		collector.Observe(value)
	} else {
		slog.Error("failed to find observer", "id", id)
	}
}

func Inc(id string, labels ...any) {
	if len(labels) == 0 {
		if collector, ok := collectors[id].(prometheus.Counter); ok {
			collector.Inc()
		} else {
			slog.Error("failed to find counter", "id", id)
		}
		return
	}
	if collector, ok := collectors[id].(*prometheus.CounterVec); ok {
		collector.WithLabelValues(utils.Map(labels, func(label any) string {
			return fmt.Sprintf("%v", label)
		})...).Inc()
	} else {
		slog.Error("failed to find counterVec", "id", id)
	}
}

func Set(id string, value float64, labels ...string) {
	if len(labels) == 0 {
		if collector, ok := collectors[id].(prometheus.Gauge); ok {
			collector.Set(value)
		} else {
			slog.Error("failed to find gauge", "id", id)
		}
		return
	}
	if collector, ok := collectors[id].(*prometheus.GaugeVec); ok {
		collector.WithLabelValues(labels...).Set(value)
	} else {
		slog.Error("failed to find gaugeVec", "id", id)
	}
}

// Register adds the named collectors to the default registry. Registering a
// collector twice is not an error, so several nodes can share one process.
func Register(collectorIds ...string) error {
	for _, id := range collectorIds {
		collector, ok := collectors[id]
		if !ok {
			return errors.Errorf("no collector with id %q", id)
		}
		if err := prometheus.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return errors.Wrapf(err, "failed to register %s", id)
			}
		}
	}
	return nil
}

// ServeMetrics exposes /metrics on prometheusPort. A port of 0 only registers
// the collectors.
func ServeMetrics(prometheusPort int, collectorIds ...string) (shutdown func()) {
	if err := Register(collectorIds...); err != nil {
		slog.Error("failed to register collectors", "err", err)
	}
	if prometheusPort == 0 {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", prometheusPort),
		Handler: mux,
	}

	go func(server *http.Server) {
		slog.Info("starting prometheus server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start prometheus server", "err", err)
		}
	}(server)

	return func() {
		slog.Info("shutting down prometheus server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("prometheus server forced to shutdown", "err", err)
		} else {
			slog.Info("prometheus server gracefully stopped")
		}
	}
}
