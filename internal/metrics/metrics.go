package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexanderramin/canteiro/internal/service"
)

// Metrics holds the collectors fed by service use cases.
type Metrics struct {
	UseCaseTotal    *prometheus.CounterVec
	UseCaseDuration *prometheus.HistogramVec
	RowsWritten     *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UseCaseTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canteiro_use_case_total",
				Help: "Service use cases executed, by outcome",
			},
			[]string{"use_case", "outcome"}, // outcome: success, error
		),
		UseCaseDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "canteiro_use_case_duration_seconds",
				Help:    "Service use case duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"use_case"},
		),
		RowsWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canteiro_rows_written_total",
				Help: "Rows inserted by bulk and single writes, by entity",
			},
			[]string{"entity"},
		),
	}
}

type useCaseObserver struct {
	m *Metrics
}

// NewUseCaseObserver records every service use case into m.
func NewUseCaseObserver(m *Metrics) service.UseCaseObserver {
	return &useCaseObserver{m: m}
}

func (o *useCaseObserver) ObserveUseCase(_ context.Context, event service.UseCaseEvent) {
	outcome := "success"
	if !event.Success {
		outcome = "error"
	}
	o.m.UseCaseTotal.WithLabelValues(event.Name, outcome).Inc()
	o.m.UseCaseDuration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())

	entity, _ := event.Fields[service.FieldEntity].(string)
	rows, _ := event.Fields[service.FieldRowsWritten].(int)
	if entity != "" && rows > 0 {
		o.m.RowsWritten.WithLabelValues(entity).Add(float64(rows))
	}
}

// WriteTextfile dumps the registry to path in the node_exporter textfile
// format. An empty path is a no-op.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
