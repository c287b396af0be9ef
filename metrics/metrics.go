// Package metrics provides a Prometheus implementation of goseal.Observer.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reoring/goseal"
)

// Collector holds the Prometheus metrics for the serialization engine.
type Collector struct {
	// Document metrics
	DocumentsWritten *prometheus.CounterVec
	DocumentsRead    *prometheus.CounterVec
	BytesWritten     *prometheus.CounterVec
	BytesRead        *prometheus.CounterVec
	WriteDuration    *prometheus.HistogramVec
	ReadDuration     *prometheus.HistogramVec

	// Tolerance metrics
	UnregisteredTypes *prometheus.CounterVec
	UnknownFields     *prometheus.CounterVec
}

var _ goseal.Observer = (*Collector)(nil)

var durationBuckets = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1}

// New creates a collector registered on the default Prometheus registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		DocumentsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goseal",
				Name:      "documents_written_total",
				Help:      "Total number of documents written",
			},
			[]string{"format"},
		),
		DocumentsRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goseal",
				Name:      "documents_read_total",
				Help:      "Total number of documents read",
			},
			[]string{"format", "result"},
		),
		BytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goseal",
				Name:      "bytes_written_total",
				Help:      "Total bytes of rendered documents",
			},
			[]string{"format"},
		),
		BytesRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goseal",
				Name:      "bytes_read_total",
				Help:      "Total bytes consumed while reading documents",
			},
			[]string{"format"},
		),
		WriteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goseal",
				Name:      "write_duration_seconds",
				Help:      "Document write duration in seconds",
				Buckets:   durationBuckets,
			},
			[]string{"format"},
		),
		ReadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goseal",
				Name:      "read_duration_seconds",
				Help:      "Document read duration in seconds",
				Buckets:   durationBuckets,
			},
			[]string{"format"},
		),
		UnregisteredTypes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goseal",
				Name:      "unregistered_types_total",
				Help:      "Type hints seen without a registered factory",
			},
			[]string{"type", "op"},
		),
		UnknownFields: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goseal",
				Name:      "unknown_fields_total",
				Help:      "Fields skipped because the reading factory did not consume them",
			},
			[]string{"owner", "field"},
		),
	}
}

// DocumentWritten records one rendered document.
func (c *Collector) DocumentWritten(f goseal.Format, bytes int, d time.Duration) {
	format := f.String()
	c.DocumentsWritten.WithLabelValues(format).Inc()
	c.BytesWritten.WithLabelValues(format).Add(float64(bytes))
	c.WriteDuration.WithLabelValues(format).Observe(d.Seconds())
}

// DocumentRead records one read attempt, successful or not.
func (c *Collector) DocumentRead(f goseal.Format, bytes int, d time.Duration, err error) {
	format := f.String()
	c.DocumentsRead.WithLabelValues(format, readResult(err)).Inc()
	c.BytesRead.WithLabelValues(format).Add(float64(bytes))
	c.ReadDuration.WithLabelValues(format).Observe(d.Seconds())
}

// UnregisteredType records a type hint without a factory.
func (c *Collector) UnregisteredType(name goseal.TypeName, op string) {
	c.UnregisteredTypes.WithLabelValues(name.Value(), op).Inc()
}

// UnknownField records a field skipped while reading owner.
func (c *Collector) UnknownField(owner goseal.TypeName, field string) {
	c.UnknownFields.WithLabelValues(owner.Value(), field).Inc()
}

// readResult buckets an error into a low-cardinality label.
func readResult(err error) string {
	if err == nil {
		return "ok"
	}
	var pe *goseal.ProtocolError
	if errors.As(err, &pe) {
		return pe.Code
	}
	if goseal.IsValidation(err) {
		return "validation"
	}
	return "error"
}
