package observ

import (
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics counts the work of one compilation in Prometheus form.
type Metrics struct {
	set *metrics.Set

	Files          *metrics.Counter
	Methods        *metrics.Counter
	Aborted        *metrics.Counter
	DeadStatements *metrics.Counter
	Labels         *metrics.Counter
	Bytes          *metrics.Counter
	CacheHits      *metrics.Counter
	CacheMisses    *metrics.Counter

	methodDuration *metrics.Histogram
}

// NewMetrics registers a fresh set of compiler metrics.
func NewMetrics() *Metrics {
	s := metrics.NewSet()
	return &Metrics{
		set:            s,
		Files:          s.NewCounter(`condflow_files_total`),
		Methods:        s.NewCounter(`condflow_methods_total`),
		Aborted:        s.NewCounter(`condflow_methods_aborted_total`),
		DeadStatements: s.NewCounter(`condflow_dead_statements_total`),
		Labels:         s.NewCounter(`condflow_labels_total`),
		Bytes:          s.NewCounter(`condflow_code_bytes_total`),
		CacheHits:      s.NewCounter(`condflow_cache_requests_total{result="hit"}`),
		CacheMisses:    s.NewCounter(`condflow_cache_requests_total{result="miss"}`),
		methodDuration: s.NewHistogram(`condflow_method_duration_seconds`),
	}
}

// ObserveMethod records how long one method took to compile.
func (m *Metrics) ObserveMethod(start time.Time) {
	if m == nil {
		return
	}
	m.methodDuration.UpdateDuration(start)
}

// WritePrometheus writes all metrics in exposition format.
func (m *Metrics) WritePrometheus(w io.Writer) {
	if m == nil {
		return
	}
	m.set.WritePrometheus(w)
}
