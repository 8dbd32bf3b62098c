package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	handlesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wxsbridge",
			Subsystem: "handles",
			Name:      "created_total",
			Help:      "Call-path handles constructed.",
		},
		[]string{"kind", "root"},
	)
	wireEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wxsbridge",
			Subsystem: "wire",
			Name:      "encoded_total",
			Help:      "Wire strings produced.",
		},
		[]string{"kind", "form"},
	)
	serializationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wxsbridge",
			Subsystem: "wire",
			Name:      "serialization_failures_total",
			Help:      "Encode attempts rejected because a value had no wire form.",
		},
		[]string{"kind"},
	)
	missingModules = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wxsbridge",
			Subsystem: "registrar",
			Name:      "missing_modules_total",
			Help:      "Declared module names skipped for lack of a module id.",
		},
		[]string{"kind"},
	)
)

// RegisterMetrics registers the bridge collectors with the default registry.
// Nothing here serves them; the embedding host is expected to expose
// promhttp.Handler() on its own server.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(handlesCreated, wireEncoded, serializationFailures, missingModules)
	})
}

func RecordHandleCreated(kind string, root bool) {
	RegisterMetrics()
	handlesCreated.WithLabelValues(kind, strconv.FormatBool(root)).Inc()
}

func RecordEncode(kind string, call bool) {
	RegisterMetrics()
	form := "reference"
	if call {
		form = "call"
	}
	wireEncoded.WithLabelValues(kind, form).Inc()
}

func RecordSerializationFailure(kind string) {
	RegisterMetrics()
	serializationFailures.WithLabelValues(kind).Inc()
}

func RecordMissingModule(kind string) {
	RegisterMetrics()
	missingModules.WithLabelValues(kind).Inc()
}
