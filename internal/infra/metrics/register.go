package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// registry holds the OverUnder collectors; each metrics file adds its own
// from init. It is kept apart from prometheus.DefaultRegisterer.
var (
	registry    = prometheus.NewRegistry()
	runtimeOnce sync.Once
)

func register(cs ...prometheus.Collector) {
	registry.MustRegister(cs...)
}

// MustRegister adds the Go runtime and process collectors. Calling it more
// than once is harmless.
func MustRegister() {
	runtimeOnce.Do(func() {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// Gatherer is what the admin /metrics route serves.
func Gatherer() prometheus.Gatherer { return registry }

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
