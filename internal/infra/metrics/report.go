package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(reportExtractionsTotal) }

var reportExtractionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "report_extractions_total",
		Help: "Report extraction results per model reply.",
	},
	[]string{"result"}, // report | plain | malformed
)

func IncReportExtraction(result string) {
	reportExtractionsTotal.WithLabelValues(norm(result)).Inc()
}
