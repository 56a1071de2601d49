package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	t.Run("should normalise label values", func(t *testing.T) {
		before := testutil.ToFloat64(storeOpsTotal.WithLabelValues("set", "error"))
		IncStoreOp(" SET ", "Error")
		if got := testutil.ToFloat64(storeOpsTotal.WithLabelValues("set", "error")); got != before+1 {
			t.Fatalf("store_operations_total{set,error} = %v, want %v", got, before+1)
		}
	})

	t.Run("should count report extractions by result", func(t *testing.T) {
		before := testutil.ToFloat64(reportExtractionsTotal.WithLabelValues("malformed"))
		IncReportExtraction("malformed")
		IncReportExtraction("malformed")
		if got := testutil.ToFloat64(reportExtractionsTotal.WithLabelValues("malformed")); got != before+2 {
			t.Fatalf("report_extractions_total{malformed} = %v, want %v", got, before+2)
		}
	})
}

func TestGatherer(t *testing.T) {
	t.Run("should expose build info after registration", func(t *testing.T) {
		MustRegister()
		MustRegister()
		SetBuildInfo("test")

		families, err := Gatherer().Gather()
		if err != nil {
			t.Fatalf("gather: %v", err)
		}
		names := map[string]bool{}
		for _, f := range families {
			names[f.GetName()] = true
		}
		for _, want := range []string{"overunder_build_info", "go_goroutines"} {
			if !names[want] {
				t.Errorf("missing metric family %s", want)
			}
		}
	})
}
