package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Recommendation string

const (
	RecommendationStrongBuy  Recommendation = "Strong Buy"
	RecommendationBuy        Recommendation = "Buy"
	RecommendationHold       Recommendation = "Hold"
	RecommendationSell       Recommendation = "Sell"
	RecommendationStrongSell Recommendation = "Strong Sell"
)

type ValuationStatus string

const (
	ValuationUndervalued  ValuationStatus = "Undervalued"
	ValuationOvervalued   ValuationStatus = "Overvalued"
	ValuationFairlyValued ValuationStatus = "Fairly Valued"
)

// Signal is the verdict attached to one metric comparison.
type Signal string

const (
	SignalUndervalued Signal = "undervalued"
	SignalOvervalued  Signal = "overvalued"
	SignalNeutral     Signal = "neutral"
)

// Known reports whether s is one of the three documented signals.
// Unknown values are kept as-is; renderers treat them as neutral.
func (s Signal) Known() bool {
	switch s {
	case SignalUndervalued, SignalOvervalued, SignalNeutral:
		return true
	}
	return false
}

// StockReportData is the structured valuation payload the model embeds in its reply.
// It is immutable once attached to a message.
type StockReportData struct {
	Symbol          string          `json:"symbol"`
	CompanyName     string          `json:"companyName"`
	CurrentPrice    FlexString      `json:"currentPrice"`
	Recommendation  Recommendation  `json:"recommendation"`
	ValuationStatus ValuationStatus `json:"valuationStatus"`
	ConfidenceScore Score           `json:"confidenceScore"`
	Summary         string          `json:"summary"`
	Metrics         []StockMetric   `json:"metrics"`
	RiskFactors     FlexList        `json:"riskFactors"`
}

// StockMetric compares one financial metric against a benchmark.
type StockMetric struct {
	Label       string     `json:"label"`
	Value       FlexString `json:"value"`
	Benchmark   FlexString `json:"benchmark"`
	Signal      Signal     `json:"signal"`
	Explanation string     `json:"explanation"`
}

// Ratio returns value/benchmark when both sides parse as numbers and the
// benchmark is non-zero. ok=false means the metric should be shown as text only.
func (m StockMetric) Ratio() (ratio float64, ok bool) {
	v, okV := ParseMetricValue(string(m.Value))
	b, okB := ParseMetricValue(string(m.Benchmark))
	if !okV || !okB || b == 0 {
		return 0, false
	}
	return v / b, true
}

// FlexString is a free-form value the model may emit either as a JSON string
// or as a bare number. It is always stored as a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: expected string or number, got %s", truncate(string(b), 32))
	}
	*f = FlexString(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// FlexList is a list of strings the model may also emit as one bare string.
// A blank string decodes to an empty list.
type FlexList []string

func (l *FlexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s == "" {
			*l = nil
		} else {
			*l = FlexList{s}
		}
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("string list: expected string or array of strings, got %s", truncate(string(b), 32))
	}
	*l = items
	return nil
}

// Score is the 0-100 confidence score. Fractional numbers are rounded and
// numeric strings are accepted; range is not enforced.
type Score int

func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = 0
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("confidence score: not a number: %s", truncate(string(b), 32))
	}
	*s = Score(math.Round(n))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
