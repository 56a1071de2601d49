// File: internal/usecase/report_uc.go
package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/infra/metrics"
)

// ReportFenceLabel is the reserved info string of the report code fence.
// Plain ```json blocks are ordinary content and are left alone.
const ReportFenceLabel = "json_report"

// ReportOnlyFallback replaces the display text when the reply consisted of
// nothing but the report block.
const ReportOnlyFallback = "Here is the valuation report you requested."

// Only the first block is considered; replies with several report blocks
// keep the later ones as text. The closing fence normally sits on its own
// line, so backticks inside JSON strings do not end the payload; the inline
// form ("```json_report {...}```") is tried when that reading does not parse.
var (
	reportFence       = regexp.MustCompile("(?ms)```" + ReportFenceLabel + "[ \t]*\r?\n(.*?)\r?\n[ \t]*```[ \t\r]*$")
	inlineReportFence = regexp.MustCompile("(?s)```" + ReportFenceLabel + "[ \t]*\r?\n?(.*?)```")
)

// Extraction is the outcome of running the extractor over one reply.
type Extraction struct {
	CleanText string
	Report    *model.StockReportData
	// Malformed is set when a report block was found but could not be parsed.
	Malformed bool
}

// ReportExtractor turns raw model text into display text plus an optional report.
type ReportExtractor struct {
	log *zerolog.Logger
}

func NewReportExtractor(logger *zerolog.Logger) *ReportExtractor {
	return &ReportExtractor{log: logger}
}

// Extract never fails: malformed payloads degrade to the untouched text.
func (e *ReportExtractor) Extract(text string) Extraction {
	var (
		found    bool
		firstErr error
		payload  string
	)
	for _, fence := range []*regexp.Regexp{reportFence, inlineReportFence} {
		loc := fence.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		found = true
		candidate := text[loc[2]:loc[3]]
		report, err := ParseReport(candidate)
		if err != nil {
			if firstErr == nil {
				firstErr, payload = err, candidate
			}
			continue
		}
		return e.split(text, loc, report)
	}
	if !found {
		metrics.IncReportExtraction("plain")
		return Extraction{CleanText: text}
	}
	metrics.IncReportExtraction("malformed")
	e.log.Warn().Err(firstErr).Str("payload", preview(payload, 200)).Msg("report block could not be parsed; showing raw reply")
	return Extraction{CleanText: text, Malformed: true}
}

func (e *ReportExtractor) split(text string, loc []int, report *model.StockReportData) Extraction {
	clean := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	if clean == "" {
		clean = ReportOnlyFallback
	}
	metrics.IncReportExtraction("report")
	return Extraction{CleanText: clean, Report: report}
}

// ParseReport decodes a report payload. Only the structure is checked: the
// payload must be a JSON object whose fields have compatible types.
func ParseReport(payload string) (*model.StockReportData, error) {
	trimmed := bytes.TrimSpace([]byte(payload))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: payload is not a JSON object", domain.ErrMalformedReport)
	}
	var report model.StockReportData
	if err := json.Unmarshal(trimmed, &report); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReport, err)
	}
	return &report, nil
}

func preview(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
