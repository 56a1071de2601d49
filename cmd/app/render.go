package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/usecase"
)

const barWidth = 20

// Colors are dropped automatically when stdout is not a terminal.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8f98"))
	signalStyles = map[model.Signal]lipgloss.Style{
		model.SignalUndervalued: lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		model.SignalOvervalued:  lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")),
		model.SignalNeutral:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")),
	}
)

func renderSessionList(w io.Writer, snap usecase.Snapshot) {
	if len(snap.Sessions) == 0 {
		fmt.Fprintln(w, "No analyses yet.")
		return
	}
	for i, s := range snap.Sessions {
		marker := " "
		if s.ID == snap.ActiveID {
			marker = "*"
		}
		busy := ""
		if snap.Busy[s.ID] {
			busy = " (waiting for reply)"
		}
		ts := time.UnixMilli(s.LastModified).Format("2006-01-02 15:04")
		fmt.Fprintf(w, "%s %2d. %-34s %s  %d messages%s\n", marker, i+1, s.Title, ts, len(s.Messages), busy)
	}
}

func renderSession(w io.Writer, s *model.ChatSession) {
	fmt.Fprintln(w, "\n"+headerStyle.Render("=== "+s.Title+" ==="))
	for _, m := range s.Messages {
		renderMessage(w, m)
	}
}

func renderMessage(w io.Writer, m model.ChatMessage) {
	switch {
	case m.IsLoading:
		fmt.Fprintln(w, mutedStyle.Render("analyst> ..."))
		return
	case m.Role == model.RoleUser:
		fmt.Fprintf(w, "%s %s\n", userStyle.Render("you>"), m.Text)
		return
	}
	fmt.Fprintf(w, "analyst> %s\n", m.Text)
	if m.IsReport && m.ReportData != nil {
		renderReport(w, m.ReportData)
	}
	if len(m.GroundingURLs) > 0 {
		fmt.Fprintln(w, "Sources:")
		for i, c := range m.GroundingURLs {
			fmt.Fprintf(w, "  [%d] %s - %s\n", i+1, c.Title, c.URI)
		}
	}
}

func renderReport(w io.Writer, r *model.StockReportData) {
	fmt.Fprintln(w, "\n"+headerStyle.Render(fmt.Sprintf("+-- %s  %s", r.Symbol, r.CompanyName)))
	fmt.Fprintf(w, "| Price: %s   Recommendation: %s   Valuation: %s   Confidence: %d%%\n",
		orDash(string(r.CurrentPrice)), orDash(string(r.Recommendation)), orDash(string(r.ValuationStatus)), int(r.ConfidenceScore))
	if r.Summary != "" {
		fmt.Fprintf(w, "| %s\n", r.Summary)
	}
	if len(r.Metrics) > 0 {
		fmt.Fprintln(w, "| Metrics:")
		for _, m := range r.Metrics {
			renderMetric(w, m)
		}
	}
	if len(r.RiskFactors) > 0 {
		fmt.Fprintln(w, "| Risks:")
		for _, rf := range r.RiskFactors {
			fmt.Fprintf(w, "|   - %s\n", rf)
		}
	}
	fmt.Fprintln(w, "+--")
}

func renderMetric(w io.Writer, m model.StockMetric) {
	signal := m.Signal
	if !signal.Known() {
		signal = model.SignalNeutral
	}
	fmt.Fprintf(w, "|   %-18s %s vs %s  (%s)\n", m.Label, orDash(string(m.Value)), orDash(string(m.Benchmark)),
		signalStyles[signal].Render(string(signal)))
	if ratio, ok := m.Ratio(); ok {
		if v, b, ok := metricBars(ratio); ok {
			fmt.Fprintf(w, "|     value [%s]\n|     bench [%s]\n", bar(v), bar(b))
		}
	}
	if m.Explanation != "" {
		fmt.Fprintf(w, "|     %s\n", m.Explanation)
	}
}

// metricBars scales value and benchmark so the larger one fills the bar.
// Negative ratios (one side below zero) have no meaningful bar.
func metricBars(ratio float64) (value, bench int, ok bool) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0, 0, false
	}
	if ratio <= 1 {
		return int(math.Round(barWidth * ratio)), barWidth, true
	}
	return barWidth, int(math.Round(barWidth / ratio)), true
}

func bar(n int) string {
	return strings.Repeat("#", n) + strings.Repeat(" ", barWidth-n)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
