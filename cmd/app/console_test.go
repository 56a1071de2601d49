package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/application"
	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	aiAdapters "github.com/Aliiiqbp/OverUnder/internal/infra/adapters/ai"
	"github.com/Aliiiqbp/OverUnder/internal/infra/store"
	"github.com/Aliiiqbp/OverUnder/internal/usecase"
)

func newTestApp() *application.App {
	log := zerolog.Nop()
	kv := store.NewMemoryStore()
	sessions := usecase.NewSessionUseCase(kv, &log)
	commit := usecase.NewCommitter(sessions, nil, &log)
	chat := usecase.NewConversationUseCase(commit, usecase.NewReportExtractor(&log), aiAdapters.NewNoopAIAdapter(0, &log), 0, &log)
	return application.NewApp(usecase.NewUserUseCase(kv, &log, false), sessions, chat, commit, &log)
}

func TestConsole(t *testing.T) {
	t.Run("should log in, analyse and list", func(t *testing.T) {
		app := newTestApp()
		in := strings.NewReader("Ada\nnot-an-email\nAda\nada@example.com\nIs AAPL overvalued?\n/list\n/quit\n")
		var out bytes.Buffer
		c := newConsole(app, in, &out)

		if err := c.login(context.Background()); err != nil {
			t.Fatalf("login: %v", err)
		}
		if err := c.run(context.Background()); err != nil {
			t.Fatalf("run: %v", err)
		}

		got := out.String()
		for _, want := range []string{"does not look valid", "Welcome, Ada.", "+-- AAPL", "value [", "Is AAPL overvalued?", " 1. "} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("should delete the only analysis and start a fresh one", func(t *testing.T) {
		app := newTestApp()
		if _, err := app.Login(context.Background(), "Ada", "ada@example.com"); err != nil {
			t.Fatal(err)
		}
		first := app.Snapshot().ActiveID
		var out bytes.Buffer
		c := newConsole(app, strings.NewReader("/delete\n/switch 9\n/bogus\n"), &out)
		if err := c.run(context.Background()); err != nil {
			t.Fatal(err)
		}
		snap := app.Snapshot()
		if len(snap.Sessions) != 1 || snap.ActiveID == first || snap.ActiveID == "" {
			t.Fatalf("expected one fresh session, got %d active=%q", len(snap.Sessions), snap.ActiveID)
		}
		if !strings.Contains(out.String(), "no analysis number 9") || !strings.Contains(out.String(), "unknown command /bogus") {
			t.Fatalf("missing error output:\n%s", out.String())
		}
	})
}

func TestMetricBars(t *testing.T) {
	cases := []struct {
		ratio       float64
		value, bench int
		ok          bool
	}{
		{0.5, 10, 20, true},
		{1, 20, 20, true},
		{2, 20, 10, true},
		{-1.2, 0, 0, false},
		{0, 0, 0, false},
	}
	for _, c := range cases {
		v, b, ok := metricBars(c.ratio)
		if v != c.value || b != c.bench || ok != c.ok {
			t.Errorf("metricBars(%v) = %d,%d,%v want %d,%d,%v", c.ratio, v, b, ok, c.value, c.bench, c.ok)
		}
	}
}

func TestRenderMetric(t *testing.T) {
	var out bytes.Buffer
	renderMetric(&out, model.StockMetric{Label: "P/E", Value: "N/A", Benchmark: "20x", Signal: "weird"})
	got := out.String()
	if strings.Contains(got, "value [") {
		t.Fatalf("unparsable values should not get a bar:\n%s", got)
	}
	if !strings.Contains(got, "(neutral)") {
		t.Fatalf("unknown signals render as neutral:\n%s", got)
	}
}

func TestIgnoredMessage(t *testing.T) {
	cases := map[usecase.IgnoreReason]string{
		usecase.IgnoredBusy:            "still waiting for a reply",
		usecase.IgnoredNoActiveSession: "no analysis is open",
		usecase.IgnoredNotLoggedIn:     "log in first",
		usecase.IgnoredEmptyInput:      "nothing to send",
	}
	for reason, want := range cases {
		if got := ignoredMessage(reason); !strings.Contains(got, want) {
			t.Errorf("ignoredMessage(%s) = %q, want it to mention %q", reason, got, want)
		}
	}
}
