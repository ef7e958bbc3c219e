package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"GoldSentinel/internal/model"
)

func rowsFromNets(nets ...int64) []cotRow {
	rows := make([]cotRow, len(nets))
	for i, n := range nets {
		rows[i] = cotRow{date: fmt.Sprintf("2026-01-%02dT00:00:00.000", i+1), long: 1000 + n, short: 1000}
	}
	return rows
}

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		nets      []int64
		lookback  int
		wantLabel string
		wantScore int
		wantIndex float64
	}{
		{"bullish", []int64{0, 300, 100, 120}, 52, model.SentimentBullish, 1, 40},
		{"bullish at the top reverses", []int64{50, 150, 250}, 52, model.SentimentReversalBearish, 1, 100},
		{"bearish at the bottom reverses", []int64{250, 150, 50}, 52, model.SentimentReversalBullish, -1, 0},
		{"small change is neutral", []int64{100, 200, 150, 155}, 52, model.SentimentNeutral, 0, 55},
		{"flat window has zero index", []int64{100, 100}, 52, model.SentimentNeutral, 0, 0},
		{"lookback limits the window", []int64{-1000, 100, 200}, 2, model.SentimentReversalBearish, 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := score(rowsFromNets(tt.nets...), tt.lookback, defaultThreshold)
			if s.Label != tt.wantLabel {
				t.Errorf("expected label %s, got %s", tt.wantLabel, s.Label)
			}
			if s.Score != tt.wantScore {
				t.Errorf("expected score %d, got %d", tt.wantScore, s.Score)
			}
			if s.COTIndex != tt.wantIndex {
				t.Errorf("expected index %.1f, got %.1f", tt.wantIndex, s.COTIndex)
			}
		})
	}
}

func TestScore_ChangeAndPositions(t *testing.T) {
	s := score(rowsFromNets(50, 150, 250), 52, defaultThreshold)
	if s.NetChangePct != 66.7 {
		t.Errorf("expected net change 66.7%%, got %.1f", s.NetChangePct)
	}
	if s.Long != 1250 || s.Short != 1000 {
		t.Errorf("expected latest positions 1250/1000, got %d/%d", s.Long, s.Short)
	}
	if s.Details == "" {
		t.Error("expected details to be populated")
	}
}

func cotServer(t *testing.T, reports []cotReport, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		q := r.URL.Query()
		if q.Get("$limit") != "100" || q.Get("$where") == "" {
			t.Errorf("unexpected query %v", q)
		}
		json.NewEncoder(w).Encode(reports)
	}))
}

func TestCOTAnalyzer_AnalyzeAndCache(t *testing.T) {
	// served newest first, with one malformed row
	reports := []cotReport{
		{ReportDate: "2026-01-20T00:00:00.000", Long: "1120", Short: "1000"},
		{ReportDate: "2026-01-13T00:00:00.000", Long: "1100", Short: "1000"},
		{ReportDate: "2026-01-10T00:00:00.000", Long: "n/a", Short: "1000"},
		{ReportDate: "2026-01-06T00:00:00.000", Long: "1300", Short: "1000"},
		{ReportDate: "2025-12-30T00:00:00.000", Long: "1000", Short: "1000"},
	}
	var hits int32
	srv := cotServer(t, reports, &hits)
	defer srv.Close()

	now := time.Date(2026, 1, 21, 12, 0, 0, 0, time.UTC)
	a := NewCOTAnalyzer(srv.URL)
	a.now = func() time.Time { return now }

	s, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Label != model.SentimentBullish || s.COTIndex != 40 {
		t.Errorf("unexpected sentiment %+v", s)
	}

	now = now.Add(11 * time.Hour)
	if _, err := a.Analyze(context.Background()); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected cached result within 12h, got %d requests", hits)
	}

	now = now.Add(time.Hour)
	if _, err := a.Analyze(context.Background()); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("expected a refetch after 12h, got %d requests", hits)
	}
}

func TestCOTAnalyzer_TooFewReports(t *testing.T) {
	var hits int32
	srv := cotServer(t, []cotReport{{ReportDate: "2026-01-20T00:00:00.000", Long: "1", Short: "2"}}, &hits)
	defer srv.Close()

	a := NewCOTAnalyzer(srv.URL)
	s, err := a.Analyze(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Label != model.SentimentNeutral || s.Bias() != 0 {
		t.Errorf("expected neutral, got %+v", s)
	}
	a.Analyze(context.Background())
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("neutral fallback must not be cached, got %d requests", hits)
	}
}

func TestCOTAnalyzer_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewCOTAnalyzer(srv.URL).Analyze(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
}

func TestStatic(t *testing.T) {
	s, err := Static{}.Analyze(context.Background())
	if err != nil || s != nil {
		t.Errorf("expected nil sentiment, got %+v, %v", s, err)
	}
	src := &model.Sentiment{Label: model.SentimentBearish}
	got, _ := Static{Sentiment: src}.Analyze(context.Background())
	got.Label = model.SentimentBullish
	if src.Label != model.SentimentBearish {
		t.Error("Static must return a copy")
	}
}
