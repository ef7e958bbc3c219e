package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"GoldSentinel/internal/cooldown"
	"GoldSentinel/internal/model"
	"GoldSentinel/internal/risk"
)

func TestTelegramNotifier_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	if err := tn.Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["chat_id"] != "42" || got["text"] != "<b>hi</b>" || got["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	tn.Backoff = time.Millisecond

	if err := tn.SendWithRetry(context.Background(), "x", 3); err != nil {
		t.Fatalf("expected success on the third attempt, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("expected 3 calls, got %d", n)
	}

	atomic.StoreInt32(&calls, -10)
	if err := tn.SendWithRetry(context.Background(), "x", 1); err == nil {
		t.Error("expected exhausted retries to fail")
	}
	if n := atomic.LoadInt32(&calls); n != -8 {
		t.Errorf("expected 2 attempts, got %d", n+10)
	}
}

func TestTelegramNotifier_PollDispatchesCommands(t *testing.T) {
	var replies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if r.URL.Query().Get("offset") != "7" {
				t.Errorf("unexpected offset %s", r.URL.Query().Get("offset"))
			}
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":7,"message":{"text":" /status "}},
				{"update_id":8},
				{"update_id":9,"message":{"text":"/nothing"}}
			]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]string
			json.NewDecoder(r.Body).Decode(&p)
			replies = append(replies, p["text"])
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL

	handler := func(_ context.Context, cmd string) string {
		if cmd == "/status" {
			return "all good"
		}
		return ""
	}
	next, err := tn.poll(context.Background(), srv.Client(), 7, handler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != 10 {
		t.Errorf("expected next offset 10, got %d", next)
	}
	if len(replies) != 1 || replies[0] != "all good" {
		t.Errorf("unexpected replies %v", replies)
	}
}

func TestFormatSignal(t *testing.T) {
	sig := &model.Signal{
		Symbol: "XAU/USD", Direction: model.Buy,
		EntryPrice: 2000, StopLoss: 1995, TakeProfit: 2010,
		Confidence: 3, Reason: "trend UP | support 1995.00",
		Timestamp: time.Date(2026, 6, 1, 9, 15, 0, 0, time.UTC),
	}
	msg := FormatSignal(sig, risk.DefaultParams(), &model.Sentiment{Label: model.SentimentBullish, COTIndex: 72.5})
	for _, want := range []string{
		"XAU/USD SIGNAL", "STRONG", "🟢 BUY", "2000.00", "1995.00", "2010.00",
		"Lot: <b>0.02</b>", "R/R Ratio: <b>1:2.0</b>", "support 1995.00", "72.5%", "2026-06-01 09:15 UTC",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	sig.Confidence = 1
	sig.Direction = model.Sell
	msg = FormatSignal(sig, risk.DefaultParams(), nil)
	if !strings.Contains(msg, "MEDIUM") || !strings.Contains(msg, "🔴 SELL") || strings.Contains(msg, "COT") {
		t.Errorf("unexpected medium sell message:\n%s", msg)
	}
}

func TestFormatResolutionAndStatus(t *testing.T) {
	res := cooldown.Resolution{
		Resolved: true, Kind: model.OutcomeLoss, Exit: 1995, PnL: -5,
		Trade: model.ActiveTrade{Symbol: "XAU/USD", Direction: model.Buy, Entry: 2000},
	}
	msg := FormatResolution(res, 4)
	if !strings.Contains(msg, "STOP LOSS") || !strings.Contains(msg, "-5.00") || !strings.Contains(msg, "4h") {
		t.Errorf("unexpected resolution message:\n%s", msg)
	}

	st := model.CooldownState{ActiveTrade: &res.Trade}
	status := FormatStatus(st, true, 42)
	if !strings.Contains(status, "BUY XAU/USD") || !strings.Contains(status, "42 min") {
		t.Errorf("unexpected status:\n%s", status)
	}
	if !strings.Contains(FormatStatus(model.CooldownState{}, false, 0), "none") {
		t.Error("expected no open trade")
	}
}

func TestFormatStats(t *testing.T) {
	if !strings.Contains(FormatStats(model.Stats{}), "No closed trades") {
		t.Error("expected empty stats message")
	}
	msg := FormatStats(model.Stats{Total: 4, Wins: 2, Losses: 1, TimedCloses: 1, WinRate: 50, TotalPnL: 33})
	if !strings.Contains(msg, "50.0%") || !strings.Contains(msg, "+33.00") {
		t.Errorf("unexpected stats message:\n%s", msg)
	}
}
