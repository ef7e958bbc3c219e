package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"GoldSentinel/internal/model"
)

const (
	// DefaultCOTURL is the CFTC disaggregated futures-only dataset.
	DefaultCOTURL = "https://publicreporting.cftc.gov/resource/72hh-3qpy.json"

	goldMarketFilter = "market_and_exchange_names like '%GOLD - NEW YORK MERCANTILE EXCHANGE%'"

	defaultCacheTTL  = 12 * time.Hour
	defaultLookback  = 52
	defaultThreshold = 0.10
	fetchLimit       = 100

	overboughtIndex = 90
	oversoldIndex   = 10
)

// cotReport is one weekly row; Socrata serves numbers as strings.
type cotReport struct {
	ReportDate string `json:"report_date_as_yyyy_mm_dd"`
	Long       string `json:"m_money_positions_long_all"`
	Short      string `json:"m_money_positions_short_all"`
}

type cotRow struct {
	date  string
	long  int64
	short int64
}

func (r cotRow) net() int64 { return r.long - r.short }

// COTAnalyzer derives a managed-money bias for gold from CFTC Commitment of Traders reports.
// Results are cached for CacheTTL since reports are weekly.
type COTAnalyzer struct {
	URL       string
	Client    *http.Client
	CacheTTL  time.Duration
	Lookback  int
	Threshold float64

	now func() time.Time

	mu        sync.Mutex
	cached    *model.Sentiment
	fetchedAt time.Time
}

// NewCOTAnalyzer creates an analyzer against apiURL (DefaultCOTURL when empty).
func NewCOTAnalyzer(apiURL string) *COTAnalyzer {
	if apiURL == "" {
		apiURL = DefaultCOTURL
	}
	return &COTAnalyzer{
		URL:       apiURL,
		Client:    &http.Client{Timeout: 10 * time.Second},
		CacheTTL:  defaultCacheTTL,
		Lookback:  defaultLookback,
		Threshold: defaultThreshold,
		now:       time.Now,
	}
}

// Analyze returns the cached sentiment when fresh, otherwise fetches and scores the latest reports.
// Fewer than two reports yields a neutral, uncached result.
func (a *COTAnalyzer) Analyze(ctx context.Context) (*model.Sentiment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if a.cached != nil && now.Sub(a.fetchedAt) < a.CacheTTL {
		cp := *a.cached
		return &cp, nil
	}

	rows, err := a.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		log.Warn().Int("rows", len(rows)).Msg("not enough COT reports")
		return &model.Sentiment{Label: model.SentimentNeutral, Details: "insufficient COT data"}, nil
	}

	s := score(rows, a.Lookback, a.Threshold)
	log.Info().Str("label", s.Label).Float64("cot_index", s.COTIndex).Float64("net_change_pct", s.NetChangePct).Msg("COT sentiment updated")

	a.cached = s
	a.fetchedAt = now
	cp := *s
	return &cp, nil
}

func (a *COTAnalyzer) fetch(ctx context.Context) ([]cotRow, error) {
	q := url.Values{}
	q.Set("$where", goldMarketFilter)
	q.Set("$limit", strconv.Itoa(fetchLimit))
	q.Set("$order", "report_date_as_yyyy_mm_dd DESC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cot fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cot fetch: status %d, body: %s", resp.StatusCode, string(body))
	}

	var reports []cotReport
	if err := json.NewDecoder(resp.Body).Decode(&reports); err != nil {
		return nil, fmt.Errorf("cot decode: %w", err)
	}

	rows := make([]cotRow, 0, len(reports))
	for _, r := range reports {
		long, errL := parseCount(r.Long)
		short, errS := parseCount(r.Short)
		if errL != nil || errS != nil || r.ReportDate == "" {
			continue
		}
		rows = append(rows, cotRow{date: r.ReportDate, long: long, short: short})
	}
	// ISO dates sort lexically
	sort.Slice(rows, func(i, j int) bool { return rows[i].date < rows[j].date })
	return rows, nil
}

func parseCount(s string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// score computes the week-over-week net position change and the COT index over the last lookback reports.
// rows must be ascending and hold at least two reports.
func score(rows []cotRow, lookback int, threshold float64) *model.Sentiment {
	cur := rows[len(rows)-1]
	prev := rows[len(rows)-2]

	var change float64
	if prevNet := prev.net(); prevNet != 0 {
		change = float64(cur.net()-prevNet) / math.Abs(float64(prevNet))
	}

	window := rows
	if lookback > 0 && len(window) > lookback {
		window = window[len(window)-lookback:]
	}
	minNet, maxNet := window[0].net(), window[0].net()
	for _, r := range window[1:] {
		minNet = min(minNet, r.net())
		maxNet = max(maxNet, r.net())
	}
	var index float64
	if maxNet != minNet {
		index = float64(cur.net()-minNet) / float64(maxNet-minNet) * 100
	}

	s := &model.Sentiment{
		Label:        model.SentimentNeutral,
		COTIndex:     math.Round(index*10) / 10,
		NetChangePct: math.Round(change*1000) / 10,
		Long:         cur.long,
		Short:        cur.short,
	}
	var details []string
	switch {
	case change > threshold:
		s.Label, s.Score = model.SentimentBullish, 1
		details = append(details, fmt.Sprintf("managed money adding longs (+%.1f%%)", change*100))
	case change < -threshold:
		s.Label, s.Score = model.SentimentBearish, -1
		details = append(details, fmt.Sprintf("managed money cutting longs (%.1f%%)", change*100))
	}

	switch {
	case index > overboughtIndex:
		details = append(details, "positioning overbought")
		if s.Label == model.SentimentBullish {
			s.Label = model.SentimentReversalBearish
		}
	case index < oversoldIndex:
		details = append(details, "positioning oversold")
		if s.Label == model.SentimentBearish {
			s.Label = model.SentimentReversalBullish
		}
	}
	s.Details = strings.Join(details, " | ")
	return s
}
