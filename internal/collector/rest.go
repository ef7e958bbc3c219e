package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"GoldSentinel/internal/model"
)

// RESTFetcher implements Fetcher against a generic bars endpoint:
// GET {BaseURL}/api/v1/bars?symbol=..&timeframe=..&limit=.. returning a JSON array.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars endpoint.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchBars requests tf directly. When an H4 request fails, it falls back to resampling H1.
func (f *RESTFetcher) FetchBars(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.OHLCV, error) {
	bars, err := f.fetchBars(ctx, symbol, tf, limit)
	if err != nil && tf == model.H4 {
		hourly, hourlyErr := f.fetchBars(ctx, symbol, model.H1, limit*4)
		if hourlyErr != nil {
			return nil, fmt.Errorf("h4 fetch failed: %w; h1 fallback also failed: %w", err, hourlyErr)
		}
		bars, err = Resample(Normalize(hourly, time.Now(), 0), model.H4), nil
	}
	if err != nil {
		return nil, err
	}
	bars = Normalize(bars, time.Now(), limit)
	if len(bars) == 0 {
		return nil, fmt.Errorf("rest %s %s: %w", symbol, tf, ErrNoData)
	}
	return bars, nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("timeframe", string(tf))
	q.Set("limit", strconv.Itoa(limit))
	endpoint := f.BaseURL + "/api/v1/bars?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	return bars, nil
}
