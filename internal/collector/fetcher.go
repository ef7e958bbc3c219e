package collector

import (
	"context"
	"errors"
	"sort"
	"time"

	"GoldSentinel/internal/model"
)

// ErrNoData is returned when a provider answers without any usable bars.
var ErrNoData = errors.New("no data returned")

// Fetcher retrieves OHLCV bars for one symbol and timeframe.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.OHLCV, error)
	Name() string
}

// Normalize sorts bars by time, keeps the last of any duplicate timestamps, drops bars stamped
// after now and trims to the newest limit bars. A non-positive limit keeps everything.
func Normalize(bars []model.OHLCV, now time.Time, limit int) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if !now.IsZero() && b.Time.After(now) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(b.Time) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	if limit > 0 && len(dedup) > limit {
		dedup = dedup[len(dedup)-limit:]
	}
	return dedup
}

// Resample aggregates ascending bars into buckets of tf, aligned to UTC midnight.
// Each bucket is stamped with its start time.
func Resample(bars []model.OHLCV, tf model.Timeframe) []model.OHLCV {
	d := tf.Duration()
	if len(bars) == 0 || d == 0 {
		return nil
	}
	var out []model.OHLCV
	var cur model.OHLCV
	started := false
	for _, b := range bars {
		bucket := b.Time.UTC().Truncate(d)
		if !started || !bucket.Equal(cur.Time) {
			if started {
				out = append(out, cur)
			}
			cur = model.OHLCV{Time: bucket, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			started = true
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	return append(out, cur)
}
