// Package sentiment reports a fundamental market bias that the decision pipeline can use as a filter.
package sentiment

import (
	"context"

	"GoldSentinel/internal/model"
)

// Provider returns the current sentiment, or nil when none is available.
type Provider interface {
	Analyze(ctx context.Context) (*model.Sentiment, error)
}

// Static always reports the same sentiment. A nil Sentiment disables the filter.
type Static struct {
	Sentiment *model.Sentiment
}

func (s Static) Analyze(context.Context) (*model.Sentiment, error) {
	if s.Sentiment == nil {
		return nil, nil
	}
	cp := *s.Sentiment
	return &cp, nil
}
