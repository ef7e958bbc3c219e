package cooldown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"GoldSentinel/internal/model"
)

// ErrCorruptState is returned by a Store whose persisted state cannot be decoded.
var ErrCorruptState = errors.New("corrupt cooldown state")

// Store persists the cooldown state. A store with nothing saved yet loads the zero state.
type Store interface {
	Load(ctx context.Context) (model.CooldownState, error)
	Save(ctx context.Context, state model.CooldownState) error
}

func encodeState(state model.CooldownState) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode cooldown state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (model.CooldownState, error) {
	var state model.CooldownState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.CooldownState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if state.LastLossTime < 0 {
		return model.CooldownState{}, fmt.Errorf("%w: negative last_loss_time", ErrCorruptState)
	}
	if t := state.ActiveTrade; t != nil && t.Direction != model.Buy && t.Direction != model.Sell {
		return model.CooldownState{}, fmt.Errorf("%w: direction %q", ErrCorruptState, t.Direction)
	}
	return state, nil
}

func cloneState(s model.CooldownState) model.CooldownState {
	if s.ActiveTrade != nil {
		t := *s.ActiveTrade
		s.ActiveTrade = &t
	}
	return s
}
