// Package history persists the per-company monthly records a game produces.
//
// Rows are keyed by (run, month, company) so re-recording a month after a
// reload overwrites instead of duplicating.
package history

import (
	"context"
	"encoding/json"

	"rigtycoon/internal/game"
)

type Store interface {
	Append(ctx context.Context, runID string, recs []game.HistoryRecord) error
	Records(ctx context.Context, runID string) ([]game.HistoryRecord, error)
	Close() error
}

// Multi fans writes out to every store and reads from the first.
type Multi []Store

func (m Multi) Append(ctx context.Context, runID string, recs []game.HistoryRecord) error {
	for _, s := range m {
		if err := s.Append(ctx, runID, recs); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Records(ctx context.Context, runID string) ([]game.HistoryRecord, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return m[0].Records(ctx, runID)
}

func (m Multi) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func encodeDemand(d map[game.Region]float64) (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeDemand(s string) (map[game.Region]float64, error) {
	d := map[game.Region]float64{}
	if s == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, err
	}
	return d, nil
}
