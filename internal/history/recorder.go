package history

import (
	"context"
	"log/slog"

	"rigtycoon/internal/game"
)

// Recorder forwards each resolved turn to the configured sinks. Nil sinks are
// skipped.
type Recorder struct {
	Store Store
	Turns *TurnLog
	Log   *slog.Logger
}

func (r *Recorder) Record(ctx context.Context, g *game.Game, report game.TurnReport) error {
	if r.Store != nil && len(report.History) > 0 {
		if err := r.Store.Append(ctx, g.ID(), report.History); err != nil {
			return err
		}
	}
	if r.Turns != nil {
		if err := r.Turns.Write(TurnEntry{RunID: g.ID(), Digest: g.Digest(), Report: report}); err != nil {
			return err
		}
	}
	if r.Log != nil {
		r.Log.Debug("turn recorded", "game_id", g.ID(), "month", report.Month, "rows", len(report.History))
	}
	return nil
}

func (r *Recorder) Close() error {
	var first error
	if r.Store != nil {
		first = r.Store.Close()
	}
	if r.Turns != nil {
		if err := r.Turns.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
