package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"rigtycoon/internal/api"
	"rigtycoon/internal/config"
	"rigtycoon/internal/game"
)

func TestSessionRoundTrip(t *testing.T) {
	home := t.TempDir()
	if _, err := LoadSession(home); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if err := SaveSession(home, Session{SavePath: filepath.Join(home, "a.json"), GameID: "g1"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	s, err := LoadSession(home)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if s.SavePath != filepath.Join(home, "a.json") || s.GameID != "g1" || s.UpdatedAt.IsZero() {
		t.Fatalf("session = %+v", s)
	}
	if err := ClearSession(home); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if _, err := LoadSession(home); !errors.Is(err, ErrNoSession) {
		t.Fatalf("after clear: %v", err)
	}
	if err := ClearSession(home); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestClientAgainstServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := game.DefaultOptions(42)
	opts.Logger = logger
	g, err := game.New(opts)
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	srv := api.New(config.APIConfig{RatePerSec: 100, RateBurst: 100}, logger, g, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c := NewClient(ts.URL + "/")
	ctx := context.Background()

	if _, _, err := c.Advance(ctx); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	st, err := c.Status(ctx)
	if err != nil || st.Month != 1 || st.Phase != game.PhasePrepared {
		t.Fatalf("status = %+v err %v", st, err)
	}
	fleet, err := c.Fleet(ctx)
	if err != nil || len(fleet) != 2 {
		t.Fatalf("fleet = %d err %v", len(fleet), err)
	}

	_, err = c.PlaceBid(ctx, 9999, 1, 100)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message == "" {
		t.Fatalf("expected 404 APIError, got %v", err)
	}

	sugg, err := c.SuggestBids(ctx)
	if err != nil {
		t.Fatalf("SuggestBids: %v", err)
	}
	for _, b := range sugg {
		res, err := c.PlaceBid(ctx, b.TenderID, b.RigID, b.DayrateK)
		if err != nil || !res.OK {
			t.Fatalf("PlaceBid: %+v %v", res, err)
		}
	}
	report, _, err := c.Advance(ctx)
	if err != nil || report.Month != 1 {
		t.Fatalf("second Advance: month %d err %v", report.Month, err)
	}
	fin, err := c.Finances(ctx)
	if err != nil || fin.CreditLimitM != 60 {
		t.Fatalf("finances = %+v err %v", fin, err)
	}
}
