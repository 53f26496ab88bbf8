package game

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGame(t *testing.T, seed int64) *Game {
	t.Helper()
	opts := DefaultOptions(seed)
	opts.Logger = quietLogger()
	g, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestRigClassAccepts(t *testing.T) {
	tests := []struct {
		class RigClass
		rig   RigType
		want  bool
	}{
		{ClassJackup, RigJackup, true},
		{ClassJackup, RigSemi, false},
		{ClassSemi, RigSemi, true},
		{ClassSemi, RigDrillship, false},
		{ClassDrillship, RigDrillship, true},
		{ClassDrillship, RigJackup, false},
		{ClassSemiOrDrillship, RigSemi, true},
		{ClassSemiOrDrillship, RigDrillship, true},
		{ClassSemiOrDrillship, RigJackup, false},
	}
	for _, tc := range tests {
		if got := tc.class.Accepts(tc.rig); got != tc.want {
			t.Fatalf("%s accepts %s: got %v want %v", tc.class, tc.rig, got, tc.want)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if r, err := ParseRegion(" GOM "); err != nil || r != RegionGOM {
		t.Fatalf("ParseRegion: %v %v", r, err)
	}
	if _, err := ParseRegion("arctic"); err == nil {
		t.Fatalf("expected unknown region to fail")
	}
	if s, err := ParseRigState("Cold"); err != nil || s != StateCold {
		t.Fatalf("ParseRigState: %v %v", s, err)
	}
	if _, err := ParseRigType("barge"); err == nil {
		t.Fatalf("expected unknown rig type to fail")
	}
}

func TestResultOf(t *testing.T) {
	ok := ResultOf(nil, "done")
	if !ok.OK || ok.Message != "done" {
		t.Fatalf("unexpected ok result %+v", ok)
	}
	err := fmt.Errorf("%w: need $3.0m", ErrInsufficientFunds)
	bad := ResultOf(err, "done")
	if bad.OK || bad.Message != err.Error() {
		t.Fatalf("unexpected failure result %+v", bad)
	}
	if !IsRejection(err) {
		t.Fatalf("expected insufficient funds to be a rejection")
	}
	if IsRejection(errors.New("disk full")) {
		t.Fatalf("plain error should not be a rejection")
	}
}

func TestRoundTenth(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{7.04, 7.0},
		{7.05, 7.1},
		{4.9999, 5.0},
		{12.34, 12.3},
	}
	for _, tc := range tests {
		if got := roundTenth(tc.in); got != tc.want {
			t.Fatalf("roundTenth(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestOpexAndBreakEven(t *testing.T) {
	year := 2025
	tests := []struct {
		rig      Rig
		opex, be int
	}{
		{Rig{Type: RigJackup, BuildYear: 2017, Condition: 78}, 55, 67},
		{Rig{Type: RigJackup, BuildYear: 2010, Condition: 62}, 55 + 10 + 1, 55 + 10 + 1 + 12 + 3},
		{Rig{Type: RigDrillship, BuildYear: 2020, Condition: 90}, 125, 137},
		{Rig{Type: RigSemi, BuildYear: 2005, Condition: 40}, 95 + 20 + 6, 95 + 20 + 6 + 12 + 8},
	}
	for _, tc := range tests {
		if got := OpexPerDayK(&tc.rig, year); got != tc.opex {
			t.Fatalf("opex %+v: got %d want %d", tc.rig, got, tc.opex)
		}
		if got := BreakEvenDayrateK(&tc.rig, year); got != tc.be {
			t.Fatalf("break-even %+v: got %d want %d", tc.rig, got, tc.be)
		}
	}
}
