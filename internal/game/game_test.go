package game

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"rigtycoon/internal/savefile"
)

func playTurn(t *testing.T, g *Game) TurnReport {
	t.Helper()
	if _, err := g.PrepareTurn(); err != nil {
		t.Fatalf("month %d PrepareTurn: %v", g.Month()+1, err)
	}
	report, err := g.ResolveTurn(g.SuggestBids()...)
	if err != nil {
		t.Fatalf("month %d ResolveTurn: %v", g.Month(), err)
	}
	return report
}

func relClose(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-8*math.Max(math.Abs(a), math.Abs(b))
}

func TestSaveLoadDeterminism(t *testing.T) {
	original := newTestGame(t, 42)
	for i := 0; i < 5; i++ {
		playTurn(t, original)
	}

	path := filepath.Join(t.TempDir(), "save.json")
	if err := original.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, err := Load(path, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if original.Digest() != reloaded.Digest() {
		t.Fatalf("digest changed across save/load")
	}

	for i := 0; i < 5; i++ {
		a, b := playTurn(t, original), playTurn(t, reloaded)
		if !relClose(original.Oil().Price, reloaded.Oil().Price) {
			t.Fatalf("turn %d oil %v vs %v", i, original.Oil().Price, reloaded.Oil().Price)
		}
		if !relClose(original.Player().Cash, reloaded.Player().Cash) {
			t.Fatalf("turn %d cash %v vs %v", i, original.Player().Cash, reloaded.Player().Cash)
		}
		if original.contractSeq != reloaded.contractSeq {
			t.Fatalf("turn %d contract seq %d vs %d", i, original.contractSeq, reloaded.contractSeq)
		}
		if len(a.Awards) != len(b.Awards) {
			t.Fatalf("turn %d awards %d vs %d", i, len(a.Awards), len(b.Awards))
		}
		for j := range a.Awards {
			if a.Awards[j] != b.Awards[j] {
				t.Fatalf("turn %d award %d: %+v vs %+v", i, j, a.Awards[j], b.Awards[j])
			}
		}
	}
	if original.Digest() != reloaded.Digest() {
		t.Fatalf("digest diverged after continuing play")
	}
}

func TestUnbrokenRunMatchesSplitRun(t *testing.T) {
	unbroken := newTestGame(t, 7)
	for i := 0; i < 12; i++ {
		playTurn(t, unbroken)
	}

	split := newTestGame(t, 7)
	for i := 0; i < 4; i++ {
		playTurn(t, split)
	}
	for i := 0; i < 2; i++ {
		raw, err := split.MarshalSave()
		if err != nil {
			t.Fatalf("MarshalSave: %v", err)
		}
		if split, err = UnmarshalSave(raw, quietLogger()); err != nil {
			t.Fatalf("UnmarshalSave: %v", err)
		}
		for j := 0; j < 4; j++ {
			playTurn(t, split)
		}
	}
	if unbroken.Digest() != split.Digest() {
		t.Fatalf("split run diverged from unbroken run")
	}
}

func TestSaveMidTurnKeepsOpenTenders(t *testing.T) {
	g := newTestGame(t, 42)
	playTurn(t, g)
	var tenders []Tender
	var err error
	for len(tenders) == 0 {
		playTurn(t, g)
		if tenders, err = g.PrepareTurn(); err != nil {
			t.Fatalf("PrepareTurn: %v", err)
		}
		if len(tenders) == 0 {
			if _, err := g.ResolveTurn(); err != nil {
				t.Fatalf("ResolveTurn: %v", err)
			}
		}
	}
	for _, b := range g.SuggestBids() {
		if err := g.PlaceBid(b.TenderID, b.RigID, b.DayrateK); err != nil {
			t.Fatalf("PlaceBid: %v", err)
		}
	}

	raw, err := g.MarshalSave()
	if err != nil {
		t.Fatalf("MarshalSave: %v", err)
	}
	h, err := UnmarshalSave(raw, quietLogger())
	if err != nil {
		t.Fatalf("UnmarshalSave: %v", err)
	}
	if h.Phase() != PhasePrepared || len(h.OpenTenders()) != len(tenders) || len(h.PendingBids()) != len(g.PendingBids()) {
		t.Fatalf("mid-turn state lost: phase=%s tenders=%d bids=%d", h.Phase(), len(h.OpenTenders()), len(h.PendingBids()))
	}

	a, err := g.ResolveTurn()
	if err != nil {
		t.Fatalf("ResolveTurn original: %v", err)
	}
	b, err := h.ResolveTurn()
	if err != nil {
		t.Fatalf("ResolveTurn reloaded: %v", err)
	}
	if len(a.Awards) != len(b.Awards) || g.Digest() != h.Digest() {
		t.Fatalf("resolving after reload diverged")
	}
}

func TestCompressedSaveRoundTrip(t *testing.T) {
	g := newTestGame(t, 5)
	for i := 0; i < 3; i++ {
		playTurn(t, g)
	}
	path := filepath.Join(t.TempDir(), "save.json.zst")
	if err := g.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h, err := Load(path, quietLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.Digest() != h.Digest() || g.ID() != h.ID() {
		t.Fatalf("compressed round trip changed the game")
	}
}

func TestImportRejectsCorruptSaves(t *testing.T) {
	g := newTestGame(t, 42)
	playTurn(t, g)

	cases := []struct {
		name   string
		mutate func(*SaveV1)
	}{
		{"missing rig reference", func(s *SaveV1) { s.Companies[0].RigIDs = append(s.Companies[0].RigIDs, 4242) }},
		{"rig owned twice", func(s *SaveV1) {
			s.Companies[1].RigIDs = append(s.Companies[1].RigIDs, s.Companies[0].RigIDs[0])
		}},
		{"orphan rig", func(s *SaveV1) { s.Companies[2].RigIDs = s.Companies[2].RigIDs[:1] }},
		{"duplicate rig id", func(s *SaveV1) { s.Rigs = append(s.Rigs, s.Rigs[0]) }},
		{"bad rng", func(s *SaveV1) { s.RNGState.Words = s.RNGState.Words[:1] }},
		{"player not first", func(s *SaveV1) { s.Companies[0], s.Companies[1] = s.Companies[1], s.Companies[0] }},
		{"ai without personality", func(s *SaveV1) { s.Companies[1].Personality = nil }},
		{"contract without months", func(s *SaveV1) { s.Rigs[0].ContractMonthsLeft, s.Rigs[0].ContractDayrate = 0, 99 }},
		{"transit without target", func(s *SaveV1) { s.Rigs[0].TransitMonthsLeft = 1; s.Rigs[0].TargetRegion = nil }},
		{"stale rig sequence", func(s *SaveV1) { s.RigIDSeq = 5 }},
		{"stale contract sequence", func(s *SaveV1) {
			id := s.ContractIDSeq
			r := &s.Rigs[0]
			r.State, r.ContractMonthsLeft, r.ContractDayrate, r.ContractID = StateActive, 2, 100, &id
		}},
		{"unknown phase", func(s *SaveV1) { s.Phase = "paused" }},
		{"oil price out of range", func(s *SaveV1) { s.Markets.Oil.Price = 500 }},
		{"bad region", func(s *SaveV1) { s.Rigs[0].Region = "arctic" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := g.Export()
			tc.mutate(&s)
			if _, err := Import(s, quietLogger()); !errors.Is(err, ErrCorruptSave) {
				t.Fatalf("expected ErrCorruptSave, got %v", err)
			}
		})
	}

	s := g.Export()
	s.SaveVersion = 2
	if _, err := Import(s, quietLogger()); !errors.Is(err, savefile.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestPhaseMachine(t *testing.T) {
	g := newTestGame(t, 1)
	if g.Phase() != PhaseNew {
		t.Fatalf("new game phase = %s", g.Phase())
	}
	if _, err := g.ResolveTurn(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("resolve before prepare: %v", err)
	}
	if _, err := g.PrepareTurn(); err != nil {
		t.Fatalf("PrepareTurn: %v", err)
	}
	if _, err := g.PrepareTurn(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("double prepare: %v", err)
	}
	if g.Month() != 1 || g.CurrentDate().Format("2006-01-02") != "2025-01-01" {
		t.Fatalf("month one is %d %s", g.Month(), g.CurrentDate())
	}
	report, tenders, err := g.Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if report.Month != 1 || g.Month() != 2 || g.Phase() != PhasePrepared {
		t.Fatalf("advance left month=%d phase=%s report=%d", g.Month(), g.Phase(), report.Month)
	}
	if len(tenders) != len(g.OpenTenders()) {
		t.Fatalf("advance returned %d tenders, game has %d", len(tenders), len(g.OpenTenders()))
	}
	if len(g.History()) != len(g.Companies()) {
		t.Fatalf("history rows = %d, want one per company", len(g.History()))
	}
}

func TestResolveRejectsInvalidBatchWithoutMutation(t *testing.T) {
	g := newTestGame(t, 1)
	if _, err := g.PrepareTurn(); err != nil {
		t.Fatalf("PrepareTurn: %v", err)
	}
	before := g.Digest()
	_, err := g.ResolveTurn(Bid{TenderID: 9999, RigID: 1, DayrateK: 100})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if g.Digest() != before || g.Phase() != PhasePrepared {
		t.Fatalf("rejected resolve mutated the game")
	}
}

func TestBankruptcyEndsTheGame(t *testing.T) {
	g := newTestGame(t, 1)
	if _, err := g.PrepareTurn(); err != nil {
		t.Fatalf("PrepareTurn: %v", err)
	}
	g.Player().Cash = 0.5
	report, err := g.ResolveTurn()
	if err != nil {
		t.Fatalf("ResolveTurn: %v", err)
	}
	if !report.Bankrupt || g.Phase() != PhaseBankrupt {
		t.Fatalf("expected bankruptcy, phase=%s cash=%v", g.Phase(), g.Player().Cash)
	}
	if _, err := g.PrepareTurn(); !errors.Is(err, ErrBankrupt) {
		t.Fatalf("prepare after bankruptcy: %v", err)
	}
	if err := g.TakeLoan(10); !errors.Is(err, ErrBankrupt) {
		t.Fatalf("loan after bankruptcy: %v", err)
	}
}

func TestSameSeedSameGame(t *testing.T) {
	a, b := newTestGame(t, 99), newTestGame(t, 99)
	for i := 0; i < 6; i++ {
		playTurn(t, a)
		playTurn(t, b)
	}
	if a.Digest() != b.Digest() {
		t.Fatalf("same seed produced different games")
	}
	c := newTestGame(t, 100)
	for i := 0; i < 6; i++ {
		playTurn(t, c)
	}
	if a.Digest() == c.Digest() {
		t.Fatalf("different seeds produced identical games")
	}
}
