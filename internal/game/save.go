package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"rigtycoon/internal/savefile"
)

type SaveV1 struct {
	SaveVersion        int             `json:"save_version"`
	Meta               SaveMeta        `json:"meta"`
	RNGState           StreamState     `json:"rng_state"`
	Time               SaveTime        `json:"time"`
	Phase              Phase           `json:"phase"`
	Markets            SaveMarkets     `json:"markets"`
	Rigs               []Rig           `json:"rigs"`
	Companies          []SaveCompany   `json:"companies"`
	ContractIDSeq      int             `json:"contract_id_seq"`
	RigIDSeq           int             `json:"rig_id_seq"`
	CurrentRigsForSale []RigForSale    `json:"current_rigs_for_sale"`
	OpenTenders        []Tender        `json:"open_tenders"`
	PendingBids        []Bid           `json:"pending_bids"`
	ContractGen        SaveGenerator   `json:"contract_gen"`
	RigMarketGen       SaveRigMarket   `json:"rig_market_gen"`
	Loan               LoanTerms       `json:"loan_terms"`
	History            []HistoryRecord `json:"history"`
}

type SaveMeta struct {
	CreatedAt   time.Time `json:"created_at"`
	SavedAt     time.Time `json:"saved_at"`
	GameVersion string    `json:"game_version"`
	GameID      string    `json:"game_id"`
}

type SaveTime struct {
	Month     int    `json:"month"`
	StartDate string `json:"start_date"`
}

type SaveMarkets struct {
	Oil   Market `json:"oil"`
	Steel Market `json:"steel"`
}

type SaveCompany struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	IsPlayer    bool         `json:"is_player"`
	CashM       float64      `json:"cash_m"`
	DebtM       float64      `json:"debt_m"`
	Reputation  float64      `json:"reputation"`
	Personality *Personality `json:"personality,omitempty"`
	RigIDs      []int        `json:"rig_ids"`
}

type SaveGenerator struct {
	Config ContractGenConfig `json:"config"`
}

type SaveRigMarket struct {
	Config RigMarketConfig `json:"config"`
}

// Export captures the full game state. Saving mid-month keeps open tenders,
// pending bids and listings so the month can be resolved after a reload.
func (g *Game) Export() SaveV1 {
	s := SaveV1{
		SaveVersion: SaveVersion,
		Meta: SaveMeta{
			CreatedAt:   g.createdAt,
			SavedAt:     time.Now().UTC(),
			GameVersion: GameVersion,
			GameID:      g.id,
		},
		RNGState:           g.rng.State(),
		Time:               SaveTime{Month: g.month, StartDate: g.startDate.Format("2006-01-02")},
		Phase:              g.phase,
		Markets:            SaveMarkets{Oil: cloneMarket(g.oil), Steel: cloneMarket(g.steel)},
		ContractIDSeq:      g.contractSeq,
		RigIDSeq:           g.rigSeq,
		CurrentRigsForSale: append([]RigForSale{}, g.listings...),
		OpenTenders:        append([]Tender{}, g.tenders...),
		PendingBids:        append([]Bid{}, g.bids...),
		ContractGen:        SaveGenerator{Config: g.contractGen.Config()},
		RigMarketGen:       SaveRigMarket{Config: g.rigMarket.Config()},
		Loan:               g.loan,
		History:            append([]HistoryRecord{}, g.history...),
		Rigs:               []Rig{},
	}
	for _, c := range g.companies {
		sc := SaveCompany{
			ID:         c.ID,
			Name:       c.Name,
			IsPlayer:   c.Player,
			CashM:      c.Cash,
			DebtM:      c.Debt,
			Reputation: c.Reputation,
			RigIDs:     make([]int, 0, len(c.Rigs)),
		}
		if !c.Player {
			p := c.Personality
			sc.Personality = &p
		}
		for _, r := range c.Rigs {
			s.Rigs = append(s.Rigs, *r.clone())
			sc.RigIDs = append(sc.RigIDs, r.ID)
		}
		s.Companies = append(s.Companies, sc)
	}
	return s
}

func cloneMarket(m *Market) Market {
	cp := *m
	cp.History = append([]float64(nil), m.History...)
	if m.Demand != nil {
		cp.Demand = make(map[Region]float64, len(m.Demand))
		for r, v := range m.Demand {
			cp.Demand[r] = v
		}
	}
	return cp
}

// Import rebuilds a game from a decoded save and fails on any structural
// inconsistency instead of repairing it.
func Import(s SaveV1, logger *slog.Logger) (*Game, error) {
	if s.SaveVersion != SaveVersion {
		return nil, fmt.Errorf("%w: save_version %d", savefile.ErrUnsupportedVersion, s.SaveVersion)
	}
	if logger == nil {
		logger = slog.Default()
	}
	rng, err := RestoreStream(s.RNGState)
	if err != nil {
		return nil, err
	}
	start, err := time.Parse("2006-01-02", s.Time.StartDate)
	if err != nil {
		return nil, errorf(ErrCorruptSave, "start_date: %v", err)
	}
	if s.Time.Month < 0 {
		return nil, errorf(ErrCorruptSave, "negative month %d", s.Time.Month)
	}
	switch s.Phase {
	case PhaseNew, PhasePrepared, PhaseResolved, PhaseBankrupt:
	default:
		return nil, errorf(ErrCorruptSave, "unknown phase %q", s.Phase)
	}
	if s.Phase != PhasePrepared && (len(s.OpenTenders) > 0 || len(s.PendingBids) > 0) {
		return nil, errorf(ErrCorruptSave, "open tenders outside a prepared turn")
	}

	opts := Options{
		Oil:         s.Markets.Oil.Params,
		Steel:       s.Markets.Steel.Params,
		ContractGen: s.ContractGen.Config,
		RigMarket:   s.RigMarketGen.Config,
		Loan:        s.Loan,
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}

	oil, steel := cloneMarket(&s.Markets.Oil), cloneMarket(&s.Markets.Steel)
	for _, m := range []*Market{&oil, &steel} {
		if err := m.validate(); err != nil {
			return nil, err
		}
		m.refresh()
	}

	byID := make(map[int]*Rig, len(s.Rigs))
	maxRigID := 0
	for i := range s.Rigs {
		r := s.Rigs[i].clone()
		if err := validateRig(r); err != nil {
			return nil, err
		}
		if _, dup := byID[r.ID]; dup {
			return nil, errorf(ErrCorruptSave, "duplicate rig id %d", r.ID)
		}
		byID[r.ID] = r
		maxRigID = max(maxRigID, r.ID)
	}

	g := &Game{
		log:         logger,
		id:          s.Meta.GameID,
		createdAt:   s.Meta.CreatedAt,
		rng:         rng,
		startDate:   start,
		month:       s.Time.Month,
		phase:       s.Phase,
		oil:         &oil,
		steel:       &steel,
		contractSeq: s.ContractIDSeq,
		rigSeq:      s.RigIDSeq,
		contractGen: NewTenderGenerator(s.ContractGen.Config),
		rigMarket:   NewResaleGenerator(s.RigMarketGen.Config),
		loan:        s.Loan,
		tenders:     append([]Tender(nil), s.OpenTenders...),
		listings:    append([]RigForSale(nil), s.CurrentRigsForSale...),
		history:     append([]HistoryRecord(nil), s.History...),
	}
	if g.id == "" {
		return nil, errorf(ErrCorruptSave, "missing game id")
	}

	owned := make(map[int]string, len(byID))
	seen := make(map[string]bool, len(s.Companies))
	for i, sc := range s.Companies {
		if sc.ID == "" || sc.Name == "" {
			return nil, errorf(ErrCorruptSave, "company %d missing identity", i)
		}
		if seen[sc.ID] {
			return nil, errorf(ErrCorruptSave, "duplicate company %q", sc.ID)
		}
		seen[sc.ID] = true
		if sc.IsPlayer != (i == 0) {
			return nil, errorf(ErrCorruptSave, "player company must be listed first")
		}
		if sc.DebtM < 0 {
			return nil, errorf(ErrCorruptSave, "company %q has negative debt", sc.ID)
		}
		c := &Company{
			ID:         sc.ID,
			Name:       sc.Name,
			Player:     sc.IsPlayer,
			Cash:       sc.CashM,
			Debt:       sc.DebtM,
			Reputation: sc.Reputation,
		}
		if !sc.IsPlayer {
			if sc.Personality == nil {
				return nil, errorf(ErrCorruptSave, "ai company %q has no personality", sc.ID)
			}
			c.Personality = *sc.Personality
		}
		for _, id := range sc.RigIDs {
			r, ok := byID[id]
			if !ok {
				return nil, errorf(ErrCorruptSave, "company %q references missing rig %d", sc.ID, id)
			}
			if prev, taken := owned[id]; taken {
				return nil, errorf(ErrCorruptSave, "rig %d owned by both %q and %q", id, prev, sc.ID)
			}
			owned[id] = sc.ID
			c.Rigs = append(c.Rigs, r)
		}
		g.companies = append(g.companies, c)
	}
	if len(g.companies) == 0 {
		return nil, errorf(ErrCorruptSave, "no companies")
	}
	if len(owned) != len(byID) {
		return nil, errorf(ErrCorruptSave, "%d rigs have no owner", len(byID)-len(owned))
	}

	maxContract := 0
	for _, t := range g.tenders {
		if err := t.Spec.validate(); err != nil {
			return nil, err
		}
		maxContract = max(maxContract, t.ID)
	}
	for _, r := range byID {
		if r.ContractID != nil {
			maxContract = max(maxContract, *r.ContractID)
		}
	}
	for _, l := range g.listings {
		if err := validateRig(&l.Rig); err != nil {
			return nil, err
		}
		if _, clash := byID[l.Rig.ID]; clash {
			return nil, errorf(ErrCorruptSave, "listing reuses fleet rig id %d", l.Rig.ID)
		}
		maxRigID = max(maxRigID, l.Rig.ID)
	}
	if g.contractSeq <= maxContract {
		return nil, errorf(ErrCorruptSave, "contract_id_seq %d not above %d", g.contractSeq, maxContract)
	}
	if g.rigSeq <= maxRigID {
		return nil, errorf(ErrCorruptSave, "rig_id_seq %d not above %d", g.rigSeq, maxRigID)
	}
	for _, b := range s.PendingBids {
		if g.tender(b.TenderID) == nil || b.CompanyID != g.Player().ID {
			return nil, errorf(ErrCorruptSave, "pending bid on tender %d is dangling", b.TenderID)
		}
		g.bids = upsertBid(g.bids, b)
	}
	return g, nil
}

func validateRig(r *Rig) error {
	if r.ID <= 0 {
		return errorf(ErrCorruptSave, "rig id %d", r.ID)
	}
	if _, err := ParseRigType(string(r.Type)); err != nil {
		return errorf(ErrCorruptSave, "rig %d: %v", r.ID, err)
	}
	if _, err := ParseRigState(string(r.State)); err != nil {
		return errorf(ErrCorruptSave, "rig %d: %v", r.ID, err)
	}
	if _, err := ParseRegion(string(r.Region)); err != nil {
		return errorf(ErrCorruptSave, "rig %d: %v", r.ID, err)
	}
	switch {
	case r.Condition < 0 || r.Condition > 100:
		return errorf(ErrCorruptSave, "rig %d condition %d", r.ID, r.Condition)
	case r.ContractMonthsLeft < 0 || r.TransitMonthsLeft < 0:
		return errorf(ErrCorruptSave, "rig %d has negative counters", r.ID)
	case r.UnderContract() && (r.State != StateActive || r.ContractDayrate <= 0 || r.ContractID == nil):
		return errorf(ErrCorruptSave, "rig %d contract fields inconsistent", r.ID)
	case !r.UnderContract() && (r.ContractDayrate != 0 || r.ContractID != nil):
		return errorf(ErrCorruptSave, "rig %d has contract terms without months left", r.ID)
	case r.InTransit() != (r.TargetRegion != nil):
		return errorf(ErrCorruptSave, "rig %d transit fields inconsistent", r.ID)
	}
	return nil
}

// MarshalSave encodes the game as indented save JSON.
func (g *Game) MarshalSave() ([]byte, error) {
	return json.MarshalIndent(g.Export(), "", "  ")
}

// UnmarshalSave validates raw save JSON against the schema and rebuilds the game.
func UnmarshalSave(raw []byte, logger *slog.Logger) (*Game, error) {
	if err := savefile.Validate(raw); err != nil {
		return nil, err
	}
	var s SaveV1
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, errorf(ErrCorruptSave, "decode: %v", err)
	}
	return Import(s, logger)
}

// Save writes the game to path atomically; a .zst suffix compresses it.
func (g *Game) Save(path string) error {
	raw, err := g.MarshalSave()
	if err != nil {
		return err
	}
	if err := savefile.Write(path, raw); err != nil {
		return err
	}
	g.log.Info("game saved", "path", path, "month", g.month)
	return nil
}

func Load(path string, logger *slog.Logger) (*Game, error) {
	raw, err := savefile.Read(path)
	if err != nil {
		return nil, err
	}
	g, err := UnmarshalSave(raw, logger)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	g.log.Info("game loaded", "path", path, "month", g.month, "phase", g.phase)
	return g, nil
}
