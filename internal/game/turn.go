package game

import (
	"errors"
	"fmt"
)

// TurnReport summarizes one resolved month.
type TurnReport struct {
	Month       int             `json:"month"`
	Date        string          `json:"date"`
	OilPrice    float64         `json:"oil_price"`
	SteelPrice  float64         `json:"steel_price"`
	Awards      []Award         `json:"awards"`
	Lapsed      []int           `json:"lapsed_tenders"`
	Dropped     []DroppedBid    `json:"dropped_bids,omitempty"`
	Settlements []Settlement    `json:"settlements"`
	Arrivals    []int           `json:"arrivals,omitempty"`
	History     []HistoryRecord `json:"-"`
	Bankrupt    bool            `json:"bankrupt"`
}

type DroppedBid struct {
	Bid    Bid    `json:"bid"`
	Reason string `json:"reason"`
}

// PrepareTurn opens the next month: markets step, then tenders and resale
// listings are drawn, in that order.
func (g *Game) PrepareTurn() ([]Tender, error) {
	switch g.phase {
	case PhaseBankrupt:
		return nil, ErrBankrupt
	case PhasePrepared:
		return nil, fmt.Errorf("%w: month %d is already open", ErrWrongPhase, g.month)
	}
	g.month++
	g.oil.Step(g.rng)
	g.steel.Step(g.rng)

	asOf := g.CurrentDate()
	g.tenders, g.contractSeq = g.contractGen.Generate(g.rng, g.contractSeq, asOf, g.oil.PriceFactor(), g.oil.Multiplier)
	g.listings, g.rigSeq = g.rigMarket.Generate(g.rng, asOf.Year(), g.steel.Price, g.rigSeq)
	g.bids = nil
	g.phase = PhasePrepared

	g.log.Info("turn prepared",
		"month", g.month,
		"oil", g.oil.Price,
		"steel", g.steel.Price,
		"tenders", len(g.tenders),
		"listings", len(g.listings),
	)
	return g.OpenTenders(), nil
}

// PlaceBid records the player's bid on an open tender, replacing any earlier
// bid on the same tender.
func (g *Game) PlaceBid(tenderID, rigID, dayrateK int) error {
	if err := g.checkActive(); err != nil {
		return err
	}
	if g.phase != PhasePrepared {
		return fmt.Errorf("%w: no open tenders", ErrWrongPhase)
	}
	b := Bid{TenderID: tenderID, CompanyID: g.Player().ID, RigID: rigID, DayrateK: dayrateK}
	if err := validateBid(g.Player(), g.tender(tenderID), b); err != nil {
		return err
	}
	g.bids = upsertBid(g.bids, b)
	return nil
}

func (g *Game) WithdrawBid(tenderID int) error {
	for i, b := range g.bids {
		if b.TenderID == tenderID {
			g.bids = append(g.bids[:i:i], g.bids[i+1:]...)
			return nil
		}
	}
	return errorf(ErrNotFound, "no bid on tender %d", tenderID)
}

// SuggestBids runs the autopilot heuristic over every open tender.
func (g *Game) SuggestBids() []Bid {
	var out []Bid
	for _, t := range g.tenders {
		if b, ok := SuggestBid(g.Player(), t, g.oil.RegionalDemand(t.Spec.Region), g.Year()); ok {
			out = append(out, b)
		}
	}
	return out
}

func (g *Game) SuggestBidFor(tenderID int) (Bid, error) {
	t := g.tender(tenderID)
	if t == nil {
		return Bid{}, errorf(ErrNotFound, "tender %d is not open", tenderID)
	}
	b, ok := SuggestBid(g.Player(), *t, g.oil.RegionalDemand(t.Spec.Region), g.Year())
	if !ok {
		return Bid{}, errorf(ErrIneligibleRig, "no profitable eligible rig for tender %d", tenderID)
	}
	return b, nil
}

// ResolveTurn runs the auction, settles cash for every company, records
// history, advances transit and checks for bankruptcy. Extra bids are
// validated as a batch before anything is mutated.
func (g *Game) ResolveTurn(extra ...Bid) (TurnReport, error) {
	if g.phase == PhaseBankrupt {
		return TurnReport{}, ErrBankrupt
	}
	if g.phase != PhasePrepared {
		return TurnReport{}, fmt.Errorf("%w: prepare a turn first", ErrWrongPhase)
	}
	staged := append([]Bid(nil), g.bids...)
	var errs []error
	for _, b := range extra {
		b.CompanyID = g.Player().ID
		if err := validateBid(g.Player(), g.tender(b.TenderID), b); err != nil {
			errs = append(errs, fmt.Errorf("tender %d: %w", b.TenderID, err))
			continue
		}
		staged = upsertBid(staged, b)
	}
	if len(errs) > 0 {
		return TurnReport{}, errors.Join(errs...)
	}
	g.bids = staged

	report := TurnReport{
		Month:      g.month,
		Date:       g.CurrentDate().Format("2006-01-02"),
		OilPrice:   g.oil.Price,
		SteelPrice: g.steel.Price,
	}
	g.runAuctions(&report)

	year := g.Year()
	for _, c := range g.companies {
		report.Settlements = append(report.Settlements, settle(c, year, g.loan.MonthlyRate))
	}
	report.History = g.recordMonth()
	report.Arrivals = g.advanceTransit()

	g.tenders = nil
	g.bids = nil
	g.phase = PhaseResolved
	if g.Player().Cash <= 0 {
		g.phase = PhaseBankrupt
		report.Bankrupt = true
		g.log.Warn("player bankrupt", "month", g.month, "cash_m", g.Player().Cash)
	}
	g.log.Info("turn resolved",
		"month", g.month,
		"awards", len(report.Awards),
		"lapsed", len(report.Lapsed),
		"cash_m", g.Player().Cash,
	)
	return report, nil
}

// Advance resolves the open month (if any) and opens the next one.
func (g *Game) Advance(extra ...Bid) (TurnReport, []Tender, error) {
	var report TurnReport
	if g.phase == PhasePrepared {
		var err error
		report, err = g.ResolveTurn(extra...)
		if err != nil {
			return TurnReport{}, nil, err
		}
		if report.Bankrupt {
			return report, nil, nil
		}
	}
	tenders, err := g.PrepareTurn()
	if err != nil {
		return report, nil, err
	}
	return report, tenders, nil
}

func (g *Game) runAuctions(report *TurnReport) {
	player := g.Player()
	year := g.Year()
	for _, t := range g.tenders {
		var bids []Bid
		if pb, ok := findBid(g.bids, t.ID); ok {
			if err := validateBid(player, &t, pb); err != nil {
				report.Dropped = append(report.Dropped, DroppedBid{Bid: pb, Reason: err.Error()})
				g.log.Info("player bid dropped", "tender_id", t.ID, "rig_id", pb.RigID, "reason", err.Error())
			} else {
				bids = append(bids, pb)
			}
		}
		for _, c := range g.companies {
			if c.Player {
				continue
			}
			if b, ok := ChooseAIBid(c, t, year); ok {
				bids = append(bids, b)
			}
		}
		win, ok := SelectWinner(bids, g.reputation)
		if !ok {
			report.Lapsed = append(report.Lapsed, t.ID)
			continue
		}
		c, _ := g.Company(win.CompanyID)
		r, _ := c.Rig(win.RigID)
		applyAward(r, t, win.DayrateK)
		report.Awards = append(report.Awards, Award{
			TenderID:    t.ID,
			Region:      t.Spec.Region,
			CompanyID:   c.ID,
			CompanyName: c.Name,
			RigID:       r.ID,
			DayrateK:    win.DayrateK,
			Months:      t.Spec.Months,
		})
		g.log.Info("tender awarded", "tender_id", t.ID, "winner", c.Name, "rig_id", r.ID, "dayrate_k", win.DayrateK)
	}
}

func (g *Game) advanceTransit() []int {
	var arrived []int
	for _, c := range g.companies {
		for _, r := range c.Rigs {
			if !r.InTransit() {
				continue
			}
			r.TransitMonthsLeft--
			if r.TransitMonthsLeft == 0 && r.TargetRegion != nil {
				r.Region = *r.TargetRegion
				r.TargetRegion = nil
				arrived = append(arrived, r.ID)
			}
		}
	}
	return arrived
}

func upsertBid(bids []Bid, b Bid) []Bid {
	for i := range bids {
		if bids[i].TenderID == b.TenderID {
			bids[i] = b
			return bids
		}
	}
	return append(bids, b)
}

func findBid(bids []Bid, tenderID int) (Bid, bool) {
	for _, b := range bids {
		if b.TenderID == tenderID {
			return b, true
		}
	}
	return Bid{}, false
}
