package game

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseNew      Phase = "new"
	PhasePrepared Phase = "prepared"
	PhaseResolved Phase = "resolved"
	PhaseBankrupt Phase = "bankrupt"
)

// Game is the whole simulation state. It is not safe for concurrent use;
// callers that share one serialize access themselves.
type Game struct {
	log       *slog.Logger
	id        string
	createdAt time.Time

	rng       *Stream
	startDate time.Time
	month     int
	phase     Phase

	oil   *Market
	steel *Market

	companies   []*Company
	contractSeq int
	rigSeq      int

	tenders  []Tender
	bids     []Bid
	listings []RigForSale
	history  []HistoryRecord

	contractGen *TenderGenerator
	rigMarket   *ResaleGenerator
	loan        LoanTerms
}

type rigSeed struct {
	id        int
	rigType   RigType
	age       int
	condition int
	region    Region
	state     RigState
}

type companySeed struct {
	id          string
	name        string
	player      bool
	cash        float64
	reputation  float64
	personality Personality
	rigs        []rigSeed
}

var startingRoster = []companySeed{
	{
		id: PlayerCompanyID, name: "PlayerCo", player: true, cash: 55, reputation: 0.55,
		rigs: []rigSeed{
			{id: 1, rigType: RigJackup, age: 8, condition: 78, region: RegionNorthSea, state: StateActive},
			{id: 2, rigType: RigJackup, age: 15, condition: 62, region: RegionGOM, state: StateCold},
		},
	},
	{
		id: "stack-and-pray", name: "Stack&Pray Drilling", cash: 40, reputation: 0.50,
		personality: Personality{Aggressiveness: 0.75, Desperation: 0.55, QualityBias: 0.2},
		rigs: []rigSeed{
			{id: 101, rigType: RigJackup, age: 11, condition: 74, region: RegionNorthSea, state: StateActive},
			{id: 102, rigType: RigSemi, age: 9, condition: 82, region: RegionNorthSea, state: StateWarm},
		},
	},
	{
		id: "bluewater-titans", name: "Bluewater Titans", cash: 85, reputation: 0.65,
		personality: Personality{Aggressiveness: 0.35, Desperation: 0.25, QualityBias: 0.6},
		rigs: []rigSeed{
			{id: 201, rigType: RigSemi, age: 6, condition: 90, region: RegionGOM, state: StateActive},
			{id: 202, rigType: RigJackup, age: 18, condition: 58, region: RegionGOM, state: StateCold},
		},
	},
}

// New builds a fresh game in PhaseNew. Call PrepareTurn to open month one.
func New(opts Options) (*Game, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := opts.StartDate
	if start.IsZero() {
		start = DefaultOptions(opts.Seed).StartDate
	}
	g := &Game{
		log:         logger,
		id:          uuid.NewString(),
		createdAt:   time.Now().UTC(),
		rng:         NewStream(opts.Seed),
		startDate:   start,
		phase:       PhaseNew,
		oil:         NewMarket(opts.Oil),
		steel:       NewMarket(opts.Steel),
		contractSeq: 1,
		contractGen: NewTenderGenerator(opts.ContractGen),
		rigMarket:   NewResaleGenerator(opts.RigMarket),
		loan:        opts.Loan,
	}
	maxID := 0
	for _, cs := range startingRoster {
		c := &Company{
			ID:          cs.id,
			Name:        cs.name,
			Player:      cs.player,
			Cash:        cs.cash,
			Reputation:  cs.reputation,
			Personality: cs.personality,
		}
		for _, rs := range cs.rigs {
			c.Rigs = append(c.Rigs, &Rig{
				ID:        rs.id,
				Type:      rs.rigType,
				BuildYear: start.Year() - rs.age,
				Condition: rs.condition,
				Region:    rs.region,
				State:     rs.state,
			})
			maxID = max(maxID, rs.id)
		}
		g.companies = append(g.companies, c)
	}
	g.rigSeq = max(1000, maxID+1)
	g.log.Info("new game", "game_id", g.id, "seed", opts.Seed, "start", start.Format("2006-01-02"))
	return g, nil
}

func (g *Game) ID() string { return g.id }

func (g *Game) Month() int { return g.month }

func (g *Game) Phase() Phase { return g.phase }

// CurrentDate is the first day of the current month; month one is the start date.
func (g *Game) CurrentDate() time.Time {
	return AddMonths(g.startDate, max(0, g.month-1))
}

func (g *Game) Year() int { return g.CurrentDate().Year() }

// Oil returns a copy of the oil market; mutating it does not touch the game.
func (g *Game) Oil() *Market {
	m := cloneMarket(g.oil)
	return &m
}

func (g *Game) Steel() *Market {
	m := cloneMarket(g.steel)
	return &m
}

func (g *Game) MarketView() MarketView {
	return MarketView{Oil: cloneMarket(g.oil), Steel: cloneMarket(g.steel)}
}

func (g *Game) LoanTerms() LoanTerms { return g.loan }

func (g *Game) Player() *Company { return g.companies[0] }

func (g *Game) Companies() []*Company { return g.companies }

func (g *Game) Company(id string) (*Company, bool) {
	for _, c := range g.companies {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

func (g *Game) reputation(companyID string) float64 {
	if c, ok := g.Company(companyID); ok {
		return c.Reputation
	}
	return 0
}

func (g *Game) OpenTenders() []Tender {
	return append([]Tender(nil), g.tenders...)
}

func (g *Game) tender(id int) *Tender {
	for i := range g.tenders {
		if g.tenders[i].ID == id {
			return &g.tenders[i]
		}
	}
	return nil
}

func (g *Game) Listings() []RigForSale {
	return append([]RigForSale(nil), g.listings...)
}

func (g *Game) PendingBids() []Bid {
	return append([]Bid(nil), g.bids...)
}

func (g *Game) History() []HistoryRecord {
	return append([]HistoryRecord(nil), g.history...)
}

func (g *Game) checkActive() error {
	if g.phase == PhaseBankrupt {
		return ErrBankrupt
	}
	return nil
}

func (g *Game) playerRig(id int) (*Rig, error) {
	r, ok := g.Player().Rig(id)
	if !ok {
		return nil, errorf(ErrNotFound, "rig %d not in your fleet", id)
	}
	return r, nil
}
