package game

import "time"

type Status struct {
	GameID      string             `json:"game_id"`
	Month       int                `json:"month"`
	Date        string             `json:"date"`
	Phase       Phase              `json:"phase"`
	OilPrice    float64            `json:"oil_price"`
	SteelPrice  float64            `json:"steel_price"`
	Demand      map[Region]float64 `json:"demand"`
	CashM       float64            `json:"cash_m"`
	DebtM       float64            `json:"debt_m"`
	Rigs        int                `json:"rigs"`
	OpenTenders int                `json:"open_tenders"`
	PendingBids int                `json:"pending_bids"`
	Listings    int                `json:"listings"`
}

type RigView struct {
	Rig
	AgeYears    int     `json:"age_years"`
	OpexK       int     `json:"opex_k"`
	BreakEvenK  int     `json:"break_even_k"`
	StackingK   int     `json:"stacking_k"`
	Available   bool    `json:"available"`
	ScrapValueM float64 `json:"scrap_value_m"`
}

type TenderView struct {
	Tender
	EligibleRigs []int `json:"eligible_rigs"`
	MyBid        *Bid  `json:"my_bid,omitempty"`
}

type ListingView struct {
	RigForSale
	AgeYears int `json:"age_years"`
	OpexK    int `json:"opex_k"`
}

type ScheduleEntry struct {
	RigID      int     `json:"rig_id"`
	ContractID int     `json:"contract_id"`
	DayrateK   int     `json:"dayrate_k"`
	MonthsLeft int     `json:"months_left"`
	EndsOn     string  `json:"ends_on"`
	BacklogM   float64 `json:"backlog_m"`
}

type Finances struct {
	CashM           float64         `json:"cash_m"`
	DebtM           float64         `json:"debt_m"`
	CreditLimitM    float64         `json:"credit_limit_m"`
	CreditLeftM     float64         `json:"credit_left_m"`
	MonthlyRate     float64         `json:"monthly_rate"`
	MonthlyInterest float64         `json:"monthly_interest_m"`
	IdleBurnM       float64         `json:"idle_burn_m"`
	BacklogM        float64         `json:"backlog_m"`
	Schedule        []ScheduleEntry `json:"schedule"`
}

type CompanyView struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Player     bool    `json:"player"`
	CashM      float64 `json:"cash_m"`
	DebtM      float64 `json:"debt_m"`
	Reputation float64 `json:"reputation"`
	Rigs       int     `json:"rigs"`
	Contracted int     `json:"contracted"`
}

func (g *Game) Status() Status {
	demand := make(map[Region]float64, len(Regions))
	for _, r := range Regions {
		demand[r] = g.oil.RegionalDemand(r)
	}
	p := g.Player()
	return Status{
		GameID:      g.id,
		Month:       g.month,
		Date:        g.CurrentDate().Format("2006-01-02"),
		Phase:       g.phase,
		OilPrice:    g.oil.Price,
		SteelPrice:  g.steel.Price,
		Demand:      demand,
		CashM:       p.Cash,
		DebtM:       p.Debt,
		Rigs:        len(p.Rigs),
		OpenTenders: len(g.tenders),
		PendingBids: len(g.bids),
		Listings:    len(g.listings),
	}
}

func (g *Game) Fleet() []RigView {
	year := g.Year()
	p := g.Player()
	out := make([]RigView, 0, len(p.Rigs))
	for _, r := range p.Rigs {
		out = append(out, RigView{
			Rig:         *r.clone(),
			AgeYears:    r.Age(year),
			OpexK:       OpexPerDayK(r, year),
			BreakEvenK:  BreakEvenDayrateK(r, year),
			StackingK:   StackingCostK(r),
			Available:   r.Available(),
			ScrapValueM: ScrapValueM(r),
		})
	}
	return out
}

func (g *Game) TenderViews() []TenderView {
	p := g.Player()
	out := make([]TenderView, 0, len(g.tenders))
	for _, t := range g.tenders {
		v := TenderView{Tender: t, EligibleRigs: []int{}}
		for _, r := range eligibleRigs(p, t.Spec) {
			v.EligibleRigs = append(v.EligibleRigs, r.ID)
		}
		if b, ok := findBid(g.bids, t.ID); ok {
			v.MyBid = &b
		}
		out = append(out, v)
	}
	return out
}

func (g *Game) ResaleMarket() []ListingView {
	year := g.Year()
	out := make([]ListingView, 0, len(g.listings))
	for _, l := range g.listings {
		out = append(out, ListingView{
			RigForSale: l,
			AgeYears:   l.Rig.Age(year),
			OpexK:      OpexPerDayK(&l.Rig, year),
		})
	}
	return out
}

func (g *Game) Finances() Finances {
	p := g.Player()
	now := g.CurrentDate()
	f := Finances{
		CashM:           p.Cash,
		DebtM:           p.Debt,
		CreditLimitM:    g.loan.CreditLimitM,
		CreditLeftM:     max(0, g.loan.CreditLimitM-p.Debt),
		MonthlyRate:     g.loan.MonthlyRate,
		MonthlyInterest: p.Debt * g.loan.MonthlyRate,
		Schedule:        []ScheduleEntry{},
	}
	for _, r := range p.Rigs {
		if !r.UnderContract() {
			f.IdleBurnM += float64(StackingCostK(r)) / 1000
			continue
		}
		backlog := float64(r.ContractDayrate*DaysPerMonth*r.ContractMonthsLeft) / 1000
		entry := ScheduleEntry{
			RigID:      r.ID,
			DayrateK:   r.ContractDayrate,
			MonthsLeft: r.ContractMonthsLeft,
			EndsOn:     AddMonths(now, r.ContractMonthsLeft).Format("2006-01-02"),
			BacklogM:   backlog,
		}
		if r.ContractID != nil {
			entry.ContractID = *r.ContractID
		}
		f.BacklogM += backlog
		f.Schedule = append(f.Schedule, entry)
	}
	return f
}

func (g *Game) Leaderboard() []CompanyView {
	out := make([]CompanyView, 0, len(g.companies))
	for _, c := range g.companies {
		v := CompanyView{
			ID:         c.ID,
			Name:       c.Name,
			Player:     c.Player,
			CashM:      c.Cash,
			DebtM:      c.Debt,
			Reputation: c.Reputation,
			Rigs:       len(c.Rigs),
		}
		for _, r := range c.Rigs {
			if r.UnderContract() {
				v.Contracted++
			}
		}
		out = append(out, v)
	}
	return out
}

// StartDate is the calendar date of month one.
func (g *Game) StartDate() time.Time { return g.startDate }

// MarketView is a detached copy of both commodity markets.
type MarketView struct {
	Oil   Market `json:"oil"`
	Steel Market `json:"steel"`
}
