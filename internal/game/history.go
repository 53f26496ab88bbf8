package game

// HistoryRecord is one company's snapshot at the end of a resolved month.
type HistoryRecord struct {
	Month          int                `json:"month"`
	Date           string             `json:"date"`
	OilPrice       float64            `json:"oil_price"`
	SteelPrice     float64            `json:"steel_price"`
	Demand         map[Region]float64 `json:"demand"`
	CompanyID      string             `json:"company_id"`
	Company        string             `json:"company"`
	CashM          float64            `json:"cash_m"`
	DebtM          float64            `json:"debt_m"`
	Rigs           int                `json:"rigs"`
	RigsActive     int                `json:"rigs_active"`
	RigsWarm       int                `json:"rigs_warm"`
	RigsCold       int                `json:"rigs_cold"`
	RigsContracted int                `json:"rigs_contracted"`
	RigsInTransit  int                `json:"rigs_in_transit"`
}

func (g *Game) recordMonth() []HistoryRecord {
	date := g.CurrentDate().Format("2006-01-02")
	recs := make([]HistoryRecord, 0, len(g.companies))
	for _, c := range g.companies {
		demand := make(map[Region]float64, len(Regions))
		for _, r := range Regions {
			demand[r] = g.oil.RegionalDemand(r)
		}
		rec := HistoryRecord{
			Month:      g.month,
			Date:       date,
			OilPrice:   g.oil.Price,
			SteelPrice: g.steel.Price,
			Demand:     demand,
			CompanyID:  c.ID,
			Company:    c.Name,
			CashM:      c.Cash,
			DebtM:      c.Debt,
			Rigs:       len(c.Rigs),
			RigsActive: c.countState(StateActive),
			RigsWarm:   c.countState(StateWarm),
			RigsCold:   c.countState(StateCold),
		}
		for _, r := range c.Rigs {
			if r.UnderContract() {
				rec.RigsContracted++
			}
			if r.InTransit() {
				rec.RigsInTransit++
			}
		}
		recs = append(recs, rec)
	}
	g.history = append(g.history, recs...)
	return recs
}
