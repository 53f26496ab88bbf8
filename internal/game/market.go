package game

import "math"

// MarketParams configures a mean-reverting commodity price. Demand
// multipliers are derived from the price observed LagMonths ago as
// clamp((lagged-DemandBase)/DemandScale, MinMult, MaxMult).
type MarketParams struct {
	Name         string             `json:"name" yaml:"name"`
	InitialPrice float64            `json:"initial_price" yaml:"initial_price"`
	MeanPrice    float64            `json:"mean_price" yaml:"mean_price"`
	Reversion    float64            `json:"reversion" yaml:"reversion"`
	ShockSD      float64            `json:"shock_sd" yaml:"shock_sd"`
	Floor        float64            `json:"floor" yaml:"floor"`
	Cap          float64            `json:"cap" yaml:"cap"`
	LagMonths    int                `json:"lag_months" yaml:"lag_months"`
	HistoryLen   int                `json:"history_len" yaml:"history_len"`
	DemandBase   float64            `json:"demand_base" yaml:"demand_base"`
	DemandScale  float64            `json:"demand_scale" yaml:"demand_scale"`
	MinMult      float64            `json:"min_mult" yaml:"min_mult"`
	MaxMult      float64            `json:"max_mult" yaml:"max_mult"`
	FactorMin    float64            `json:"factor_min" yaml:"factor_min"`
	FactorMax    float64            `json:"factor_max" yaml:"factor_max"`
	Sensitivity  map[Region]float64 `json:"sensitivity,omitempty" yaml:"sensitivity"`
	GlobalSens   float64            `json:"global_sensitivity,omitempty" yaml:"global_sensitivity"`
}

func DefaultOilParams() MarketParams {
	return MarketParams{
		Name:         "oil",
		InitialPrice: 70,
		MeanPrice:    70,
		Reversion:    0.08,
		ShockSD:      5,
		Floor:        25,
		Cap:          140,
		LagMonths:    9,
		HistoryLen:   36,
		DemandBase:   30,
		DemandScale:  50,
		MinMult:      0.4,
		MaxMult:      1.8,
		FactorMin:    0.6,
		FactorMax:    1.4,
		Sensitivity: map[Region]float64{
			RegionNorthSea: 1.5,
			RegionGOM:      2.2,
			RegionBrazil:   1.8,
		},
	}
}

func DefaultSteelParams() MarketParams {
	return MarketParams{
		Name:         "steel",
		InitialPrice: 800,
		MeanPrice:    800,
		Reversion:    0.05,
		ShockSD:      25,
		Floor:        400,
		Cap:          1400,
		LagMonths:    6,
		HistoryLen:   36,
		DemandBase:   400,
		DemandScale:  400,
		MinMult:      0.5,
		MaxMult:      1.5,
		FactorMin:    0.5,
		FactorMax:    1.75,
		GlobalSens:   1.0,
	}
}

func (p MarketParams) validate() error {
	switch {
	case p.Floor <= 0 || p.Cap <= p.Floor:
		return errorf(ErrInvalidConfig, "%s market: bad price bounds [%v, %v]", p.Name, p.Floor, p.Cap)
	case p.Reversion < 0 || p.Reversion > 1:
		return errorf(ErrInvalidConfig, "%s market: reversion %v outside [0,1]", p.Name, p.Reversion)
	case p.ShockSD < 0:
		return errorf(ErrInvalidConfig, "%s market: negative shock sd", p.Name)
	case p.LagMonths < 0 || p.HistoryLen <= p.LagMonths:
		return errorf(ErrInvalidConfig, "%s market: bad lag/history", p.Name)
	case p.DemandScale == 0 || p.MinMult > p.MaxMult:
		return errorf(ErrInvalidConfig, "%s market: bad demand mapping", p.Name)
	}
	return nil
}

// Market holds a commodity price and its derived demand multipliers. Its
// exported fields are also its save form.
type Market struct {
	Params       MarketParams       `json:"params"`
	Price        float64            `json:"price"`
	History      []float64          `json:"history"`
	Multiplier   float64            `json:"multiplier"`
	Demand       map[Region]float64 `json:"demand,omitempty"`
	GlobalDemand float64            `json:"global_demand,omitempty"`
}

func NewMarket(p MarketParams) *Market {
	m := &Market{Params: p, Price: p.InitialPrice, History: []float64{p.InitialPrice}}
	m.refresh()
	return m
}

// Step advances one month: pull toward the mean, add a normal shock, clamp,
// append to the bounded history and recompute the demand multipliers.
func (m *Market) Step(rng *Stream) {
	p := m.Params
	shock := rng.Normal(0, p.ShockSD)
	next := m.Price + p.Reversion*(p.MeanPrice-m.Price) + shock
	m.Price = clamp(next, p.Floor, p.Cap)
	m.History = append(m.History, m.Price)
	if over := len(m.History) - p.HistoryLen; over > 0 {
		m.History = append([]float64(nil), m.History[over:]...)
	}
	m.refresh()
}

// LaggedPrice is the price LagMonths ago. Until the history reaches that far
// back the current price stands in.
func (m *Market) LaggedPrice() float64 {
	if len(m.History) <= m.Params.LagMonths {
		return m.Price
	}
	return m.History[len(m.History)-1-m.Params.LagMonths]
}

// PriceFactor is price/mean clamped into [FactorMin, FactorMax].
func (m *Market) PriceFactor() float64 {
	if m.Params.MeanPrice == 0 {
		return 1
	}
	return clamp(m.Price/m.Params.MeanPrice, m.Params.FactorMin, m.Params.FactorMax)
}

func (m *Market) RegionalDemand(r Region) float64 {
	if v, ok := m.Demand[r]; ok {
		return v
	}
	return m.Multiplier
}

func (m *Market) refresh() {
	p := m.Params
	m.Multiplier = clamp((m.LaggedPrice()-p.DemandBase)/p.DemandScale, p.MinMult, p.MaxMult)
	if len(p.Sensitivity) > 0 {
		m.Demand = make(map[Region]float64, len(p.Sensitivity))
		for r, s := range p.Sensitivity {
			m.Demand[r] = m.Multiplier * s
		}
	}
	if p.GlobalSens != 0 {
		m.GlobalDemand = m.Multiplier * p.GlobalSens
	}
}

func (m *Market) validate() error {
	if err := m.Params.validate(); err != nil {
		return err
	}
	if math.IsNaN(m.Price) || m.Price < m.Params.Floor || m.Price > m.Params.Cap {
		return errorf(ErrCorruptSave, "%s price %v outside [%v, %v]", m.Params.Name, m.Price, m.Params.Floor, m.Params.Cap)
	}
	if len(m.History) == 0 || len(m.History) > m.Params.HistoryLen {
		return errorf(ErrCorruptSave, "%s history length %d", m.Params.Name, len(m.History))
	}
	return nil
}
