package game

// Rig is also its own save form; zero-valued contract and transit fields are
// omitted and restore as "idle, not moving".
type Rig struct {
	ID                 int      `json:"id"`
	Type               RigType  `json:"rig_type"`
	BuildYear          int      `json:"build_year"`
	Condition          int      `json:"condition"`
	Region             Region   `json:"region"`
	State              RigState `json:"state"`
	ContractMonthsLeft int      `json:"on_contract_months_left,omitempty"`
	ContractDayrate    int      `json:"contract_dayrate,omitempty"`
	ContractID         *int     `json:"contract_id,omitempty"`
	TargetRegion       *Region  `json:"target_region,omitempty"`
	TransitMonthsLeft  int      `json:"transit_months_left,omitempty"`
}

func (r *Rig) Age(year int) int {
	if age := year - r.BuildYear; age > 0 {
		return age
	}
	return 0
}

func (r *Rig) UnderContract() bool { return r.ContractMonthsLeft > 0 }

func (r *Rig) InTransit() bool { return r.TransitMonthsLeft > 0 }

// Available means the rig can take new work: active, idle and not moving.
func (r *Rig) Available() bool {
	return r.State == StateActive && !r.UnderContract() && !r.InTransit()
}

func (r *Rig) clone() *Rig {
	cp := *r
	if r.ContractID != nil {
		id := *r.ContractID
		cp.ContractID = &id
	}
	if r.TargetRegion != nil {
		reg := *r.TargetRegion
		cp.TargetRegion = &reg
	}
	return &cp
}

var baseOpexK = map[RigType]int{RigJackup: 55, RigSemi: 95, RigDrillship: 125}

// OpexPerDayK is the daily operating cost in $k while working: a base per
// type, +2 per year over ten, and +1 per five points of condition under 70.
func OpexPerDayK(r *Rig, year int) int {
	opex := baseOpexK[r.Type]
	if age := r.Age(year); age > 10 {
		opex += 2 * (age - 10)
	}
	if r.Condition < 70 {
		opex += (70 - r.Condition) / 5
	}
	return opex
}

// BreakEvenDayrateK adds a fixed margin plus an age premium over opex.
func BreakEvenDayrateK(r *Rig, year int) int {
	be := OpexPerDayK(r, year) + 12
	if age := r.Age(year); age > 12 {
		be += age - 12
	}
	return be
}

var stackingCostK = map[RigType]map[RigState]int{
	RigJackup:    {StateActive: 900, StateWarm: 300, StateCold: 120},
	RigSemi:      {StateActive: 1500, StateWarm: 450, StateCold: 180},
	RigDrillship: {StateActive: 1800, StateWarm: 550, StateCold: 220},
}

// StackingCostK is the monthly idle cost in $k for the rig's state.
func StackingCostK(r *Rig) int {
	return stackingCostK[r.Type][r.State]
}

var scrapBaseM = map[RigType]float64{RigJackup: 3.0, RigSemi: 6.0, RigDrillship: 8.0}

// ScrapValueM is base * (0.4 + 0.006*condition), rounded to a tenth.
func ScrapValueM(r *Rig) float64 {
	return roundTenth(scrapBaseM[r.Type] * (0.4 + 0.006*float64(r.Condition)))
}

type Personality struct {
	Aggressiveness float64 `json:"aggressiveness" yaml:"aggressiveness"`
	Desperation    float64 `json:"desperation" yaml:"desperation"`
	QualityBias    float64 `json:"quality_bias" yaml:"quality_bias"`
}

// Company owns rigs; the roster slice order is stable and drives AI bid
// candidate order.
type Company struct {
	ID          string
	Name        string
	Player      bool
	Cash        float64
	Debt        float64
	Reputation  float64
	Personality Personality
	Rigs        []*Rig
}

func (c *Company) Rig(id int) (*Rig, bool) {
	for _, r := range c.Rigs {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (c *Company) removeRig(id int) {
	out := c.Rigs[:0]
	for _, r := range c.Rigs {
		if r.ID != id {
			out = append(out, r)
		}
	}
	c.Rigs = out
}

func (c *Company) countState(state RigState) int {
	n := 0
	for _, r := range c.Rigs {
		if r.State == state {
			n++
		}
	}
	return n
}
