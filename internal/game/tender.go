package game

import (
	"math"
	"time"
)

type TenderSpec struct {
	Category                 ContractCategory `json:"contract_type"`
	Region                   Region           `json:"region"`
	StartDate                time.Time        `json:"start_date"`
	Months                   int              `json:"months"`
	WaterDepthM              int              `json:"water_depth_m"`
	Harsh                    bool             `json:"harsh"`
	RigClass                 RigClass         `json:"rig_class"`
	Positioning              Positioning      `json:"positioning"`
	MinCondition             int              `json:"min_condition"`
	MinDayrateK              int              `json:"min_dayrate_k"`
	MaxDayrateK              int              `json:"max_dayrate_k"`
	EarlyTerminationPenaltyK int              `json:"early_termination_penalty_k"`
}

type Tender struct {
	ID   int        `json:"id"`
	Spec TenderSpec `json:"spec"`
}

// AddMonths moves d by n calendar months, clamping the day to the target
// month's length.
func AddMonths(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	total := int(m) - 1 + n
	y += total / 12
	mm := total % 12
	if mm < 0 {
		mm += 12
		y--
	}
	month := time.Month(mm + 1)
	last := time.Date(y, month+1, 0, 0, 0, 0, 0, d.Location()).Day()
	if day > last {
		day = last
	}
	return time.Date(y, month, day, 0, 0, 0, 0, d.Location())
}

type TenderGenerator struct {
	cfg ContractGenConfig
}

func NewTenderGenerator(cfg ContractGenConfig) *TenderGenerator {
	return &TenderGenerator{cfg: cfg}
}

func (g *TenderGenerator) Config() ContractGenConfig { return g.cfg }

// Generate draws this month's tenders. ids are assigned sequentially from
// nextID; the next free id is returned.
func (g *TenderGenerator) Generate(rng *Stream, nextID int, asOf time.Time, oilFactor, demandFactor float64) ([]Tender, int) {
	cfg := g.cfg
	raw := cfg.TenderCenter*demandFactor + rng.Uniform(-cfg.TenderNoise, cfg.TenderNoise)
	n := int(math.RoundToEven(clamp(raw, 0, float64(cfg.MaxTenders))))
	tenders := make([]Tender, 0, n)
	for i := 0; i < n; i++ {
		tenders = append(tenders, Tender{ID: nextID, Spec: g.spec(rng, asOf, oilFactor)})
		nextID++
	}
	return tenders, nextID
}

func (g *TenderGenerator) spec(rng *Stream, asOf time.Time, oilFactor float64) TenderSpec {
	cfg := g.cfg
	region := cfg.Regions[rng.IntN(len(cfg.Regions))]
	category := g.pickCategory(rng)

	harshP, ok := cfg.HarshProb[region]
	if !ok {
		harshP = cfg.DefaultHarshProb
	}
	harsh := rng.Bernoulli(harshP)

	dr := cfg.WaterDepthM[category]
	depth := int(rng.Triangular(dr.Min, dr.Max, dr.Mode))

	class, positioning := g.classFor(rng, float64(depth), harsh)

	menu := cfg.DurationMonths[category]
	months := menu[rng.IntN(len(menu))]
	if harsh && category != CategoryWorkover && rng.Bernoulli(cfg.HarshExtensionProb) {
		months += cfg.HarshExtensionMonths
	}

	lead := cfg.StartLeadMonths[rng.IntN(len(cfg.StartLeadMonths))]
	base := asOf
	if rng.Bernoulli(cfg.FirstOfMonthProb) {
		base = time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	}
	start := AddMonths(base, lead)

	rate := cfg.BaseDayrateK[class] * oilFactor
	if harsh {
		rate *= cfg.HarshMult
	}
	if positioning == PositioningDPRequired {
		rate *= cfg.DPMult
	}
	if category == CategoryExploration {
		rate *= cfg.ExplorationMult
	}
	maxRate := max(cfg.MaxDayrateFloorK, int(rate))
	ratio, ok := cfg.MinDayrateFloorRatio[category]
	if !ok {
		ratio = 0.75
	}
	minRate := max(cfg.MinDayrateFloorK, int(float64(maxRate)*ratio))
	if minRate >= maxRate {
		minRate = maxRate - 5
	}

	pm := cfg.PenaltyMonths[category]
	if harsh {
		pm++
	}
	pm = min(pm, max(1, months))
	penalty := max(cfg.PenaltyFloorK, maxRate*DaysPerMonth*pm)

	return TenderSpec{
		Category:                 category,
		Region:                   region,
		StartDate:                start,
		Months:                   months,
		WaterDepthM:              depth,
		Harsh:                    harsh,
		RigClass:                 class,
		Positioning:              positioning,
		MinCondition:             cfg.MinCondition[category],
		MinDayrateK:              minRate,
		MaxDayrateK:              maxRate,
		EarlyTerminationPenaltyK: penalty,
	}
}

func (g *TenderGenerator) pickCategory(rng *Stream) ContractCategory {
	weights := g.cfg.CategoryWeights
	total := 0.0
	for _, w := range weights {
		total += w.Weight
	}
	r := rng.Float64() * total
	acc := 0.0
	for _, w := range weights {
		acc += w.Weight
		if r <= acc {
			return w.Category
		}
	}
	return weights[len(weights)-1].Category
}

// classFor maps water depth to the rig class; jackups never need DP.
func (g *TenderGenerator) classFor(rng *Stream, depth float64, harsh bool) (RigClass, Positioning) {
	cfg := g.cfg
	switch {
	case depth <= cfg.JackupMaxDepthM:
		return ClassJackup, PositioningAny
	case depth <= cfg.SemiMaxDepthM:
		p := cfg.MidDepthDPProb
		if harsh {
			p += cfg.MidDepthHarshDPBonus
		}
		if rng.Bernoulli(p) {
			return ClassSemi, PositioningDPRequired
		}
		return ClassSemi, PositioningMooredOK
	default:
		class := ClassDrillship
		if depth <= cfg.FloaterMaxDepthM {
			class = ClassSemiOrDrillship
		}
		p := cfg.DeepDPProb
		if harsh {
			p += cfg.DeepHarshDPBonus
		}
		if rng.Bernoulli(p) {
			return class, PositioningDPRequired
		}
		return class, PositioningMooredOK
	}
}

func (t TenderSpec) validate() error {
	switch {
	case !validCategory(t.Category) || !validClass(t.RigClass) || !validPositioning(t.Positioning):
		return errorf(ErrCorruptSave, "tender has unknown enum values")
	case t.MinDayrateK <= 0 || t.MinDayrateK >= t.MaxDayrateK:
		return errorf(ErrCorruptSave, "tender day-rate bounds %d..%d", t.MinDayrateK, t.MaxDayrateK)
	case t.Months < 1:
		return errorf(ErrCorruptSave, "tender duration %d", t.Months)
	case t.RigClass == ClassJackup && t.Positioning == PositioningDPRequired:
		return errorf(ErrCorruptSave, "jackup tender requires dp")
	}
	_, err := ParseRegion(string(t.Region))
	if err != nil {
		return errorf(ErrCorruptSave, "tender: %v", err)
	}
	return nil
}
