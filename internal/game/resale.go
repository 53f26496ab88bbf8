package game

import "math"

type RigForSale struct {
	Rig    Rig     `json:"rig"`
	PriceM float64 `json:"price_m"`
}

type ResaleGenerator struct {
	cfg RigMarketConfig
}

func NewResaleGenerator(cfg RigMarketConfig) *ResaleGenerator {
	return &ResaleGenerator{cfg: cfg}
}

func (g *ResaleGenerator) Config() RigMarketConfig { return g.cfg }

// Generate draws this month's listings. Listed rigs come cold and take ids
// from the shared rig sequence; the next free id is returned.
func (g *ResaleGenerator) Generate(rng *Stream, year int, steelPrice float64, nextRigID int) ([]RigForSale, int) {
	cfg := g.cfg
	raw := cfg.ListingCenter + rng.Uniform(-cfg.ListingNoise, cfg.ListingNoise)
	n := int(math.RoundToEven(clamp(raw, 0, float64(cfg.MaxListings))))
	out := make([]RigForSale, 0, n)
	for i := 0; i < n; i++ {
		rigType := RigTypes[rng.IntN(len(RigTypes))]
		age := rng.IntRange(cfg.MinAge, cfg.MaxAge)
		cond := rng.IntRange(cfg.MinCondition, cfg.MaxCondition)
		region := cfg.Regions[rng.IntN(len(cfg.Regions))]
		rig := Rig{
			ID:        nextRigID,
			Type:      rigType,
			BuildYear: year - age,
			Condition: cond,
			Region:    region,
			State:     StateCold,
		}
		nextRigID++
		out = append(out, RigForSale{Rig: rig, PriceM: g.Price(rigType, age, cond, steelPrice)})
	}
	return out, nextRigID
}

// Price scales the type base by age, condition and steel relative to baseline.
func (g *ResaleGenerator) Price(t RigType, age, condition int, steelPrice float64) float64 {
	cfg := g.cfg
	ageFactor := max(0, 1-cfg.AgeDepreciation*float64(age))
	condFactor := cfg.ConditionBase + cfg.ConditionSlope*float64(condition)
	steelFactor := steelPrice / cfg.SteelBaseline
	price := roundTenth(cfg.BasePriceM[t] * ageFactor * condFactor * steelFactor)
	return max(cfg.PriceFloorM, price)
}
