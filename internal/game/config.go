package game

import (
	"log/slog"
	"time"
)

type CategoryWeight struct {
	Category ContractCategory `json:"category" yaml:"category"`
	Weight   float64          `json:"weight" yaml:"weight"`
}

type DepthRange struct {
	Min  float64 `json:"min" yaml:"min"`
	Mode float64 `json:"mode" yaml:"mode"`
	Max  float64 `json:"max" yaml:"max"`
}

// ContractGenConfig drives monthly tender generation. Category weights are an
// ordered list so weighted draws walk them in a stable order.
type ContractGenConfig struct {
	TenderCenter         float64                         `json:"tender_center" yaml:"tender_center"`
	TenderNoise          float64                         `json:"tender_noise" yaml:"tender_noise"`
	MaxTenders           int                             `json:"max_tenders" yaml:"max_tenders"`
	Regions              []Region                        `json:"regions" yaml:"regions"`
	HarshProb            map[Region]float64              `json:"harsh_prob" yaml:"harsh_prob"`
	DefaultHarshProb     float64                         `json:"default_harsh_prob" yaml:"default_harsh_prob"`
	CategoryWeights      []CategoryWeight                `json:"category_weights" yaml:"category_weights"`
	WaterDepthM          map[ContractCategory]DepthRange `json:"water_depth_m" yaml:"water_depth_m"`
	DurationMonths       map[ContractCategory][]int      `json:"duration_months" yaml:"duration_months"`
	StartLeadMonths      []int                           `json:"start_lead_months" yaml:"start_lead_months"`
	FirstOfMonthProb     float64                         `json:"first_of_month_prob" yaml:"first_of_month_prob"`
	HarshExtensionProb   float64                         `json:"harsh_extension_prob" yaml:"harsh_extension_prob"`
	HarshExtensionMonths int                             `json:"harsh_extension_months" yaml:"harsh_extension_months"`
	JackupMaxDepthM      float64                         `json:"jackup_max_depth_m" yaml:"jackup_max_depth_m"`
	SemiMaxDepthM        float64                         `json:"semi_max_depth_m" yaml:"semi_max_depth_m"`
	FloaterMaxDepthM     float64                         `json:"floater_max_depth_m" yaml:"floater_max_depth_m"`
	MidDepthDPProb       float64                         `json:"mid_depth_dp_prob" yaml:"mid_depth_dp_prob"`
	MidDepthHarshDPBonus float64                         `json:"mid_depth_harsh_dp_bonus" yaml:"mid_depth_harsh_dp_bonus"`
	DeepDPProb           float64                         `json:"deep_dp_prob" yaml:"deep_dp_prob"`
	DeepHarshDPBonus     float64                         `json:"deep_harsh_dp_bonus" yaml:"deep_harsh_dp_bonus"`
	BaseDayrateK         map[RigClass]float64            `json:"base_dayrate_k" yaml:"base_dayrate_k"`
	HarshMult            float64                         `json:"harsh_mult" yaml:"harsh_mult"`
	DPMult               float64                         `json:"dp_mult" yaml:"dp_mult"`
	ExplorationMult      float64                         `json:"exploration_mult" yaml:"exploration_mult"`
	MinDayrateFloorRatio map[ContractCategory]float64    `json:"min_dayrate_floor_ratio" yaml:"min_dayrate_floor_ratio"`
	MinDayrateFloorK     int                             `json:"min_dayrate_floor_k" yaml:"min_dayrate_floor_k"`
	MaxDayrateFloorK     int                             `json:"max_dayrate_floor_k" yaml:"max_dayrate_floor_k"`
	PenaltyMonths        map[ContractCategory]int        `json:"penalty_months" yaml:"penalty_months"`
	PenaltyFloorK        int                             `json:"penalty_floor_k" yaml:"penalty_floor_k"`
	MinCondition         map[ContractCategory]int        `json:"min_condition" yaml:"min_condition"`
}

func DefaultContractGenConfig() ContractGenConfig {
	return ContractGenConfig{
		TenderCenter:     1.5,
		TenderNoise:      1.2,
		MaxTenders:       3,
		Regions:          []Region{RegionNorthSea, RegionGOM, RegionBrazil},
		HarshProb:        map[Region]float64{RegionNorthSea: 0.30, RegionGOM: 0.0, RegionBrazil: 0.10},
		DefaultHarshProb: 0.10,
		CategoryWeights: []CategoryWeight{
			{Category: CategoryWorkover, Weight: 0.25},
			{Category: CategoryDevelopment, Weight: 0.50},
			{Category: CategoryExploration, Weight: 0.25},
		},
		WaterDepthM: map[ContractCategory]DepthRange{
			CategoryWorkover:    {Min: 20, Mode: 60, Max: 150},
			CategoryDevelopment: {Min: 30, Mode: 150, Max: 800},
			CategoryExploration: {Min: 80, Mode: 400, Max: 2500},
		},
		DurationMonths: map[ContractCategory][]int{
			CategoryWorkover:    {1, 2, 3, 4},
			CategoryDevelopment: {6, 9, 12, 18, 24},
			CategoryExploration: {3, 6, 9, 12},
		},
		StartLeadMonths:      []int{0, 0, 1, 1, 2, 3},
		FirstOfMonthProb:     0.85,
		HarshExtensionProb:   0.30,
		HarshExtensionMonths: 3,
		JackupMaxDepthM:      120,
		SemiMaxDepthM:        500,
		FloaterMaxDepthM:     1200,
		MidDepthDPProb:       0.15,
		MidDepthHarshDPBonus: 0.25,
		DeepDPProb:           0.65,
		DeepHarshDPBonus:     0.20,
		BaseDayrateK: map[RigClass]float64{
			ClassJackup:          120,
			ClassSemi:            240,
			ClassDrillship:       300,
			ClassSemiOrDrillship: 270,
		},
		HarshMult:       1.15,
		DPMult:          1.20,
		ExplorationMult: 1.05,
		MinDayrateFloorRatio: map[ContractCategory]float64{
			CategoryExploration: 0.70,
			CategoryDevelopment: 0.75,
			CategoryWorkover:    0.75,
		},
		MinDayrateFloorK: 30,
		MaxDayrateFloorK: 40,
		PenaltyMonths: map[ContractCategory]int{
			CategoryWorkover:    1,
			CategoryExploration: 2,
			CategoryDevelopment: 3,
		},
		PenaltyFloorK: 1500,
		MinCondition: map[ContractCategory]int{
			CategoryExploration: 75,
			CategoryDevelopment: 65,
			CategoryWorkover:    50,
		},
	}
}

func (c ContractGenConfig) validate() error {
	if len(c.Regions) == 0 {
		return errorf(ErrInvalidConfig, "contract gen: no regions")
	}
	for _, r := range c.Regions {
		if _, err := ParseRegion(string(r)); err != nil {
			return errorf(ErrInvalidConfig, "contract gen: %v", err)
		}
	}
	if c.MaxTenders < 0 {
		return errorf(ErrInvalidConfig, "contract gen: max_tenders < 0")
	}
	if c.HarshExtensionMonths < 0 {
		return errorf(ErrInvalidConfig, "contract gen: harsh_extension_months < 0")
	}
	total := 0.0
	for _, w := range c.CategoryWeights {
		if !validCategory(w.Category) || w.Weight < 0 {
			return errorf(ErrInvalidConfig, "contract gen: bad category weight %+v", w)
		}
		if _, ok := c.WaterDepthM[w.Category]; !ok {
			return errorf(ErrInvalidConfig, "contract gen: no depth range for %s", w.Category)
		}
		if len(c.DurationMonths[w.Category]) == 0 {
			return errorf(ErrInvalidConfig, "contract gen: no durations for %s", w.Category)
		}
		for _, d := range c.DurationMonths[w.Category] {
			if d < 1 {
				return errorf(ErrInvalidConfig, "contract gen: %s duration %d < 1", w.Category, d)
			}
		}
		if _, ok := c.MinCondition[w.Category]; !ok {
			return errorf(ErrInvalidConfig, "contract gen: no min condition for %s", w.Category)
		}
		total += w.Weight
	}
	if total <= 0 {
		return errorf(ErrInvalidConfig, "contract gen: category weights sum to %v", total)
	}
	if len(c.StartLeadMonths) == 0 {
		return errorf(ErrInvalidConfig, "contract gen: no start lead months")
	}
	for _, cls := range []RigClass{ClassJackup, ClassSemi, ClassDrillship, ClassSemiOrDrillship} {
		if c.BaseDayrateK[cls] <= 0 {
			return errorf(ErrInvalidConfig, "contract gen: missing base day-rate for %s", cls)
		}
	}
	return nil
}

// RigMarketConfig drives the monthly second-hand listings.
type RigMarketConfig struct {
	ListingCenter   float64             `json:"listing_center" yaml:"listing_center"`
	ListingNoise    float64             `json:"listing_noise" yaml:"listing_noise"`
	MaxListings     int                 `json:"max_listings" yaml:"max_listings"`
	MinAge          int                 `json:"min_age" yaml:"min_age"`
	MaxAge          int                 `json:"max_age" yaml:"max_age"`
	MinCondition    int                 `json:"min_condition" yaml:"min_condition"`
	MaxCondition    int                 `json:"max_condition" yaml:"max_condition"`
	Regions         []Region            `json:"regions" yaml:"regions"`
	BasePriceM      map[RigType]float64 `json:"base_price_m" yaml:"base_price_m"`
	AgeDepreciation float64             `json:"age_depreciation" yaml:"age_depreciation"`
	ConditionBase   float64             `json:"condition_base" yaml:"condition_base"`
	ConditionSlope  float64             `json:"condition_slope" yaml:"condition_slope"`
	SteelBaseline   float64             `json:"steel_baseline" yaml:"steel_baseline"`
	PriceFloorM     float64             `json:"price_floor_m" yaml:"price_floor_m"`
}

func DefaultRigMarketConfig() RigMarketConfig {
	return RigMarketConfig{
		ListingCenter:   0.8,
		ListingNoise:    1.0,
		MaxListings:     3,
		MinAge:          5,
		MaxAge:          35,
		MinCondition:    30,
		MaxCondition:    90,
		Regions:         []Region{RegionNorthSea, RegionGOM, RegionBrazil},
		BasePriceM:      map[RigType]float64{RigJackup: 60, RigSemi: 150, RigDrillship: 220},
		AgeDepreciation: 0.02,
		ConditionBase:   0.5,
		ConditionSlope:  0.007,
		SteelBaseline:   800,
		PriceFloorM:     5.0,
	}
}

func (c RigMarketConfig) validate() error {
	switch {
	case len(c.Regions) == 0:
		return errorf(ErrInvalidConfig, "rig market: no regions")
	case c.MaxListings < 0:
		return errorf(ErrInvalidConfig, "rig market: max_listings < 0")
	case c.MinAge > c.MaxAge || c.MinCondition > c.MaxCondition:
		return errorf(ErrInvalidConfig, "rig market: inverted ranges")
	case c.MinCondition < 0 || c.MaxCondition > 100:
		return errorf(ErrInvalidConfig, "rig market: condition outside 0..100")
	case c.SteelBaseline <= 0:
		return errorf(ErrInvalidConfig, "rig market: steel baseline must be > 0")
	}
	for _, t := range RigTypes {
		if c.BasePriceM[t] <= 0 {
			return errorf(ErrInvalidConfig, "rig market: missing base price for %s", t)
		}
	}
	return nil
}

type LoanTerms struct {
	MonthlyRate  float64 `json:"monthly_rate" yaml:"monthly_rate"`
	CreditLimitM float64 `json:"credit_limit_m" yaml:"credit_limit_m"`
}

func DefaultLoanTerms() LoanTerms {
	return LoanTerms{MonthlyRate: 0.008, CreditLimitM: 60}
}

// Options seed a new game. The tuning package overlays YAML onto DefaultOptions.
type Options struct {
	Seed        int64             `yaml:"seed"`
	StartDate   time.Time         `yaml:"-"`
	Oil         MarketParams      `yaml:"oil"`
	Steel       MarketParams      `yaml:"steel"`
	ContractGen ContractGenConfig `yaml:"contract_gen"`
	RigMarket   RigMarketConfig   `yaml:"rig_market"`
	Loan        LoanTerms         `yaml:"loan"`
	Logger      *slog.Logger      `yaml:"-"`
}

func DefaultOptions(seed int64) Options {
	return Options{
		Seed:        seed,
		StartDate:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Oil:         DefaultOilParams(),
		Steel:       DefaultSteelParams(),
		ContractGen: DefaultContractGenConfig(),
		RigMarket:   DefaultRigMarketConfig(),
		Loan:        DefaultLoanTerms(),
	}
}

func (o Options) Validate() error {
	if err := o.Oil.validate(); err != nil {
		return err
	}
	if err := o.Steel.validate(); err != nil {
		return err
	}
	if err := o.ContractGen.validate(); err != nil {
		return err
	}
	if err := o.RigMarket.validate(); err != nil {
		return err
	}
	if o.Loan.MonthlyRate < 0 || o.Loan.CreditLimitM < 0 {
		return errorf(ErrInvalidConfig, "loan terms must be >= 0")
	}
	return nil
}
