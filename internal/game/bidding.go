package game

import (
	"fmt"
	"sort"
)

type Bid struct {
	TenderID  int    `json:"tender_id"`
	CompanyID string `json:"company_id"`
	RigID     int    `json:"rig_id"`
	DayrateK  int    `json:"dayrate_k"`
}

// checkEligible is the single eligibility rule for both AI candidates and
// player bids: available, not scrapped, class match, same region, condition
// at or above the tender minimum.
func checkEligible(r *Rig, spec TenderSpec) error {
	switch {
	case r.State == StateScrap:
		return fmt.Errorf("%w: rig %d is scrapped", ErrIneligibleRig, r.ID)
	case r.UnderContract():
		return fmt.Errorf("%w: rig %d is under contract", ErrIneligibleRig, r.ID)
	case r.InTransit():
		return fmt.Errorf("%w: rig %d is in transit", ErrIneligibleRig, r.ID)
	case r.State != StateActive:
		return fmt.Errorf("%w: rig %d is %s, reactivate first", ErrIneligibleRig, r.ID, r.State)
	case !spec.RigClass.Accepts(r.Type):
		return fmt.Errorf("%w: rig %d is a %s, tender needs %s", ErrIneligibleRig, r.ID, r.Type, spec.RigClass)
	case r.Region != spec.Region:
		return fmt.Errorf("%w: rig %d is in %s, tender is in %s", ErrIneligibleRig, r.ID, r.Region, spec.Region)
	case r.Condition < spec.MinCondition:
		return fmt.Errorf("%w: rig %d condition %d below minimum %d", ErrIneligibleRig, r.ID, r.Condition, spec.MinCondition)
	}
	return nil
}

func Eligible(r *Rig, spec TenderSpec) bool {
	return checkEligible(r, spec) == nil
}

func eligibleRigs(c *Company, spec TenderSpec) []*Rig {
	var out []*Rig
	for _, r := range c.Rigs {
		if Eligible(r, spec) {
			out = append(out, r)
		}
	}
	return out
}

// validateBid checks a bid against the tender and the bidder's roster.
func validateBid(c *Company, t *Tender, b Bid) error {
	if t == nil {
		return fmt.Errorf("%w: tender %d is not open", ErrNotFound, b.TenderID)
	}
	if b.DayrateK < 1 || b.DayrateK > t.Spec.MaxDayrateK {
		return fmt.Errorf("%w: day-rate %dk outside 1..%dk", ErrInvalidBid, b.DayrateK, t.Spec.MaxDayrateK)
	}
	r, ok := c.Rig(b.RigID)
	if !ok {
		return fmt.Errorf("%w: rig %d not in %s fleet", ErrNotFound, b.RigID, c.Name)
	}
	return checkEligible(r, t.Spec)
}

// ChooseAIBid picks the AI's rig and day-rate for a tender, or reports no bid.
// It draws no randomness.
func ChooseAIBid(c *Company, t Tender, year int) (Bid, bool) {
	p := c.Personality
	spec := t.Spec
	candidates := eligibleRigs(c, spec)
	if len(candidates) == 0 {
		return Bid{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ki := float64(absInt(candidates[i].Condition-spec.MinCondition)) * (1 - p.QualityBias)
		kj := float64(absInt(candidates[j].Condition-spec.MinCondition)) * (1 - p.QualityBias)
		if ki != kj {
			return ki < kj
		}
		return candidates[i].Condition > candidates[j].Condition
	})
	rig := candidates[0]
	be := BreakEvenDayrateK(rig, year)

	bid := spec.MaxDayrateK - int((0.05+0.35*p.Aggressiveness)*float64(spec.MaxDayrateK))
	if c.Cash < 25 {
		bid = min(bid, be+8)
	}
	if p.Desperation > 0.6 && c.Cash < 15 {
		bid = min(bid, be-int(5*p.Desperation))
	}
	bid = min(bid, spec.MaxDayrateK)
	if bid < be-10 && p.Desperation < 0.5 {
		return Bid{}, false
	}
	return Bid{TenderID: t.ID, CompanyID: c.ID, RigID: rig.ID, DayrateK: max(1, bid)}, true
}

// SuggestBid is the autopilot heuristic: cheapest eligible rig to run, priced
// off regional demand softness, skipped when well under break-even.
func SuggestBid(c *Company, t Tender, regionalDemand float64, year int) (Bid, bool) {
	spec := t.Spec
	candidates := eligibleRigs(c, spec)
	if len(candidates) == 0 {
		return Bid{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		oi, oj := OpexPerDayK(candidates[i], year), OpexPerDayK(candidates[j], year)
		if oi != oj {
			return oi < oj
		}
		return candidates[i].Condition > candidates[j].Condition
	})
	rig := candidates[0]

	softness := 1 - min(1, regionalDemand/3)
	rate := spec.MaxDayrateK - int((0.08+0.22*softness)*float64(spec.MaxDayrateK))
	if rate < OpexPerDayK(rig, year)+12-8 {
		return Bid{}, false
	}
	return Bid{TenderID: t.ID, CompanyID: c.ID, RigID: rig.ID, DayrateK: max(1, rate)}, true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
