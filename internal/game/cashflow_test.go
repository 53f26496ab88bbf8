package game

import (
	"math"
	"testing"
)

func TestSettleConservesCash(t *testing.T) {
	contractID := 3
	c := &Company{ID: "x", Cash: 12.5, Debt: 10, Rigs: []*Rig{
		{ID: 1, Type: RigJackup, BuildYear: 2017, Condition: 78, Region: RegionNorthSea, State: StateActive,
			ContractMonthsLeft: 2, ContractDayrate: 150, ContractID: &contractID},
		{ID: 2, Type: RigSemi, BuildYear: 2016, Condition: 82, Region: RegionNorthSea, State: StateWarm},
		{ID: 3, Type: RigJackup, BuildYear: 2007, Condition: 58, Region: RegionGOM, State: StateCold},
		{ID: 4, Type: RigDrillship, BuildYear: 2019, Condition: 90, Region: RegionBrazil, State: StateActive},
	}}
	before := c.Cash
	s := settle(c, 2025, 0.008)

	if c.Cash != before+s.NetM {
		t.Fatalf("cash %v != before %v + net %v", c.Cash, before, s.NetM)
	}
	if s.NetM != s.RevenueM-(s.OpexM+s.StackingM+s.InterestM) {
		t.Fatalf("net %v does not match its parts %+v", s.NetM, s)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"revenue", s.RevenueM, 4.5},
		{"opex", s.OpexM, 1.65},
		{"stacking", s.StackingM, 0.45 + 0.12 + 1.8},
		{"interest", s.InterestM, 0.08},
		{"net", s.NetM, 4.5 - 1.65 - 0.45 - 0.12 - 1.8 - 0.08},
	}
	for _, ck := range checks {
		if math.Abs(ck.got-ck.want) > 1e-9 {
			t.Fatalf("%s = %v, want %v", ck.name, ck.got, ck.want)
		}
	}
	if c.Rigs[0].ContractMonthsLeft != 1 || c.Rigs[0].ContractID == nil {
		t.Fatalf("contract should tick down and persist: %+v", c.Rigs[0])
	}
}

func TestSettleReleasesFinishedContract(t *testing.T) {
	contractID := 8
	r := &Rig{ID: 1, Type: RigJackup, BuildYear: 2017, Condition: 78, Region: RegionNorthSea, State: StateActive,
		ContractMonthsLeft: 1, ContractDayrate: 120, ContractID: &contractID}
	c := &Company{ID: "x", Cash: 5, Rigs: []*Rig{r}}
	s := settle(c, 2025, 0.008)

	if len(s.Released) != 1 || s.Released[0] != 1 {
		t.Fatalf("expected rig 1 released, got %v", s.Released)
	}
	if r.ContractMonthsLeft != 0 || r.ContractDayrate != 0 || r.ContractID != nil {
		t.Fatalf("contract fields not cleared: %+v", r)
	}
	if r.State != StateActive || !r.Available() {
		t.Fatalf("released rig should stay active and available: %+v", r)
	}
	if s.InterestM != 0 {
		t.Fatalf("no debt should mean no interest, got %v", s.InterestM)
	}

	// Next month it is idle and pays active stacking.
	s = settle(c, 2025, 0.008)
	if s.RevenueM != 0 || s.StackingM != 0.9 {
		t.Fatalf("idle month: %+v", s)
	}
}
