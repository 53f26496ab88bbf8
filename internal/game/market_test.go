package game

import "testing"

func TestMarketStepStaysInBoundsAndCapsHistory(t *testing.T) {
	for _, p := range []MarketParams{DefaultOilParams(), DefaultSteelParams()} {
		p.ShockSD *= 10
		m := NewMarket(p)
		rng := NewStream(3)
		for i := 0; i < 500; i++ {
			m.Step(rng)
			if m.Price < p.Floor || m.Price > p.Cap {
				t.Fatalf("%s price %v outside [%v, %v]", p.Name, m.Price, p.Floor, p.Cap)
			}
			if len(m.History) > p.HistoryLen {
				t.Fatalf("%s history grew to %d", p.Name, len(m.History))
			}
			if m.Multiplier < p.MinMult || m.Multiplier > p.MaxMult {
				t.Fatalf("%s multiplier %v outside [%v, %v]", p.Name, m.Multiplier, p.MinMult, p.MaxMult)
			}
		}
		if len(m.History) != p.HistoryLen {
			t.Fatalf("%s history = %d, want %d", p.Name, len(m.History), p.HistoryLen)
		}
	}
}

func TestMarketDemandUsesLaggedPrice(t *testing.T) {
	p := DefaultOilParams()
	m := NewMarket(p)
	m.History = []float64{120, 40, 40, 40, 40, 40, 40, 40, 40, 40}
	m.Price = 40
	m.refresh()
	// Nine months back is the 120 print: (120-30)/50 = 1.8.
	if m.Multiplier != 1.8 {
		t.Fatalf("multiplier = %v, want 1.8", m.Multiplier)
	}
	if got, want := m.RegionalDemand(RegionGOM), 1.8*2.2; got != want {
		t.Fatalf("gom demand = %v, want %v", got, want)
	}
	if got := m.PriceFactor(); got != 0.6 {
		t.Fatalf("price factor = %v, want floor 0.6", got)
	}
}

func TestMarketShortHistoryUsesCurrentPrice(t *testing.T) {
	m := NewMarket(DefaultOilParams())
	m.History = []float64{50, 90}
	m.Price = 90
	if got := m.LaggedPrice(); got != 90 {
		t.Fatalf("lagged = %v, want current price 90", got)
	}

	fresh := NewMarket(DefaultOilParams())
	rng := NewStream(42)
	for i := 0; i < 2; i++ {
		fresh.Step(rng)
	}
	if got := fresh.LaggedPrice(); got != fresh.Price {
		t.Fatalf("after two steps lagged = %v, want current price %v", got, fresh.Price)
	}
	want := clamp((fresh.Price-fresh.Params.DemandBase)/fresh.Params.DemandScale, fresh.Params.MinMult, fresh.Params.MaxMult)
	if fresh.Multiplier != want {
		t.Fatalf("multiplier = %v, want %v from the current price", fresh.Multiplier, want)
	}
}

func TestSteelGlobalDemand(t *testing.T) {
	m := NewMarket(DefaultSteelParams())
	if m.GlobalDemand != 1.0 {
		t.Fatalf("initial global demand = %v, want 1.0", m.GlobalDemand)
	}
	if len(m.Demand) != 0 {
		t.Fatalf("steel should have no regional demand, got %v", m.Demand)
	}
}

func TestMarketAccessorsAreDetached(t *testing.T) {
	g := newTestGame(t, 4)
	playTurn(t, g)
	before := g.Digest()

	oil := g.Oil()
	oil.Price = 1
	oil.History[0] = 1
	mv := g.MarketView()
	mv.Steel.Price = 1
	mv.Steel.History = append(mv.Steel.History, 1)
	for r := range mv.Oil.Demand {
		mv.Oil.Demand[r] = 0
	}

	if g.Digest() != before {
		t.Fatalf("mutating a market view changed the game")
	}
	if g.Oil().Price == 1 || g.Steel().Price == 1 {
		t.Fatalf("market accessors returned live state")
	}
}
