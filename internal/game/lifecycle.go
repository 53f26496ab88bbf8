package game

import "fmt"

type transition struct{ from, to RigState }

// transitionCostM holds the single-step lifecycle moves in $m. Jumps between
// cold and active pay both legs through warm.
var transitionCostM = map[transition]map[RigType]float64{
	{StateCold, StateWarm}:   {RigJackup: 1.5, RigSemi: 2.5, RigDrillship: 3.0},
	{StateWarm, StateActive}: {RigJackup: 0.8, RigSemi: 1.2, RigDrillship: 1.5},
	{StateActive, StateWarm}: {RigJackup: 0.3, RigSemi: 0.4, RigDrillship: 0.5},
	{StateWarm, StateCold}:   {RigJackup: 0.4, RigSemi: 0.5, RigDrillship: 0.6},
}

const (
	mobilizationCostM  = 3.0
	mobilizationMonths = 1
)

// TransitionCostM reports the cost of moving a rig type between states, and
// whether the move is legal at all.
func TransitionCostM(t RigType, from, to RigState) (float64, bool) {
	if from == to {
		return 0, false
	}
	if cost, ok := transitionCostM[transition{from, to}][t]; ok {
		return cost, true
	}
	if (from == StateCold && to == StateActive) || (from == StateActive && to == StateCold) {
		first, ok1 := transitionCostM[transition{from, StateWarm}][t]
		second, ok2 := transitionCostM[transition{StateWarm, to}][t]
		if ok1 && ok2 {
			return first + second, true
		}
	}
	return 0, false
}

// SetRigState stacks or reactivates one of the player's idle rigs.
func (g *Game) SetRigState(rigID int, to RigState) (float64, error) {
	if err := g.checkActive(); err != nil {
		return 0, err
	}
	r, err := g.playerRig(rigID)
	if err != nil {
		return 0, err
	}
	if r.UnderContract() {
		return 0, errorf(ErrUnderContract, "rig %d has %d months left", r.ID, r.ContractMonthsLeft)
	}
	if r.InTransit() {
		return 0, errorf(ErrInTransit, "rig %d arrives in %d months", r.ID, r.TransitMonthsLeft)
	}
	cost, ok := TransitionCostM(r.Type, r.State, to)
	if !ok {
		return 0, errorf(ErrIllegalTransition, "rig %d cannot go %s -> %s", r.ID, r.State, to)
	}
	p := g.Player()
	if p.Cash < cost {
		return 0, errorf(ErrInsufficientFunds, "need $%.1fm, have $%.1fm", cost, p.Cash)
	}
	p.Cash -= cost
	from := r.State
	r.State = to
	g.log.Info("rig state changed", "rig_id", r.ID, "from", from, "to", to, "cost_m", cost)
	return cost, nil
}

// Mobilize starts moving an available rig to another region. It arrives at
// the end of the next resolved month.
func (g *Game) Mobilize(rigID int, target Region) (float64, error) {
	if err := g.checkActive(); err != nil {
		return 0, err
	}
	if _, err := ParseRegion(string(target)); err != nil {
		return 0, errorf(ErrIllegalTransition, "%v", err)
	}
	r, err := g.playerRig(rigID)
	if err != nil {
		return 0, err
	}
	switch {
	case r.UnderContract():
		return 0, errorf(ErrUnderContract, "rig %d has %d months left", r.ID, r.ContractMonthsLeft)
	case r.InTransit():
		return 0, errorf(ErrInTransit, "rig %d already moving to %s", r.ID, *r.TargetRegion)
	case r.State != StateActive:
		return 0, errorf(ErrIllegalTransition, "rig %d is %s, only active rigs mobilize", r.ID, r.State)
	case r.Region == target:
		return 0, errorf(ErrIllegalTransition, "rig %d is already in %s", r.ID, target)
	}
	p := g.Player()
	if p.Cash < mobilizationCostM {
		return 0, errorf(ErrInsufficientFunds, "need $%.1fm, have $%.1fm", mobilizationCostM, p.Cash)
	}
	p.Cash -= mobilizationCostM
	dest := target
	r.TargetRegion = &dest
	r.TransitMonthsLeft = mobilizationMonths
	g.log.Info("rig mobilizing", "rig_id", r.ID, "from", r.Region, "to", target)
	return mobilizationCostM, nil
}

// Scrap removes an idle rig from the player's fleet for its scrap value.
func (g *Game) Scrap(rigID int) (float64, error) {
	if err := g.checkActive(); err != nil {
		return 0, err
	}
	r, err := g.playerRig(rigID)
	if err != nil {
		return 0, err
	}
	if r.UnderContract() {
		return 0, errorf(ErrUnderContract, "rig %d has %d months left", r.ID, r.ContractMonthsLeft)
	}
	if r.InTransit() {
		return 0, errorf(ErrInTransit, "rig %d is in transit", r.ID)
	}
	payout := ScrapValueM(r)
	p := g.Player()
	p.Cash += payout
	r.State = StateScrap
	p.removeRig(r.ID)
	g.bids = dropBidsForRig(g.bids, r.ID)
	g.log.Info("rig scrapped", "rig_id", r.ID, "payout_m", payout)
	return payout, nil
}

// BuyRig purchases a listing from this month's resale market.
func (g *Game) BuyRig(rigID int) (*Rig, error) {
	if err := g.checkActive(); err != nil {
		return nil, err
	}
	idx := -1
	for i, l := range g.listings {
		if l.Rig.ID == rigID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errorf(ErrNotFound, "rig %d is not for sale", rigID)
	}
	listing := g.listings[idx]
	p := g.Player()
	if p.Cash < listing.PriceM {
		return nil, errorf(ErrInsufficientFunds, "need $%.1fm, have $%.1fm", listing.PriceM, p.Cash)
	}
	p.Cash -= listing.PriceM
	r := listing.Rig.clone()
	p.Rigs = append(p.Rigs, r)
	g.listings = append(g.listings[:idx:idx], g.listings[idx+1:]...)
	g.log.Info("rig bought", "rig_id", r.ID, "type", r.Type, "price_m", listing.PriceM)
	return r, nil
}

func (g *Game) TakeLoan(amount float64) error {
	if err := g.checkActive(); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	p := g.Player()
	if p.Debt+amount > g.loan.CreditLimitM {
		return errorf(ErrLoanLimit, "debt would be $%.1fm, limit $%.1fm", p.Debt+amount, g.loan.CreditLimitM)
	}
	p.Debt += amount
	p.Cash += amount
	g.log.Info("loan taken", "amount_m", amount, "debt_m", p.Debt)
	return nil
}

func (g *Game) RepayLoan(amount float64) error {
	if err := g.checkActive(); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	p := g.Player()
	if amount > p.Debt {
		return fmt.Errorf("%w: repaying $%.1fm, owe $%.1fm", ErrInvalidAmount, amount, p.Debt)
	}
	if amount > p.Cash {
		return errorf(ErrInsufficientFunds, "repaying $%.1fm, have $%.1fm", amount, p.Cash)
	}
	p.Debt -= amount
	p.Cash -= amount
	g.log.Info("loan repaid", "amount_m", amount, "debt_m", p.Debt)
	return nil
}

func dropBidsForRig(bids []Bid, rigID int) []Bid {
	out := bids[:0]
	for _, b := range bids {
		if b.RigID != rigID {
			out = append(out, b)
		}
	}
	return out
}
