package game

import "sort"

// Award is emitted for every tender that found a winner.
type Award struct {
	TenderID    int    `json:"tender_id"`
	Region      Region `json:"region"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	RigID       int    `json:"rig_id"`
	DayrateK    int    `json:"dayrate_k"`
	Months      int    `json:"months"`
}

const reputationPenaltyK = 4.0

// AuctionScore is the operator's effective cost: lower wins.
func AuctionScore(dayrateK int, reputation float64) float64 {
	return float64(dayrateK) + (1-reputation)*reputationPenaltyK
}

// SelectWinner returns the lowest-scoring bid; on ties the earliest bid in
// input order wins.
func SelectWinner(bids []Bid, reputation func(companyID string) float64) (Bid, bool) {
	if len(bids) == 0 {
		return Bid{}, false
	}
	type scored struct {
		bid   Bid
		score float64
	}
	ranked := make([]scored, len(bids))
	for i, b := range bids {
		ranked[i] = scored{bid: b, score: AuctionScore(b.DayrateK, reputation(b.CompanyID))}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score < ranked[j].score })
	return ranked[0].bid, true
}

func applyAward(r *Rig, t Tender, dayrateK int) {
	id := t.ID
	r.ContractMonthsLeft = t.Spec.Months
	r.ContractDayrate = dayrateK
	r.ContractID = &id
	r.State = StateActive
}
