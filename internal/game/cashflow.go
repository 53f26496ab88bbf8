package game

// Settlement is one company's monthly cashflow. Net is exactly what was added
// to cash.
type Settlement struct {
	CompanyID   string  `json:"company_id"`
	RevenueM    float64 `json:"revenue_m"`
	OpexM       float64 `json:"opex_m"`
	StackingM   float64 `json:"stacking_m"`
	InterestM   float64 `json:"interest_m"`
	NetM        float64 `json:"net_m"`
	CashBeforeM float64 `json:"cash_before_m"`
	CashAfterM  float64 `json:"cash_after_m"`
	Released    []int   `json:"released_rigs,omitempty"`
}

// settle applies one month of revenue, opex, stacking and interest. A rig
// whose contract runs out stays active and becomes available.
func settle(c *Company, year int, monthlyRate float64) Settlement {
	s := Settlement{CompanyID: c.ID, CashBeforeM: c.Cash}
	for _, r := range c.Rigs {
		if r.UnderContract() {
			s.RevenueM += float64(r.ContractDayrate*DaysPerMonth) / 1000
			s.OpexM += float64(OpexPerDayK(r, year)*DaysPerMonth) / 1000
			r.ContractMonthsLeft--
			if r.ContractMonthsLeft == 0 {
				r.ContractDayrate = 0
				r.ContractID = nil
				s.Released = append(s.Released, r.ID)
			}
			continue
		}
		s.StackingM += float64(StackingCostK(r)) / 1000
	}
	if c.Debt > 0 {
		s.InterestM = c.Debt * monthlyRate
	}
	s.NetM = s.RevenueM - (s.OpexM + s.StackingM + s.InterestM)
	c.Cash += s.NetM
	s.CashAfterM = c.Cash
	return s
}
