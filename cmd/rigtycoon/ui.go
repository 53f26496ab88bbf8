package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"rigtycoon/internal/game"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

func printSuccess(w io.Writer, msg string) { success.Fprintln(w, msg) }

func printWarn(w io.Writer, msg string) { warn.Fprintln(w, msg) }

func printError(w io.Writer, msg string) { danger.Fprintln(w, msg) }

func printInfo(w io.Writer, msg string) { neutral.Fprintln(w, msg) }

func printResult(w io.Writer, res game.Result) {
	if res.OK {
		printSuccess(w, res.Message)
		return
	}
	printError(w, res.Message)
}

func money(m float64) string {
	return "$" + strconv.FormatFloat(m, 'f', 1, 64) + "m"
}

func colorizeMoney(m float64) string {
	s := money(m)
	switch {
	case m > 0:
		return color.GreenString("+" + s)
	case m < 0:
		return color.RedString(s)
	default:
		return s
	}
}

func renderStatus(w io.Writer, s game.Status) {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("Month %d  %s  (%s)", s.Month, s.Date, s.Phase)))
	fmt.Fprintf(&b, "Oil   $%.2f/bbl    Steel $%.0f/t\n", s.OilPrice, s.SteelPrice)
	demand := make([]string, 0, len(game.Regions))
	for _, r := range game.Regions {
		demand = append(demand, fmt.Sprintf("%s %.2f", r, s.Demand[r]))
	}
	fmt.Fprintf(&b, "Demand %s\n", strings.Join(demand, "  "))
	fmt.Fprintf(&b, "Cash  %s    Debt %s\n", money(s.CashM), money(s.DebtM))
	fmt.Fprintf(&b, "Rigs %d  Tenders %d  Bids %d  For sale %d", s.Rigs, s.OpenTenders, s.PendingBids, s.Listings)
	fmt.Fprintln(w, panelStyle.Render(b.String()))
	if s.Phase == game.PhaseBankrupt {
		printError(w, "BANKRUPT. Game over.")
	}
}

func renderFleet(w io.Writer, rigs []game.RigView) {
	if len(rigs) == 0 {
		printInfo(w, "No rigs.")
		return
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Type", "Region", "State", "Age", "Cond", "Opex/d", "B/E", "Contract", "Idle $k/mo"}),
	)
	for _, r := range rigs {
		contract := "-"
		switch {
		case r.UnderContract():
			contract = fmt.Sprintf("$%dk x %dmo", r.ContractDayrate, r.ContractMonthsLeft)
		case r.InTransit() && r.TargetRegion != nil:
			contract = "-> " + string(*r.TargetRegion)
		}
		idle := "-"
		if !r.UnderContract() {
			idle = strconv.Itoa(r.StackingK)
		}
		table.Append([]string{
			strconv.Itoa(r.ID),
			string(r.Type),
			string(r.Region),
			string(r.State),
			strconv.Itoa(r.AgeYears),
			strconv.Itoa(r.Condition),
			strconv.Itoa(r.OpexK),
			strconv.Itoa(r.BreakEvenK),
			contract,
			idle,
		})
	}
	table.Render()
}

func renderTenders(w io.Writer, tenders []game.TenderView) {
	if len(tenders) == 0 {
		printInfo(w, "No open tenders this month.")
		return
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Type", "Region", "Class", "Pos", "Depth", "Harsh", "Start", "Months", "Cond>=", "Rate $k", "Eligible", "My bid"}),
	)
	for _, t := range tenders {
		s := t.Spec
		harsh := ""
		if s.Harsh {
			harsh = "yes"
		}
		eligible := make([]string, 0, len(t.EligibleRigs))
		for _, id := range t.EligibleRigs {
			eligible = append(eligible, strconv.Itoa(id))
		}
		mine := "-"
		if t.MyBid != nil {
			mine = fmt.Sprintf("rig %d @ %d", t.MyBid.RigID, t.MyBid.DayrateK)
		}
		table.Append([]string{
			strconv.Itoa(t.ID),
			string(s.Category),
			string(s.Region),
			string(s.RigClass),
			string(s.Positioning),
			fmt.Sprintf("%.0fm", s.WaterDepthM),
			harsh,
			s.StartDate.Format("2006-01-02"),
			strconv.Itoa(s.Months),
			strconv.Itoa(s.MinCondition),
			fmt.Sprintf("%d-%d", s.MinDayrateK, s.MaxDayrateK),
			strings.Join(eligible, ","),
			mine,
		})
	}
	table.Render()
}

func renderMarket(w io.Writer, oil, steel *game.Market, listings []game.ListingView) {
	accent.Fprintln(w, "Commodities")
	fmt.Fprintf(w, "Oil   $%.2f (lagged %.2f, factor %.2f)\n", oil.Price, oil.LaggedPrice(), oil.PriceFactor())
	fmt.Fprintf(w, "Steel $%.0f (lagged %.0f, demand %.2f)\n", steel.Price, steel.LaggedPrice(), steel.GlobalDemand)
	fmt.Fprintln(w)
	accent.Fprintln(w, "Rigs for sale")
	if len(listings) == 0 {
		printInfo(w, "Nothing listed this month.")
		return
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Type", "Region", "Age", "Cond", "Opex/d", "Price"}),
	)
	for _, l := range listings {
		table.Append([]string{
			strconv.Itoa(l.Rig.ID),
			string(l.Rig.Type),
			string(l.Rig.Region),
			strconv.Itoa(l.AgeYears),
			strconv.Itoa(l.Rig.Condition),
			strconv.Itoa(l.OpexK),
			money(l.PriceM),
		})
	}
	table.Render()
}

func renderFinances(w io.Writer, f game.Finances) {
	accent.Fprintln(w, "Finances")
	fmt.Fprintf(w, "Cash          %s\n", money(f.CashM))
	fmt.Fprintf(w, "Debt          %s (limit %s, %s left)\n", money(f.DebtM), money(f.CreditLimitM), money(f.CreditLeftM))
	fmt.Fprintf(w, "Interest      %.2f%%/mo = %s\n", f.MonthlyRate*100, money(f.MonthlyInterest))
	fmt.Fprintf(w, "Idle burn     %s/mo\n", money(f.IdleBurnM))
	fmt.Fprintf(w, "Backlog       %s\n", money(f.BacklogM))
	if len(f.Schedule) == 0 {
		return
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Rig", "Contract", "Rate $k", "Months left", "Ends", "Backlog"}),
	)
	for _, e := range f.Schedule {
		table.Append([]string{
			strconv.Itoa(e.RigID),
			strconv.Itoa(e.ContractID),
			strconv.Itoa(e.DayrateK),
			strconv.Itoa(e.MonthsLeft),
			e.EndsOn,
			money(e.BacklogM),
		})
	}
	table.Render()
}

func renderLeaderboard(w io.Writer, rows []game.CompanyView) {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Company", "Cash", "Debt", "Rep", "Rigs", "Contracted"}),
	)
	for _, c := range rows {
		name := c.Name
		if c.Player {
			name += " (you)"
		}
		table.Append([]string{
			name,
			money(c.CashM),
			money(c.DebtM),
			fmt.Sprintf("%.2f", c.Reputation),
			strconv.Itoa(c.Rigs),
			strconv.Itoa(c.Contracted),
		})
	}
	table.Render()
}

func renderHistory(w io.Writer, rows []game.HistoryRecord) {
	if len(rows) == 0 {
		printInfo(w, "No resolved months yet.")
		return
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Month", "Date", "Company", "Oil", "Cash", "Debt", "Active", "Warm", "Cold", "Contracted"}),
	)
	for _, h := range rows {
		table.Append([]string{
			strconv.Itoa(h.Month),
			h.Date,
			h.Company,
			fmt.Sprintf("%.2f", h.OilPrice),
			money(h.CashM),
			money(h.DebtM),
			strconv.Itoa(h.RigsActive),
			strconv.Itoa(h.RigsWarm),
			strconv.Itoa(h.RigsCold),
			strconv.Itoa(h.RigsContracted),
		})
	}
	table.Render()
}

func renderBids(w io.Writer, bids []game.Bid) {
	if len(bids) == 0 {
		printInfo(w, "No bids.")
		return
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Tender", "Rig", "Rate $k"}),
	)
	for _, b := range bids {
		table.Append([]string{strconv.Itoa(b.TenderID), strconv.Itoa(b.RigID), strconv.Itoa(b.DayrateK)})
	}
	table.Render()
}

func renderReport(w io.Writer, r game.TurnReport) {
	accent.Fprintf(w, "\n=== Month %02d | %s | Oil $%.1f | Steel $%.0f ===\n", r.Month, r.Date, r.OilPrice, r.SteelPrice)
	for _, a := range r.Awards {
		line := fmt.Sprintf("Tender %d (%s) -> %s rig %d @ $%dk/d x %dmo", a.TenderID, a.Region, a.CompanyName, a.RigID, a.DayrateK, a.Months)
		if a.CompanyID == game.PlayerCompanyID {
			printSuccess(w, line)
		} else {
			printInfo(w, line)
		}
	}
	if len(r.Lapsed) > 0 {
		printWarn(w, fmt.Sprintf("Lapsed without bids: %v", r.Lapsed))
	}
	for _, d := range r.Dropped {
		printWarn(w, fmt.Sprintf("Your bid on tender %d was dropped: %s", d.Bid.TenderID, d.Reason))
	}
	for _, id := range r.Arrivals {
		printInfo(w, fmt.Sprintf("Rig %d arrived.", id))
	}
	for _, s := range r.Settlements {
		if s.CompanyID != game.PlayerCompanyID {
			continue
		}
		fmt.Fprintf(w, "Revenue %s  Opex %s  Stacking %s  Interest %s  Net %s  Cash %s\n",
			money(s.RevenueM), money(s.OpexM), money(s.StackingM), money(s.InterestM), colorizeMoney(s.NetM), money(s.CashAfterM))
		if len(s.Released) > 0 {
			printInfo(w, fmt.Sprintf("Contracts finished on rigs %v.", s.Released))
		}
	}
	if r.Bankrupt {
		printError(w, "BANKRUPT. Game over.")
	}
}
