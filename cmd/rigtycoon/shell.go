package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"rigtycoon/internal/game"
	"rigtycoon/internal/history"
)

var errQuit = errors.New("quit")

// shell runs one textual command against a loaded game. The cobra one-shot
// commands and the interactive loop both go through it.
type shell struct {
	g    *game.Game
	path string
}

type shellCmd struct {
	usage  string
	help   string
	mutate bool
	run    func(s *shell, w io.Writer, args []string) error
}

var shellCmds = map[string]shellCmd{
	"status":      {"status", "month, prices, cash and counts", false, (*shell).status},
	"fleet":       {"fleet", "your rigs", false, (*shell).fleet},
	"tenders":     {"tenders", "open tenders and eligible rigs", false, (*shell).tenders},
	"market":      {"market", "commodity prices and rigs for sale", false, (*shell).market},
	"finances":    {"finances", "cash, debt and contract schedule", false, (*shell).finances},
	"leaderboard": {"leaderboard", "all companies", false, (*shell).leaderboard},
	"history":     {"history [company|all] [csv-path]", "resolved months", false, (*shell).history},
	"bids":        {"bids", "your pending bids", false, (*shell).bids},
	"suggest":     {"suggest [place]", "autopilot bids, optionally placed", true, (*shell).suggest},
	"bid":         {"bid <tender> <rig> <rate_k>", "bid a rig on a tender", true, (*shell).bid},
	"unbid":       {"unbid <tender>", "withdraw a bid", true, (*shell).unbid},
	"advance":     {"advance [auto]", "resolve this month and open the next", true, (*shell).advance},
	"stack":       {"stack <rig> warm|cold", "stack an idle rig", true, (*shell).stack},
	"reactivate":  {"reactivate <rig>", "bring a stacked rig back to active", true, (*shell).reactivate},
	"mobilize":    {"mobilize <rig> <region>", "move an idle active rig", true, (*shell).mobilize},
	"buy":         {"buy <listing>", "buy a rig from the resale market", true, (*shell).buy},
	"scrap":       {"scrap <rig>", "scrap an idle rig", true, (*shell).scrap},
	"loan":        {"loan take|repay <amount_m>", "borrow or repay", true, (*shell).loan},
}

func init() {
	shellCmds["help"] = shellCmd{"help", "this list", false, (*shell).help}
}

// exec runs line and reports whether the game changed.
func (s *shell) exec(w io.Writer, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name := strings.ToLower(fields[0])
	if name == "quit" || name == "exit" {
		return false, errQuit
	}
	cmd, ok := shellCmds[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	if err := cmd.run(s, w, fields[1:]); err != nil {
		return false, err
	}
	return cmd.mutate, nil
}

func intArgs(args []string, names ...string) ([]int, error) {
	if len(args) < len(names) {
		return nil, fmt.Errorf("missing %s", strings.Join(names[len(args):], ", "))
	}
	out := make([]int, len(names))
	for i, n := range names {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number, got %q", n, args[i])
		}
		out[i] = v
	}
	return out, nil
}

func (s *shell) status(w io.Writer, _ []string) error {
	renderStatus(w, s.g.Status())
	return nil
}

func (s *shell) fleet(w io.Writer, _ []string) error {
	renderFleet(w, s.g.Fleet())
	return nil
}

func (s *shell) tenders(w io.Writer, _ []string) error {
	renderTenders(w, s.g.TenderViews())
	return nil
}

func (s *shell) market(w io.Writer, _ []string) error {
	mv := s.g.MarketView()
	renderMarket(w, &mv.Oil, &mv.Steel, s.g.ResaleMarket())
	return nil
}

func (s *shell) finances(w io.Writer, _ []string) error {
	renderFinances(w, s.g.Finances())
	return nil
}

func (s *shell) leaderboard(w io.Writer, _ []string) error {
	rows := s.g.Leaderboard()
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CashM-rows[i].DebtM > rows[j].CashM-rows[j].DebtM })
	renderLeaderboard(w, rows)
	return nil
}

func (s *shell) history(w io.Writer, args []string) error {
	company := game.PlayerCompanyID
	if len(args) > 0 {
		company = args[0]
	}
	var rows []game.HistoryRecord
	for _, h := range s.g.History() {
		if company == "all" || h.CompanyID == company {
			rows = append(rows, h)
		}
	}
	if len(args) > 1 {
		if err := history.WriteCSVFile(args[1], rows); err != nil {
			return err
		}
		printSuccess(w, fmt.Sprintf("Wrote %d rows to %s.", len(rows), args[1]))
		return nil
	}
	renderHistory(w, rows)
	return nil
}

func (s *shell) bids(w io.Writer, _ []string) error {
	renderBids(w, s.g.PendingBids())
	return nil
}

func (s *shell) suggest(w io.Writer, args []string) error {
	bids := s.g.SuggestBids()
	renderBids(w, bids)
	if len(args) == 0 || args[0] != "place" {
		return nil
	}
	for _, b := range bids {
		printResult(w, game.ResultOf(s.g.PlaceBid(b.TenderID, b.RigID, b.DayrateK), fmt.Sprintf("Bid rig %d on tender %d at $%dk/d.", b.RigID, b.TenderID, b.DayrateK)))
	}
	return nil
}

func (s *shell) bid(w io.Writer, args []string) error {
	v, err := intArgs(args, "tender", "rig", "rate_k")
	if err != nil {
		return err
	}
	if err := s.g.PlaceBid(v[0], v[1], v[2]); err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Bid rig %d on tender %d at $%dk/d.", v[1], v[0], v[2]))
	return nil
}

func (s *shell) unbid(w io.Writer, args []string) error {
	v, err := intArgs(args, "tender")
	if err != nil {
		return err
	}
	if err := s.g.WithdrawBid(v[0]); err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Withdrew bid on tender %d.", v[0]))
	return nil
}

func (s *shell) advance(w io.Writer, args []string) error {
	var extra []game.Bid
	if len(args) > 0 && args[0] == "auto" && s.g.Phase() == game.PhasePrepared {
		for _, b := range s.g.SuggestBids() {
			if _, placed := findPending(s.g.PendingBids(), b.TenderID); !placed {
				extra = append(extra, b)
			}
		}
	}
	report, _, err := s.g.Advance(extra...)
	if err != nil {
		return err
	}
	if report.Month > 0 {
		renderReport(w, report)
	}
	if report.Bankrupt {
		return nil
	}
	fmt.Fprintln(w)
	renderStatus(w, s.g.Status())
	renderTenders(w, s.g.TenderViews())
	return nil
}

func findPending(bids []game.Bid, tenderID int) (game.Bid, bool) {
	for _, b := range bids {
		if b.TenderID == tenderID {
			return b, true
		}
	}
	return game.Bid{}, false
}

func (s *shell) stack(w io.Writer, args []string) error {
	v, err := intArgs(args, "rig")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("missing target state (warm or cold)")
	}
	to, err := game.ParseRigState(args[1])
	if err != nil {
		return err
	}
	if to != game.StateWarm && to != game.StateCold {
		return fmt.Errorf("stack target must be warm or cold")
	}
	return s.setState(w, v[0], to)
}

func (s *shell) reactivate(w io.Writer, args []string) error {
	v, err := intArgs(args, "rig")
	if err != nil {
		return err
	}
	return s.setState(w, v[0], game.StateActive)
}

func (s *shell) setState(w io.Writer, rigID int, to game.RigState) error {
	cost, err := s.g.SetRigState(rigID, to)
	if err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Rig %d is now %s (cost %s).", rigID, to, money(cost)))
	return nil
}

func (s *shell) mobilize(w io.Writer, args []string) error {
	v, err := intArgs(args, "rig")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("missing region")
	}
	region, err := game.ParseRegion(args[1])
	if err != nil {
		return err
	}
	cost, err := s.g.Mobilize(v[0], region)
	if err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Rig %d mobilizing to %s (cost %s).", v[0], region, money(cost)))
	return nil
}

func (s *shell) buy(w io.Writer, args []string) error {
	v, err := intArgs(args, "listing")
	if err != nil {
		return err
	}
	r, err := s.g.BuyRig(v[0])
	if err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Bought %s rig %d in %s. It arrives cold.", r.Type, r.ID, r.Region))
	return nil
}

func (s *shell) scrap(w io.Writer, args []string) error {
	v, err := intArgs(args, "rig")
	if err != nil {
		return err
	}
	payout, err := s.g.Scrap(v[0])
	if err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Scrapped rig %d for %s.", v[0], money(payout)))
	return nil
}

func (s *shell) loan(w io.Writer, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: loan take|repay <amount_m>")
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("amount must be a number, got %q", args[1])
	}
	switch args[0] {
	case "take":
		err = s.g.TakeLoan(amount)
	case "repay":
		err = s.g.RepayLoan(amount)
	default:
		return fmt.Errorf("loan action must be take or repay")
	}
	if err != nil {
		return err
	}
	renderFinances(w, s.g.Finances())
	return nil
}

func (s *shell) help(w io.Writer, _ []string) error {
	names := make([]string, 0, len(shellCmds))
	for n := range shellCmds {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := shellCmds[n]
		fmt.Fprintf(w, "  %-34s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(w, "  %-34s %s\n", "quit", "save and leave")
	return nil
}
