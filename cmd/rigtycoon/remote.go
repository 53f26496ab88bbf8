package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	cl "rigtycoon/internal/cli"

	"github.com/spf13/cobra"
)

func newRemoteCmd(rt *runtime) *cobra.Command {
	apiBase := rt.cfg.APIBaseURL
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Drive a game hosted by rigtycoon-api",
	}
	cmd.PersistentFlags().StringVar(&apiBase, "api", apiBase, "API base URL")

	client := func() *cl.Client { return cl.NewClient(apiBase) }
	withTimeout := func(cmd *cobra.Command) (context.Context, context.CancelFunc) {
		return context.WithTimeout(cmd.Context(), 30*time.Second)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the hosted game's month",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				st, err := client().Status(ctx)
				if err != nil {
					return err
				}
				renderStatus(cmd.OutOrStdout(), st)
				return nil
			},
		},
		&cobra.Command{
			Use:   "fleet",
			Short: "List the hosted player's rigs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				rigs, err := client().Fleet(ctx)
				if err != nil {
					return err
				}
				renderFleet(cmd.OutOrStdout(), rigs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "tenders",
			Short: "List the hosted game's open tenders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				tenders, err := client().Tenders(ctx)
				if err != nil {
					return err
				}
				renderTenders(cmd.OutOrStdout(), tenders)
				return nil
			},
		},
		&cobra.Command{
			Use:   "finances",
			Short: "Show the hosted player's finances",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				f, err := client().Finances(ctx)
				if err != nil {
					return err
				}
				renderFinances(cmd.OutOrStdout(), f)
				return nil
			},
		},
		&cobra.Command{
			Use:   "bid <tender> <rig> <rate_k>",
			Short: "Place a bid on the hosted game",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := intArgs(args, "tender", "rig", "rate_k")
				if err != nil {
					return err
				}
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				res, err := client().PlaceBid(ctx, v[0], v[1], v[2])
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
				return nil
			},
		},
		&cobra.Command{
			Use:   "advance [auto]",
			Short: "Resolve the hosted month and open the next",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := withTimeout(cmd)
				defer cancel()
				c := client()
				w := cmd.OutOrStdout()
				if len(args) == 1 && args[0] == "auto" {
					bids, err := c.SuggestBids(ctx)
					if err != nil {
						return err
					}
					for _, b := range bids {
						res, err := c.PlaceBid(ctx, b.TenderID, b.RigID, b.DayrateK)
						if err != nil {
							return err
						}
						printResult(w, res)
					}
				}
				report, tenders, err := c.Advance(ctx)
				if err != nil {
					return err
				}
				if report.Month > 0 {
					renderReport(w, report)
				}
				printInfo(w, fmt.Sprintf("%s open tenders.", strconv.Itoa(len(tenders))))
				return nil
			},
		},
	)
	return cmd
}
