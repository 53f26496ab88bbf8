package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	cl "rigtycoon/internal/cli"
	"rigtycoon/internal/config"
	"rigtycoon/internal/game"
	"rigtycoon/internal/tuning"

	"github.com/spf13/cobra"
)

type runtime struct {
	cfg     config.CLIConfig
	verbose bool
}

func (rt *runtime) logger() *slog.Logger {
	if !rt.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (rt *runtime) open() (*shell, error) {
	sess, err := cl.LoadSession(rt.cfg.Home)
	if err != nil {
		return nil, err
	}
	g, err := game.Load(sess.SavePath, rt.logger())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", sess.SavePath, err)
	}
	return &shell{g: g, path: sess.SavePath}, nil
}

func main() {
	rt := &runtime{cfg: config.LoadCLIFromEnv()}

	root := &cobra.Command{
		Use:          "rigtycoon",
		Short:        "Offshore drilling contractor tycoon",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&rt.cfg.Home, "home", rt.cfg.Home, "state directory")
	root.PersistentFlags().StringVar(&rt.cfg.TuningPath, "tuning", rt.cfg.TuningPath, "YAML tuning file for new games")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "log engine events to stderr")

	root.AddCommand(
		newNewCmd(rt),
		newLoadCmd(rt),
		newSaveCmd(rt),
		newPlayCmd(rt),
		newRemoteCmd(rt),
		shellCommand(rt, "status", "Show the current month", cobra.NoArgs),
		shellCommand(rt, "fleet", "List your rigs", cobra.NoArgs),
		shellCommand(rt, "tenders", "List open tenders", cobra.NoArgs),
		shellCommand(rt, "market", "Show commodity prices and rigs for sale", cobra.NoArgs),
		shellCommand(rt, "finances", "Show cash, debt and contract backlog", cobra.NoArgs),
		shellCommand(rt, "leaderboard", "Compare all companies", cobra.NoArgs),
		shellCommand(rt, "history", "Show resolved months [company|all] [csv-path]", cobra.MaximumNArgs(2)),
		shellCommand(rt, "bids", "List your pending bids", cobra.NoArgs),
		shellCommand(rt, "suggest", "Show autopilot bids; `suggest place` places them", cobra.MaximumNArgs(1)),
		shellCommand(rt, "bid", "Bid a rig: bid <tender> <rig> <rate_k>", cobra.ExactArgs(3)),
		shellCommand(rt, "unbid", "Withdraw the bid on a tender", cobra.ExactArgs(1)),
		shellCommand(rt, "advance", "Resolve the month and open the next; `advance auto` adds autopilot bids", cobra.MaximumNArgs(1)),
		shellCommand(rt, "stack", "Stack an idle rig: stack <rig> warm|cold", cobra.ExactArgs(2)),
		shellCommand(rt, "reactivate", "Reactivate a stacked rig", cobra.ExactArgs(1)),
		shellCommand(rt, "mobilize", "Move a rig: mobilize <rig> <region>", cobra.ExactArgs(2)),
		shellCommand(rt, "buy", "Buy a listed rig", cobra.ExactArgs(1)),
		shellCommand(rt, "scrap", "Scrap an idle rig", cobra.ExactArgs(1)),
		shellCommand(rt, "loan", "Borrow or repay: loan take|repay <amount_m>", cobra.ExactArgs(2)),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// shellCommand exposes a shell command as a one-shot subcommand that loads the
// active save, runs, and writes the save back when the game changed.
func shellCommand(rt *runtime, name, short string, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   shellCmds[name].usage,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			sh, err := rt.open()
			if err != nil {
				return err
			}
			changed, err := sh.exec(cmd.OutOrStdout(), strings.Join(append([]string{name}, argv...), " "))
			if err != nil {
				return err
			}
			if changed {
				return sh.g.Save(sh.path)
			}
			return nil
		},
	}
}

func newNewCmd(rt *runtime) *cobra.Command {
	var (
		seed  int64
		out   string
		start string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new game and make it active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			opts, err := tuning.Load(rt.cfg.TuningPath, game.DefaultOptions(seed))
			if err != nil {
				return err
			}
			opts.Seed = seed
			opts.Logger = rt.logger()
			if start != "" {
				d, err := time.Parse("2006-01-02", start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				opts.StartDate = d
			}
			g, err := game.New(opts)
			if err != nil {
				return err
			}
			if _, err := g.PrepareTurn(); err != nil {
				return err
			}
			if out == "" {
				out = cl.DefaultSavePath(rt.cfg.Home)
			}
			if err := g.Save(out); err != nil {
				return err
			}
			if err := cl.SaveSession(rt.cfg.Home, cl.Session{SavePath: out, GameID: g.ID()}); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printSuccess(w, fmt.Sprintf("New game %s (seed %d) saved to %s.", g.ID(), seed, out))
			renderStatus(w, g.Status())
			renderTenders(w, g.TenderViews())
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (default: time based)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "save path (.json or .json.zst)")
	cmd.Flags().StringVar(&start, "start", "", "start date YYYY-MM-DD")
	return cmd
}

func newLoadCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Validate a save file and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := game.Load(args[0], rt.logger())
			if err != nil {
				return err
			}
			if err := cl.SaveSession(rt.cfg.Home, cl.Session{SavePath: args[0], GameID: g.ID()}); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printSuccess(w, fmt.Sprintf("Loaded %s.", args[0]))
			renderStatus(w, g.Status())
			return nil
		},
	}
}

func newSaveCmd(rt *runtime) *cobra.Command {
	var switchTo bool
	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Write a copy of the active game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := rt.open()
			if err != nil {
				return err
			}
			if err := sh.g.Save(args[0]); err != nil {
				return err
			}
			if switchTo {
				if err := cl.SaveSession(rt.cfg.Home, cl.Session{SavePath: args[0], GameID: sh.g.ID()}); err != nil {
					return err
				}
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Saved month %d to %s.", sh.g.Month(), args[0]))
			return nil
		},
	}
	cmd.Flags().BoolVar(&switchTo, "switch", false, "make the copy the active game")
	return cmd
}

func newPlayCmd(rt *runtime) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Interactive session on the active game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := rt.open()
			if err != nil {
				return err
			}
			if !plain && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
				return runTUI(sh)
			}
			return runREPL(sh, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "line-based prompt instead of the full-screen view")
	return cmd
}

func autosave(sh *shell, w io.Writer) {
	if err := sh.g.Save(sh.path); err != nil {
		printError(w, "autosave failed: "+err.Error())
	}
}

func describeErr(err error) string {
	if game.IsRejection(err) {
		return "rejected: " + err.Error()
	}
	if errors.Is(err, cl.ErrNoSession) {
		return err.Error()
	}
	return "error: " + err.Error()
}
