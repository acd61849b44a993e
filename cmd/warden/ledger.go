package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sandevgo/warden/internal/config"
	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/internal/service/activity"
	"github.com/sandevgo/warden/internal/service/scheduler"
	"github.com/sandevgo/warden/internal/service/ui"
	"github.com/sandevgo/warden/internal/storage"
	"github.com/sandevgo/warden/internal/storage/memstore"
	"github.com/sandevgo/warden/pkg/log"
	"github.com/spf13/cobra"
)

var (
	dryRun   bool
	showChat int64
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect or maintain the activity ledger",
	Long: `Works on the stored activity data directly. Stop the bot first:
both processes writing the same store lose updates.`,
}

var ledgerShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Print scores and history per chat",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *activity.Ledger) error {
			renderLedger(cmd.OutOrStdout(), l, showChat)
			return nil
		})
	},
}

var ledgerSnapshotCmd = &cobra.Command{
	Use:          "snapshot",
	Short:        "Append every current score to its history",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *activity.Ledger) error {
			l.SnapshotAll(ctx, time.Now())
			renderLedger(cmd.OutOrStdout(), l, showChat)
			return nil
		})
	},
}

var ledgerDecayCmd = &cobra.Command{
	Use:          "decay",
	Short:        "Apply the weekly decay to every score",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *activity.Ledger) error {
			l.DecayAll(ctx)
			renderLedger(cmd.OutOrStdout(), l, showChat)
			return nil
		})
	},
}

var ledgerCatchUpCmd = &cobra.Command{
	Use:          "catchup",
	Short:        "Replay daily cycles missed since the last run",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(cmd, func(ctx context.Context, l *activity.Ledger) error {
			n := scheduler.New(l, l.Location(), "").CatchUp(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "%d daily cycle(s) replayed\n", n)
			renderLedger(cmd.OutOrStdout(), l, showChat)
			return nil
		})
	},
}

// withLedger loads the ledger from the configured store. With --dry-run the
// documents are copied into memory first and nothing is written back.
func withLedger(cmd *cobra.Command, fn func(ctx context.Context, l *activity.Ledger) error) error {
	ctx, flushLog := setupLogger(cmd.Context())
	defer flushLog()

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return err
	}
	appCfg, err := config.ParseAppConfig()
	if err != nil {
		return err
	}

	store, closeStore, err := storage.Open(ctx, appCfg.GetStore(), appCfg.GetRuntimePath())
	if err != nil {
		return err
	}
	defer closeStore()

	if dryRun {
		data, err := store.Load(ctx, core.DatasetActivity)
		if err != nil {
			return err
		}
		store = memstore.Seed(map[string][]byte{core.DatasetActivity: data})
		log.FromCtx(ctx).Info().Msg("dry run, changes are not saved")
	}

	l := activity.NewLedger(store, appCfg.Location())
	if err := l.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, l)
}

func renderLedger(w io.Writer, l *activity.Ledger, only int64) {
	if last, ok := l.LastDailyRun(); ok {
		fmt.Fprintf(w, "Last daily run: %s\n\n", last.In(l.Location()).Format(time.RFC3339))
	} else {
		fmt.Fprint(w, "Last daily run: never\n\n")
	}

	for _, chatID := range l.Chats() {
		if only != 0 && chatID != only {
			continue
		}

		rows := make([][]string, 0)
		for _, e := range l.Entries(chatID) {
			rows = append(rows, []string{
				strconv.FormatInt(e.UserID, 10),
				strconv.Itoa(e.Record.Score),
				strconv.Itoa(e.Record.BaseScore),
				strconv.Itoa(max(0, e.Record.Score-e.Record.BaseScore)),
				formatHistory(e.Record.History),
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("USER", "SCORE", "BASE", "WEEK", "HISTORY").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return ui.HeaderStyle
				}
				return ui.CellStyle
			})

		fmt.Fprintln(w, ui.TitleStyle.Render(fmt.Sprintf("Chat %d", chatID)))
		fmt.Fprintln(w, t.Render())
	}
}

func formatHistory(h []int) string {
	parts := make([]string, len(h))
	for i, v := range h {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func init() {
	ledgerCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "do not write changes back to the store")
	ledgerCmd.PersistentFlags().Int64Var(&showChat, "chat", 0, "limit output to one chat id")

	ledgerCmd.AddCommand(ledgerShowCmd, ledgerSnapshotCmd, ledgerDecayCmd, ledgerCatchUpCmd)
	rootCmd.AddCommand(ledgerCmd)
}
