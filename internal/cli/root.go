// Package cli wires the mealroute commands: the interactive TUI at the root
// and headless routes, export and snapshot sub-commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nconklindev/mealroute/internal/config"
	"github.com/nconklindev/mealroute/internal/logging"
	"github.com/nconklindev/mealroute/internal/session"
	"github.com/nconklindev/mealroute/internal/types"
	"github.com/nconklindev/mealroute/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Build carries the values stamped in at link time.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// app is shared by every command of one invocation.
type app struct {
	cfg    config.Config
	logs   io.Closer
	inputs inputFlags

	weekStart        string
	defaultDelivered bool
	excludeCOPO      bool
	outputDir        string
	logFile          string
	logLevel         string
}

// inputFlags are the per-day uploads and an optional snapshot to start from.
type inputFlags struct {
	days [5]string
	from string
}

func NewRootCommand(build Build) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "mealroute",
		Short: "Track meal deliveries per route and export daily delivery logs",
		Long: `Load the weekly "Report" exports, mark deliveries per route and write
formatted Excel delivery logs.

With no sub-command the interactive dashboard starts. Day files given with
--monday ... --friday, or a snapshot given with --from, are preloaded.

Examples:
  mealroute --monday mon.xlsx --tuesday tue.xlsx
  mealroute routes --monday mon.xlsx --wednesday wed.xlsx
  mealroute export --monday mon.xlsx --day monday
  mealroute snapshot --monday mon.xlsx --out week.json`,
		Version:           build.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logs != nil {
				return a.logs.Close()
			}
			return nil
		},
		RunE: a.runTUI,
	}
	cmd.SetVersionTemplate(fmt.Sprintf("mealroute %s\ncommit: %s\nbuilt: %s\n", build.Version, build.Commit, build.Date))

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.weekStart, "week-start", "", "any date (YYYY-MM-DD) in the week being logged")
	pf.BoolVar(&a.defaultDelivered, "default-delivered", true, "initial delivered flag of loaded records")
	pf.BoolVar(&a.excludeCOPO, "exclude-copo", true, "leave routes containing the exclusion substring out of exports")
	pf.StringVar(&a.outputDir, "output-dir", "", "directory exports and snapshots are written to")
	pf.StringVar(&a.logFile, "log-file", "", "log file path, - for stderr")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	addInputFlags(cmd, &a.inputs)

	cmd.AddCommand(newRoutesCommand(a))
	cmd.AddCommand(newExportCommand(a))
	cmd.AddCommand(newSnapshotCommand(a))

	return cmd
}

func addInputFlags(cmd *cobra.Command, in *inputFlags) {
	for i, d := range types.Weekdays {
		name := d.String()
		cmd.Flags().StringVar(&in.days[i], strings.ToLower(name), "", fmt.Sprintf("%s Report export (.xlsx)", name))
	}
	cmd.Flags().StringVar(&in.from, "from", "", "session snapshot (.json) to start from")
}

// setup loads configuration, applies flag overrides and opens the log.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("week-start") {
		if cfg.WeekStart, err = config.ParseWeekStart(a.weekStart); err != nil {
			return err
		}
	}
	if flags.Changed("default-delivered") {
		cfg.DefaultDelivered = a.defaultDelivered
	}
	if flags.Changed("exclude-copo") {
		cfg.ExcludeCOPO = a.excludeCOPO
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = a.outputDir
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.logFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	closer, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logs = closer

	log.Debug().Str("command", cmd.Name()).Str("week_start", cfg.WeekStart.Format(config.DateLayout)).Msg("starting")
	return nil
}

// load builds a session from the snapshot (if any), then the day uploads.
// Uploads replace the snapshot's table for their day. A rejected day file is
// reported to w and skipped; load fails only when no day could be loaded.
func (a *app) load(in inputFlags, w io.Writer) (*session.Session, error) {
	s := session.New(a.cfg)

	if in.from != "" {
		if err := s.LoadSnapshot(in.from); err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "Restored %d day(s) from %s\n", len(s.Days()), in.from)
	}

	var rejected []error
	for i, path := range in.days {
		if path == "" {
			continue
		}
		res, err := s.LoadFile(types.Weekdays[i], path)
		if err != nil {
			fmt.Fprintf(w, "skipped %v\n", err)
			rejected = append(rejected, err)
			continue
		}
		fmt.Fprintf(w, "%s: %d rows from %s (header on row %d)\n", res.Day, res.RowsLoaded, path, res.HeaderRow+1)
	}
	if len(rejected) > 0 && len(s.Days()) == 0 {
		return nil, errors.Join(rejected...)
	}
	return s, nil
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	s, err := a.load(a.inputs, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	p := tea.NewProgram(ui.NewModel(s), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
