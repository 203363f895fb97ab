package cli

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/nconklindev/mealroute/internal/session"
	"github.com/nconklindev/mealroute/internal/types"
	"github.com/nconklindev/mealroute/internal/workbook"

	"github.com/spf13/cobra"
)

func newRoutesCommand(a *app) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the routes selected across the loaded days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load(in, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if len(s.Days()) == 0 {
				return errors.New("no day files given")
			}

			out := cmd.OutOrStdout()
			for _, route := range s.Routes() {
				rows, meals := 0, 0
				for _, d := range s.Days() {
					st := s.Stats(d, route)
					rows += st.Rows
					meals += st.Meals
				}
				fmt.Fprintf(out, "%s\t%d rows\t%d meals\n", route, rows, meals)
			}
			return nil
		},
	}
	addInputFlags(cmd, &in)
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var (
		in    inputFlags
		day   string
		route string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a day, route or week delivery log workbook",
		Long: `Write a delivery log workbook from the loaded days.

  --day D     one sheet per route of day D
  --route R   one sheet per day that has route R
  (neither)   one sheet per day and route of the week

The file goes to --out, or under the output directory with its standard name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if day != "" && route != "" {
				return errors.New("--day and --route are mutually exclusive")
			}
			s, err := a.load(in, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			build, save := s.ExportWeek, s.SaveWeek
			switch {
			case day != "":
				d, err := types.ParseWeekday(day)
				if err != nil {
					return err
				}
				build = func() (*bytes.Buffer, error) { return s.ExportDay(d) }
				save = func() (*types.ExportResult, error) { return s.SaveDay(d) }
			case route != "":
				build = func() (*bytes.Buffer, error) { return s.ExportRoute(route) }
				save = func() (*types.ExportResult, error) { return s.SaveRoute(route) }
			}

			res, err := exportTo(out, build, save)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.OutputFile)
			return nil
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().StringVar(&day, "day", "", "export one weekday")
	cmd.Flags().StringVar(&route, "route", "", "export one route across the week")
	cmd.Flags().StringVar(&out, "out", "", "output .xlsx path")
	return cmd
}

// exportTo writes build's workbook to path, or falls back to save when no
// path was given.
func exportTo(path string, build func() (*bytes.Buffer, error), save func() (*types.ExportResult, error)) (*types.ExportResult, error) {
	if path == "" {
		return save()
	}
	buf, err := build()
	if err != nil {
		return nil, err
	}
	if err := workbook.WriteFile(path, buf); err != nil {
		return nil, err
	}
	return &types.ExportResult{OutputFile: path}, nil
}

func newSnapshotCommand(a *app) *cobra.Command {
	var (
		in  inputFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save the loaded days as a session snapshot, or re-export one",
		Long: `With day files, normalize them into a session snapshot (.json).
With --from and no day files, write the week workbook of the snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.load(in, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if len(s.Days()) == 0 {
				return errors.New("no day files or snapshot given")
			}

			if in.from != "" && !in.hasDays() {
				res, err := exportTo(out, s.ExportWeek, s.SaveWeek)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.OutputFile)
				return nil
			}

			path := out
			if path == "" {
				cfg := s.Config()
				path = filepath.Join(cfg.OutputDir, session.SnapshotFileName(cfg.WeekStart))
			}
			if err := s.SaveSnapshot(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	addInputFlags(cmd, &in)
	cmd.Flags().StringVar(&out, "out", "", "output path")
	return cmd
}

func (in inputFlags) hasDays() bool {
	for _, p := range in.days {
		if p != "" {
			return true
		}
	}
	return false
}
