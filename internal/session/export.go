package session

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/nconklindev/mealroute/internal/types"
	"github.com/nconklindev/mealroute/internal/workbook"

	"github.com/rs/zerolog/log"
)

// ExportDay builds the workbook of one day: one sheet per selected route.
func (s *Session) ExportDay(day types.Weekday) (*bytes.Buffer, error) {
	table := s.tables[day]
	if table == nil {
		return nil, fmt.Errorf("%s: no data loaded", day)
	}
	return workbook.ExportDay(table, s.DayRoutes(day), workbook.DefaultOptions())
}

// ExportRoute builds the workbook of one route across every loaded day.
func (s *Session) ExportRoute(route string) (*bytes.Buffer, error) {
	if s.exportedRows(s.Days(), []string{route}) == 0 {
		return nil, fmt.Errorf("route %q: no records loaded", route)
	}
	return workbook.ExportRoute(s.Tables(), route, workbook.DefaultOptions())
}

// ExportWeek builds one workbook covering every day and selected route.
func (s *Session) ExportWeek() (*bytes.Buffer, error) {
	if len(s.Days()) == 0 {
		return nil, errors.New("no data loaded")
	}
	return workbook.ExportWeek(s.Tables(), s.Routes(), workbook.DefaultOptions())
}

// SaveDay writes the day workbook into the output directory.
func (s *Session) SaveDay(day types.Weekday) (*types.ExportResult, error) {
	buf, err := s.ExportDay(day)
	if err != nil {
		return nil, err
	}
	name := workbook.DayFileName(s.cfg.WeekStart, day)
	return s.save(name, buf, s.exportedRows([]types.Weekday{day}, s.DayRoutes(day)))
}

func (s *Session) SaveRoute(route string) (*types.ExportResult, error) {
	buf, err := s.ExportRoute(route)
	if err != nil {
		return nil, err
	}
	rows := s.exportedRows(s.Days(), []string{route})
	return s.save(workbook.RouteFileName(s.cfg.WeekStart, route), buf, rows)
}

func (s *Session) SaveWeek() (*types.ExportResult, error) {
	buf, err := s.ExportWeek()
	if err != nil {
		return nil, err
	}
	return s.save(workbook.WeekFileName(s.cfg.WeekStart), buf, s.exportedRows(s.Days(), s.Routes()))
}

// exportedRows counts the records an export writes: excluded routes and
// routes past the cap are not exported.
func (s *Session) exportedRows(days []types.Weekday, routes []string) int {
	rows := 0
	for _, d := range days {
		for _, r := range routes {
			rows += s.Stats(d, r).Rows
		}
	}
	return rows
}

func (s *Session) save(name string, buf *bytes.Buffer, rows int) (*types.ExportResult, error) {
	path := filepath.Join(s.cfg.OutputDir, name)
	if err := workbook.WriteFile(path, buf); err != nil {
		log.Error().Str("file", path).Err(err).Msg("export failed")
		return nil, err
	}
	log.Info().Str("file", path).Int("rows", rows).Int("bytes", buf.Len()).Msg("workbook exported")
	return &types.ExportResult{OutputFile: path, Rows: rows}, nil
}
