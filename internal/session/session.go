package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nconklindev/mealroute/internal/config"
	"github.com/nconklindev/mealroute/internal/report"
	"github.com/nconklindev/mealroute/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidRecord  = errors.New("invalid record")
)

// Session owns the per-day record tables for one operator session. It is
// created at startup, mutated through its methods and read by exports. All
// access happens on the UI goroutine, so it carries no lock.
type Session struct {
	cfg    config.Config
	tables map[types.Weekday]*types.DayTable
}

func New(cfg config.Config) *Session {
	return &Session{
		cfg:    cfg,
		tables: make(map[types.Weekday]*types.DayTable),
	}
}

func (s *Session) Config() config.Config {
	return s.cfg
}

// SetConfig swaps the configuration. Records already loaded keep their
// delivered flags.
func (s *Session) SetConfig(cfg config.Config) {
	s.cfg = cfg
}

func (s *Session) ReportOptions() report.Options {
	return report.Options{DefaultDelivered: s.cfg.DefaultDelivered}
}

func (s *Session) RouteOptions() report.RouteOptions {
	return report.RouteOptions{
		Exclude:   s.cfg.ExcludeCOPO,
		Substring: s.cfg.ExcludeSubstring,
		Max:       s.cfg.MaxRoutes,
	}
}

// Load replaces the table of table.Day, as an upload does.
func (s *Session) Load(table *types.DayTable) {
	s.tables[table.Day] = table
	log.Info().
		Str("day", table.Day.String()).
		Int("rows", len(table.Records)).
		Strs("columns", table.Columns).
		Msg("day loaded")
}

// LoadFile reads a Report export from disk into day.
func (s *Session) LoadFile(day types.Weekday, path string) (*types.ImportResult, error) {
	table, headerRow, err := report.ReadReportFile(path, s.ReportOptions())
	if err != nil {
		log.Warn().Str("day", day.String()).Str("file", path).Err(err).Msg("report rejected")
		return nil, fmt.Errorf("%s: %w", day, err)
	}
	table.Day = day
	s.Load(table)

	return &types.ImportResult{
		Day:        day,
		InputFile:  path,
		HeaderRow:  headerRow,
		Columns:    table.Columns,
		RowsLoaded: len(table.Records),
	}, nil
}

func (s *Session) Table(day types.Weekday) *types.DayTable {
	return s.tables[day]
}

// Tables returns one entry per weekday, Monday to Friday, nil where no data
// is loaded.
func (s *Session) Tables() []*types.DayTable {
	out := make([]*types.DayTable, len(types.Weekdays))
	for i, d := range types.Weekdays {
		out[i] = s.tables[d]
	}
	return out
}

// Days lists the loaded weekdays in order.
func (s *Session) Days() []types.Weekday {
	var days []types.Weekday
	for _, d := range types.Weekdays {
		if s.tables[d] != nil {
			days = append(days, d)
		}
	}
	return days
}

// Routes selects routes across every loaded day.
func (s *Session) Routes() []string {
	return report.Routes(s.Tables(), s.RouteOptions())
}

// DayRoutes selects routes of a single day.
func (s *Session) DayRoutes(day types.Weekday) []string {
	return report.Routes([]*types.DayTable{s.tables[day]}, s.RouteOptions())
}

func (s *Session) RouteRecords(day types.Weekday, route string) []types.DeliveryRecord {
	return report.RecordsForRoute(s.tables[day], route)
}

// Edit carries the operator-editable fields. Nil fields are left alone.
type Edit struct {
	Delivered *bool
	Meals     *int
}

// ApplyEdit mutates one record in place, located by its row id.
func (s *Session) ApplyEdit(day types.Weekday, id string, e Edit) (types.DeliveryRecord, error) {
	rec := s.find(day, id)
	if rec == nil {
		return types.DeliveryRecord{}, fmt.Errorf("%w: %s row %s", ErrRecordNotFound, day, id)
	}
	if e.Delivered != nil {
		rec.Delivered = *e.Delivered
	}
	if e.Meals != nil {
		rec.Meals = clampMeals(*e.Meals)
	}

	log.Debug().
		Str("day", day.String()).
		Str("route", rec.Route).
		Str("client", rec.ClientID).
		Bool("delivered", rec.Delivered).
		Int("meals", rec.Meals).
		Msg("record edited")
	return *rec, nil
}

// SetRouteDelivered sets the delivered flag of every record on route and
// returns how many records changed.
func (s *Session) SetRouteDelivered(day types.Weekday, route string, delivered bool) int {
	table := s.tables[day]
	if table == nil {
		return 0
	}
	changed := 0
	for i := range table.Records {
		if table.Records[i].Route == route && table.Records[i].Delivered != delivered {
			table.Records[i].Delivered = delivered
			changed++
		}
	}
	log.Info().Str("day", day.String()).Str("route", route).Bool("delivered", delivered).Int("changed", changed).Msg("route marked")
	return changed
}

// AppendRecord adds a manually entered record to day. The route is required;
// the delivered flag starts at the configured default.
func (s *Session) AppendRecord(day types.Weekday, rec types.DeliveryRecord) (types.DeliveryRecord, error) {
	rec.Route = strings.TrimSpace(rec.Route)
	if rec.Route == "" {
		return rec, fmt.Errorf("%w: delivery route is required", ErrInvalidRecord)
	}
	rec.ID = uuid.NewString()
	rec.ClientID = strings.TrimSpace(rec.ClientID)
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Address = report.JoinAddress(rec.Address)
	rec.Phone = strings.TrimSpace(rec.Phone)
	rec.ServiceType = strings.TrimSpace(rec.ServiceType)
	rec.DietType = strings.TrimSpace(rec.DietType)
	rec.Meals = clampMeals(rec.Meals)
	rec.Delivered = s.cfg.DefaultDelivered

	table := s.tables[day]
	if table == nil {
		table = &types.DayTable{Day: day, Columns: append([]string(nil), types.DisplayColumns...)}
		s.tables[day] = table
	}
	table.Records = append(table.Records, rec)

	log.Info().Str("day", day.String()).Str("route", rec.Route).Str("client", rec.ClientID).Msg("record appended")
	return rec, nil
}

type Stats struct {
	Rows      int
	Meals     int
	Delivered int
}

func (st Stats) DeliveredRatio() float64 {
	if st.Rows == 0 {
		return 0
	}
	return float64(st.Delivered) / float64(st.Rows)
}

// Stats counts rows, meals and delivered records of a day, optionally
// narrowed to one route ("" for the whole day).
func (s *Session) Stats(day types.Weekday, route string) Stats {
	var st Stats
	table := s.tables[day]
	if table == nil {
		return st
	}
	for _, r := range table.Records {
		if route != "" && r.Route != route {
			continue
		}
		st.Rows++
		st.Meals += r.Meals
		if r.Delivered {
			st.Delivered++
		}
	}
	return st
}

func (s *Session) find(day types.Weekday, id string) *types.DeliveryRecord {
	table := s.tables[day]
	if table == nil {
		return nil
	}
	for i := range table.Records {
		if table.Records[i].ID == id {
			return &table.Records[i]
		}
	}
	return nil
}

func clampMeals(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
