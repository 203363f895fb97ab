package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nconklindev/mealroute/internal/config"
	"github.com/nconklindev/mealroute/internal/report"
	"github.com/nconklindev/mealroute/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RowIDKey is the snapshot key of the internal row identifier.
const RowIDKey = "_row_id"

var ErrSnapshotLoad = errors.New("snapshot load failed")

// snapshotDoc keeps the five weekday keys in calendar order. A nil slice
// encodes as null, meaning no data for that day.
type snapshotDoc struct {
	Monday    []map[string]any `json:"Monday"`
	Tuesday   []map[string]any `json:"Tuesday"`
	Wednesday []map[string]any `json:"Wednesday"`
	Thursday  []map[string]any `json:"Thursday"`
	Friday    []map[string]any `json:"Friday"`
}

func (d *snapshotDoc) day(w types.Weekday) *[]map[string]any {
	switch w {
	case types.Monday:
		return &d.Monday
	case types.Tuesday:
		return &d.Tuesday
	case types.Wednesday:
		return &d.Wednesday
	case types.Thursday:
		return &d.Thursday
	default:
		return &d.Friday
	}
}

// Snapshot serializes every day table. Delivered is stored as a boolean,
// never as the export's "X" marker.
func (s *Session) Snapshot() ([]byte, error) {
	var doc snapshotDoc
	for _, d := range types.Weekdays {
		table := s.tables[d]
		if table == nil {
			continue
		}
		rows := make([]map[string]any, 0, len(table.Records))
		for _, rec := range table.Records {
			rows = append(rows, snapshotRow(table.Columns, rec))
		}
		*doc.day(d) = rows
	}
	return json.MarshalIndent(doc, "", "  ")
}

func snapshotRow(columns []string, rec types.DeliveryRecord) map[string]any {
	row := map[string]any{RowIDKey: rec.ID}
	for _, c := range columns {
		switch c {
		case types.ColQuantity:
			row[c] = rec.Meals
		case types.ColDelivered:
			row[c] = rec.Delivered
		default:
			row[c] = rec.Value(c)
		}
	}
	return row
}

// Restore replaces all day tables from a snapshot document. Meal counts are
// coerced again and a missing delivered flag takes the current configured
// default. On any error the session is left unchanged.
func (s *Session) Restore(data []byte) error {
	tables, err := decodeSnapshot(data, s.cfg.DefaultDelivered)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot rejected")
		return fmt.Errorf("%w: %v", ErrSnapshotLoad, err)
	}
	s.tables = tables

	log.Info().Int("days", len(tables)).Msg("snapshot restored")
	return nil
}

// SnapshotFileName names the default snapshot of a week, e.g.
// Week_2026-10-12_Session.json.
func SnapshotFileName(weekStart time.Time) string {
	return fmt.Sprintf("Week_%s_Session.json", weekStart.Format(config.DateLayout))
}

func (s *Session) SaveSnapshot(path string) error {
	data, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Info().Str("file", path).Int("days", len(s.Days())).Msg("snapshot saved")
	return nil
}

func (s *Session) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotLoad, err)
	}
	return s.Restore(data)
}

func decodeSnapshot(data []byte, defaultDelivered bool) (map[types.Weekday]*types.DayTable, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string][]map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("document is not a JSON object")
	}

	days := make(map[string]types.Weekday, len(types.Weekdays))
	for _, d := range types.Weekdays {
		days[d.String()] = d
	}

	// Keys must be exact weekday names; aliases would let two keys land on
	// the same day.
	tables := make(map[types.Weekday]*types.DayTable)
	for key, rows := range raw {
		day, ok := days[key]
		if !ok {
			return nil, fmt.Errorf("unknown key %q: want one of Monday..Friday", key)
		}
		if rows == nil {
			continue
		}
		table, err := decodeDay(day, rows, defaultDelivered)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", day, err)
		}
		tables[day] = table
	}
	return tables, nil
}

func decodeDay(day types.Weekday, rows []map[string]any, defaultDelivered bool) (*types.DayTable, error) {
	seen := map[string]bool{
		types.ColRoute:     true,
		types.ColQuantity:  true,
		types.ColDelivered: true,
	}
	table := &types.DayTable{Day: day}

	for i, row := range rows {
		if row == nil {
			return nil, fmt.Errorf("row %d: expected an object", i+1)
		}
		for k := range row {
			seen[k] = true
		}

		delivered, err := decodeDelivered(row[types.ColDelivered], defaultDelivered)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		id := text(row[RowIDKey])
		if id == "" {
			id = uuid.NewString()
		}

		table.Records = append(table.Records, types.DeliveryRecord{
			ID:          id,
			Route:       strings.TrimSpace(text(row[types.ColRoute])),
			ClientID:    text(row[types.ColClientID]),
			Name:        text(row[types.ColClientName]),
			Address:     text(row[types.ColAddress]),
			Phone:       text(row[types.ColPhone]),
			Meals:       report.ParseMeals(text(row[types.ColQuantity])),
			ServiceType: text(row[types.ColServiceType]),
			DietType:    text(row[types.ColDietType]),
			Delivered:   delivered,
		})
	}

	for _, c := range types.DisplayColumns {
		if seen[c] {
			table.Columns = append(table.Columns, c)
		}
	}
	return table, nil
}

// text renders a decoded JSON scalar as a cell string. null reads as "".
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func decodeDelivered(v any, fallback bool) (bool, error) {
	switch t := v.(type) {
	case nil:
		return fallback, nil
	case bool:
		return t, nil
	case string:
		switch strings.TrimSpace(t) {
		case "X", "x":
			return true, nil
		case "":
			return false, nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, fmt.Errorf("delivered: unexpected value %q", t)
		}
		return b, nil
	}
	return false, fmt.Errorf("delivered: unexpected value %v", v)
}
