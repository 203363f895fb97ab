package workbook

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/nconklindev/mealroute/internal/report"
	"github.com/nconklindev/mealroute/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	MaxSheetNameLen  = 31
	FallbackSheet    = "Route"
	SummarySheet     = "Summary"
	TotalsLabel      = "TOTALS"
	DeliveredMarker  = "X"
	defaultFirstName = "Sheet1"
)

type Options struct {
	Summary bool
}

func DefaultOptions() Options {
	return Options{Summary: true}
}

// SummaryRow is one line of the Summary sheet. Values are computed from the
// records, not written as formulas.
type SummaryRow struct {
	Label     string
	Rows      int
	Meals     int
	Delivered int
}

func Summarize(label string, records []types.DeliveryRecord) SummaryRow {
	row := SummaryRow{Label: label, Rows: len(records)}
	for _, r := range records {
		row.Meals += r.Meals
		if r.Delivered {
			row.Delivered++
		}
	}
	return row
}

// ColumnLetter converts a 0-based column index to spreadsheet lettering:
// 0 is A, 25 is Z, 26 is AA.
func ColumnLetter(idx0 int) string {
	name, err := excelize.ColumnNumberToName(idx0 + 1)
	if err != nil {
		return ""
	}
	return name
}

// SanitizeSheetName keeps letters and digits only and truncates to the
// 31 character sheet name limit.
func SanitizeSheetName(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		if n == MaxSheetNameLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	if b.Len() == 0 {
		return FallbackSheet
	}
	return b.String()
}

// DayRouteSheetName builds the "{DayShort}_{Route}" sheet name.
func DayRouteSheetName(day types.Weekday, route string) string {
	return truncate(day.Short()+"_"+SanitizeSheetName(route), MaxSheetNameLen)
}

// ExportDay writes one sheet per route of a single day, followed by a
// Summary sheet with one row per route.
func ExportDay(table *types.DayTable, routes []string, opts Options) (*bytes.Buffer, error) {
	if table == nil {
		return nil, fmt.Errorf("export day: no data loaded")
	}
	w, err := newWriter(opts)
	if err != nil {
		return nil, err
	}
	defer w.close()

	var summary []SummaryRow
	for _, route := range routes {
		records := report.RecordsForRoute(table, route)
		if _, err := w.addSheet(SanitizeSheetName(route), table.Columns, records); err != nil {
			return nil, fmt.Errorf("route %q: %w", route, err)
		}
		summary = append(summary, Summarize(route, records))
	}

	return w.finish("Route", summary)
}

// ExportRoute writes one sheet per day that has records on route, named
// "{DayShort}_{Route}", followed by a Summary sheet with one row per day.
// tables is indexed in Monday to Friday order; nil entries are skipped.
func ExportRoute(tables []*types.DayTable, route string, opts Options) (*bytes.Buffer, error) {
	w, err := newWriter(opts)
	if err != nil {
		return nil, err
	}
	defer w.close()

	var summary []SummaryRow
	for _, table := range tables {
		records := report.RecordsForRoute(table, route)
		if len(records) == 0 {
			continue
		}
		if _, err := w.addSheet(DayRouteSheetName(table.Day, route), table.Columns, records); err != nil {
			return nil, fmt.Errorf("%s: %w", table.Day, err)
		}
		summary = append(summary, Summarize(table.Day.String(), records))
	}

	return w.finish("Day", summary)
}

// ExportWeek writes one sheet per day and route combination that has
// records, followed by a Summary sheet keyed by day and route.
func ExportWeek(tables []*types.DayTable, routes []string, opts Options) (*bytes.Buffer, error) {
	w, err := newWriter(opts)
	if err != nil {
		return nil, err
	}
	defer w.close()

	var summary []SummaryRow
	for _, table := range tables {
		if table == nil {
			continue
		}
		for _, route := range routes {
			records := report.RecordsForRoute(table, route)
			if len(records) == 0 {
				continue
			}
			if _, err := w.addSheet(DayRouteSheetName(table.Day, route), table.Columns, records); err != nil {
				return nil, fmt.Errorf("%s %q: %w", table.Day, route, err)
			}
			summary = append(summary, Summarize(table.Day.Short()+" "+route, records))
		}
	}

	return w.finish("Day Route", summary)
}

type writer struct {
	f      *excelize.File
	styles sheetStyles
	opts   Options
	used   map[string]bool
	sheets []string
}

func newWriter(opts Options) (*writer, error) {
	f := excelize.NewFile()
	styles, err := buildStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &writer{f: f, styles: styles, opts: opts, used: make(map[string]bool)}
	if opts.Summary {
		w.used[strings.ToLower(SummarySheet)] = true
	}
	return w, nil
}

func (w *writer) close() {
	_ = w.f.Close()
}

// uniqueName resolves collisions between sanitized names. Sheet names are
// case-insensitive in a workbook.
func (w *writer) uniqueName(base string) string {
	name := base
	for n := 2; w.used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf("%d", n)
		name = truncate(base, MaxSheetNameLen-len(suffix)) + suffix
	}
	w.used[strings.ToLower(name)] = true
	return name
}

func (w *writer) newSheet(name string) error {
	if len(w.sheets) == 0 {
		if err := w.f.SetSheetName(defaultFirstName, name); err != nil {
			return err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return err
	}
	w.sheets = append(w.sheets, name)
	return nil
}

func (w *writer) addSheet(base string, columns []string, records []types.DeliveryRecord) (string, error) {
	sheet := w.uniqueName(base)
	if err := w.newSheet(sheet); err != nil {
		return "", err
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := w.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", err
	}

	for i, rec := range records {
		values := rowValues(columns, rec)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
			return "", err
		}
	}

	n := len(records)
	last := ColumnLetter(len(columns) - 1)
	if err := w.f.SetCellStyle(sheet, "A1", last+"1", w.styles.header); err != nil {
		return "", err
	}

	for ci, col := range columns {
		letter := ColumnLetter(ci)
		if err := w.f.SetColWidth(sheet, letter, letter, ColumnWidth(col)); err != nil {
			return "", err
		}
		if n > 0 {
			top := fmt.Sprintf("%s2", letter)
			bottom := fmt.Sprintf("%s%d", letter, n+1)
			if err := w.f.SetCellStyle(sheet, top, bottom, w.styles.forColumn(col)); err != nil {
				return "", err
			}
		}
	}

	if err := w.writeTotals(sheet, columns, n); err != nil {
		return "", err
	}
	return sheet, nil
}

// writeTotals appends the TOTALS row directly below the data. The delivered
// count and meal sum are live formulas over rows 2..n+1.
func (w *writer) writeTotals(sheet string, columns []string, n int) error {
	row := n + 2
	last := ColumnLetter(len(columns) - 1)

	if err := w.f.SetCellValue(sheet, fmt.Sprintf("A%d", row), TotalsLabel); err != nil {
		return err
	}
	for ci, col := range columns {
		var formula string
		switch col {
		case types.ColDelivered:
			formula = CountDeliveredFormula(ci, n)
		case types.ColQuantity:
			formula = SumFormula(ci, n)
		default:
			continue
		}
		if err := w.f.SetCellFormula(sheet, fmt.Sprintf("%s%d", ColumnLetter(ci), row), formula); err != nil {
			return err
		}
	}

	return w.f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", last, row), w.styles.totals)
}

// CountDeliveredFormula counts the "X" markers of column idx0 over n data rows.
func CountDeliveredFormula(idx0, n int) string {
	l := ColumnLetter(idx0)
	return fmt.Sprintf(`COUNTIF(%s2:%s%d,"%s")`, l, l, n+1, DeliveredMarker)
}

// SumFormula sums column idx0 over n data rows.
func SumFormula(idx0, n int) string {
	l := ColumnLetter(idx0)
	return fmt.Sprintf("SUM(%s2:%s%d)", l, l, n+1)
}

func rowValues(columns []string, rec types.DeliveryRecord) []interface{} {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		switch c {
		case types.ColDelivered:
			values[i] = DeliveredCell(rec.Delivered)
		case types.ColQuantity:
			values[i] = rec.Meals
		default:
			values[i] = rec.Value(c)
		}
	}
	return values
}

// DeliveredCell renders the delivered flag for export. The conversion is
// one-way; session state keeps the boolean.
func DeliveredCell(delivered bool) string {
	if delivered {
		return DeliveredMarker
	}
	return ""
}

func (w *writer) finish(labelHeader string, summary []SummaryRow) (*bytes.Buffer, error) {
	if w.opts.Summary {
		if err := w.writeSummary(labelHeader, summary); err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
	}
	w.f.SetActiveSheet(0)

	return w.f.WriteToBuffer()
}

func (w *writer) writeSummary(labelHeader string, rows []SummaryRow) error {
	if err := w.newSheet(SummarySheet); err != nil {
		return err
	}

	header := []interface{}{labelHeader, "Rows", "Meals", "Delivered"}
	if err := w.f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		values := []interface{}{r.Label, r.Rows, r.Meals, r.Delivered}
		if err := w.f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}

	if err := w.f.SetCellStyle(SummarySheet, "A1", "D1", w.styles.header); err != nil {
		return err
	}
	if err := w.f.SetColWidth(SummarySheet, "A", "A", 24); err != nil {
		return err
	}
	if err := w.f.SetColWidth(SummarySheet, "B", "D", 12); err != nil {
		return err
	}
	if len(rows) > 0 {
		end := len(rows) + 1
		if err := w.f.SetCellStyle(SummarySheet, "A2", fmt.Sprintf("A%d", end), w.styles.left); err != nil {
			return err
		}
		if err := w.f.SetCellStyle(SummarySheet, "B2", fmt.Sprintf("D%d", end), w.styles.center); err != nil {
			return err
		}
	}
	return nil
}

// DayFileName names a per-day export after that day's date in the week.
func DayFileName(weekStart time.Time, day types.Weekday) string {
	date := weekStart.AddDate(0, 0, int(day))
	return fmt.Sprintf("%s_%s_Delivery_Log.xlsx", date.Format("2006-01-02"), day)
}

func RouteFileName(weekStart time.Time, route string) string {
	return fmt.Sprintf("Week_%s_%s_Delivery_Log.xlsx", weekStart.Format("2006-01-02"), SanitizeSheetName(route))
}

func WeekFileName(weekStart time.Time) string {
	return fmt.Sprintf("Week_%s_Delivery_Log.xlsx", weekStart.Format("2006-01-02"))
}

// WriteFile writes an exported workbook to path, creating parent directories.
func WriteFile(path string, buf *bytes.Buffer) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
