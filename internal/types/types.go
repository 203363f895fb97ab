package types

import (
	"fmt"
	"strings"
)

// Display columns, in the order they appear in the grid and in exports.
const (
	ColRoute       = "Delivery Route"
	ColClientID    = "Client ID"
	ColClientName  = "Client Name"
	ColAddress     = "Address"
	ColPhone       = "Phone"
	ColQuantity    = "Quantity"
	ColServiceType = "Service Type"
	ColDietType    = "Diet Type"
	ColDelivered   = "Delivered"
)

var DisplayColumns = []string{
	ColRoute,
	ColClientID,
	ColClientName,
	ColAddress,
	ColPhone,
	ColQuantity,
	ColServiceType,
	ColDietType,
	ColDelivered,
}

type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Weekdays is the fixed Monday to Friday order used for route selection,
// snapshots and exports.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func (d Weekday) String() string {
	if d < Monday || d > Friday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Short returns the three letter form used in sheet names.
func (d Weekday) Short() string {
	return d.String()[:3]
}

// ParseWeekday accepts full or three letter names, case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range Weekdays {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday: %q", s)
}

// DeliveryRecord is one row per client, day and route.
type DeliveryRecord struct {
	ID          string
	Route       string
	ClientID    string
	Name        string
	Address     string
	Phone       string
	Meals       int
	ServiceType string
	DietType    string
	Delivered   bool
}

// Value returns the display value of a column. Delivered is rendered by the
// caller, since the grid and the export render it differently.
func (r DeliveryRecord) Value(col string) string {
	switch col {
	case ColRoute:
		return r.Route
	case ColClientID:
		return r.ClientID
	case ColClientName:
		return r.Name
	case ColAddress:
		return r.Address
	case ColPhone:
		return r.Phone
	case ColQuantity:
		return fmt.Sprintf("%d", r.Meals)
	case ColServiceType:
		return r.ServiceType
	case ColDietType:
		return r.DietType
	}
	return ""
}

// DayTable holds the normalized records of one weekday upload. Columns lists
// the display columns the source could provide, in DisplayColumns order.
type DayTable struct {
	Day     Weekday
	Columns []string
	Records []DeliveryRecord
}

func (t *DayTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnIndex returns the 0-based position of a display column, or -1.
func (t *DayTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

type ImportResult struct {
	Day        Weekday
	InputFile  string
	HeaderRow  int
	Columns    []string
	RowsLoaded int
}

type ExportResult struct {
	OutputFile string
	Rows       int
}
