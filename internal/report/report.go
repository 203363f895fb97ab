package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nconklindev/mealroute/internal/types"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName       = "Report"
	HeaderName      = "Delivery Route"
	HeaderScanLimit = 25
)

// Source columns of a PeerPlace Report export.
const (
	srcRoute       = "Delivery Route"
	srcClientID    = "Client ID"
	srcLastName    = "Last Name"
	srcFirstName   = "First Name"
	srcAddress1    = "Address Line 1"
	srcAddress2    = "Address Line 2"
	srcBuilding    = "Building"
	srcHomePhone   = "Home Phone"
	srcMobilePhone = "Mobile Phone"
	srcQuantity    = "Quantity"
	srcServiceType = "Service Type"
	srcDietType    = "Diet Type"
)

var ExpectedColumns = []string{
	srcRoute, srcClientID, srcLastName, srcFirstName,
	srcAddress1, srcAddress2, srcBuilding,
	srcHomePhone, srcMobilePhone, srcQuantity,
	srcServiceType, srcDietType,
}

var identityColumns = []string{srcRoute, srcClientID, srcLastName, srcFirstName}

var ErrMalformedReport = errors.New("malformed report")

type Options struct {
	DefaultDelivered bool
}

// ReadReportFile opens an .xlsx export and normalizes its Report sheet.
func ReadReportFile(path string, opts Options) (*types.DayTable, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, -1, err
	}
	defer f.Close()

	return readWorkbook(f, opts)
}

// ReadReport is ReadReportFile for an already open stream.
func ReadReport(r io.Reader, opts Options) (*types.DayTable, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, -1, err
	}
	defer f.Close()

	return readWorkbook(f, opts)
}

func readWorkbook(f *excelize.File, opts Options) (*types.DayTable, int, error) {
	idx, err := f.GetSheetIndex(SheetName)
	if err != nil || idx == -1 {
		return nil, -1, fmt.Errorf("%w: no %q sheet in workbook", ErrMalformedReport, SheetName)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, -1, err
	}

	headerRowIdx := FindHeaderRow(rows)
	if headerRowIdx == -1 {
		return nil, -1, fmt.Errorf("%w: could not find header row containing %q on the %q sheet",
			ErrMalformedReport, HeaderName, SheetName)
	}

	return Normalize(rows[headerRowIdx], rows[headerRowIdx+1:], opts), headerRowIdx, nil
}

// FindHeaderRow returns the index of the first row, within HeaderScanLimit,
// whose first cell is the Delivery Route header, or -1.
func FindHeaderRow(rows [][]string) int {
	searchLimit := len(rows)
	if searchLimit > HeaderScanLimit {
		searchLimit = HeaderScanLimit
	}

	for i := 0; i < searchLimit; i++ {
		if len(rows[i]) > 0 && strings.TrimSpace(rows[i][0]) == HeaderName {
			return i
		}
	}
	return -1
}

// sourceRow gives access to a raw row by column name. Columns the export did
// not carry read as "".
type sourceRow struct {
	index map[string]int
	cells []string
}

func (r sourceRow) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Normalize turns the rows below a header into a DayTable. The day is left
// at its zero value; callers set it.
func Normalize(header []string, rows [][]string, opts Options) *types.DayTable {
	index := make(map[string]int)
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	present := make(map[string]bool)
	for _, c := range ExpectedColumns {
		if _, ok := index[c]; ok {
			present[c] = true
		} else {
			delete(index, c)
		}
	}

	fields := planFields(present)
	table := &types.DayTable{Columns: fields.columns()}

	for _, cells := range rows {
		row := sourceRow{index: index, cells: cells}
		if blankIdentity(row, present) {
			continue
		}
		table.Records = append(table.Records, fields.build(row, opts))
	}

	return table
}

func blankIdentity(row sourceRow, present map[string]bool) bool {
	for _, c := range identityColumns {
		if present[c] && strings.TrimSpace(row.get(c)) != "" {
			return false
		}
	}
	return true
}

// ParseMeals coerces a quantity cell into a non-negative meal count.
// Anything that is not a finite non-negative number becomes 0.
func ParseMeals(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

func newRecordID() string {
	return uuid.NewString()
}
