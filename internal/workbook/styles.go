package workbook

import (
	"github.com/nconklindev/mealroute/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	headerFill = "#D9E1F2"
	totalsFill = "#FCE4D6"

	defaultColumnWidth = 14
)

var columnWidths = map[string]float64{
	types.ColRoute:       18,
	types.ColClientID:    14,
	types.ColClientName:  22,
	types.ColAddress:     34,
	types.ColPhone:       16,
	types.ColQuantity:    10,
	types.ColServiceType: 14,
	types.ColDietType:    16,
	types.ColDelivered:   12,
}

var centeredColumns = map[string]bool{
	types.ColQuantity:    true,
	types.ColDelivered:   true,
	types.ColServiceType: true,
	types.ColDietType:    true,
}

// ColumnWidth returns the export width of a display column.
func ColumnWidth(col string) float64 {
	if w, ok := columnWidths[col]; ok {
		return w
	}
	return defaultColumnWidth
}

type sheetStyles struct {
	header int
	center int
	left   int
	totals int
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func buildStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Border: thinBorder(),
	})
	if err != nil {
		return s, err
	}

	s.center, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return s, err
	}

	s.left, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return s, err
	}

	s.totals, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{totalsFill}},
		Border: thinBorder(),
	})
	return s, err
}

func (s sheetStyles) forColumn(col string) int {
	if centeredColumns[col] {
		return s.center
	}
	return s.left
}
