package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nconklindev/mealroute/internal/config"
	"github.com/nconklindev/mealroute/internal/types"

	"github.com/xuri/excelize/v2"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.WeekStart = time.Date(2026, 10, 12, 0, 0, 0, 0, time.Local)
	cfg.OutputDir = t.TempDir()
	cfg.LogFile = "-"
	return cfg
}

func sampleTable(day types.Weekday) *types.DayTable {
	return &types.DayTable{
		Day:     day,
		Columns: []string{types.ColRoute, types.ColClientID, types.ColClientName, types.ColQuantity, types.ColDelivered},
		Records: []types.DeliveryRecord{
			{ID: "r1", Route: "North", ClientID: "C1", Name: "Ann Smith", Meals: 2, Delivered: true},
			{ID: "r2", Route: "COPO East", ClientID: "C2", Name: "Bo Lee", Meals: 1, Delivered: true},
			{ID: "r3", Route: "South", ClientID: "C1", Name: "Ann Smith", Meals: 1, Delivered: true},
			{ID: "r4", Route: "North", ClientID: "C4", Name: "Cy Diaz", Meals: 3, Delivered: false},
		},
	}
}

func TestSessionRoutes(t *testing.T) {
	s := New(testConfig(t))
	s.Load(&types.DayTable{Day: types.Wednesday, Records: []types.DeliveryRecord{{Route: "West"}, {Route: "North"}}})
	s.Load(sampleTable(types.Monday))

	if got, want := s.Routes(), []string{"North", "South", "West"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Routes() = %v; want %v", got, want)
	}
	if got, want := s.DayRoutes(types.Wednesday), []string{"West", "North"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DayRoutes(Wednesday) = %v; want %v", got, want)
	}
	if got, want := s.Days(), []types.Weekday{types.Monday, types.Wednesday}; !reflect.DeepEqual(got, want) {
		t.Errorf("Days() = %v; want %v", got, want)
	}

	cfg := s.Config()
	cfg.ExcludeCOPO = false
	s.SetConfig(cfg)
	if got := s.DayRoutes(types.Monday); len(got) != 3 {
		t.Errorf("DayRoutes without exclusion = %v; want 3 routes", got)
	}
}

func TestApplyEditByRowID(t *testing.T) {
	s := New(testConfig(t))
	s.Load(sampleTable(types.Monday))

	// r1 and r3 share a client id; only r3 must change.
	off := false
	meals := 5
	rec, err := s.ApplyEdit(types.Monday, "r3", Edit{Delivered: &off, Meals: &meals})
	if err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}
	if rec.Delivered || rec.Meals != 5 {
		t.Errorf("edited record = %+v", rec)
	}

	table := s.Table(types.Monday)
	if !table.Records[0].Delivered || table.Records[0].Meals != 2 {
		t.Errorf("record r1 changed: %+v", table.Records[0])
	}
	if table.Records[2].Delivered || table.Records[2].Meals != 5 {
		t.Errorf("record r3 not changed in place: %+v", table.Records[2])
	}

	negative := -3
	rec, err = s.ApplyEdit(types.Monday, "r1", Edit{Meals: &negative})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Meals != 0 {
		t.Errorf("Meals = %d; want 0 after negative edit", rec.Meals)
	}

	if _, err := s.ApplyEdit(types.Monday, "missing", Edit{}); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v; want ErrRecordNotFound", err)
	}
	if _, err := s.ApplyEdit(types.Friday, "r1", Edit{}); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v; want ErrRecordNotFound for unloaded day", err)
	}
}

func TestSetRouteDelivered(t *testing.T) {
	s := New(testConfig(t))
	s.Load(sampleTable(types.Monday))

	if got := s.SetRouteDelivered(types.Monday, "North", true); got != 1 {
		t.Errorf("SetRouteDelivered() = %d; want 1", got)
	}
	st := s.Stats(types.Monday, "North")
	if st.Rows != 2 || st.Delivered != 2 || st.Meals != 5 {
		t.Errorf("Stats(North) = %+v", st)
	}
	if st.DeliveredRatio() != 1 {
		t.Errorf("DeliveredRatio() = %v; want 1", st.DeliveredRatio())
	}
	if got := s.SetRouteDelivered(types.Tuesday, "North", true); got != 0 {
		t.Errorf("SetRouteDelivered on unloaded day = %d; want 0", got)
	}
}

func TestAppendRecord(t *testing.T) {
	cfg := testConfig(t)
	cfg.DefaultDelivered = false
	s := New(cfg)
	s.Load(sampleTable(types.Monday))

	rec, err := s.AppendRecord(types.Monday, types.DeliveryRecord{
		Route:     " North ",
		ClientID:  "C9",
		Name:      "Walk In",
		Address:   " 5  Birch  Ln ",
		Meals:     -2,
		Delivered: true,
	})
	if err != nil {
		t.Fatalf("AppendRecord failed: %v", err)
	}
	if rec.ID == "" || rec.Route != "North" || rec.Address != "5 Birch Ln" || rec.Meals != 0 || rec.Delivered {
		t.Errorf("appended record = %+v", rec)
	}
	if got := len(s.RouteRecords(types.Monday, "North")); got != 3 {
		t.Errorf("North has %d records; want 3", got)
	}

	rec, err = s.AppendRecord(types.Thursday, types.DeliveryRecord{Route: "East", Meals: 2})
	if err != nil {
		t.Fatalf("AppendRecord on unloaded day failed: %v", err)
	}
	table := s.Table(types.Thursday)
	if table == nil || len(table.Records) != 1 || !reflect.DeepEqual(table.Columns, types.DisplayColumns) {
		t.Errorf("Thursday table = %+v", table)
	}

	if _, err := s.AppendRecord(types.Monday, types.DeliveryRecord{Route: "  "}); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("err = %v; want ErrInvalidRecord", err)
	}
}

func TestLoadFile(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Report"); err != nil {
		t.Fatal(err)
	}
	rows := [][]interface{}{
		{"Generated 10/12/2026"},
		{"Delivery Route", "Client ID", "Quantity"},
		{"North", "C1", "2"},
		{"North", "C2", "x"},
	}
	for i, r := range rows {
		row := r
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Report", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "tuesday.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	s := New(testConfig(t))
	res, err := s.LoadFile(types.Tuesday, path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if res.HeaderRow != 1 || res.RowsLoaded != 2 || res.Day != types.Tuesday {
		t.Errorf("ImportResult = %+v", res)
	}
	if st := s.Stats(types.Tuesday, ""); st.Meals != 2 || st.Delivered != 2 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestLoadFileRejectedKeepsOtherDays(t *testing.T) {
	s := New(testConfig(t))
	s.Load(sampleTable(types.Monday))

	path := filepath.Join(t.TempDir(), "bad.xlsx")
	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadFile(types.Tuesday, path); err == nil {
		t.Fatal("LoadFile accepted a workbook without a Report sheet")
	}
	if s.Table(types.Tuesday) != nil {
		t.Error("rejected upload created a Tuesday table")
	}
	if s.Table(types.Monday) == nil {
		t.Error("rejected upload removed Monday")
	}
}

func TestSaveExports(t *testing.T) {
	s := New(testConfig(t))
	s.Load(sampleTable(types.Monday))

	res, err := s.SaveDay(types.Monday)
	if err != nil {
		t.Fatalf("SaveDay failed: %v", err)
	}
	if filepath.Base(res.OutputFile) != "2026-10-12_Monday_Delivery_Log.xlsx" || res.Rows != 3 {
		t.Errorf("ExportResult = %+v", res)
	}
	if _, err := os.Stat(res.OutputFile); err != nil {
		t.Errorf("export not written: %v", err)
	}

	f, err := excelize.OpenFile(res.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got, want := f.GetSheetList(), []string{"North", "South", "Summary"}; !reflect.DeepEqual(got, want) {
		t.Errorf("GetSheetList() = %v; want %v", got, want)
	}

	res, err = s.SaveRoute("North")
	if err != nil {
		t.Fatalf("SaveRoute failed: %v", err)
	}
	if res.Rows != 2 {
		t.Errorf("SaveRoute rows = %d; want 2", res.Rows)
	}

	if _, err := s.SaveWeek(); err != nil {
		t.Fatalf("SaveWeek failed: %v", err)
	}

	if _, err := s.SaveDay(types.Friday); err == nil {
		t.Error("SaveDay succeeded for a day with no data")
	}
}
