package db

import (
	"database/sql"
	"testing"
	"time"

	"elite-trader/internal/config"
	"elite-trader/internal/universe"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestDB_MigrateIdempotent(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var version int
	if err := d.SqlDB().QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Errorf("schema version = %d, want 2", version)
	}
}

func TestDB_ConfigRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if got := d.LoadConfig(); got.CargoCapacity != config.Default().CargoCapacity {
		t.Errorf("empty table CargoCapacity = %d, want default", got.CargoCapacity)
	}

	cfg := config.Default()
	cfg.Station = "Jameson Memorial"
	cfg.CargoCapacity = 720
	cfg.JumpRange = 31.5
	cfg.Quality = config.QualityUltra
	cfg.SkipPermitSystems = true
	cfg.ScoreJitter = 0.05
	if err := d.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got := d.LoadConfig()
	if got.Station != "Jameson Memorial" {
		t.Errorf("Station = %q", got.Station)
	}
	if got.CargoCapacity != 720 || got.JumpRange != 31.5 {
		t.Errorf("CargoCapacity/JumpRange = %d/%v, want 720/31.5", got.CargoCapacity, got.JumpRange)
	}
	if got.Quality != config.QualityUltra || !got.SkipPermitSystems || got.ScoreJitter != 0.05 {
		t.Errorf("loaded = %+v", got)
	}
}

func TestDB_PriceAdjustmentsReplayOrder(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	later := universe.PriceAdjustmentFromSell(200, 1, 90)
	later.Timestamp = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	earlier := universe.PriceAdjustmentFromBuy(100, 1, 110, 40)
	earlier.Timestamp = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, adj := range []universe.PriceAdjustment{later, earlier} {
		if err := d.InsertPriceAdjustment(adj); err != nil {
			t.Fatal(err)
		}
	}

	got, err := d.PriceAdjustments()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].StationID != 100 || got[1].StationID != 200 {
		t.Errorf("order = %d,%d, want 100,200", got[0].StationID, got[1].StationID)
	}
	if got[0].SellPrice != nil || got[0].BuyPrice == nil || *got[0].BuyPrice != 110 || *got[0].Supply != 40 {
		t.Errorf("buy adjustment fields = %+v", got[0])
	}
	if got[1].SellPrice == nil || *got[1].SellPrice != 90 || got[1].BuyPrice != nil {
		t.Errorf("sell adjustment fields = %+v", got[1])
	}
	if !got[0].Timestamp.Equal(earlier.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, earlier.Timestamp)
	}
}

func TestDB_TimeAdjustments(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	adj, ok := universe.NewTimeAdjustment(100, 200, 300, 100, 420)
	if !ok {
		t.Fatal("adjustment rejected")
	}
	if err := d.InsertTimeAdjustment(adj); err != nil {
		t.Fatal(err)
	}
	got, err := d.TimeAdjustments()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ActualSeconds != 420 || got[0].JumpSeconds != 100 {
		t.Errorf("TimeAdjustments = %+v", got)
	}
}

func TestDB_RouteHistory(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	id := d.InsertRouteHistory(RouteRecord{StationID: 100, StationName: "A", Count: 3, BestProfit: 2500, BestPerMinute: 410.5, Hops: 2, DurationMs: 12}, map[string]int{"depth": 8})
	if id == "" {
		t.Fatal("InsertRouteHistory returned empty run id")
	}
	d.InsertRouteHistory(RouteRecord{StationID: 200, StationName: "B"}, nil)

	records := d.GetRouteHistory(5)
	if len(records) != 2 {
		t.Fatalf("GetRouteHistory len = %d, want 2", len(records))
	}
	if records[1].RunID != id {
		t.Errorf("RunID = %q, want %q", records[1].RunID, id)
	}
	if records[0].StationID != 200 {
		t.Errorf("newest first: got station %d", records[0].StationID)
	}
	if records[1].BestPerMinute != 410.5 || records[1].Hops != 2 {
		t.Errorf("record = %+v", records[1])
	}
	if string(records[1].Params) != `{"depth":8}` {
		t.Errorf("Params = %s", records[1].Params)
	}

	if err := d.ClearRouteHistory(); err != nil {
		t.Fatal(err)
	}
	if got := d.GetRouteHistory(5); len(got) != 0 {
		t.Errorf("after clear len = %d", len(got))
	}
}
