package universe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeDataset(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, CommoditiesFile,
		`{"id":1,"name":"Gold","category":"Metals"}`,
		`{"id":2,"name":"Imperial Slaves","category":"Slavery"}`,
	)
	writeFile(t, dir, SystemsFile,
		`{"id":10,"name":"Sol","x":0,"y":0,"z":0,"needs_permit":true}`,
		`{"id":11,"name":"Alpha Centauri","x":5,"y":0,"z":0}`,
		`not json`,
	)
	writeFile(t, dir, StationsFile,
		`{"id":100,"name":"Abraham Lincoln","system_id":10,"max_landing_pad_size":"L","distance_to_star":500}`,
		`{"id":101,"name":"Outpost","system_id":10,"max_landing_pad_size":"M"}`,
		`{"id":110,"name":"Port","system_id":11,"max_landing_pad_size":"L","prohibited_commodities":["imperial slaves"]}`,
		`{"id":120,"name":"Ghost","system_id":99,"max_landing_pad_size":"L"}`,
	)
	writeFile(t, dir, ListingsFile,
		`{"station_id":100,"commodity_id":1,"supply":50,"buy_price":100,"sell_price":90,"collected_at":1000}`,
		`{"station_id":100,"commodity_id":1,"supply":60,"buy_price":105,"sell_price":90,"collected_at":2000}`,
		`{"station_id":101,"commodity_id":1,"supply":5,"buy_price":100}`,
		`{"station_id":110,"commodity_id":1,"sell_price":150}`,
		`{"station_id":110,"commodity_id":7,"sell_price":150}`,
	)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)

	systems, err := Load(dir, PadLarge)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap, err := NewSnapshot(systems, 1)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	if len(snap.Systems) != 2 {
		t.Errorf("systems = %d, want 2", len(snap.Systems))
	}
	if _, ok := snap.StationIndex(101); ok {
		t.Error("medium-pad station should be filtered")
	}
	if _, ok := snap.StationIndex(120); ok {
		t.Error("orphan station should be skipped")
	}
	if !snap.Systems[0].NeedsPermit {
		t.Error("Sol should need a permit")
	}
	li, ok := snap.ListingIndex(100, 1)
	if !ok {
		t.Fatal("listing (100,1) missing")
	}
	if l := snap.Listings[li]; l.Supply != 60 || l.BuyPrice != 105 {
		t.Errorf("duplicate listing kept %+v, want freshest", l)
	}
	si, _ := snap.StationIndex(110)
	if !snap.Stations[si].Prohibits(2) {
		t.Error("prohibited name not resolved")
	}
	if len(snap.Stations[si].Listings) != 1 {
		t.Errorf("station 110 listings = %d, want 1", len(snap.Stations[si].Listings))
	}
}

func TestLoad_UnknownProhibitedName(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	writeFile(t, dir, StationsFile,
		`{"id":100,"name":"A","system_id":10,"max_landing_pad_size":"L","prohibited_commodities":["Unobtainium"]}`,
	)
	if _, err := Load(dir, 0); err == nil {
		t.Error("expected error for unknown prohibited commodity")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(t.TempDir(), 0); err == nil {
		t.Error("expected error for empty data dir")
	}
}

func TestWatch_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, 20*time.Millisecond, func() {
			select {
			case fired <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-fired:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch: %v", err)
			}
			return
		case <-tick.C:
			writeFile(t, dir, ListingsFile, `{}`)
		case <-deadline:
			t.Fatal("watcher did not fire")
		}
	}
}
