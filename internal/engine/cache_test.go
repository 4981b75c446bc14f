package engine

import (
	"sync"
	"testing"

	"elite-trader/internal/universe"
)

// invalidationGalaxy: A buys gold for 100; B (10 ly) and C (5 ly) both
// pay for it.
func invalidationGalaxy(t *testing.T) *universe.Universe {
	return mustUniverse(t,
		testSystem(1, 0, testStation(100, "A", buyListing(commodityX, 50, 100))),
		testSystem(2, 10, testStation(200, "B", sellListing(commodityX, 150))),
		testSystem(3, 5, testStation(300, "C", sellListing(commodityX, 140))),
	)
}

func sellStations(trades []UnitTrade) []int32 {
	out := make([]int32, len(trades))
	for i, t := range trades {
		out[i] = t.SellStationID
	}
	return out
}

func TestBest1HopTrades_RanksOnePerDestination(t *testing.T) {
	u := mustUniverse(t,
		testSystem(1, 0, testStation(100, "A",
			buyListing(commodityX, 50, 100),
			buyListing(commodityY, 50, 10),
		)),
		testSystem(2, 10, testStation(200, "B",
			sellListing(commodityX, 150),
			sellListing(commodityY, 200),
		)),
		testSystem(3, 5, testStation(300, "C", sellListing(commodityX, 140))),
		testSystem(4, 500, testStation(400, "Far", sellListing(commodityX, 10_000))),
	)
	snap := u.Snapshot()
	state := mustState(t, snap, 100, 100_000, 50, 20)

	got := best1HopTrades(snap, state, testSettings(6, 3))
	if len(got) != 2 {
		t.Fatalf("got %d trades (%v), want 2", len(got), sellStations(got))
	}
	if got[0].SellStationID != 200 || got[0].Commodity.ID != commodityY.ID {
		t.Errorf("best = station %d commodity %d, want tea to B", got[0].SellStationID, got[0].Commodity.ID)
	}
	if got[1].SellStationID != 300 {
		t.Errorf("second = station %d, want C", got[1].SellStationID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].ProfitPerUnitPerMinute() > got[i-1].ProfitPerUnitPerMinute() {
			t.Errorf("results not sorted at %d", i)
		}
	}
}

func TestBest1HopTrades_SkipsPermitSystems(t *testing.T) {
	permit := testSystem(2, 10, testStation(200, "B", sellListing(commodityX, 150)))
	permit.NeedsPermit = true
	u := mustUniverse(t,
		testSystem(1, 0, testStation(100, "A", buyListing(commodityX, 50, 100))),
		permit,
	)
	snap := u.Snapshot()
	state := mustState(t, snap, 100, 100_000, 50, 20)

	s := testSettings(6, 3)
	if got := best1HopTrades(snap, state, s); len(got) != 1 {
		t.Errorf("without filter got %d trades, want 1", len(got))
	}
	s.SkipPermitSystems = true
	if got := best1HopTrades(snap, state, s); len(got) != 0 {
		t.Errorf("with filter got %d trades, want 0", len(got))
	}
}

func TestSearchCache_InvalidationDropsStalePair(t *testing.T) {
	u := invalidationGalaxy(t)
	cache := NewSearchCache()
	s := testSettings(6, 3)

	snap := u.Snapshot()
	state := mustState(t, snap, 100, 100_000, 50, 20)
	first := cache.BestTrades(snap, state, s)
	if got := sellStations(first); len(got) != 2 || got[0] != 200 {
		t.Fatalf("initial candidates = %v, want B first", got)
	}

	if err := u.ApplyPriceAdjustment(universe.PriceAdjustmentFromSell(200, commodityX.ID, 90)); err != nil {
		t.Fatal(err)
	}
	snap = u.Snapshot()

	stale := cache.BestTrades(snap, state, s)
	if len(stale) != 2 {
		t.Fatalf("cache hit returned %d trades, want the stale 2", len(stale))
	}
	if stale[0].Valid {
		t.Error("re-priced stale pair should read as invalid")
	}

	cache.InvalidateStation(200)
	if cache.Len() != 0 {
		t.Errorf("cache entries after invalidating a destination = %d, want 0", cache.Len())
	}
	fresh := cache.BestTrades(snap, state, s)
	if got := sellStations(fresh); len(got) != 1 || got[0] != 300 {
		t.Errorf("after invalidation = %v, want only C", got)
	}

	st := cache.Stats()
	if st.Hits != 1 || st.Misses != 2 || st.Invalidations != 1 {
		t.Errorf("stats = %+v, want 1 hit, 2 misses, 1 invalidation", st)
	}
}

func TestSearchCache_InvalidateUnrelatedKeepsEntry(t *testing.T) {
	u := invalidationGalaxy(t)
	cache := NewSearchCache()
	snap := u.Snapshot()
	state := mustState(t, snap, 100, 100_000, 50, 20)
	cache.BestTrades(snap, state, testSettings(6, 3))

	cache.InvalidateStation(999)
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestSearchCache_SyncResetsOnGeneration(t *testing.T) {
	u := invalidationGalaxy(t)
	cache := NewSearchCache()
	snap := u.Snapshot()
	cache.Sync(snap.Generation())
	cache.BestTrades(snap, mustState(t, snap, 100, 100_000, 50, 20), testSettings(6, 3))

	cache.Sync(snap.Generation())
	if cache.Len() != 1 {
		t.Fatalf("same generation cleared the cache")
	}
	cache.Sync(snap.Generation() + 1)
	if cache.Len() != 0 {
		t.Errorf("Len = %d after generation change, want 0", cache.Len())
	}
	if cache.Stats().Resets != 2 {
		t.Errorf("Resets = %d, want 2", cache.Stats().Resets)
	}
}

func TestSearchCache_ConcurrentReaders(t *testing.T) {
	u := invalidationGalaxy(t)
	cache := NewSearchCache()
	snap := u.Snapshot()
	state := mustState(t, snap, 100, 100_000, 50, 20)
	s := testSettings(6, 3)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got := cache.BestTrades(snap, state, s); len(got) != 2 {
					t.Errorf("got %d trades", len(got))
					return
				}
				if j%10 == 0 {
					cache.InvalidateStation(300)
				}
			}
		}()
	}
	wg.Wait()
}

func TestSearchCache_StaleSnapshotAfterReload(t *testing.T) {
	u := invalidationGalaxy(t)
	old := u.Snapshot()
	oldState := mustState(t, old, 100, 100_000, 50, 20)

	// Reload with a station in front so every listing position shifts.
	err := u.Replace([]universe.SystemData{
		testSystem(4, 3, testStation(400, "D", sellListing(commodityY, 80))),
		testSystem(1, 0, testStation(100, "A", buyListing(commodityX, 50, 100))),
		testSystem(2, 10, testStation(200, "B", sellListing(commodityX, 150))),
		testSystem(3, 5, testStation(300, "C", sellListing(commodityX, 140))),
	})
	if err != nil {
		t.Fatal(err)
	}
	fresh := u.Snapshot()

	cache := NewSearchCache()
	s := testSettings(6, 3)
	cache.Sync(fresh.Generation())

	// A search that started before the reload finishes its lookup late.
	if got := cache.BestTrades(old, oldState, s); len(got) != 2 {
		t.Fatalf("old snapshot candidates = %d, want 2", len(got))
	}
	if cache.Len() != 0 {
		t.Errorf("old-generation candidates were cached (%d entries)", cache.Len())
	}

	got := cache.BestTrades(fresh, mustState(t, fresh, 100, 100_000, 50, 20), s)
	if ids := sellStations(got); len(ids) != 2 || ids[0] != 200 || ids[1] != 300 {
		t.Errorf("fresh candidates = %v, want [200 300]", ids)
	}
	for _, tr := range got {
		if tr.Commodity.ID != commodityX.ID || !tr.Valid {
			t.Errorf("fresh trade = %+v", tr)
		}
	}
	if st := cache.Stats(); st.Resets != 1 {
		t.Errorf("Resets = %d, want 1 (old snapshot must not roll the generation back)", st.Resets)
	}
}
