package engine

import (
	"testing"

	"elite-trader/internal/config"
	"elite-trader/internal/graph"
	"elite-trader/internal/universe"
)

var (
	commodityX = universe.Commodity{ID: 1, Name: "Gold", Category: "Metals"}
	commodityY = universe.Commodity{ID: 2, Name: "Tea", Category: "Foods"}
)

func buyListing(c universe.Commodity, supply, price int64) universe.ListingData {
	return universe.ListingData{Commodity: c, Supply: supply, BuyPrice: price}
}

func sellListing(c universe.Commodity, price int64) universe.ListingData {
	return universe.ListingData{Commodity: c, SellPrice: price}
}

func testStation(id int32, name string, listings ...universe.ListingData) universe.StationData {
	d := 100.0
	return universe.StationData{ID: id, Name: name, PadSize: universe.PadLarge, DistanceToStar: &d, Listings: listings}
}

func testSystem(id int32, x float64, stations ...universe.StationData) universe.SystemData {
	return universe.SystemData{ID: id, Name: "Sys", Position: graph.Point{X: x}, Stations: stations}
}

func mustUniverse(t *testing.T, systems ...universe.SystemData) *universe.Universe {
	t.Helper()
	u, err := universe.New(systems)
	if err != nil {
		t.Fatalf("universe.New: %v", err)
	}
	return u
}

func mustState(t *testing.T, snap *universe.Snapshot, stationID int32, balance, cargo int64, jumpRange float64) PlayerState {
	t.Helper()
	s, err := NewPlayerState(snap, stationID, balance, 0, cargo, jumpRange, 1)
	if err != nil {
		t.Fatalf("NewPlayerState: %v", err)
	}
	return s
}

func mustListing(t *testing.T, snap *universe.Snapshot, stationID, commodityID int32) int {
	t.Helper()
	i, ok := snap.ListingIndex(stationID, commodityID)
	if !ok {
		t.Fatalf("no listing for station %d commodity %d", stationID, commodityID)
	}
	return i
}

func testSettings(width, depth int) config.SearchSettings {
	return config.SearchSettings{HopWidth: width, MaxDepth: depth, Workers: 1}
}

// scenarioA: two systems 10 ly apart, gold bought at A for 100 and sold at
// B for 150.
func scenarioA(t *testing.T) *universe.Universe {
	return mustUniverse(t,
		testSystem(1, 0, testStation(100, "A", buyListing(commodityX, 50, 100))),
		testSystem(2, 10, testStation(200, "B", sellListing(commodityX, 150))),
	)
}

// shuttle builds two stations 10 ly apart that each sell what the other
// buys, at identical margins.
func shuttle(t *testing.T, supply int64) *universe.Universe {
	return mustUniverse(t,
		testSystem(1, 0, testStation(100, "A",
			buyListing(commodityX, supply, 100),
			sellListing(commodityY, 200),
		)),
		testSystem(2, 10, testStation(200, "B",
			buyListing(commodityY, supply, 100),
			sellListing(commodityX, 200),
		)),
	)
}
