package engine

import (
	"fmt"

	"elite-trader/internal/universe"
)

// IsValidPair reports whether buying at buy and selling at sell can make
// money: same commodity, stock available and a positive spread.
func IsValidPair(buy, sell *universe.Listing) bool {
	return buy.Commodity.ID == sell.Commodity.ID &&
		buy.Supply > 0 &&
		buy.BuyPrice > 0 &&
		buy.BuyPrice < sell.SellPrice
}

// IsProhibited reports whether the destination blacklists the commodity.
// Prohibited trades stay in results; the flag is for display.
func IsProhibited(commodityID int32, sell *universe.Station) bool {
	return sell.Prohibits(commodityID)
}

// UnitTrade is the economics of moving one unit from a buy listing to a
// sell listing. Listings and stations are referenced by snapshot position.
type UnitTrade struct {
	Buy         int `json:"-"`
	Sell        int `json:"-"`
	BuyStation  int `json:"-"`
	SellStation int `json:"-"`

	BuyStationID  int32              `json:"buy_station_id"`
	SellStationID int32              `json:"sell_station_id"`
	Commodity     universe.Commodity `json:"commodity"`
	BuyPrice      int64              `json:"buy_price"`
	SellPrice     int64              `json:"sell_price"`
	Supply        int64              `json:"supply"`
	ProfitPerUnit int64              `json:"profit_per_unit"`
	Distance      float64            `json:"distance_ly"`
	Normalized    TimeEstimate       `json:"normalized_time"`
	Adjusted      TimeEstimate       `json:"adjusted_time"`
	Valid         bool               `json:"valid"`
	Prohibited    bool               `json:"prohibited"`
}

// NewUnitTrade prices the (buy, sell) listing pair for a ship with the given
// jump range and time correction factor. Positions must come from snap; a
// bad position panics.
func NewUnitTrade(snap *universe.Snapshot, buy, sell int, jumpRange, factor float64) UnitTrade {
	bl := snap.MustListing(buy)
	sl := snap.MustListing(sell)
	if bl.Commodity.ID != sl.Commodity.ID {
		panic(fmt.Sprintf("engine: pairing commodity %d with %d", bl.Commodity.ID, sl.Commodity.ID))
	}
	bst := snap.MustStation(bl.Station)
	sst := snap.MustStation(sl.Station)
	from := snap.MustSystem(bst.System)
	to := snap.MustSystem(sst.System)

	stationDistance := DefaultStationDistance
	if sst.HasDistance {
		stationDistance = sst.DistanceToStar
	}
	distance := from.Position.DistanceTo(to.Position)

	return UnitTrade{
		Buy:           buy,
		Sell:          sell,
		BuyStation:    bl.Station,
		SellStation:   sl.Station,
		BuyStationID:  bst.ID,
		SellStationID: sst.ID,
		Commodity:     bl.Commodity,
		BuyPrice:      bl.BuyPrice,
		SellPrice:     sl.SellPrice,
		Supply:        bl.Supply,
		ProfitPerUnit: max(0, sl.SellPrice-bl.BuyPrice),
		Distance:      distance,
		Normalized:    EstimateTime(distance, jumpRange, stationDistance, 1),
		Adjusted:      EstimateTime(distance, jumpRange, stationDistance, factor),
		Valid:         IsValidPair(bl, sl),
		Prohibited:    IsProhibited(bl.Commodity.ID, sst),
	}
}

// ProfitPerUnitPerMinute is the score of the trade for one unit of cargo.
func (t UnitTrade) ProfitPerUnitPerMinute() float64 {
	total := t.Adjusted.Total()
	if total == 0 {
		return 60 * float64(t.ProfitPerUnit)
	}
	return 60 * float64(t.ProfitPerUnit) / total
}

// CreditPotential is the profit of buying out the whole supply.
func (t UnitTrade) CreditPotential() int64 {
	return t.ProfitPerUnit * t.Supply
}

// WithSellPrice returns the trade repriced at an observed sell price.
func (t UnitTrade) WithSellPrice(price int64) UnitTrade {
	t.SellPrice = price
	t.ProfitPerUnit = max(0, price-t.BuyPrice)
	t.Valid = t.Supply > 0 && t.BuyPrice > 0 && t.BuyPrice < price
	return t
}

// FullTrade is a UnitTrade sized to what the player can actually carry and
// afford.
type FullTrade struct {
	Unit            UnitTrade `json:"unit"`
	UsedCargo       int64     `json:"used_cargo"`
	ProfitTotal     int64     `json:"profit_total"`
	ProfitPerMinute float64   `json:"profit_per_minute"`
	Valid           bool      `json:"valid"`
	Cyclic          bool      `json:"cyclic"`

	state    PlayerState
	maxDepth int
}

// NewFullTrade binds unit to the player's finances. maxDepth is the search
// horizon used to decide whether the trade can be repeated indefinitely.
func NewFullTrade(state PlayerState, unit UnitTrade, maxDepth int) FullTrade {
	used := usedCargo(state, unit)
	profit := unit.ProfitPerUnit * used
	t := FullTrade{
		Unit:        unit,
		UsedCargo:   used,
		ProfitTotal: profit,
		Valid:       unit.Valid && used > 0,
		state:       state,
		maxDepth:    maxDepth,
	}
	if total := unit.Adjusted.Total(); total > 0 {
		t.ProfitPerMinute = 60 * float64(profit) / total
	}
	t.Cyclic = t.Valid && isCyclic(state, unit, maxDepth)
	return t
}

func usedCargo(state PlayerState, unit UnitTrade) int64 {
	if state.Balance <= state.MinBalance || unit.BuyPrice <= 0 {
		return 0
	}
	affordable := (state.Balance - state.MinBalance) / unit.BuyPrice
	return max(0, min(affordable, state.CargoCapacity, unit.Supply))
}

// isCyclic: the supply outlasts half the horizon in full loads, and the
// player can pay for that many loads.
func isCyclic(state PlayerState, unit UnitTrade, maxDepth int) bool {
	if state.CargoCapacity <= 0 {
		return false
	}
	half := float64(maxDepth) / 2
	runs := float64(unit.Supply) / float64(state.CargoCapacity)
	cost := half * float64(state.CargoCapacity) * float64(unit.BuyPrice)
	return runs > half && float64(state.Balance-state.MinBalance) > cost
}

// StateAfterTrade is the player docked at the destination with the profit
// banked.
func (t FullTrade) StateAfterTrade(snap *universe.Snapshot) PlayerState {
	next := t.state.withStation(snap, t.Unit.SellStation)
	next.Balance += t.ProfitTotal
	return next
}

// WithSellPrice recomputes the trade after the player reports the price
// they were actually paid.
func (t FullTrade) WithSellPrice(price int64) FullTrade {
	return NewFullTrade(t.state, t.Unit.WithSellPrice(price), t.maxDepth)
}

// MaxRuns is how many loads of this size the supply allows.
func (t FullTrade) MaxRuns() int64 {
	if t.UsedCargo <= 0 {
		return 0
	}
	return t.Unit.Supply / t.UsedCargo
}

// SearchResult is a first hop together with the totals of the best route
// found behind it.
type SearchResult struct {
	Trade        FullTrade   `json:"trade"`
	ProfitTotal  float64     `json:"profit_total"`
	TimeTotal    float64     `json:"time_total"`
	Route        []FullTrade `json:"route"`
	Extrapolated bool        `json:"extrapolated"`
	CycleLength  int         `json:"cycle_length,omitempty"`
}

// ProfitPerMinute is the route's score.
func (r SearchResult) ProfitPerMinute() float64 {
	if r.TimeTotal <= 0 {
		return 0
	}
	return 60 * r.ProfitTotal / r.TimeTotal
}

func singleHop(t FullTrade) SearchResult {
	return SearchResult{
		Trade:       t,
		ProfitTotal: float64(t.ProfitTotal),
		TimeTotal:   t.Unit.Adjusted.Total(),
		Route:       []FullTrade{t},
	}
}

// then prefixes t to the route r.
func (r SearchResult) then(t FullTrade) SearchResult {
	route := make([]FullTrade, 0, len(r.Route)+1)
	route = append(route, t)
	route = append(route, r.Route...)
	return SearchResult{
		Trade:        t,
		ProfitTotal:  float64(t.ProfitTotal) + r.ProfitTotal,
		TimeTotal:    t.Unit.Adjusted.Total() + r.TimeTotal,
		Route:        route,
		Extrapolated: r.Extrapolated,
		CycleLength:  r.CycleLength,
	}
}
