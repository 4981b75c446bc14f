package engine

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"elite-trader/internal/config"
	"elite-trader/internal/universe"

	"golang.org/x/sync/singleflight"
)

// cacheKey identifies one memoized candidate list. Balance is not part of
// the key: the list ranks per-unit economics only. The generation ties the
// stored positions to the snapshot shape they were computed against.
type cacheKey struct {
	generation uint64
	station    int32
	radius     float64
	jumpRange  float64
	timeFactor float64
	width      int
	skipPermit bool
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%d/%d/%g/%g/%g/%d/%t", k.generation, k.station, k.radius, k.jumpRange, k.timeFactor, k.width, k.skipPermit)
}

// cachedTrade is a candidate by listing position, so entries stay valid
// across price corrections and are re-priced on every read.
type cachedTrade struct {
	buy  int
	sell int
}

// CacheStats is a point-in-time copy of the cache counters.
type CacheStats struct {
	Entries       int    `json:"entries"`
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Invalidations uint64 `json:"invalidations"`
	Resets        uint64 `json:"resets"`
}

// SearchCache memoizes the best one-hop candidates per origin station.
// The candidate map and the sell-station reverse index have separate locks
// and no code path holds both.
type SearchCache struct {
	mu         sync.RWMutex
	trades     map[cacheKey][]cachedTrade
	generation uint64

	sellMu     sync.RWMutex
	sellLookup map[int32]map[int32]struct{} // sell station -> buy stations

	group singleflight.Group

	hits          atomic.Uint64
	misses        atomic.Uint64
	invalidations atomic.Uint64
	resets        atomic.Uint64
}

func NewSearchCache() *SearchCache {
	return &SearchCache{
		trades:     make(map[cacheKey][]cachedTrade),
		sellLookup: make(map[int32]map[int32]struct{}),
	}
}

// Sync drops every entry when the snapshot generation moved forward;
// positions from an older shape are meaningless. Generations never go back,
// so a search still running on an older snapshot cannot undo a reload.
func (c *SearchCache) Sync(generation uint64) {
	c.mu.RLock()
	current := c.generation >= generation
	c.mu.RUnlock()
	if current {
		return
	}
	c.mu.Lock()
	advanced := c.generation < generation
	if advanced {
		c.generation = generation
		clear(c.trades)
		c.resets.Add(1)
	}
	c.mu.Unlock()
	if !advanced {
		return
	}

	c.sellMu.Lock()
	clear(c.sellLookup)
	c.sellMu.Unlock()
}

// BestTrades returns the one-hop candidates from the player's station,
// best first, priced against snap.
func (c *SearchCache) BestTrades(snap *universe.Snapshot, state PlayerState, s config.SearchSettings) []UnitTrade {
	c.Sync(snap.Generation())
	key := cacheKey{
		generation: snap.Generation(),
		station:    state.StationID,
		radius:     searchRadius(state, s),
		jumpRange:  state.JumpRange,
		timeFactor: state.TimeFactor,
		width:      s.HopWidth,
		skipPermit: s.SkipPermitSystems,
	}

	c.mu.RLock()
	pairs, ok := c.trades[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return c.materialize(snap, state, pairs)
	}

	c.misses.Add(1)
	v, _, _ := c.group.Do(key.String(), func() (any, error) {
		c.mu.RLock()
		pairs, ok := c.trades[key]
		c.mu.RUnlock()
		if ok {
			return pairs, nil
		}

		trades := best1HopTrades(snap, state, s)
		pairs = make([]cachedTrade, len(trades))
		for i, t := range trades {
			pairs[i] = cachedTrade{buy: t.Buy, sell: t.Sell}
		}

		// A reload may have synced the cache while this miss ran on the
		// old snapshot; its positions must not outlive that generation.
		c.mu.Lock()
		current := c.generation == key.generation
		if current {
			c.trades[key] = pairs
		}
		c.mu.Unlock()
		if !current {
			return pairs, nil
		}

		c.sellMu.Lock()
		for _, t := range trades {
			buyers, ok := c.sellLookup[t.SellStationID]
			if !ok {
				buyers = make(map[int32]struct{})
				c.sellLookup[t.SellStationID] = buyers
			}
			buyers[state.StationID] = struct{}{}
		}
		c.sellMu.Unlock()
		return pairs, nil
	})
	return c.materialize(snap, state, v.([]cachedTrade))
}

func (c *SearchCache) materialize(snap *universe.Snapshot, state PlayerState, pairs []cachedTrade) []UnitTrade {
	out := make([]UnitTrade, len(pairs))
	for i, p := range pairs {
		out[i] = NewUnitTrade(snap, p.buy, p.sell, state.JumpRange, state.TimeFactor)
	}
	return out
}

// InvalidateStation forgets the station's own candidates and those of every
// station whose candidates sell into it.
func (c *SearchCache) InvalidateStation(stationID int32) {
	stale := map[int32]struct{}{stationID: {}}

	c.sellMu.Lock()
	for buyer := range c.sellLookup[stationID] {
		stale[buyer] = struct{}{}
	}
	delete(c.sellLookup, stationID)
	c.sellMu.Unlock()

	removed := 0
	c.mu.Lock()
	for k := range c.trades {
		if _, ok := stale[k.station]; ok {
			delete(c.trades, k)
			removed++
		}
	}
	c.mu.Unlock()

	c.invalidations.Add(1)
	log.Printf("[Cache] Invalidated station %d: %d entries dropped (stations %v)", stationID, removed, sortedStationIDs(stale))
}

// RetainTimeFactor drops entries keyed by any other time correction factor.
// New player states only ever carry the current factor.
func (c *SearchCache) RetainTimeFactor(factor float64) int {
	removed := 0
	c.mu.Lock()
	for k := range c.trades {
		if k.timeFactor != factor {
			delete(c.trades, k)
			removed++
		}
	}
	c.mu.Unlock()
	return removed
}

func (c *SearchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.trades)
}

func (c *SearchCache) Stats() CacheStats {
	return CacheStats{
		Entries:       c.Len(),
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
		Resets:        c.resets.Load(),
	}
}

func searchRadius(state PlayerState, s config.SearchSettings) float64 {
	if s.TradeRange > 0 {
		return s.TradeRange
	}
	return state.JumpRange
}

// best1HopTrades ranks every profitable sale of something buyable at the
// player's station into a station within the search radius, keeping one
// trade per destination.
func best1HopTrades(snap *universe.Snapshot, state PlayerState, s config.SearchSettings) []UnitTrade {
	origin := snap.MustStation(state.Station())
	here := snap.MustSystem(origin.System)

	// Only commodities the origin can sell us are worth grouping.
	wanted := make(map[int32][]int)
	for _, li := range origin.Listings {
		if l := snap.MustListing(li); l.Buyable() {
			wanted[l.Commodity.ID] = nil
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	for _, si := range snap.SystemsWithin(here.Position, searchRadius(state, s)) {
		sys := snap.MustSystem(si)
		if s.SkipPermitSystems && sys.NeedsPermit && si != origin.System {
			continue
		}
		for _, sti := range sys.Stations {
			if sti == state.Station() {
				continue
			}
			for _, li := range snap.MustStation(sti).Listings {
				l := snap.MustListing(li)
				if !l.Sellable() {
					continue
				}
				if sells, ok := wanted[l.Commodity.ID]; ok {
					wanted[l.Commodity.ID] = append(sells, li)
				}
			}
		}
	}

	buf := NewScoredBuffer[float64, UnitTrade](s.HopWidth, Descending)
	bySellStation := func(t UnitTrade) int { return t.SellStation }
	for _, bi := range origin.Listings {
		buy := snap.MustListing(bi)
		sells := wanted[buy.Commodity.ID]
		if !buy.Buyable() || len(sells) == 0 {
			continue
		}
		for _, si := range sells {
			if !IsValidPair(buy, snap.MustListing(si)) {
				continue
			}
			t := NewUnitTrade(snap, bi, si, state.JumpRange, state.TimeFactor)
			PushBucket(buf, t, t.ProfitPerUnitPerMinute(), bySellStation)
		}
	}
	return buf.DrainSorted()
}

func sortedStationIDs(set map[int32]struct{}) []int32 {
	out := make([]int32, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
