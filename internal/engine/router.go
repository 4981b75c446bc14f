package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"elite-trader/internal/config"
	"elite-trader/internal/universe"

	"github.com/dustin/go-humanize"
)

// SearchObserver receives the outcome of every route search.
type SearchObserver interface {
	ObserveSearch(d time.Duration, results int)
}

// Router ties the authoritative universe to the search cache. Corrections
// go through it so the cache is invalidated alongside the data.
type Router struct {
	universe *universe.Universe
	cache    *SearchCache
	observer SearchObserver

	mu       sync.RWMutex
	settings config.SearchSettings
}

func NewRouter(u *universe.Universe, settings config.SearchSettings) *Router {
	return &Router{
		universe: u,
		cache:    NewSearchCache(),
		settings: settings,
	}
}

func (r *Router) Universe() *universe.Universe { return r.universe }
func (r *Router) Cache() *SearchCache          { return r.cache }

// SetObserver must be called before the router is shared.
func (r *Router) SetObserver(o SearchObserver) { r.observer = o }

func (r *Router) Settings() config.SearchSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

func (r *Router) SetSettings(s config.SearchSettings) {
	r.mu.Lock()
	r.settings = s
	r.mu.Unlock()
}

// NewPlayerState places a player at stationID using the universe's current
// time correction.
func (r *Router) NewPlayerState(stationID int32, balance, minBalance, cargo int64, jumpRange float64) (PlayerState, error) {
	return NewPlayerState(r.universe.Snapshot(), stationID, balance, minBalance, cargo, jumpRange, r.universe.TimeFactor())
}

// NextTrades runs a search with the router's settings.
func (r *Router) NextTrades(state PlayerState) ([]SearchResult, error) {
	return r.NextTradesWith(state, r.Settings())
}

// NextTradesWith runs a search with explicit settings on the current snapshot.
func (r *Router) NextTradesWith(state PlayerState, settings config.SearchSettings) ([]SearchResult, error) {
	return r.NextTradesAt(r.universe.Snapshot(), state, settings)
}

// NextTradesAt searches snap. Positions in the results refer to snap, so
// callers rendering them must use the same snapshot.
func (r *Router) NextTradesAt(snap *universe.Snapshot, state PlayerState, settings config.SearchSettings) ([]SearchResult, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}
	if i, ok := snap.StationIndex(state.StationID); !ok || i != state.Station() {
		return nil, fmt.Errorf("station %d: %w", state.StationID, universe.ErrUnknownStation)
	}

	start := time.Now()
	results := NewSearchStation(snap, r.cache, settings).NextTrades(state)
	elapsed := time.Since(start)

	if r.observer != nil {
		r.observer.ObserveSearch(elapsed, len(results))
	}
	if len(results) > 0 {
		best := results[0]
		log.Printf("[Route] station %d: %d routes in %v, best %s cr/min over %d hops",
			state.StationID, len(results), elapsed.Round(time.Millisecond),
			humanize.Comma(int64(best.ProfitPerMinute())), len(best.Route))
	} else {
		log.Printf("[Route] station %d: no profitable routes (%v)", state.StationID, elapsed.Round(time.Millisecond))
	}
	return results, nil
}

// AdjustPrice applies a listing correction and invalidates the cache
// entries that depended on it.
func (r *Router) AdjustPrice(adj universe.PriceAdjustment) error {
	if err := r.universe.ApplyPriceAdjustment(adj); err != nil {
		return err
	}
	r.cache.InvalidateStation(adj.StationID)
	return nil
}

// AdjustTime records a timed hop. The new correction factor reaches
// searches through new player states; cache entries for other factors go.
func (r *Router) AdjustTime(adj universe.TimeAdjustment) float64 {
	r.universe.ApplyTimeAdjustment(adj)
	f := r.universe.TimeFactor()
	dropped := r.cache.RetainTimeFactor(f)
	log.Printf("[Route] time factor now %.3f, %d cache entries dropped", f, dropped)
	return f
}

// Reload replaces the dataset. Cached candidates are dropped on the next
// search through the generation check.
func (r *Router) Reload(systems []universe.SystemData) error {
	if err := r.universe.Replace(systems); err != nil {
		return err
	}
	r.cache.Sync(r.universe.Snapshot().Generation())
	return nil
}
