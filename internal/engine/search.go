package engine

import (
	"math/rand"
	"runtime"

	"elite-trader/internal/config"
	"elite-trader/internal/universe"

	"golang.org/x/sync/errgroup"
)

// SearchStation plans routes from one player state. It reads a fixed
// snapshot and shares the cache with other searches.
type SearchStation struct {
	snap     *universe.Snapshot
	cache    *SearchCache
	settings config.SearchSettings
}

func NewSearchStation(snap *universe.Snapshot, cache *SearchCache, settings config.SearchSettings) *SearchStation {
	cache.Sync(snap.Generation())
	return &SearchStation{snap: snap, cache: cache, settings: settings}
}

// NextTrades returns candidate routes from state ordered by profit per
// minute. The first hop of the first result is the recommended trade.
func (s *SearchStation) NextTrades(state PlayerState) []SearchResult {
	if s.settings.MaxDepth <= 0 || s.settings.HopWidth <= 0 {
		return nil
	}
	units := s.cache.BestTrades(s.snap, state, s.settings)
	if len(units) == 0 {
		return nil
	}

	workers := s.settings.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	size := (len(units) + workers - 1) / workers
	var chunks [][]UnitTrade
	for start := 0; start < len(units); start += size {
		chunks = append(chunks, units[start:min(start+size, len(units))])
	}

	partial := make([][]SearchResult, len(chunks))
	var g errgroup.Group
	for i, chunk := range chunks {
		g.Go(func() error {
			w := &searchWorker{SearchStation: s, rng: s.newRNG(i)}
			partial[i] = w.expand(state, chunk, CycleTracker{}, 0)
			return nil
		})
	}
	_ = g.Wait()

	merged := NewScoredBuffer[float64, SearchResult](s.settings.HopWidth, Descending)
	for _, part := range partial {
		for _, r := range part {
			merged.Push(r, r.ProfitPerMinute())
		}
	}
	return merged.DrainSorted()
}

func (s *SearchStation) newRNG(chunk int) *rand.Rand {
	if s.settings.ScoreJitter <= 0 {
		return nil
	}
	return rand.New(rand.NewSource(s.settings.Seed + int64(chunk)))
}

// searchWorker is one goroutine's view of a search; the RNG is not shared.
type searchWorker struct {
	*SearchStation
	rng *rand.Rand
}

func (w *searchWorker) recurse(state PlayerState, tracker CycleTracker, depth int) []SearchResult {
	if depth >= w.settings.MaxDepth {
		return nil
	}
	return w.expand(state, w.cache.BestTrades(w.snap, state, w.settings), tracker, depth)
}

// expand scores each candidate hop at depth by the best route behind it.
func (w *searchWorker) expand(state PlayerState, units []UnitTrade, tracker CycleTracker, depth int) []SearchResult {
	routes := NewScoredBuffer[float64, SearchResult](w.settings.HopWidth, Descending)
	for _, unit := range units {
		trade := NewFullTrade(state, unit, w.settings.MaxDepth)
		if !trade.Valid {
			continue
		}

		var result SearchResult
		if cycle, ok := tracker.FindCycle(trade, w.settings.MaxDepth-depth); ok {
			result = SearchResult{
				Trade:        trade,
				ProfitTotal:  cycle.Profit,
				TimeTotal:    cycle.Seconds,
				Route:        []FullTrade{trade},
				Extrapolated: true,
				CycleLength:  cycle.Length,
			}
		} else {
			children := w.recurse(trade.StateAfterTrade(w.snap), tracker.Push(trade), depth+1)
			result = bestContinuation(trade, children)
		}
		routes.Push(result, w.score(result, depth))
	}
	return routes.DrainSorted()
}

// bestContinuation prefixes trade to each child route and keeps the
// combination with the highest profit per minute. A child that is best on
// its own can lose once the hop's time is added. Ties keep the earlier child.
func bestContinuation(trade FullTrade, children []SearchResult) SearchResult {
	if len(children) == 0 {
		return singleHop(trade)
	}
	best := children[0].then(trade)
	for _, c := range children[1:] {
		if combined := c.then(trade); combined.ProfitPerMinute() > best.ProfitPerMinute() {
			best = combined
		}
	}
	return best
}

// score perturbs route scores below the root when jitter is enabled.
func (w *searchWorker) score(r SearchResult, depth int) float64 {
	ppm := r.ProfitPerMinute()
	if w.rng == nil || depth == 0 {
		return ppm
	}
	j := w.settings.ScoreJitter
	return ppm * (1 - j + 2*j*w.rng.Float64())
}
