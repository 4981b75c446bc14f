package universe

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
)

// Universe is the authoritative, mutable owner of the dataset. Readers take
// a Snapshot, which never changes after it is published.
type Universe struct {
	mu         sync.Mutex
	current    atomic.Pointer[Snapshot]
	generation uint64
	timeLog    []TimeAdjustment
	factor     atomic.Uint64
}

func New(systems []SystemData) (*Universe, error) {
	u := &Universe{}
	u.setFactor(1)
	if err := u.Replace(systems); err != nil {
		return nil, err
	}
	return u, nil
}

// Snapshot returns the current immutable view.
func (u *Universe) Snapshot() *Snapshot {
	return u.current.Load()
}

// Replace swaps in a new dataset. The generation is bumped so dependent
// caches know every position they hold is void.
func (u *Universe) Replace(systems []SystemData) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	snap, err := NewSnapshot(systems, u.generation+1)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}
	u.generation++
	u.current.Store(snap)
	return nil
}

func (u *Universe) GetSystem(id int32) (System, error) {
	s := u.Snapshot()
	i, ok := s.SystemIndex(id)
	if !ok {
		return System{}, fmt.Errorf("system %d: %w", id, ErrUnknownSystem)
	}
	return s.Systems[i], nil
}

func (u *Universe) GetStation(id int32) (Station, error) {
	s := u.Snapshot()
	i, ok := s.StationIndex(id)
	if !ok {
		return Station{}, fmt.Errorf("station %d: %w", id, ErrUnknownStation)
	}
	return s.Stations[i], nil
}

// GetSystemsInRange returns systems within radius ly of the given system,
// including the system itself.
func (u *Universe) GetSystemsInRange(systemID int32, radius float64) ([]System, error) {
	s := u.Snapshot()
	i, ok := s.SystemIndex(systemID)
	if !ok {
		return nil, fmt.Errorf("system %d: %w", systemID, ErrUnknownSystem)
	}
	positions := s.SystemsWithin(s.Systems[i].Position, radius)
	out := make([]System, 0, len(positions))
	for _, p := range positions {
		out = append(out, s.Systems[p])
	}
	return out, nil
}

// GetStationByName returns all stations with a case-insensitive name match.
func (u *Universe) GetStationByName(name string) []Station {
	s := u.Snapshot()
	var out []Station
	for _, i := range s.StationsByName(name) {
		out = append(out, s.Stations[i])
	}
	return out
}

// ApplyPriceAdjustment publishes a snapshot with one listing corrected.
func (u *Universe) ApplyPriceAdjustment(adj PriceAdjustment) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	cur := u.current.Load()
	if _, ok := cur.StationIndex(adj.StationID); !ok {
		return fmt.Errorf("station %d: %w", adj.StationID, ErrUnknownStation)
	}
	li, ok := cur.ListingIndex(adj.StationID, adj.CommodityID)
	if !ok {
		return fmt.Errorf("station %d commodity %d: %w", adj.StationID, adj.CommodityID, ErrUnknownListing)
	}
	listings := slices.Clone(cur.Listings)
	adj.apply(&listings[li])
	u.current.Store(cur.withListings(listings))
	return nil
}

// ApplyTimeAdjustment records a timed hop and recomputes the correction factor.
func (u *Universe) ApplyTimeAdjustment(adj TimeAdjustment) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.timeLog = append(u.timeLog, adj)
	u.setFactor(timeFactor(u.timeLog))
}

// TimeFactor is the current empirical travel-time correction, 1 when no
// usable adjustments have been recorded.
func (u *Universe) TimeFactor() float64 {
	return math.Float64frombits(u.factor.Load())
}

func (u *Universe) setFactor(f float64) {
	u.factor.Store(math.Float64bits(f))
}
