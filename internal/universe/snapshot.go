package universe

import (
	"fmt"
	"slices"
	"strings"

	"elite-trader/internal/graph"
)

type listingKey struct {
	station   int32
	commodity int32
}

// Index maps ids and names to array positions. It is rebuilt whenever the
// set of systems, stations or listings changes shape.
type Index struct {
	systemByID    map[int32]int
	systemByName  map[string][]int
	stationByID   map[int32]int
	stationByName map[string][]int
	listingByKey  map[listingKey]int
	tree          *graph.Octree
}

// Snapshot is an immutable view of the universe. Searches share one snapshot
// across goroutines; corrections produce a new snapshot instead of mutating.
type Snapshot struct {
	Systems  []System
	Stations []Station
	Listings []Listing

	index      *Index
	generation uint64
}

// NewSnapshot flattens the dataset tree into arrays and builds the index.
// Duplicate ids are rejected.
func NewSnapshot(systems []SystemData, generation uint64) (*Snapshot, error) {
	s := &Snapshot{generation: generation}
	for _, sd := range systems {
		sysIdx := len(s.Systems)
		sys := System{
			ID:          sd.ID,
			Name:        sd.Name,
			Position:    sd.Position,
			NeedsPermit: sd.NeedsPermit,
		}
		for _, std := range sd.Stations {
			stIdx := len(s.Stations)
			st := Station{
				ID:         std.ID,
				Name:       std.Name,
				SystemID:   sd.ID,
				System:     sysIdx,
				PadSize:    std.PadSize,
				Prohibited: slices.Sorted(slices.Values(std.Prohibited)),
				UpdatedAt:  std.UpdatedAt,
			}
			if std.DistanceToStar != nil {
				st.DistanceToStar = *std.DistanceToStar
				st.HasDistance = true
			}
			for _, ld := range std.Listings {
				st.Listings = append(st.Listings, len(s.Listings))
				s.Listings = append(s.Listings, Listing{
					StationID:   std.ID,
					Station:     stIdx,
					Commodity:   ld.Commodity,
					Supply:      ld.Supply,
					BuyPrice:    ld.BuyPrice,
					SellPrice:   ld.SellPrice,
					CollectedAt: ld.CollectedAt,
				})
			}
			sys.Stations = append(sys.Stations, stIdx)
			s.Stations = append(s.Stations, st)
		}
		s.Systems = append(s.Systems, sys)
	}
	idx, err := buildIndex(s)
	if err != nil {
		return nil, err
	}
	s.index = idx
	return s, nil
}

func buildIndex(s *Snapshot) (*Index, error) {
	idx := &Index{
		systemByID:    make(map[int32]int, len(s.Systems)),
		systemByName:  make(map[string][]int, len(s.Systems)),
		stationByID:   make(map[int32]int, len(s.Stations)),
		stationByName: make(map[string][]int, len(s.Stations)),
		listingByKey:  make(map[listingKey]int, len(s.Listings)),
		tree:          graph.NewOctree(graph.GalaxyVolume),
	}
	for i := range s.Systems {
		sys := &s.Systems[i]
		if _, dup := idx.systemByID[sys.ID]; dup {
			return nil, fmt.Errorf("duplicate system id %d", sys.ID)
		}
		idx.systemByID[sys.ID] = i
		key := strings.ToLower(sys.Name)
		idx.systemByName[key] = append(idx.systemByName[key], i)
		idx.tree.Insert(sys.Position, i)
	}
	for i := range s.Stations {
		st := &s.Stations[i]
		if _, dup := idx.stationByID[st.ID]; dup {
			return nil, fmt.Errorf("duplicate station id %d", st.ID)
		}
		idx.stationByID[st.ID] = i
		key := strings.ToLower(st.Name)
		idx.stationByName[key] = append(idx.stationByName[key], i)
	}
	for i := range s.Listings {
		l := &s.Listings[i]
		k := listingKey{station: l.StationID, commodity: l.Commodity.ID}
		if _, dup := idx.listingByKey[k]; dup {
			return nil, fmt.Errorf("duplicate listing for station %d commodity %d", l.StationID, l.Commodity.ID)
		}
		idx.listingByKey[k] = i
	}
	return idx, nil
}

// Generation changes only on structural rebuilds, never on price corrections.
func (s *Snapshot) Generation() uint64 { return s.generation }

func (s *Snapshot) SystemIndex(id int32) (int, bool) {
	i, ok := s.index.systemByID[id]
	return i, ok
}

func (s *Snapshot) StationIndex(id int32) (int, bool) {
	i, ok := s.index.stationByID[id]
	return i, ok
}

func (s *Snapshot) ListingIndex(stationID, commodityID int32) (int, bool) {
	i, ok := s.index.listingByKey[listingKey{station: stationID, commodity: commodityID}]
	return i, ok
}

// SystemsByName returns every system whose name matches case-insensitively.
func (s *Snapshot) SystemsByName(name string) []int {
	return slices.Clone(s.index.systemByName[strings.ToLower(strings.TrimSpace(name))])
}

// StationsByName returns every station whose name matches case-insensitively.
// Names are not unique across systems.
func (s *Snapshot) StationsByName(name string) []int {
	return slices.Clone(s.index.stationByName[strings.ToLower(strings.TrimSpace(name))])
}

// SystemsWithin returns positions of systems within radius ly of center.
func (s *Snapshot) SystemsWithin(center graph.Point, radius float64) []int {
	return s.index.tree.WithinRadius(center, radius)
}

// MustStation returns the station at position i. An out-of-range position
// means the caller holds an index from another snapshot shape.
func (s *Snapshot) MustStation(i int) *Station {
	if i < 0 || i >= len(s.Stations) {
		panic(fmt.Sprintf("universe: station position %d out of range (%d stations)", i, len(s.Stations)))
	}
	return &s.Stations[i]
}

func (s *Snapshot) MustSystem(i int) *System {
	if i < 0 || i >= len(s.Systems) {
		panic(fmt.Sprintf("universe: system position %d out of range (%d systems)", i, len(s.Systems)))
	}
	return &s.Systems[i]
}

func (s *Snapshot) MustListing(i int) *Listing {
	if i < 0 || i >= len(s.Listings) {
		panic(fmt.Sprintf("universe: listing position %d out of range (%d listings)", i, len(s.Listings)))
	}
	return &s.Listings[i]
}

// withListings returns a copy sharing everything but the listing array.
func (s *Snapshot) withListings(listings []Listing) *Snapshot {
	next := *s
	next.Listings = listings
	return &next
}
