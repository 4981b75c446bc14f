package universe

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"elite-trader/internal/graph"
	"elite-trader/internal/logger"

	"github.com/dustin/go-humanize"
)

// Dataset files expected in the data directory, one JSON object per line.
const (
	CommoditiesFile = "commodities.jsonl"
	SystemsFile     = "systems.jsonl"
	StationsFile    = "stations.jsonl"
	ListingsFile    = "listings.jsonl"
)

type commodityRecord struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type systemRecord struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	NeedsPermit bool    `json:"needs_permit"`
}

type stationRecord struct {
	ID             int32    `json:"id"`
	Name           string   `json:"name"`
	SystemID       int32    `json:"system_id"`
	MaxPad         string   `json:"max_landing_pad_size"`
	DistanceToStar *float64 `json:"distance_to_star"`
	Prohibited     []string `json:"prohibited_commodities"`
	UpdatedAt      int64    `json:"updated_at"`
}

type listingRecord struct {
	StationID   int32 `json:"station_id"`
	CommodityID int32 `json:"commodity_id"`
	Supply      int64 `json:"supply"`
	BuyPrice    int64 `json:"buy_price"`
	SellPrice   int64 `json:"sell_price"`
	CollectedAt int64 `json:"collected_at"`
}

// Load reads the dataset from dataDir. Stations whose largest pad is smaller
// than minPad are dropped along with their listings; a zero minPad keeps all.
// Malformed lines are skipped. A prohibited commodity name that does not
// resolve is an error.
func Load(dataDir string, minPad PadSize) ([]SystemData, error) {
	commodities := make(map[int32]Commodity)
	byName := make(map[string]int32)
	err := readJSONL(filepath.Join(dataDir, CommoditiesFile), func(raw []byte) error {
		var r commodityRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		commodities[r.ID] = Commodity{ID: r.ID, Name: r.Name, Category: r.Category}
		byName[strings.ToLower(r.Name)] = r.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load commodities: %w", err)
	}

	var systems []SystemData
	sysPos := make(map[int32]int)
	err = readJSONL(filepath.Join(dataDir, SystemsFile), func(raw []byte) error {
		var r systemRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		if _, dup := sysPos[r.ID]; dup {
			return fmt.Errorf("duplicate system %d", r.ID)
		}
		sysPos[r.ID] = len(systems)
		systems = append(systems, SystemData{
			ID:          r.ID,
			Name:        r.Name,
			Position:    graph.Point{X: r.X, Y: r.Y, Z: r.Z},
			NeedsPermit: r.NeedsPermit,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load systems: %w", err)
	}

	type stationRef struct{ sys, st int }
	stationPos := make(map[int32]stationRef)
	var padFiltered, orphaned int
	var prohibitedErr error
	err = readJSONL(filepath.Join(dataDir, StationsFile), func(raw []byte) error {
		var r stationRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		pad, err := ParsePadSize(r.MaxPad)
		if err != nil {
			return err
		}
		if minPad != 0 && pad < minPad {
			padFiltered++
			return nil
		}
		si, ok := sysPos[r.SystemID]
		if !ok {
			orphaned++
			return nil
		}
		if _, dup := stationPos[r.ID]; dup {
			return fmt.Errorf("duplicate station %d", r.ID)
		}
		var prohibited []int32
		for _, name := range r.Prohibited {
			id, ok := byName[strings.ToLower(name)]
			if !ok {
				if prohibitedErr == nil {
					prohibitedErr = fmt.Errorf("station %d prohibits unknown commodity %q", r.ID, name)
				}
				continue
			}
			prohibited = append(prohibited, id)
		}
		sys := &systems[si]
		stationPos[r.ID] = stationRef{sys: si, st: len(sys.Stations)}
		sys.Stations = append(sys.Stations, StationData{
			ID:             r.ID,
			Name:           r.Name,
			PadSize:        pad,
			DistanceToStar: r.DistanceToStar,
			Prohibited:     prohibited,
			UpdatedAt:      unixTime(r.UpdatedAt),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	if prohibitedErr != nil {
		return nil, fmt.Errorf("load stations: %w", prohibitedErr)
	}

	var listingCount, skippedListings int
	err = readJSONL(filepath.Join(dataDir, ListingsFile), func(raw []byte) error {
		var r listingRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		ref, ok := stationPos[r.StationID]
		c, known := commodities[r.CommodityID]
		if !ok || !known {
			skippedListings++
			return nil
		}
		st := &systems[ref.sys].Stations[ref.st]
		st.Listings = append(st.Listings, ListingData{
			Commodity:   c,
			Supply:      r.Supply,
			BuyPrice:    r.BuyPrice,
			SellPrice:   r.SellPrice,
			CollectedAt: unixTime(r.CollectedAt),
		})
		listingCount++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	// Listings for the same commodity may repeat; keep the freshest.
	for si := range systems {
		for sti := range systems[si].Stations {
			st := &systems[si].Stations[sti]
			st.Listings = dedupeListings(st.Listings)
		}
	}

	logger.Section("Dataset")
	logger.Stats("Commodities", humanize.Comma(int64(len(commodities))))
	logger.Stats("Systems", humanize.Comma(int64(len(systems))))
	logger.Stats("Stations", humanize.Comma(int64(len(stationPos))))
	logger.Stats("Listings", humanize.Comma(int64(listingCount)))
	if padFiltered > 0 {
		logger.Stats("Pad filtered", humanize.Comma(int64(padFiltered)))
	}
	if orphaned > 0 || skippedListings > 0 {
		logger.Warn("Data", fmt.Sprintf("Skipped %d orphan stations, %d orphan listings", orphaned, skippedListings))
	}
	return systems, nil
}

func dedupeListings(in []ListingData) []ListingData {
	if len(in) < 2 {
		return in
	}
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].Commodity.ID < in[j].Commodity.ID
	})
	out := in[:0]
	for _, l := range in {
		if n := len(out); n > 0 && out[n-1].Commodity.ID == l.Commodity.ID {
			if l.CollectedAt.After(out[n-1].CollectedAt) {
				out[n-1] = l
			}
			continue
		}
		out = append(out, l)
	}
	return out
}

func unixTime(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// readJSONL calls fn for every non-empty line. Lines fn rejects are skipped.
// A missing file is reported so the caller can fail startup.
func readJSONL(path string, fn func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	bad := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			bad++
			continue
		}
	}
	if bad > 0 {
		logger.Warn("Data", fmt.Sprintf("%s: skipped %d malformed lines", filepath.Base(path), bad))
	}
	return scanner.Err()
}
