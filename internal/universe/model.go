// Package universe holds the market dataset: systems, their stations and the
// commodity listings at each station. Data lives in flat arrays owned by an
// immutable Snapshot; every cross reference is an array position.
package universe

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"elite-trader/internal/graph"
)

var (
	ErrUnknownSystem  = errors.New("unknown system")
	ErrUnknownStation = errors.New("unknown station")
	ErrUnknownListing = errors.New("unknown listing")
)

// PadSize is the largest landing pad a station offers.
type PadSize uint8

const (
	PadSmall PadSize = iota + 1
	PadMedium
	PadLarge
)

func (p PadSize) String() string {
	switch p {
	case PadSmall:
		return "S"
	case PadMedium:
		return "M"
	case PadLarge:
		return "L"
	}
	return "?"
}

// ParsePadSize accepts S/M/L and the spelled-out forms, case-insensitively.
func ParsePadSize(s string) (PadSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "small":
		return PadSmall, nil
	case "m", "med", "medium":
		return PadMedium, nil
	case "l", "large":
		return PadLarge, nil
	}
	return 0, fmt.Errorf("invalid pad size %q", s)
}

func (p PadSize) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PadSize) UnmarshalText(b []byte) error {
	v, err := ParsePadSize(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type Commodity struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Listing is one commodity offered or wanted at a station.
// Supply 0 means it cannot be bought there, SellPrice 0 that it cannot be sold.
type Listing struct {
	StationID   int32     `json:"station_id"`
	Station     int       `json:"-"`
	Commodity   Commodity `json:"commodity"`
	Supply      int64     `json:"supply"`
	BuyPrice    int64     `json:"buy_price"`
	SellPrice   int64     `json:"sell_price"`
	CollectedAt time.Time `json:"collected_at"`
}

func (l *Listing) Buyable() bool  { return l.Supply > 0 && l.BuyPrice > 0 }
func (l *Listing) Sellable() bool { return l.SellPrice > 0 }

type Station struct {
	ID             int32     `json:"id"`
	Name           string    `json:"name"`
	SystemID       int32     `json:"system_id"`
	System         int       `json:"-"`
	PadSize        PadSize   `json:"pad_size"`
	DistanceToStar float64   `json:"distance_to_star,omitempty"`
	HasDistance    bool      `json:"has_distance"`
	Prohibited     []int32   `json:"prohibited,omitempty"`
	Listings       []int     `json:"-"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Prohibits reports whether the commodity is on this station's blacklist.
func (s *Station) Prohibits(commodityID int32) bool {
	_, found := slices.BinarySearch(s.Prohibited, commodityID)
	return found
}

type System struct {
	ID          int32       `json:"id"`
	Name        string      `json:"name"`
	Position    graph.Point `json:"position"`
	NeedsPermit bool        `json:"needs_permit"`
	Stations    []int       `json:"-"`
}

// SystemData, StationData and ListingData describe the dataset as a tree
// before it is flattened into a Snapshot.
type SystemData struct {
	ID          int32
	Name        string
	Position    graph.Point
	NeedsPermit bool
	Stations    []StationData
}

type StationData struct {
	ID             int32
	Name           string
	PadSize        PadSize
	DistanceToStar *float64
	Prohibited     []int32
	UpdatedAt      time.Time
	Listings       []ListingData
}

type ListingData struct {
	Commodity   Commodity
	Supply      int64
	BuyPrice    int64
	SellPrice   int64
	CollectedAt time.Time
}
