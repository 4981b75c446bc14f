package engine

import (
	"errors"
	"fmt"

	"elite-trader/internal/universe"
)

// PlayerState is the player's position and finances at one point of a
// route. It is a value: every trade produces a new one.
type PlayerState struct {
	StationID     int32   `json:"station_id"`
	SystemID      int32   `json:"system_id"`
	Balance       int64   `json:"balance"`
	MinBalance    int64   `json:"min_balance"`
	CargoCapacity int64   `json:"cargo_capacity"`
	JumpRange     float64 `json:"jump_range"`
	TimeFactor    float64 `json:"time_factor"`

	station int
	system  int
}

// NewPlayerState places a player at stationID. A non-positive time factor
// means no correction.
func NewPlayerState(snap *universe.Snapshot, stationID int32, balance, minBalance, cargo int64, jumpRange, timeFactor float64) (PlayerState, error) {
	idx, ok := snap.StationIndex(stationID)
	if !ok {
		return PlayerState{}, fmt.Errorf("station %d: %w", stationID, universe.ErrUnknownStation)
	}
	if timeFactor <= 0 {
		timeFactor = 1
	}
	st := snap.Stations[idx]
	p := PlayerState{
		StationID:     st.ID,
		SystemID:      st.SystemID,
		Balance:       balance,
		MinBalance:    minBalance,
		CargoCapacity: cargo,
		JumpRange:     jumpRange,
		TimeFactor:    timeFactor,
		station:       idx,
		system:        st.System,
	}
	return p, p.Validate()
}

func (p PlayerState) Validate() error {
	switch {
	case p.CargoCapacity <= 0:
		return errors.New("cargo capacity must be positive")
	case p.JumpRange <= 0:
		return errors.New("jump range must be positive")
	case p.Balance < 0 || p.MinBalance < 0:
		return errors.New("balance must not be negative")
	}
	return nil
}

// Station returns the snapshot position of the current station.
func (p PlayerState) Station() int { return p.station }

func (p PlayerState) System() int { return p.system }

// withStation moves the player to the station at position idx.
func (p PlayerState) withStation(snap *universe.Snapshot, idx int) PlayerState {
	st := snap.MustStation(idx)
	p.station = idx
	p.system = st.System
	p.StationID = st.ID
	p.SystemID = st.SystemID
	return p
}
