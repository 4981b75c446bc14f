package engine

import "math"

// Fixed per-hop overheads in seconds, fitted against recorded play sessions.
const (
	BuySeconds    = 36.92425
	UndockSeconds = 77.749256
	DockSeconds   = 56.52650
	SellSeconds   = 24.80750

	// SecondsPerJump covers charge-up, hyperspace and the star scoop pause.
	SecondsPerJump = 43.16516

	// DefaultStationDistance is used when a station has no known distance
	// from its arrival star.
	DefaultStationDistance = 1000.0
)

// Jump-count regression: round(jumpSlope·d/r + jumpIntercept).
const (
	jumpSlope     = 1.354407
	jumpIntercept = 0.05582672
)

// Supercruise sigmoid: d + (a−d) / (1 + (x/c)^b), x in light seconds.
const (
	scA = -538.2561
	scB = 0.04859748
	scC = 340396200000.0
	scD = 1947.062
)

// JumpCount estimates the hyperspace jumps needed to cover distance ly with
// the given jump range. Plotted routes need more jumps than distance/range
// suggests, and the gap widens as the range shrinks.
func JumpCount(distance, jumpRange float64) int {
	switch {
	case distance <= 0:
		return 0
	case jumpRange <= 0 || distance < jumpRange:
		return 1
	}
	return int(math.Round(jumpSlope*distance/jumpRange + jumpIntercept))
}

// SupercruiseSeconds estimates the time to fly from the arrival star to a
// station ls light seconds out.
func SupercruiseSeconds(ls float64) float64 {
	if ls < 0 {
		ls = 0
	}
	t := scD + (scA-scD)/(1+math.Pow(ls/scC, scB))
	return max(t, 0)
}

// TimeEstimate splits a hop into the leg to the destination system
// (buying, undocking, jumping) and the leg to the station (supercruise,
// docking, selling).
type TimeEstimate struct {
	Jumps          int     `json:"jumps"`
	JumpSeconds    float64 `json:"jump_seconds"`
	SystemSeconds  float64 `json:"system_seconds"`
	StationSeconds float64 `json:"station_seconds"`
}

func (e TimeEstimate) Total() float64 {
	return e.SystemSeconds + e.StationSeconds
}

// EstimateTime models one hop. factor scales everything but jump time; pass 1
// for the uncorrected estimate.
func EstimateTime(distance, jumpRange, stationDistance, factor float64) TimeEstimate {
	if factor <= 0 {
		factor = 1
	}
	jumps := JumpCount(distance, jumpRange)
	jumpTime := float64(jumps) * SecondsPerJump
	return TimeEstimate{
		Jumps:          jumps,
		JumpSeconds:    jumpTime,
		SystemSeconds:  factor*(BuySeconds+UndockSeconds) + jumpTime,
		StationSeconds: factor * (SellSeconds + DockSeconds + SupercruiseSeconds(stationDistance)),
	}
}
