package engine

import (
	"math"
	"testing"
)

func TestJumpCount(t *testing.T) {
	tests := []struct {
		name      string
		distance  float64
		jumpRange float64
		want      int
	}{
		{name: "same system", distance: 0, jumpRange: 20, want: 0},
		{name: "within range", distance: 10, jumpRange: 20, want: 1},
		{name: "exactly range", distance: 20, jumpRange: 20, want: 1},
		{name: "five ranges", distance: 100, jumpRange: 20, want: 7},
		{name: "short range penalty", distance: 100, jumpRange: 10, want: 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JumpCount(tt.distance, tt.jumpRange); got != tt.want {
				t.Errorf("JumpCount(%v, %v) = %d, want %d", tt.distance, tt.jumpRange, got, tt.want)
			}
		})
	}
}

func TestSupercruiseSeconds(t *testing.T) {
	if got := SupercruiseSeconds(0); got != 0 {
		t.Errorf("SupercruiseSeconds(0) = %v, want 0 (clamped)", got)
	}
	prev := 0.0
	for _, ls := range []float64{100, 1000, 10000, 100000} {
		got := SupercruiseSeconds(ls)
		if got <= prev {
			t.Errorf("SupercruiseSeconds(%v) = %v, not increasing past %v", ls, got, prev)
		}
		prev = got
	}
	if got := SupercruiseSeconds(1e12); got > 1947.062 {
		t.Errorf("SupercruiseSeconds(huge) = %v, above asymptote", got)
	}
}

func TestEstimateTime_FactorSparesJumps(t *testing.T) {
	norm := EstimateTime(100, 20, 500, 1)
	adj := EstimateTime(100, 20, 500, 2)

	if norm.Jumps != 7 || adj.Jumps != 7 {
		t.Fatalf("jumps = %d/%d, want 7", norm.Jumps, adj.Jumps)
	}
	if adj.JumpSeconds != norm.JumpSeconds {
		t.Errorf("jump seconds scaled: %v vs %v", adj.JumpSeconds, norm.JumpSeconds)
	}
	wantSystem := 2*(BuySeconds+UndockSeconds) + norm.JumpSeconds
	if math.Abs(adj.SystemSeconds-wantSystem) > 1e-9 {
		t.Errorf("SystemSeconds = %v, want %v", adj.SystemSeconds, wantSystem)
	}
	if math.Abs(adj.StationSeconds-2*norm.StationSeconds) > 1e-9 {
		t.Errorf("StationSeconds = %v, want %v", adj.StationSeconds, 2*norm.StationSeconds)
	}
	if norm.Total() <= BuySeconds+UndockSeconds+DockSeconds+SellSeconds {
		t.Errorf("Total = %v, must exceed fixed overheads", norm.Total())
	}
}

func TestEstimateTime_NonPositiveFactor(t *testing.T) {
	if EstimateTime(10, 20, 100, 0) != EstimateTime(10, 20, 100, 1) {
		t.Error("factor 0 should behave like 1")
	}
}
