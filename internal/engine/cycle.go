package engine

type cycleHop struct {
	buyStation int
	profit     float64
	seconds    float64
	cyclic     bool
}

// CycleTracker is the list of hops taken along one search path. Push returns
// a new tracker so sibling branches never see each other's hops.
type CycleTracker struct {
	hops []cycleHop
}

// Cycle is the projected result of repeating a loop for the remaining hops.
type Cycle struct {
	Length  int
	Profit  float64
	Seconds float64
}

func (t CycleTracker) Len() int { return len(t.hops) }

func (t CycleTracker) Push(trade FullTrade) CycleTracker {
	hops := make([]cycleHop, len(t.hops), len(t.hops)+1)
	copy(hops, t.hops)
	hops = append(hops, cycleHop{
		buyStation: trade.Unit.BuyStation,
		profit:     float64(trade.ProfitTotal),
		seconds:    trade.Unit.Adjusted.Total(),
		cyclic:     trade.Cyclic,
	})
	return CycleTracker{hops: hops}
}

// FindCycle walks back from the latest hop looking for an earlier hop that
// bought at the candidate's buy station. Every hop on the way must be
// repeatable. On a match the loop's profit and time are scaled from its
// length to hopsRemaining.
func (t CycleTracker) FindCycle(candidate FullTrade, hopsRemaining int) (Cycle, bool) {
	var c Cycle
	for i := len(t.hops) - 1; i >= 0; i-- {
		h := t.hops[i]
		if !h.cyclic {
			return Cycle{}, false
		}
		c.Length++
		c.Profit += h.profit
		c.Seconds += h.seconds
		if h.buyStation == candidate.Unit.BuyStation {
			scale := float64(hopsRemaining) / float64(c.Length)
			c.Profit *= scale
			c.Seconds *= scale
			return c, true
		}
	}
	return Cycle{}, false
}
