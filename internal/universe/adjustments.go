package universe

import "time"

// PriceAdjustment is a manual correction of one listing. Nil fields are left
// unchanged when applied.
type PriceAdjustment struct {
	StationID   int32     `json:"station_id"`
	CommodityID int32     `json:"commodity_id"`
	BuyPrice    *int64    `json:"buy_price,omitempty"`
	SellPrice   *int64    `json:"sell_price,omitempty"`
	Supply      *int64    `json:"supply,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewPriceAdjustment(stationID, commodityID int32, buyPrice, sellPrice, supply int64) PriceAdjustment {
	return PriceAdjustment{
		StationID:   stationID,
		CommodityID: commodityID,
		BuyPrice:    &buyPrice,
		SellPrice:   &sellPrice,
		Supply:      &supply,
		Timestamp:   time.Now().UTC(),
	}
}

// PriceAdjustmentFromSell records the price actually received when selling.
func PriceAdjustmentFromSell(stationID, commodityID int32, sellPrice int64) PriceAdjustment {
	return PriceAdjustment{
		StationID:   stationID,
		CommodityID: commodityID,
		SellPrice:   &sellPrice,
		Timestamp:   time.Now().UTC(),
	}
}

// PriceAdjustmentFromBuy records the price paid and the supply left after buying.
func PriceAdjustmentFromBuy(stationID, commodityID int32, buyPrice, supply int64) PriceAdjustment {
	return PriceAdjustment{
		StationID:   stationID,
		CommodityID: commodityID,
		BuyPrice:    &buyPrice,
		Supply:      &supply,
		Timestamp:   time.Now().UTC(),
	}
}

func (a PriceAdjustment) apply(l *Listing) {
	if a.BuyPrice != nil {
		l.BuyPrice = *a.BuyPrice
	}
	if a.SellPrice != nil {
		l.SellPrice = *a.SellPrice
	}
	if a.Supply != nil {
		l.Supply = *a.Supply
	}
	if !a.Timestamp.IsZero() {
		l.CollectedAt = a.Timestamp
	}
}

// TimeAdjustment compares a hop's estimated duration with the time the
// player actually took. JumpSeconds is the jump part of the estimate, which
// the correction factor never scales.
type TimeAdjustment struct {
	BuyStationID     int32     `json:"buy_station_id"`
	SellStationID    int32     `json:"sell_station_id"`
	EstimatedSeconds float64   `json:"estimated_seconds"`
	JumpSeconds      float64   `json:"jump_seconds"`
	ActualSeconds    float64   `json:"actual_seconds"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewTimeAdjustment returns false when the actual time is shorter than the
// jump time alone, which means the hop was not timed properly.
func NewTimeAdjustment(buyStationID, sellStationID int32, estimated, jump, actual float64) (TimeAdjustment, bool) {
	if actual <= jump || estimated <= jump {
		return TimeAdjustment{}, false
	}
	return TimeAdjustment{
		BuyStationID:     buyStationID,
		SellStationID:    sellStationID,
		EstimatedSeconds: estimated,
		JumpSeconds:      jump,
		ActualSeconds:    actual,
		Timestamp:        time.Now().UTC(),
	}, true
}

func (a TimeAdjustment) usable() bool {
	return a.ActualSeconds > a.JumpSeconds && a.EstimatedSeconds > a.JumpSeconds
}

const (
	MinTimeFactor = 0.5
	MaxTimeFactor = 3.0
)

// timeFactor is Σ(actual−jump) / Σ(estimated−jump) over usable records.
func timeFactor(log []TimeAdjustment) float64 {
	var actual, estimated float64
	for _, a := range log {
		if !a.usable() {
			continue
		}
		actual += a.ActualSeconds - a.JumpSeconds
		estimated += a.EstimatedSeconds - a.JumpSeconds
	}
	if estimated <= 0 {
		return 1
	}
	return min(max(actual/estimated, MinTimeFactor), MaxTimeFactor)
}
