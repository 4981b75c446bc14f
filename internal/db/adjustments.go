package db

import (
	"database/sql"
	"fmt"
	"time"

	"elite-trader/internal/universe"
)

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// tsLayout is fixed width so timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(tsLayout)
}

// InsertPriceAdjustment appends a price correction to the log.
func (d *DB) InsertPriceAdjustment(adj universe.PriceAdjustment) error {
	_, err := d.sql.Exec(
		`INSERT INTO price_adjustments (timestamp, station_id, commodity_id, buy_price, sell_price, supply)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		formatTime(adj.Timestamp), adj.StationID, adj.CommodityID,
		nullInt(adj.BuyPrice), nullInt(adj.SellPrice), nullInt(adj.Supply),
	)
	if err != nil {
		return fmt.Errorf("insert price adjustment: %w", err)
	}
	return nil
}

// PriceAdjustments returns the log oldest first, ready for replay.
func (d *DB) PriceAdjustments() ([]universe.PriceAdjustment, error) {
	rows, err := d.sql.Query(
		`SELECT timestamp, station_id, commodity_id, buy_price, sell_price, supply
		 FROM price_adjustments ORDER BY timestamp, id`)
	if err != nil {
		return nil, fmt.Errorf("query price adjustments: %w", err)
	}
	defer rows.Close()

	var out []universe.PriceAdjustment
	for rows.Next() {
		var (
			ts                  string
			adj                 universe.PriceAdjustment
			buy, sell, supplied sql.NullInt64
		)
		if err := rows.Scan(&ts, &adj.StationID, &adj.CommodityID, &buy, &sell, &supplied); err != nil {
			return nil, fmt.Errorf("scan price adjustment: %w", err)
		}
		adj.Timestamp, _ = time.Parse(tsLayout, ts)
		adj.BuyPrice, adj.SellPrice, adj.Supply = intPtr(buy), intPtr(sell), intPtr(supplied)
		out = append(out, adj)
	}
	return out, rows.Err()
}

// InsertTimeAdjustment appends a timed hop to the log.
func (d *DB) InsertTimeAdjustment(adj universe.TimeAdjustment) error {
	_, err := d.sql.Exec(
		`INSERT INTO time_adjustments (timestamp, buy_station_id, sell_station_id, estimated_seconds, jump_seconds, actual_seconds)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		formatTime(adj.Timestamp), adj.BuyStationID, adj.SellStationID,
		adj.EstimatedSeconds, adj.JumpSeconds, adj.ActualSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert time adjustment: %w", err)
	}
	return nil
}

// TimeAdjustments returns the log oldest first.
func (d *DB) TimeAdjustments() ([]universe.TimeAdjustment, error) {
	rows, err := d.sql.Query(
		`SELECT timestamp, buy_station_id, sell_station_id, estimated_seconds, jump_seconds, actual_seconds
		 FROM time_adjustments ORDER BY timestamp, id`)
	if err != nil {
		return nil, fmt.Errorf("query time adjustments: %w", err)
	}
	defer rows.Close()

	var out []universe.TimeAdjustment
	for rows.Next() {
		var ts string
		var adj universe.TimeAdjustment
		if err := rows.Scan(&ts, &adj.BuyStationID, &adj.SellStationID, &adj.EstimatedSeconds, &adj.JumpSeconds, &adj.ActualSeconds); err != nil {
			return nil, fmt.Errorf("scan time adjustment: %w", err)
		}
		adj.Timestamp, _ = time.Parse(tsLayout, ts)
		out = append(out, adj)
	}
	return out, rows.Err()
}
