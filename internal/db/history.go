package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RouteRecord is one stored route search.
type RouteRecord struct {
	ID            int64           `json:"id"`
	RunID         string          `json:"run_id"`
	Timestamp     string          `json:"timestamp"`
	StationID     int32           `json:"station_id"`
	StationName   string          `json:"station_name"`
	Count         int             `json:"count"`
	BestProfit    float64         `json:"best_profit"`
	BestPerMinute float64         `json:"best_per_minute"`
	Hops          int             `json:"hops"`
	DurationMs    int64           `json:"duration_ms"`
	Params        json.RawMessage `json:"params,omitempty"`
}

// InsertRouteHistory stores a search and returns its run id, or "" on error.
func (d *DB) InsertRouteHistory(rec RouteRecord, params any) string {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	paramsJSON, _ := json.Marshal(params)
	_, err := d.sql.Exec(
		`INSERT INTO route_history (run_id, timestamp, station_id, station_name, count, best_profit, best_per_minute, hops, duration_ms, params_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, time.Now().UTC().Format(time.RFC3339), rec.StationID, rec.StationName,
		rec.Count, rec.BestProfit, rec.BestPerMinute, rec.Hops, rec.DurationMs, string(paramsJSON),
	)
	if err != nil {
		return ""
	}
	return rec.RunID
}

// GetRouteHistory returns the last N searches (newest first).
func (d *DB) GetRouteHistory(limit int) []RouteRecord {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(
		`SELECT id, run_id, timestamp, station_id, station_name, count, best_profit, best_per_minute,
		 hops, duration_ms, COALESCE(params_json, '{}')
		 FROM route_history ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return []RouteRecord{}
	}
	defer rows.Close()

	var records []RouteRecord
	for rows.Next() {
		var r RouteRecord
		var paramsStr string
		rows.Scan(&r.ID, &r.RunID, &r.Timestamp, &r.StationID, &r.StationName, &r.Count,
			&r.BestProfit, &r.BestPerMinute, &r.Hops, &r.DurationMs, &paramsStr)
		r.Params = json.RawMessage(paramsStr)
		records = append(records, r)
	}
	if records == nil {
		return []RouteRecord{}
	}
	return records
}

// ClearRouteHistory deletes all stored searches.
func (d *DB) ClearRouteHistory() error {
	_, err := d.sql.Exec("DELETE FROM route_history")
	return err
}
