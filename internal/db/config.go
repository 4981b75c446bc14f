package db

import (
	"fmt"
	"strconv"

	"elite-trader/internal/config"
)

// LoadConfig reads config from SQLite. If empty, returns defaults.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM config")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}
	if len(m) == 0 {
		return cfg
	}

	if v, ok := m["station"]; ok {
		cfg.Station = v
	}
	if v, ok := m["cargo_capacity"]; ok {
		cfg.CargoCapacity, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := m["jump_range"]; ok {
		cfg.JumpRange, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["balance"]; ok {
		cfg.Balance, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := m["min_balance"]; ok {
		cfg.MinBalance, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := m["min_pad_size"]; ok {
		cfg.MinPadSize = v
	}
	if v, ok := m["quality"]; ok {
		if q, err := config.ParseQuality(v); err == nil {
			cfg.Quality = q
		}
	}
	if v, ok := m["hop_width"]; ok {
		cfg.HopWidth, _ = strconv.Atoi(v)
	}
	if v, ok := m["max_depth"]; ok {
		cfg.MaxDepth, _ = strconv.Atoi(v)
	}
	if v, ok := m["trade_range"]; ok {
		cfg.TradeRange, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["skip_permit_systems"]; ok {
		cfg.SkipPermitSystems, _ = strconv.ParseBool(v)
	}
	if v, ok := m["workers"]; ok {
		cfg.Workers, _ = strconv.Atoi(v)
	}
	if v, ok := m["score_jitter"]; ok {
		cfg.ScoreJitter, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["route_rate_limit"]; ok {
		cfg.RouteRateLimit, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["watch_data"]; ok {
		cfg.WatchData, _ = strconv.ParseBool(v)
	}
	return cfg
}

// SaveConfig writes config to SQLite (upsert all fields).
func (d *DB) SaveConfig(cfg *config.Config) error {
	pairs := map[string]string{
		"station":             cfg.Station,
		"cargo_capacity":      strconv.FormatInt(cfg.CargoCapacity, 10),
		"jump_range":          fmt.Sprintf("%g", cfg.JumpRange),
		"balance":             strconv.FormatInt(cfg.Balance, 10),
		"min_balance":         strconv.FormatInt(cfg.MinBalance, 10),
		"min_pad_size":        cfg.MinPadSize,
		"quality":             string(cfg.Quality),
		"hop_width":           strconv.Itoa(cfg.HopWidth),
		"max_depth":           strconv.Itoa(cfg.MaxDepth),
		"trade_range":         fmt.Sprintf("%g", cfg.TradeRange),
		"skip_permit_systems": strconv.FormatBool(cfg.SkipPermitSystems),
		"workers":             strconv.Itoa(cfg.Workers),
		"score_jitter":        fmt.Sprintf("%g", cfg.ScoreJitter),
		"route_rate_limit":    fmt.Sprintf("%g", cfg.RouteRateLimit),
		"watch_data":          strconv.FormatBool(cfg.WatchData),
	}

	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, v := range pairs {
		if _, err := stmt.Exec(k, v); err != nil {
			return fmt.Errorf("save config %s: %w", k, err)
		}
	}
	return tx.Commit()
}
