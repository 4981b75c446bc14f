package config

import (
	"fmt"
	"strings"
)

// Quality trades search time for route quality.
type Quality string

const (
	QualityLow   Quality = "low"
	QualityMed   Quality = "med"
	QualityHigh  Quality = "high"
	QualityUltra Quality = "ultra"
)

// ParseQuality accepts the full names and their first letter.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return QualityLow, nil
	case "m", "med", "medium":
		return QualityMed, nil
	case "h", "high":
		return QualityHigh, nil
	case "u", "ultra":
		return QualityUltra, nil
	}
	return "", fmt.Errorf("unknown search quality %q", s)
}

// Depth is the number of hops planned ahead.
func (q Quality) Depth() int {
	switch q {
	case QualityLow:
		return 7
	case QualityHigh:
		return 9
	case QualityUltra:
		return 10
	}
	return 8
}

// Width is the number of candidates kept at each search node.
func (q Quality) Width() int { return 6 }

// TradeRange is the radius in ly searched for destinations of one hop.
func (q Quality) TradeRange() float64 { return 80 }

// SearchSettings is everything the route search needs to know besides the
// player and the market.
type SearchSettings struct {
	HopWidth          int     `json:"hop_width"`
	MaxDepth          int     `json:"max_depth"`
	TradeRange        float64 `json:"trade_range"`
	Workers           int     `json:"workers"`
	SkipPermitSystems bool    `json:"skip_permit_systems"`
	ScoreJitter       float64 `json:"score_jitter"`
	Seed              int64   `json:"seed"`
}

// Limits applied to user-supplied overrides.
const (
	MaxHopWidth = 20
	MaxDepth    = 15
)

// Config holds application settings (in-memory representation).
// Persistence is handled by internal/db package; a YAML file may override it
// at startup.
type Config struct {
	Station       string  `json:"station" yaml:"station"`
	CargoCapacity int64   `json:"cargo_capacity" yaml:"cargo_capacity"`
	JumpRange     float64 `json:"jump_range" yaml:"jump_range"`
	Balance       int64   `json:"balance" yaml:"balance"`
	MinBalance    int64   `json:"min_balance" yaml:"min_balance"`
	MinPadSize    string  `json:"min_pad_size" yaml:"min_pad_size"`

	Quality           Quality `json:"quality" yaml:"quality"`
	HopWidth          int     `json:"hop_width" yaml:"hop_width"`     // 0 = preset
	MaxDepth          int     `json:"max_depth" yaml:"max_depth"`     // 0 = preset
	TradeRange        float64 `json:"trade_range" yaml:"trade_range"` // 0 = preset
	SkipPermitSystems bool    `json:"skip_permit_systems" yaml:"skip_permit_systems"`
	Workers           int     `json:"workers" yaml:"workers"` // 0 = one per CPU
	ScoreJitter       float64 `json:"score_jitter" yaml:"score_jitter"`

	RouteRateLimit float64 `json:"route_rate_limit" yaml:"route_rate_limit"` // searches per second
	WatchData      bool    `json:"watch_data" yaml:"watch_data"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		CargoCapacity:  100,
		JumpRange:      20,
		Balance:        1_000_000,
		MinPadSize:     "M",
		Quality:        QualityMed,
		RouteRateLimit: 2,
	}
}

// Search resolves the quality preset and explicit overrides.
func (c *Config) Search() SearchSettings {
	q := c.Quality
	if _, err := ParseQuality(string(q)); err != nil {
		q = QualityMed
	}
	s := SearchSettings{
		HopWidth:          q.Width(),
		MaxDepth:          q.Depth(),
		TradeRange:        q.TradeRange(),
		Workers:           c.Workers,
		SkipPermitSystems: c.SkipPermitSystems,
		ScoreJitter:       c.ScoreJitter,
	}
	if c.HopWidth > 0 {
		s.HopWidth = min(c.HopWidth, MaxHopWidth)
	}
	if c.MaxDepth > 0 {
		s.MaxDepth = min(c.MaxDepth, MaxDepth)
	}
	if c.TradeRange > 0 {
		s.TradeRange = c.TradeRange
	}
	s.ScoreJitter = min(max(s.ScoreJitter, 0), 0.5)
	return s
}
