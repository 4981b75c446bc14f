package api

import (
	"encoding/json"
	"log"
	"net/http"

	"elite-trader/internal/config"
	"elite-trader/internal/universe"
)

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	writeJSON(w, s.cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	s.cfgMu.Lock()
	next := *s.cfg
	if v, ok := patch["station"]; ok {
		json.Unmarshal(v, &next.Station)
	}
	if v, ok := patch["cargo_capacity"]; ok {
		json.Unmarshal(v, &next.CargoCapacity)
	}
	if v, ok := patch["jump_range"]; ok {
		json.Unmarshal(v, &next.JumpRange)
	}
	if v, ok := patch["balance"]; ok {
		json.Unmarshal(v, &next.Balance)
	}
	if v, ok := patch["min_balance"]; ok {
		json.Unmarshal(v, &next.MinBalance)
	}
	if v, ok := patch["min_pad_size"]; ok {
		json.Unmarshal(v, &next.MinPadSize)
	}
	if v, ok := patch["quality"]; ok {
		var q string
		json.Unmarshal(v, &q)
		parsed, err := config.ParseQuality(q)
		if err != nil {
			s.cfgMu.Unlock()
			writeError(w, 400, err.Error())
			return
		}
		next.Quality = parsed
	}
	if v, ok := patch["hop_width"]; ok {
		json.Unmarshal(v, &next.HopWidth)
	}
	if v, ok := patch["max_depth"]; ok {
		json.Unmarshal(v, &next.MaxDepth)
	}
	if v, ok := patch["trade_range"]; ok {
		json.Unmarshal(v, &next.TradeRange)
	}
	if v, ok := patch["skip_permit_systems"]; ok {
		json.Unmarshal(v, &next.SkipPermitSystems)
	}
	if v, ok := patch["workers"]; ok {
		json.Unmarshal(v, &next.Workers)
	}
	if v, ok := patch["score_jitter"]; ok {
		json.Unmarshal(v, &next.ScoreJitter)
	}

	// Validate bounds
	if next.CargoCapacity < 0 {
		next.CargoCapacity = 0
	}
	if next.JumpRange < 0 {
		next.JumpRange = 0
	}
	if next.MinBalance < 0 {
		next.MinBalance = 0
	}
	next.HopWidth = min(max(next.HopWidth, 0), config.MaxHopWidth)
	next.MaxDepth = min(max(next.MaxDepth, 0), config.MaxDepth)
	next.ScoreJitter = min(max(next.ScoreJitter, 0), 0.5)
	if next.MinPadSize != "" {
		if _, err := universe.ParsePadSize(next.MinPadSize); err != nil {
			next.MinPadSize = s.cfg.MinPadSize
		}
	}

	*s.cfg = next
	s.cfgMu.Unlock()

	if router, ok := s.currentRouter(); ok {
		router.SetSettings(next.Search())
	}
	if s.db != nil {
		if err := s.db.SaveConfig(&next); err != nil {
			log.Printf("[API] SaveConfig error: %v", err)
		}
	}
	writeJSON(w, next)
}
