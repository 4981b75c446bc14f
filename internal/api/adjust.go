package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"elite-trader/internal/universe"
)

// handleAdjustPrice applies a listing correction and appends it to the
// replay log.
// POST /api/adjust/price
// Body: {"station_id": 128, "commodity_id": 7, "sell_price": 1450}
func (s *Server) handleAdjustPrice(w http.ResponseWriter, r *http.Request) {
	var adj universe.PriceAdjustment
	if err := json.NewDecoder(r.Body).Decode(&adj); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	router, ready := s.currentRouter()
	if !ready {
		writeError(w, 503, "dataset not loaded yet")
		return
	}
	if adj.BuyPrice == nil && adj.SellPrice == nil && adj.Supply == nil {
		writeError(w, 400, "nothing to adjust")
		return
	}
	if adj.Timestamp.IsZero() {
		adj.Timestamp = time.Now().UTC()
	}

	if err := router.AdjustPrice(adj); err != nil {
		if errors.Is(err, universe.ErrUnknownStation) || errors.Is(err, universe.ErrUnknownListing) {
			writeError(w, 404, err.Error())
			return
		}
		writeError(w, 500, err.Error())
		return
	}
	if s.db != nil {
		if err := s.db.InsertPriceAdjustment(adj); err != nil {
			log.Printf("[API] InsertPriceAdjustment error: %v", err)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveAdjustment("price")
	}
	writeJSON(w, map[string]interface{}{"status": "ok", "adjustment": adj})
}

// handleAdjustTime records how long a hop actually took.
// POST /api/adjust/time
func (s *Server) handleAdjustTime(w http.ResponseWriter, r *http.Request) {
	var req universe.TimeAdjustment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	router, ready := s.currentRouter()
	if !ready {
		writeError(w, 503, "dataset not loaded yet")
		return
	}
	adj, ok := universe.NewTimeAdjustment(req.BuyStationID, req.SellStationID,
		req.EstimatedSeconds, req.JumpSeconds, req.ActualSeconds)
	if !ok {
		writeError(w, 400, "actual time must exceed jump time")
		return
	}
	if !req.Timestamp.IsZero() {
		adj.Timestamp = req.Timestamp
	}

	factor := router.AdjustTime(adj)
	if s.db != nil {
		if err := s.db.InsertTimeAdjustment(adj); err != nil {
			log.Printf("[API] InsertTimeAdjustment error: %v", err)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveAdjustment("time")
	}
	writeJSON(w, map[string]interface{}{"status": "ok", "time_factor": factor})
}
