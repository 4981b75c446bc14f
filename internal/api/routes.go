package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"elite-trader/internal/config"
	"elite-trader/internal/db"
	"elite-trader/internal/engine"
	"elite-trader/internal/universe"
)

type stationView struct {
	ID             int32   `json:"id"`
	Name           string  `json:"name"`
	SystemID       int32   `json:"system_id"`
	SystemName     string  `json:"system_name"`
	PadSize        string  `json:"pad_size"`
	DistanceToStar float64 `json:"distance_to_star,omitempty"`
	Listings       int     `json:"listings"`
}

func viewStation(snap *universe.Snapshot, st *universe.Station) stationView {
	return stationView{
		ID:             st.ID,
		Name:           st.Name,
		SystemID:       st.SystemID,
		SystemName:     snap.Systems[st.System].Name,
		PadSize:        st.PadSize.String(),
		DistanceToStar: st.DistanceToStar,
		Listings:       len(st.Listings),
	}
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	router, ready := s.currentRouter()
	if !ready {
		writeError(w, 503, "dataset not loaded yet")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, 400, "q is required")
		return
	}
	snap := router.Universe().Snapshot()
	out := []stationView{}
	for _, i := range snap.StationsByName(q) {
		out = append(out, viewStation(snap, &snap.Stations[i]))
	}
	writeJSON(w, out)
}

type hopView struct {
	BuyStation      string  `json:"buy_station"`
	SellStation     string  `json:"sell_station"`
	BuyStationID    int32   `json:"buy_station_id"`
	SellStationID   int32   `json:"sell_station_id"`
	Commodity       string  `json:"commodity"`
	CommodityID     int32   `json:"commodity_id"`
	UsedCargo       int64   `json:"used_cargo"`
	BuyPrice        int64   `json:"buy_price"`
	SellPrice       int64   `json:"sell_price"`
	Profit          int64   `json:"profit"`
	ProfitPerMinute float64 `json:"profit_per_minute"`
	Jumps           int     `json:"jumps"`
	Distance        float64 `json:"distance_ly"`
	Seconds         float64 `json:"seconds"`
	JumpSeconds     float64 `json:"jump_seconds"`
	MaxRuns         int64   `json:"max_runs"`
	Prohibited      bool    `json:"prohibited"`
	Cyclic          bool    `json:"cyclic"`
}

type routeView struct {
	ProfitTotal     float64   `json:"profit_total"`
	TimeTotal       float64   `json:"time_total"`
	ProfitPerMinute float64   `json:"profit_per_minute"`
	Extrapolated    bool      `json:"extrapolated"`
	CycleLength     int       `json:"cycle_length,omitempty"`
	Hops            []hopView `json:"hops"`
}

func viewRoute(snap *universe.Snapshot, res engine.SearchResult) routeView {
	v := routeView{
		ProfitTotal:     res.ProfitTotal,
		TimeTotal:       res.TimeTotal,
		ProfitPerMinute: res.ProfitPerMinute(),
		Extrapolated:    res.Extrapolated,
		CycleLength:     res.CycleLength,
	}
	for _, t := range res.Route {
		u := t.Unit
		v.Hops = append(v.Hops, hopView{
			BuyStation:      snap.Stations[u.BuyStation].Name,
			SellStation:     snap.Stations[u.SellStation].Name,
			BuyStationID:    u.BuyStationID,
			SellStationID:   u.SellStationID,
			Commodity:       u.Commodity.Name,
			CommodityID:     u.Commodity.ID,
			UsedCargo:       t.UsedCargo,
			BuyPrice:        u.BuyPrice,
			SellPrice:       u.SellPrice,
			Profit:          t.ProfitTotal,
			ProfitPerMinute: t.ProfitPerMinute,
			Jumps:           u.Adjusted.Jumps,
			Distance:        u.Distance,
			Seconds:         u.Adjusted.Total(),
			JumpSeconds:     u.Adjusted.JumpSeconds,
			MaxRuns:         t.MaxRuns(),
			Prohibited:      u.Prohibited,
			Cyclic:          t.Cyclic,
		})
	}
	return v
}

type routeRequest struct {
	StationID  int32   `json:"station_id"`
	Station    string  `json:"station"`
	Balance    *int64  `json:"balance"`
	MinBalance *int64  `json:"min_balance"`
	Cargo      int64   `json:"cargo_capacity"`
	JumpRange  float64 `json:"jump_range"`
	Quality    string  `json:"quality"`
	HopWidth   int     `json:"hop_width"`
	MaxDepth   int     `json:"max_depth"`
	TradeRange float64 `json:"trade_range"`
}

// resolveStation picks the station by id, else by name. Ambiguous names
// are reported with their candidates.
func resolveStation(snap *universe.Snapshot, id int32, name string) (*universe.Station, []stationView, error) {
	if id != 0 {
		i, ok := snap.StationIndex(id)
		if !ok {
			return nil, nil, fmt.Errorf("station %d: %w", id, universe.ErrUnknownStation)
		}
		return &snap.Stations[i], nil, nil
	}
	matches := snap.StationsByName(name)
	switch len(matches) {
	case 0:
		return nil, nil, fmt.Errorf("station %q: %w", name, universe.ErrUnknownStation)
	case 1:
		return &snap.Stations[matches[0]], nil, nil
	}
	views := make([]stationView, 0, len(matches))
	for _, i := range matches {
		views = append(views, viewStation(snap, &snap.Stations[i]))
	}
	return nil, views, nil
}

func (s *Server) handleRouteFind(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	router, ready := s.currentRouter()
	if !ready {
		writeError(w, 503, "dataset not loaded yet")
		return
	}
	if !s.limiter.Allow() {
		writeError(w, 429, "too many route searches, slow down")
		return
	}

	s.cfgMu.RLock()
	cfg := *s.cfg
	s.cfgMu.RUnlock()

	if req.StationID == 0 && req.Station == "" {
		req.Station = cfg.Station
	}
	if req.Cargo <= 0 {
		req.Cargo = cfg.CargoCapacity
	}
	if req.JumpRange <= 0 {
		req.JumpRange = cfg.JumpRange
	}
	balance, minBalance := cfg.Balance, cfg.MinBalance
	if req.Balance != nil {
		balance = *req.Balance
	}
	if req.MinBalance != nil {
		minBalance = *req.MinBalance
	}
	if req.Quality != "" {
		q, err := config.ParseQuality(req.Quality)
		if err != nil {
			writeError(w, 400, err.Error())
			return
		}
		cfg.Quality = q
	}
	if req.HopWidth > 0 {
		cfg.HopWidth = req.HopWidth
	}
	if req.MaxDepth > 0 {
		cfg.MaxDepth = req.MaxDepth
	}
	if req.TradeRange > 0 {
		cfg.TradeRange = req.TradeRange
	}
	settings := cfg.Search()
	settings.Seed = time.Now().UnixNano()

	// One snapshot from station lookup to rendering; a reload may swap the
	// universe's current one at any time.
	snap := router.Universe().Snapshot()
	station, ambiguous, err := resolveStation(snap, req.StationID, req.Station)
	if err != nil {
		writeError(w, 404, err.Error())
		return
	}
	if ambiguous != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(409)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":    "station name is ambiguous",
			"stations": ambiguous,
		})
		return
	}

	state, err := engine.NewPlayerState(snap, station.ID, balance, minBalance, req.Cargo, req.JumpRange, router.Universe().TimeFactor())
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	log.Printf("[API] RouteFind: station=%s, balance=%d, cargo=%d, range=%.1f, depth=%d, width=%d",
		station.Name, balance, req.Cargo, req.JumpRange, settings.MaxDepth, settings.HopWidth)

	start := time.Now()
	results, err := router.NextTradesAt(snap, state, settings)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	elapsed := time.Since(start)

	routes := make([]routeView, 0, len(results))
	for _, res := range results {
		routes = append(routes, viewRoute(snap, res))
	}

	var runID string
	if s.db != nil {
		rec := db.RouteRecord{
			StationID:   station.ID,
			StationName: station.Name,
			Count:       len(results),
			DurationMs:  elapsed.Milliseconds(),
		}
		if len(results) > 0 {
			rec.BestProfit = results[0].ProfitTotal
			rec.BestPerMinute = results[0].ProfitPerMinute()
			rec.Hops = len(results[0].Route)
		}
		runID = s.db.InsertRouteHistory(rec, req)
	}

	writeJSON(w, map[string]interface{}{
		"run_id":      runID,
		"station":     viewStation(snap, station),
		"time_factor": state.TimeFactor,
		"duration_ms": elapsed.Milliseconds(),
		"routes":      routes,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, []db.RouteRecord{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, s.db.GetRouteHistory(limit))
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.ClearRouteHistory(); err != nil {
			writeError(w, 500, err.Error())
			return
		}
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
