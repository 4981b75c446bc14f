package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"elite-trader/internal/api"
	"elite-trader/internal/db"
	"elite-trader/internal/engine"
	"elite-trader/internal/logger"
	"elite-trader/internal/metrics"
	"elite-trader/internal/universe"
)

var version = "dev"

func main() {
	port := flag.Int("port", 13380, "HTTP server port")
	dataFlag := flag.String("data", "", "dataset directory (default ./data)")
	dbPath := flag.String("db", db.DefaultPath(), "SQLite database path")
	configPath := flag.String("config", "", "optional YAML config overriding stored settings")
	watch := flag.Bool("watch", false, "reload the dataset when its files change")
	flag.Parse()

	logger.Banner(version)

	dataDir := *dataFlag
	if dataDir == "" {
		wd, _ := os.Getwd()
		dataDir = filepath.Join(wd, "data")
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	cfg := database.LoadConfig()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			logger.Error("Config", fmt.Sprintf("Failed to read %s: %v", *configPath, err))
			os.Exit(1)
		}
		logger.Info("Config", "Applied "+*configPath)
	}

	minPad, err := universe.ParsePadSize(cfg.MinPadSize)
	if err != nil {
		logger.Warn("Config", fmt.Sprintf("%v, using medium pads", err))
		minPad = universe.PadMedium
	}

	systems, err := universe.Load(dataDir, minPad)
	if err != nil {
		logger.Error("Data", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}
	u, err := universe.New(systems)
	if err != nil {
		logger.Error("Data", fmt.Sprintf("Index failed: %v", err))
		os.Exit(1)
	}

	router := engine.NewRouter(u, cfg.Search())
	replayAdjustments(database, router)

	m := metrics.New(router.Cache())
	router.SetObserver(m)

	srv := api.NewServer(cfg, database, m)
	srv.SetRouter(router)
	logger.Success("Data", "Router ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *watch || cfg.WatchData {
		go func() {
			err := universe.Watch(ctx, dataDir, 2*time.Second, func() {
				systems, err := universe.Load(dataDir, minPad)
				if err != nil {
					logger.Error("Watch", fmt.Sprintf("Reload failed: %v", err))
					return
				}
				if err := router.Reload(systems); err != nil {
					logger.Error("Watch", fmt.Sprintf("Reindex failed: %v", err))
					return
				}
				replayPrices(database, router)
				logger.Success("Watch", "Dataset reloaded")
			})
			if err != nil && ctx.Err() == nil {
				logger.Error("Watch", err.Error())
			}
		}()
	}

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Server(addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}

// replayAdjustments reapplies the stored corrections on top of a freshly
// loaded dataset.
func replayAdjustments(database *db.DB, router *engine.Router) {
	replayPrices(database, router)

	times, err := database.TimeAdjustments()
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("Time adjustments: %v", err))
		return
	}
	for _, adj := range times {
		router.Universe().ApplyTimeAdjustment(adj)
	}
	if len(times) > 0 {
		logger.Stats("Time factor", fmt.Sprintf("%.3f", router.Universe().TimeFactor()))
	}
}

func replayPrices(database *db.DB, router *engine.Router) {
	prices, err := database.PriceAdjustments()
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("Price adjustments: %v", err))
		return
	}
	skipped := 0
	for _, adj := range prices {
		if err := router.AdjustPrice(adj); err != nil {
			skipped++
		}
	}
	if skipped > 0 {
		logger.Warn("DB", fmt.Sprintf("Skipped %d price adjustments for listings no longer in the dataset", skipped))
	}
}
