package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ostac/heatseeker/internal/config"
	"github.com/ostac/heatseeker/internal/handlers"
	"github.com/ostac/heatseeker/internal/logger"
	"github.com/ostac/heatseeker/internal/providers"
	"github.com/ostac/heatseeker/internal/providers/finnhub"
	"github.com/ostac/heatseeker/internal/providers/yahoo"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	logger.Infof("heatseeker starting - port %s, provider %s", cfg.Port, cfg.Provider.Source)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		log.Fatalf("failed to create provider: %v", err)
	}
	market := providers.NewManager(provider)
	defer market.Close()

	optionsHandler := handlers.NewOptionsHandler(market, cfg)

	r := mux.NewRouter()

	// Static assets (palette CSS, client script), served as-is.
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("web/static/"))))

	r.HandleFunc("/", optionsHandler.HomeHandler).Methods("GET")
	r.HandleFunc("/api/health", optionsHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/api/search", optionsHandler.SearchHandler).Methods("GET")
	r.HandleFunc("/api/flow", optionsHandler.FlowHandler).Methods("GET")
	r.HandleFunc("/api/grid", optionsHandler.GridHandler).Methods("GET")
	r.HandleFunc("/api/heatmap", optionsHandler.HeatmapHandler).Methods("GET")
	r.HandleFunc("/api/top", optionsHandler.TopHandler).Methods("GET")

	handler := handlers.CORS(handlers.RequestID(r))

	logger.Infof("server listening on http://localhost:%s", cfg.Port)
	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, handler); err != nil {
		log.Fatal("server failed to start:", err)
	}
}

// newProvider wires the configured upstream. Credentials stop here; the core
// packages never see them.
func newProvider(cfg *config.Config) (providers.MarketProvider, error) {
	switch cfg.Provider.Source {
	case "yahoo":
		return yahoo.NewClient(cfg.Provider.YahooMaxExpirations), nil
	default:
		return finnhub.NewClient(cfg.Provider.FinnhubAPIKey)
	}
}
