// Package server provides the HTTP API over the analysis, advisor, risk
// and portfolio modules.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"finadvisor/internal/domain"
	"finadvisor/internal/modules/advisor"
)

// MarketData is the quote and history source the handlers read from.
type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
	GetHistory(ctx context.Context, symbol, period string) ([]domain.PriceBar, error)
	GetMarketSummary(ctx context.Context) (map[string]domain.IndexQuote, error)
}

// Advisor produces buy/sell/hold recommendations.
type Advisor interface {
	Recommend(ctx context.Context, symbol string) (*domain.Recommendation, error)
	RecommendBatch(ctx context.Context, symbols []string) []advisor.Entry
}

// RiskAnalyzer produces instrument and portfolio risk reports.
type RiskAnalyzer interface {
	InstrumentRisk(ctx context.Context, symbol string) (domain.RiskMetrics, error)
	AnalyzePortfolio(ctx context.Context, holdings []domain.Holding) (*domain.PortfolioRiskReport, error)
}

// Reporter generates and retrieves daily reports.
type Reporter interface {
	GenerateDaily(ctx context.Context) (*domain.DailyReport, error)
	LatestDaily() (*domain.DailyReport, error)
	AdviceSymbols(defaults []string) ([]string, error)
}

// Store is the portfolio persistence the handlers use.
type Store interface {
	Holdings() ([]domain.Holding, error)
	HoldingBySymbol(symbol string) (domain.Holding, error)
	AddHolding(symbol, name string, shares, avgCost float64, currency string) (int64, error)
	UpdateHolding(id int64, shares, avgCost *float64) (bool, error)
	DeleteHolding(id int64) (bool, error)
	Watchlist() ([]domain.WatchItem, error)
	AddWatch(symbol, name string) (bool, error)
	RemoveWatch(symbol string) (bool, error)
	Transactions(symbol string, limit int) ([]domain.Transaction, error)
	AddTransaction(symbol, transType string, shares, price float64, currency, note string) (int64, error)
}

// Config wires the server's collaborators.
type Config struct {
	Port           int
	DevMode        bool
	DefaultSymbols []string
	Log            zerolog.Logger

	Market   MarketData
	Advisor  Advisor
	Risk     RiskAnalyzer
	Reporter Reporter
	Store    Store
}

// Server is the HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	market         MarketData
	advisor        Advisor
	risk           RiskAnalyzer
	reporter       Reporter
	store          Store
	defaultSymbols []string
	startupTime    time.Time
}

// New creates the HTTP server with middleware and routes configured.
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		market:         cfg.Market,
		advisor:        cfg.Advisor,
		risk:           cfg.Risk,
		reporter:       cfg.Reporter,
		store:          cfg.Store,
		defaultSymbols: cfg.DefaultSymbols,
		startupTime:    time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.handleSystemStatus)

		r.Get("/stock/{symbol}", s.handleStockInfo)
		r.Get("/stock/{symbol}/history", s.handleStockHistory)
		r.Get("/market", s.handleMarketSummary)

		r.Get("/analysis/{symbol}", s.handleAnalysis)
		r.Get("/recommendations", s.handleRecommendations)

		r.Get("/risk", s.handlePortfolioRisk)
		r.Get("/risk/{symbol}", s.handleStockRisk)

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", s.handlePortfolioList)
			r.Post("/", s.handlePortfolioAdd)
			r.Put("/{id}", s.handlePortfolioUpdate)
			r.Delete("/{id}", s.handlePortfolioDelete)
			r.Get("/transactions", s.handleTransactionList)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleWatchlistList)
			r.Post("/", s.handleWatchlistAdd)
			r.Delete("/{symbol}", s.handleWatchlistRemove)
		})

		r.Route("/report", func(r chi.Router) {
			r.Get("/generate", s.handleReportGenerate)
			r.Get("/latest", s.handleReportLatest)
		})
	})
}

// Router exposes the handler tree, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
