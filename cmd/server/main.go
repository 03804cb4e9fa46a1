package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finadvisor/internal/clients/yahoo"
	"finadvisor/internal/config"
	"finadvisor/internal/database"
	"finadvisor/internal/modules/advisor"
	"finadvisor/internal/modules/analysis"
	"finadvisor/internal/modules/portfolio"
	"finadvisor/internal/modules/report"
	"finadvisor/internal/modules/risk"
	"finadvisor/internal/scheduler"
	"finadvisor/internal/server"
	"finadvisor/pkg/logger"
)

// dailyReportSchedule fires at 18:00 local time, after US market close
// relative to most deployments.
const dailyReportSchedule = "0 18 * * *"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	log.Info().Msg("Starting finadvisor")

	db, err := database.New(cfg.DatabasePath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	market := yahoo.NewClient(cfg.FetchTimeout, log)
	repo := portfolio.NewRepository(db)

	params := analysis.Params{
		RSIPeriod:       cfg.RSIPeriod,
		MACDFast:        cfg.MACDFast,
		MACDSlow:        cfg.MACDSlow,
		MACDSignal:      cfg.MACDSignal,
		MAShort:         cfg.MAShort,
		MALong:          cfg.MALong,
		BollingerPeriod: cfg.BollingerPeriod,
		BollingerStdDev: cfg.BollingerStdDev,
	}

	advisorSvc := advisor.NewService(market, params, cfg.Workers, log)
	riskSvc := risk.NewService(market, cfg.MarketIndex, cfg.RiskFreeRate, cfg.Workers, log)
	reportSvc := report.NewService(market, repo, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(dailyReportSchedule, report.NewDailyJob(reportSvc)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register daily report job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		DefaultSymbols: cfg.DefaultSymbols,
		Log:            log,
		Market:         market,
		Advisor:        advisorSvc,
		Risk:           riskSvc,
		Reporter:       reportSvc,
		Store:          repo,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
