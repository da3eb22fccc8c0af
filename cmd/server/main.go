package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/evolabz/wob-crawler/internal/api"
	"github.com/evolabz/wob-crawler/internal/browser"
	"github.com/evolabz/wob-crawler/internal/config"
	"github.com/evolabz/wob-crawler/internal/database"
	"github.com/evolabz/wob-crawler/internal/events"
	"github.com/evolabz/wob-crawler/internal/jobs"
	"github.com/evolabz/wob-crawler/internal/ratelimit"
	"github.com/evolabz/wob-crawler/internal/scraper"
	"github.com/evolabz/wob-crawler/pkg/logger"
)

func main() {
	headless := flag.Bool("headless", true, "Run browser in headless mode")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logg := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logg.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	b, err := browser.New(&browser.Options{
		Headless:       *headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		logg.Error("failed to start browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	store := database.NewBookStore(db)
	throttle := ratelimit.New(
		cfg.Crawl.ItemDelayMin, cfg.Crawl.ItemDelayMax,
		cfg.Crawl.PageDelayMin, cfg.Crawl.PageDelayMax,
	)
	crawler := scraper.New(
		scraper.BrowserPages{Browser: b},
		store,
		events.NewPublisher(db, cfg.Redis.Stream, logg),
		throttle,
		cfg.Crawl,
		logg,
	)

	manager := jobs.NewManager(crawler, logg)
	handlers := api.NewHandlers(manager, store, logg)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handlers.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-sigChan
		logg.Info("shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error("server shutdown failed", "error", err)
		}
		cancel()
	}()

	logg.Info("starting api server", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error("server error", "error", err)
		os.Exit(1)
	}
}
