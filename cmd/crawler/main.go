package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/evolabz/wob-crawler/internal/browser"
	"github.com/evolabz/wob-crawler/internal/config"
	"github.com/evolabz/wob-crawler/internal/database"
	"github.com/evolabz/wob-crawler/internal/events"
	"github.com/evolabz/wob-crawler/internal/ratelimit"
	"github.com/evolabz/wob-crawler/internal/scraper"
	"github.com/evolabz/wob-crawler/pkg/logger"
)

func main() {
	var (
		maxBooks = flag.Int("max-books", 0, "Item budget for this run (0 = configured default)")
		headless = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logg := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logg.Info("starting catalog crawler", "target", cfg.Crawl.TargetURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logg.Info("shutdown signal received")
		cancel()
	}()

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

	throttle := ratelimit.New(
		cfg.Crawl.ItemDelayMin, cfg.Crawl.ItemDelayMax,
		cfg.Crawl.PageDelayMin, cfg.Crawl.PageDelayMax,
	)

	crawler := scraper.New(
		scraper.BrowserPages{Browser: b},
		database.NewBookStore(db),
		events.NewPublisher(db, cfg.Redis.Stream, logg),
		throttle,
		cfg.Crawl,
		logg,
	)

	summary, err := crawler.Run(ctx, *maxBooks)
	if err != nil {
		logg.Error("crawl run failed", "error", err,
			"accepted", summary.Accepted, "skipped", summary.Skipped)
		os.Exit(1)
	}

	logg.Info("crawl run complete",
		"accepted", summary.Accepted,
		"skipped", summary.Skipped,
		"pages", summary.Pages)
}
