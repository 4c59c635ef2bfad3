package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"visir-watcher/config"
	"visir-watcher/scraper/browser"
	"visir-watcher/scraper/visir"
	"visir-watcher/services"
	"visir-watcher/storage"
	"visir-watcher/utils"
)

func main() {
	logger := utils.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// run owns every resource of one invocation. Fatal errors return through
// here so the deferred session and store teardown always fires; os.Exit
// happens only in main, after the defers have run.
func run(logger *utils.Logger) error {
	user := flag.String("user", "", "profile name to run (e.g. 'magni', 'gabriela')")
	profilesPath := flag.String("config", "config.json", "path to the profiles file")
	flag.Parse()

	if *user == "" {
		return errors.New("missing required -user flag")
	}

	cfg, err := config.Load(*profilesPath, *user)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	logger.Info("=== Property watcher starting for %q ===", cfg.User)
	logger.Info("Criteria — price: %d–%d | bedrooms: %d–%d | zips: %s | excluded: %d",
		cfg.Criteria.MinPrice, cfg.Criteria.MaxPrice,
		cfg.Criteria.MinBedrooms, cfg.Criteria.MaxBedrooms,
		cfg.Criteria.ZipCodes, len(cfg.Criteria.Excluded))

	var store storage.CatalogStore
	if cfg.PostgresDSN != "" {
		store, err = storage.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
	} else {
		store = storage.NewFileStore(cfg.CatalogPath)
	}
	defer store.Close()

	var session *browser.Session
	bootstrap := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   5 * time.Second,
		Logger:      logger,
	}
	if err := bootstrap.Do("browser-bootstrap", func() error {
		s, err := browser.NewSession(cfg.ChromeBin)
		if err != nil {
			return err
		}
		session = s
		return nil
	}); err != nil {
		return fmt.Errorf("browser never came up: %w", err)
	}
	defer session.Close()

	return runPipeline(cfg, logger, store, session)
}

// runPipeline executes one reconciliation pass over an already bootstrapped
// store and renderer session. The caller keeps ownership of both.
func runPipeline(cfg *config.Config, logger *utils.Logger, store storage.CatalogStore, renderer visir.Renderer) error {
	walker := visir.NewWalker(cfg, logger, renderer)
	enricher := visir.NewEnricher(cfg, logger, renderer)
	reconciler := services.NewReconciler(
		store, walker, enricher,
		services.NewNormalizer(logger),
		services.NewFilterEngine(cfg.Criteria, logger),
		logger,
	)

	delta, summary, err := reconciler.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("\n--- Total NEW unique properties found this run: %d ---\n", len(delta))
	for i, rec := range delta {
		fmt.Printf("\nProperty #%d\n", i+1)
		fmt.Printf("  Address: %s\n", rec.Address)
		fmt.Printf("  Price: %s\n", rec.PriceRaw)
		fmt.Printf("  Size: %s\n", rec.SizeM2)
		if rec.PricePerM2 != nil {
			fmt.Printf("  Price per m²: %s kr.\n", services.DotThousands(*rec.PricePerM2))
		}
		fmt.Printf("  Bedrooms: %s\n", rec.Bedrooms)
		if rec.HasBalcony != nil {
			fmt.Printf("  Balcony: %s\n", yesNo(*rec.HasBalcony))
		}
		if rec.HasTerrace != nil {
			fmt.Printf("  Terrace: %s\n", yesNo(*rec.HasTerrace))
		}
		fmt.Printf("  Link: %s\n", rec.Link)
	}

	notifier := services.NewNotifier(cfg, logger)
	if err := notifier.Notify(delta); err != nil {
		// Non-fatal: the catalog is already persisted.
		logger.Error("Notification failed: %v", err)
	}

	logger.Info("Done — %d pages, %d cards, %d new listings", summary.PagesWalked, summary.CardsSeen, summary.Accepted)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
