// ABOUTME: Migration utility for moving stored policies between storage backends.
// ABOUTME: Copies the policy and SMS settings keys with dry-run and backup support.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/insuretrack/charm"
	"github.com/harperreed/insuretrack/config"
	"github.com/harperreed/insuretrack/db"
	"github.com/harperreed/insuretrack/storage"
)

func main() {
	from := flag.String("from", config.BackendCharm, "Source backend: charm or sqlite")
	to := flag.String("to", config.BackendSQLite, "Destination backend: charm or sqlite")
	dbPath := flag.String("db", "", "SQLite database path (default: from config)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Back up the SQLite file before writing to it")
	force := flag.Bool("force", false, "Overwrite policies already present at the destination")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "migrate"})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *from == *to {
		logger.Fatal("source and destination backends are the same", "backend", *from)
	}

	if *backup && !*dryRun && *to == config.BackendSQLite {
		if err := backupFile(cfg.DBPath, logger); err != nil {
			logger.Fatal("backup failed", "err", err)
		}
	}

	src, err := openKV(*from, cfg)
	if err != nil {
		logger.Fatal("failed to open source", "backend", *from, "err", err)
	}
	dst, err := openKV(*to, cfg)
	if err != nil {
		logger.Fatal("failed to open destination", "backend", *to, "err", err)
	}

	res, err := migrate(src, dst, *dryRun, *force, logger)
	if err != nil {
		logger.Fatal("migration failed", "err", err)
	}

	if *dryRun {
		logger.Info("[DRY RUN] nothing written", "policies", res.Policies, "sms_config", res.SMSConfig)
		return
	}
	logger.Info("migration completed successfully", "policies", res.Policies, "sms_config", res.SMSConfig)
}

func openKV(backend string, cfg *config.Config) (storage.KV, error) {
	switch backend {
	case config.BackendSQLite:
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db.NewKVStore(database), nil
	case config.BackendCharm:
		// Writes here must not trigger a sync mid-copy
		client, err := charm.NewClient(&charm.Config{Host: cfg.CharmHost})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func backupFile(path string, logger *log.Logger) error {
	input, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, input, 0600); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	logger.Info("backup created", "path", backupPath)
	return nil
}

type result struct {
	Policies  int
	SMSConfig bool
}

// migrate copies the policy array and SMS settings from src to dst. Records go through
// the adapter so unreadable ones are dropped. A non-empty destination needs force.
func migrate(src, dst storage.KV, dryRun, force bool, logger *log.Logger) (result, error) {
	var res result

	srcAdapter := storage.New(src, storage.WithLogger(logger))
	dstAdapter := storage.New(dst, storage.WithLogger(logger))

	policies := srcAdapter.Load()
	res.Policies = len(policies)

	if existing := dstAdapter.Load(); len(existing) > 0 && !force {
		return res, fmt.Errorf("destination already holds %d policies (use -force to overwrite)", len(existing))
	}

	smsConfig := srcAdapter.LoadSMSConfig()
	res.SMSConfig = smsConfig != dstAdapter.LoadSMSConfig() && (smsConfig.Configured() || smsConfig.Enabled)

	if dryRun {
		logger.Info("[DRY RUN] would copy", "policies", res.Policies, "sms_config", res.SMSConfig)
		return res, nil
	}

	if err := dstAdapter.Save(policies); err != nil {
		return res, fmt.Errorf("failed to write policies: %w", err)
	}
	if res.SMSConfig {
		if err := dstAdapter.SaveSMSConfig(smsConfig); err != nil {
			return res, fmt.Errorf("failed to write SMS settings: %w", err)
		}
	}
	return res, nil
}
