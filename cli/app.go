// ABOUTME: Runtime wiring shared by every CLI command
// ABOUTME: Opens the configured backend and builds the store, SMS service and metrics
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/insuretrack/charm"
	"github.com/harperreed/insuretrack/config"
	"github.com/harperreed/insuretrack/db"
	"github.com/harperreed/insuretrack/notify"
	"github.com/harperreed/insuretrack/storage"
	"github.com/harperreed/insuretrack/store"
	"github.com/harperreed/insuretrack/web"
)

// dispatcherWorkers is the number of goroutines sending welcome messages.
const dispatcherWorkers = 2

// closeTimeout bounds how long Close waits for queued welcome messages.
const closeTimeout = 10 * time.Second

// Syncer pushes and pulls the local KV with a remote. The charm client implements it.
type Syncer interface {
	Sync() error
}

// App holds everything a command needs. Build it with Open or NewApp.
type App struct {
	Config     *config.Config
	Logger     *log.Logger
	Out        io.Writer
	Database   *sql.DB
	KV         storage.KV
	Storage    *storage.Adapter
	Store      *store.Store
	SMS        *notify.SMS
	SMSLog     *db.SMSLog
	Metrics    *web.Metrics
	Dispatcher *notify.Dispatcher

	// Charm is nil on the sqlite backend.
	Charm *charm.Client
}

// Open opens the SQLite database (always used for the SMS log) and the configured policy backend.
func Open(cfg *config.Config, logger *log.Logger) (*App, error) {
	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var (
		kv          storage.KV
		charmClient *charm.Client
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		kv = db.NewKVStore(database)
	default:
		charmClient, err = charm.NewClient(charm.ConfigFrom(cfg))
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to open charm storage: %w", err)
		}
		kv = charmClient
	}

	app := NewApp(cfg, logger, kv, database)
	app.Charm = charmClient
	logger.Debug("storage opened", "backend", cfg.Backend, "db", cfg.DBPath)
	return app, nil
}

// NewApp wires the store, SMS service, dispatcher and metrics over kv.
// database may be nil, in which case SMS attempts are not logged.
func NewApp(cfg *config.Config, logger *log.Logger, kv storage.KV, database *sql.DB) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.Default()
	}

	adapter := storage.New(kv, storage.WithLogger(logger))
	s := store.New(adapter, store.WithLogger(logger))
	metrics := web.NewMetrics(s)

	smsOpts := []notify.SMSOption{
		notify.WithSMSLogger(logger),
		notify.WithResultHook(metrics.ObserveSMS),
	}
	var smsLog *db.SMSLog
	if database != nil {
		smsLog = db.NewSMSLog(database)
		smsOpts = append(smsOpts, notify.WithLogbook(smsLog))
	}
	sms := notify.NewSMS(adapter, notify.NewStubProvider(cfg.SMSDelay, logger), smsOpts...)

	dispatcher := notify.NewDispatcher(sms, dispatcherWorkers, logger)
	s.Subscribe(dispatcher)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Out:        os.Stdout,
		Database:   database,
		KV:         kv,
		Storage:    adapter,
		Store:      s,
		SMS:        sms,
		SMSLog:     smsLog,
		Metrics:    metrics,
		Dispatcher: dispatcher,
	}
}

// Syncer returns the remote syncer, or nil when the backend has none.
func (a *App) Syncer() Syncer {
	if a.Charm == nil {
		return nil
	}
	return a.Charm
}

// Close drains queued welcome messages and releases the backends.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	var errs []error
	if err := a.Dispatcher.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to drain notifications: %w", err))
	}
	if a.Charm != nil {
		if err := a.Charm.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Database != nil {
		if err := a.Database.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
