// ABOUTME: Long-running CLI surfaces: web dashboard, terminal UI and health probe
// ABOUTME: The web command also runs the SMS scheduler alongside the server
package cli

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/insuretrack/tui"
	"github.com/harperreed/insuretrack/web"
)

// WebCommand serves the dashboard and JSON API until interrupted.
func WebCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	port := fs.Int("port", app.Config.WebPort, "Port to listen on")
	noScheduler := fs.Bool("no-scheduler", false, "Do not run the birthday and renewal SMS scheduler")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := web.Options{
		Store:   app.Store,
		Storage: app.Storage,
		SMS:     app.SMS,
		Metrics: app.Metrics,
		Logger:  app.Logger,
	}
	if app.SMSLog != nil {
		opts.History = app.SMSLog
	}
	server, err := web.NewServer(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx, *port)
	})
	if !*noScheduler {
		sched := newScheduler(app)
		g.Go(func() error {
			return sched.Run(gctx)
		})
	}

	_, _ = fmt.Fprintf(app.Out, "InsureTrack dashboard at http://localhost:%d\n", *port)
	return g.Wait()
}

// TUICommand starts the interactive terminal UI.
func TUICommand(app *App, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(app.Store, app.Storage, app.Syncer()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// HealthCommand reports whether the storage backend is writable.
func HealthCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	health := app.Storage.Health()
	if !health.Healthy {
		return fmt.Errorf("storage unhealthy: %s", health.Message)
	}
	_, _ = fmt.Fprintf(app.Out, "✓ %s (%s backend, %s used)\n",
		health.Message, app.Config.Backend, humanize.Bytes(uint64(health.BytesUsed)))
	return nil
}
