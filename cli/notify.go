// ABOUTME: Local notification and SMS scheduler CLI commands
// ABOUTME: Shows renewal banners and runs birthday and reminder scans
package cli

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/insuretrack/notify"
)

// NotifyCheckCommand shows a banner for every policy renewing within a week.
func NotifyCheckCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("notify check", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	force := fs.Bool("force", false, "Show banners even when output is not a terminal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	desktop := notify.NewTerminalDesktop(app.Out)
	if *force {
		desktop.SetPermission(true)
	}
	if !desktop.RequestPermission() {
		_, _ = fmt.Fprintln(app.Out, "Notifications are only shown on an interactive terminal (use --force)")
		return nil
	}

	shown := notify.CheckRenewalNotifications(desktop, app.Store.Policies(), time.Now())
	if shown == 0 {
		_, _ = fmt.Fprintln(app.Out, "No upcoming renewals")
	}
	return nil
}

func newScheduler(app *App) *notify.Scheduler {
	return notify.NewScheduler(app.Store, app.SMS,
		notify.WithInterval(app.Config.SchedulerInterval),
		notify.WithSchedulerLogger(app.Logger))
}

// SchedulerRunCommand scans for birthdays and renewal reminders, once or until interrupted.
func SchedulerRunCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("scheduler run", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	once := fs.Bool("once", false, "Scan once and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sched := newScheduler(app)
	if *once {
		res := sched.Scan(context.Background())
		_, _ = fmt.Fprintf(app.Out, "✓ Birthdays: %d sent, %d failed\n", res.Birthdays.Success, res.Birthdays.Failed)
		_, _ = fmt.Fprintf(app.Out, "✓ Reminders: %d sent, %d failed\n", res.Reminders.Success, res.Reminders.Failed)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Logger.Info("scheduler running", "interval", app.Config.SchedulerInterval)
	return sched.Run(ctx)
}
