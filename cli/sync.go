// ABOUTME: CLI commands for charm cloud sync of the policy store
// ABOUTME: SSH key auth, no login or logout needed

package cli

import (
	"flag"
	"fmt"

	"github.com/harperreed/insuretrack/config"
)

func requireCharm(app *App) error {
	if app.Charm == nil {
		return fmt.Errorf("sync needs the %s backend (current backend: %s)", config.BackendCharm, app.Config.Backend)
	}
	return nil
}

// SyncStatusCommand shows the sync configuration and connection status.
func SyncStatusCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(app.Out, "Charm Sync Status")
	_, _ = fmt.Fprintln(app.Out, "─────────────────")
	_, _ = fmt.Fprintf(app.Out, "Backend:   %s\n", app.Config.Backend)
	_, _ = fmt.Fprintf(app.Out, "Server:    %s\n", app.Config.CharmHost)
	_, _ = fmt.Fprintf(app.Out, "Auto-sync: %v\n", app.Config.AutoSync)

	if app.Charm == nil {
		_, _ = fmt.Fprintln(app.Out, "\nStatus: Local only (sqlite backend)")
		return nil
	}

	id, err := app.Charm.ID()
	if err != nil {
		_, _ = fmt.Fprintln(app.Out, "\nStatus: Not connected")
		_, _ = fmt.Fprintln(app.Out, "\nCharm uses SSH keys for authentication - no login required!")
		return nil //nolint:nilerr // not connected is a valid state
	}
	_, _ = fmt.Fprintln(app.Out, "\nStatus: Connected to Charm Cloud")
	_, _ = fmt.Fprintf(app.Out, "ID:        %s\n", id)

	if keys, err := app.Charm.Keys(); err == nil {
		_, _ = fmt.Fprintf(app.Out, "Keys:      %d\n", len(keys))
	}
	return nil
}

// SyncNowCommand performs an immediate sync and reloads the collection.
func SyncNowCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireCharm(app); err != nil {
		return err
	}

	if err := app.Charm.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	app.Store.Reload()

	_, _ = fmt.Fprintf(app.Out, "✓ Synced (%d policies)\n", app.Store.Len())
	return nil
}

// SyncAutoCommand enables or disables sync after every write.
func SyncAutoCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	enable := fs.Bool("enable", false, "Enable auto-sync")
	disable := fs.Bool("disable", false, "Disable auto-sync")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *enable == *disable {
		_, _ = fmt.Fprintln(app.Out, "Usage: insuretrack sync auto --enable|--disable")
		return nil
	}

	app.Config.AutoSync = *enable
	if err := app.Config.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	if *enable {
		_, _ = fmt.Fprintln(app.Out, "✓ Auto-sync enabled")
	} else {
		_, _ = fmt.Fprintln(app.Out, "✓ Auto-sync disabled")
	}
	return nil
}

// SyncWipeCommand resets the local KV store. It only acts with --confirm.
func SyncWipeCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*confirm {
		_, _ = fmt.Fprintln(app.Out, "WARNING: This will delete ALL local data, including SMS settings!")
		_, _ = fmt.Fprintln(app.Out)
		_, _ = fmt.Fprintln(app.Out, "To confirm, run:")
		_, _ = fmt.Fprintln(app.Out, "  insuretrack sync wipe --confirm")
		return nil
	}

	if err := app.KV.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	app.Store.Reload()

	_, _ = fmt.Fprintln(app.Out, "✓ All data wiped")
	return nil
}
