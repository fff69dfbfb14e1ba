// ABOUTME: Entry point for the InsureTrack CLI, web dashboard, TUI and MCP server
// ABOUTME: Loads config, opens storage and routes to the requested command
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/harperreed/insuretrack/cli"
	"github.com/harperreed/insuretrack/config"
)

const version = "0.2.0"

type command func(app *cli.App, args []string) error

// subcommands maps "<group> <sub>" to a handler.
var subcommands = map[string]map[string]command{
	"policy": {
		"add":    cli.PolicyAddCommand,
		"list":   cli.PolicyListCommand,
		"show":   cli.PolicyShowCommand,
		"update": cli.PolicyUpdateCommand,
		"delete": cli.PolicyDeleteCommand,
	},
	"sms": {
		"config":  cli.SMSConfigCommand,
		"test":    cli.SMSTestCommand,
		"history": cli.SMSHistoryCommand,
	},
	"notify": {
		"check": cli.NotifyCheckCommand,
	},
	"scheduler": {
		"run": cli.SchedulerRunCommand,
	},
	"sync": {
		"status": cli.SyncStatusCommand,
		"now":    cli.SyncNowCommand,
		"auto":   cli.SyncAutoCommand,
		"wipe":   cli.SyncWipeCommand,
	},
	"viz": {
		"dashboard": cli.VizDashboardCommand,
		"renewals":  cli.VizGraphRenewalsCommand,
		"holders":   cli.VizGraphHoldersCommand,
	},
}

// commands are top-level commands without a subcommand.
var commands = map[string]command{
	"list":   cli.PolicyListCommand,
	"export": cli.ExportCommand,
	"import": cli.ImportCommand,
	"clear":  cli.ClearCommand,
	"stats":  cli.StatsCommand,
	"alerts": cli.AlertsCommand,
	"web":    cli.WebCommand,
	"tui":    cli.TUICommand,
	"health": cli.HealthCommand,
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	backend := flag.String("backend", "", "Storage backend: charm or sqlite (overrides config)")
	dbPath := flag.String("db-path", "", "SQLite database path (overrides config)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("insuretrack version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "insuretrack"})
	log.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", "err", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	run, rest, ok := resolve(args)
	if !ok && args[0] != "mcp" {
		fmt.Printf("Unknown command: %s\n\n", joinArgs(args))
		printUsage()
		os.Exit(1)
	}

	app, err := cli.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", "err", err)
	}

	if args[0] == "mcp" {
		err = cli.MCPCommand(app, version)
	} else {
		err = run(app, rest)
	}

	if closeErr := app.Close(); closeErr != nil {
		logger.Warn("shutdown incomplete", "err", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolve finds the handler for args and returns the remaining arguments.
func resolve(args []string) (command, []string, bool) {
	if cmd, ok := commands[args[0]]; ok {
		return cmd, args[1:], true
	}
	group, ok := subcommands[args[0]]
	if !ok || len(args) < 2 {
		return nil, nil, false
	}
	// "viz graph renewals" reads the same as "viz renewals"
	if args[0] == "viz" && args[1] == "graph" && len(args) > 2 {
		args = append([]string{"viz"}, args[2:]...)
	}
	cmd, ok := group[args[1]]
	if !ok {
		return nil, nil, false
	}
	return cmd, args[2:], true
}

func joinArgs(args []string) string {
	if len(args) > 2 {
		args = args[:2]
	}
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}

func printUsage() {
	fmt.Printf(`insuretrack v%s - Insurance policy tracker

USAGE:
  insuretrack [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --verbose              Enable debug logging
  --backend <name>       Storage backend: charm (default) or sqlite
  --db-path <path>       SQLite database path (default: ~/.local/share/insuretrack/insuretrack.db)

POLICY COMMANDS:
  insuretrack policy add     Add a new policy
    --number <number>          Policy number (generated when omitted)
    --name <name>              Policyholder name (required)
    --dob <YYYY-MM-DD>         Date of birth, age 18 to 100 (required)
    --renewal <YYYY-MM-DD>     Next renewal date, today or later (required)
    --frequency <freq>         monthly or yearly (default: yearly)
    --mobile <number>          10-digit mobile number (required)
    --premium <amount>         Premium in rupees (required)
    --category <category>      life, term, car, bike or medical (required)

  insuretrack policy list    List policies
    --query <text>             Search by name, policy number or mobile
    --category <category>      Filter by category
    --sort <order>             name, renewal, premium, category or recent
    --limit <n>                Max results (default: 50)

  insuretrack policy show <id|number>
  insuretrack policy update [flags] <id|number>   Same flags as add; only given flags change
  insuretrack policy delete <id|number>

  insuretrack clear --confirm       Delete every policy
  insuretrack stats                 Portfolio statistics
  insuretrack alerts [--days n]     Policies renewing soon (default: 7 days)

IMPORT / EXPORT:
  insuretrack export [--format csv|json] [--output file|-]
  insuretrack import <file.json>    Replace all policies with a JSON export

NOTIFICATIONS:
  insuretrack sms config [--sid s] [--from n] [--token] [--enable|--disable]
  insuretrack sms test <number>     Send a test message
  insuretrack sms history [--limit n]
  insuretrack notify check [--force]
  insuretrack scheduler run [--once]

SYNC (charm backend):
  insuretrack sync status | now | auto --enable|--disable | wipe --confirm

VISUALIZATION:
  insuretrack viz dashboard
  insuretrack viz graph renewals [--output file]
  insuretrack viz graph holders [name] [--output file]

SERVERS:
  insuretrack web [--port n] [--no-scheduler]   Dashboard, JSON API and /metrics
  insuretrack tui                                Interactive terminal UI
  insuretrack mcp                                MCP server for Claude Desktop
  insuretrack health                             Check storage

EXAMPLES:
  insuretrack policy add --name "Asha Rao" --dob 1990-05-01 --renewal 2026-12-01 \
    --mobile 9876543210 --premium 12000 --category life

  insuretrack alerts --days 30
  insuretrack export --format json --output backup.json

`, version)
}
