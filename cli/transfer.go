// ABOUTME: Export and import CLI commands
// ABOUTME: Writes CSV or JSON exports and restores the collection from a JSON export
package cli

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/harperreed/insuretrack/storage"
)

// ExportCommand writes the collection to a dated file, or stdout with --output -.
func ExportCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	format := fs.String("format", "csv", "Export format: csv or json")
	output := fs.String("output", "", "Output file (default: insurance_policies_<date>.<format>, - for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var buf bytes.Buffer
	var err error
	switch strings.ToLower(*format) {
	case "csv":
		err = storage.ExportCSV(&buf, app.Store.Policies())
	case "json":
		err = storage.ExportJSON(&buf, app.Store.Policies())
	default:
		return fmt.Errorf("unknown export format %q (want csv or json)", *format)
	}
	if err != nil {
		return err
	}

	if *output == "-" {
		_, err := app.Out.Write(buf.Bytes())
		return err
	}

	path := *output
	if path == "" {
		path = storage.ExportFileName(strings.ToLower(*format), time.Now())
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return &storage.ExportError{Reason: "write " + path, Err: err}
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Exported %d policies to %s\n", app.Store.Len(), path)
	return nil
}

// ImportCommand replaces the collection with the policies in a JSON export.
func ImportCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("import file required")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	policies, err := storage.ImportJSON(f, time.Now())
	if err != nil {
		return err
	}

	replaced := app.Store.Len()
	if err := app.Store.Replace(policies); err != nil {
		return fmt.Errorf("failed to import policies: %w", err)
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Imported %d policies (replaced %d)\n", len(policies), replaced)
	return nil
}
