// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and graph generation commands
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/insuretrack/viz"
)

// VizDashboardCommand prints the terminal dashboard.
func VizDashboardCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("viz dashboard", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, _ = fmt.Fprint(app.Out, viz.RenderDashboard(viz.GenerateDashboardStats(app.Store)))
	return nil
}

func writeGraph(app *App, output, dot string) error {
	if output != "" {
		if err := os.WriteFile(output, []byte(dot), 0644); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(app.Out, "✓ Graph written to %s\n", output)
		return nil
	}
	_, _ = fmt.Fprintln(app.Out, dot)
	return nil
}

// VizGraphRenewalsCommand generates the category to renewal month graph.
func VizGraphRenewalsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("viz graph renewals", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dot, err := viz.NewGraphGenerator(app.Store).GenerateRenewalGraph(context.Background())
	if err != nil {
		return err
	}
	return writeGraph(app, *output, dot)
}

// VizGraphHoldersCommand generates the policyholder graph, optionally filtered by name.
func VizGraphHoldersCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("viz graph holders", flag.ContinueOnError)
	fs.SetOutput(app.Out)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	name := ""
	if fs.NArg() > 0 {
		name = fs.Arg(0)
	}

	dot, err := viz.NewGraphGenerator(app.Store).GenerateHolderGraph(context.Background(), name)
	if err != nil {
		return err
	}
	return writeGraph(app, *output, dot)
}
