// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/insuretrack/handlers"
)

// NewMCPServer registers every policy tool, resource and prompt.
func NewMCPServer(app *App, version string) *mcp.Server {
	policyHandlers := handlers.NewPolicyHandlers(app.Store)
	insightHandlers := handlers.NewInsightHandlers(app.Store, app.SMS)
	resourceHandlers := handlers.NewResourceHandlers(app.Store)
	promptHandlers := handlers.NewPromptHandlers(app.Store)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "insuretrack",
		Version: version,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_policy",
		Description: "Add a new insurance policy. A policy number is generated when none is given",
	}, policyHandlers.AddPolicy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_policies",
		Description: "Search policies by policyholder name, policy number or mobile, with optional category filter and sort",
	}, policyHandlers.FindPolicies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_policy",
		Description: "Get one policy by id or policy number",
	}, policyHandlers.GetPolicy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_policy",
		Description: "Update fields of an existing policy",
	}, policyHandlers.UpdatePolicy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_policy",
		Description: "Delete a policy by id",
	}, policyHandlers.DeletePolicy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_stats",
		Description: "Portfolio totals and distributions by category, age group, renewal month and frequency",
	}, insightHandlers.GetStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_renewal_alerts",
		Description: "Policies renewing within the window (default 7 days), soonest first",
	}, insightHandlers.GetRenewalAlerts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_policies",
		Description: "Export all policies as CSV or JSON text",
	}, insightHandlers.ExportPolicies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_renewal_reminder",
		Description: "Send the standard renewal reminder SMS for a policy",
	}, insightHandlers.SendRenewalReminder)

	// Register resources
	server.AddResource(&mcp.Resource{
		URI:         "insuretrack://policies",
		Name:        "policies",
		Description: "All policies",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "insuretrack://stats",
		Name:        "stats",
		Description: "Portfolio statistics",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "insuretrack://alerts",
		Name:        "alerts",
		Description: "Policies renewing in the next 7 days",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "insuretrack://policies/{id}",
		Name:        "policy",
		Description: "One policy by id",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	// Register prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "renewal-outreach",
		Description: "Draft reminders for policies renewing this week",
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "policyholder-review",
		Description: "Review all coverage held by one policyholder",
		Arguments: []*mcp.PromptArgument{
			{Name: "name", Description: "Policyholder name (or part of it)", Required: true},
		},
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(app *App, version string) error {
	app.Logger.Info("Starting InsureTrack MCP Server...")

	server := NewMCPServer(app, version)

	// Run server on stdio transport
	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
