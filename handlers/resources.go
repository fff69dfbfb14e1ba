// ABOUTME: MCP resource handlers for exposing policy data
// ABOUTME: Provides read-only access to policies, stats and renewal alerts via insuretrack:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/insuretrack/store"
)

const resourceScheme = "insuretrack://"

type ResourceHandlers struct {
	store *store.Store
}

func NewResourceHandlers(s *store.Store) *ResourceHandlers {
	return &ResourceHandlers{store: s}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch parts[0] {
	case "policies":
		if len(parts) == 1 || parts[1] == "" {
			return jsonResource(uri, h.allPolicies())
		}
		p, ok := h.store.Get(parts[1])
		if !ok {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return jsonResource(uri, policyToOutput(p))
	case "stats":
		return jsonResource(uri, h.store.Stats())
	case "alerts":
		return jsonResource(uri, h.store.RenewalAlerts())
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) allPolicies() []PolicyOutput {
	policies := h.store.Policies()
	out := make([]PolicyOutput, len(policies))
	for i, p := range policies {
		out[i] = policyToOutput(p)
	}
	return out
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
