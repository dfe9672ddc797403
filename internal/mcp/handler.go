package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/desajambearum/jambearum/internal/model"
)

// Listing limits for jambearum_list_umkm.
const (
	defaultListLimit = 25
	maxListLimit     = 100
)

// --------------------------------------------------------------------------
// Argument extraction
// --------------------------------------------------------------------------

// requireString extracts a required, non-blank string argument.
func requireString(request mcp.CallToolRequest, key string) (string, error) {
	val, err := request.RequireString(key)
	if err != nil || strings.TrimSpace(val) == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return strings.TrimSpace(val), nil
}

// optionalString returns a trimmed string argument, empty when absent.
func optionalString(request mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(request.GetString(key, ""))
}

// umkmListArgs turns the list tool's arguments into a store filter over
// active entries plus the number of results to return.
func umkmListArgs(request mcp.CallToolRequest) (model.UMKMFilter, int) {
	filter := model.UMKMFilter{
		ActiveOnly: true,
		Category:   optionalString(request, "category"),
		Dusun:      optionalString(request, "dusun"),
		Search:     optionalString(request, "q"),
	}
	limit := clamp(request.GetInt("limit", defaultListLimit), 1, maxListLimit)
	return filter, limit
}

// summarizeUMKM drops the long-form fields from a listing entry.
func summarizeUMKM(u model.UMKM) umkmSummary {
	products := u.Products
	if products == nil {
		products = []string{}
	}
	return umkmSummary{
		ID:       u.ID,
		Name:     u.Name,
		Category: u.Category,
		Dusun:    u.Dusun,
		Owner:    u.Owner,
		Products: products,
	}
}

// --------------------------------------------------------------------------
// Results
// --------------------------------------------------------------------------

// successJSON returns data as an indented JSON text result.
func successJSON(data interface{}) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError reports a failure to the agent without ending the session.
func toolError(format string, args ...interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
