package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// requireID extracts a required ID argument. Surrounding whitespace, which
// models sometimes copy along with an ID, is dropped.
func requireID(request mcp.CallToolRequest, key string) (string, error) {
	val, err := request.RequireString(key)
	val = strings.TrimSpace(val)
	if err != nil || val == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return val, nil
}

func optionalString(request mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(request.GetString(key, ""))
}

// limitArg reads the "limit" argument, defaulting to defaultListLimit and
// capped at maxListLimit.
func limitArg(request mcp.CallToolRequest) int {
	return clamp(request.GetInt("limit", defaultListLimit), 1, maxListLimit)
}

// successJSON returns data as indented JSON text.
func successJSON(data interface{}) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError reports a failure to the model as a tool result so it can
// retry with different arguments. The MCP session stays up.
func toolError(format string, args ...interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}

func clamp(val, lo, hi int) int {
	return max(lo, min(val, hi))
}
