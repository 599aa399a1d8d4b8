package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skillexchange/modpanel/internal/moderation"
)

const (
	actionsURI     = "modpanel://actions"
	userURIPrefix  = "modpanel://users/"
	userURIPattern = userURIPrefix + "{id}"
)

// registerResources adds MCP resource definitions to the server.
func (s *MCPServer) registerResources(srv *server.MCPServer) {
	srv.AddResource(
		mcp.NewResource(
			actionsURI,
			"Moderation Actions",
			mcp.WithResourceDescription(
				"Every moderation action with its consistency: server-confirmed actions "+
					"reach the backend, local-only actions vanish when the server exits.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleActionsResource,
	)

	srv.AddResourceTemplate(
		mcp.NewResourceTemplate(
			userURIPattern,
			"User Moderation Profile",
			mcp.WithTemplateDescription("A user's account, moderation stats and reports against them."),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleUserResource,
	)
}

func (s *MCPServer) handleActionsResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	b, err := json.MarshalIndent(moderation.Actions(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actions: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      actionsURI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func (s *MCPServer) handleUserResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	uri := request.Params.URI
	userID := strings.TrimPrefix(uri, userURIPrefix)
	if userID == "" || userID == uri {
		return nil, fmt.Errorf("invalid user URI %q: expected %s", uri, userURIPattern)
	}

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("failed to load moderation data: %w", err)
	}
	user := s.cache.User(userID)
	if user == nil {
		return nil, fmt.Errorf("user %q not found", userID)
	}

	b, err := json.MarshalIndent(map[string]interface{}{
		"user":    user,
		"stats":   s.cache.UserModeration(userID),
		"reports": s.cache.ReportsForUser(userID),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
