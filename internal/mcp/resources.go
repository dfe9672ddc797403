package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/store"
)

const umkmURI = "jambearum://umkm"

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {

	// -------------------------------------------------------------------
	// jambearum://umkm: every active business
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			umkmURI,
			"Desa Jambearum UMKM Directory",
			mcp.WithResourceDescription(
				"All active local businesses of Desa Jambearum with category, "+
					"dusun, owner and products.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleUMKMResource,
	)

	// -------------------------------------------------------------------
	// jambearum://umkm/{id}: one business (template)
	// -------------------------------------------------------------------
	srv.AddResourceTemplate(
		mcp.NewResourceTemplate(
			umkmURI+"/{id}",
			"UMKM Detail",
			mcp.WithTemplateDescription("Full record of one active business."),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleUMKMDetailResource,
	)
}

func (s *MCPServer) handleUMKMResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	list, err := s.store.ListUMKM(ctx, model.UMKMFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list umkm: %w", err)
	}
	return jsonContents(umkmURI, list)
}

func (s *MCPServer) handleUMKMDetailResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	uri := request.Params.URI
	id := strings.TrimPrefix(uri, umkmURI+"/")
	if id == "" || id == uri || strings.Contains(id, "/") {
		return nil, fmt.Errorf("invalid UMKM URI %q: expected %s/{id}", uri, umkmURI)
	}

	u, err := s.store.GetActiveUMKM(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("umkm %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load umkm %q: %w", id, err)
	}
	return jsonContents(uri, u)
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
