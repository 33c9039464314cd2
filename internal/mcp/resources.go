package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/persona/internal/store"
)

func registerStatsResource(s *server.MCPServer, p *store.Profiler) {
	resource := mcp.NewResource(
		"persona://stats",
		"Persona Statistics",
		mcp.WithResourceDescription("Store statistics: user, interaction, fact and snapshot counts plus database size."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		stats, err := p.Stats(ctx)
		if err != nil {
			return nil, err
		}

		data, _ := json.MarshalIndent(stats, "", "  ")
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
