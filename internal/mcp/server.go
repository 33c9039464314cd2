// Package mcp provides a Model Context Protocol server for persona.
//
// It exposes the learning engine (log, profile, patterns, stats, forget)
// as MCP tools, and store statistics as MCP resources. Uses stdio
// transport so agent frontends can drive the engine locally.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/persona/internal/store"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Profiler *store.Profiler
	Version  string // version string for MCP server info
}

// dbMu serializes all MCP tool calls that touch the database.
// The mcp-go library dispatches handlers concurrently via goroutines.
// SQLite (even with WAL) supports only one writer at a time, and concurrent
// reads during writes can return stale results. A global mutex ensures
// correct ordering: a logged interaction is learned before the next
// profile read sees the fact set.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all persona tools and
// resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"Persona",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	// Register tools
	registerLogTool(s, cfg.Profiler)
	registerProfileTool(s, cfg.Profiler)
	registerPatternsTool(s, cfg.Profiler)
	registerStatsTool(s, cfg.Profiler)
	registerForgetTool(s, cfg.Profiler)

	// Register resources
	registerStatsResource(s, cfg.Profiler)

	return s
}

// --- Tools ---

func registerLogTool(s *server.MCPServer, p *store.Profiler) {
	tool := mcp.NewTool("persona_log",
		mcp.WithDescription("Log a user interaction and run a learning cycle over it. Returns the analysis, the refreshed pattern summary and the facts created or updated."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Identifier of the user this interaction belongs to"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The interaction text to learn from"),
		),
		mcp.WithString("type",
			mcp.Description("Interaction type (default: message)"),
		),
		mcp.WithString("occurred_at",
			mcp.Description("RFC 3339 timestamp of the interaction (default: now)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError("text is required"), nil
		}
		if strings.TrimSpace(text) == "" {
			return mcp.NewToolResultError("interaction text cannot be empty"), nil
		}

		in := store.NewInteraction{Text: text}
		if typ, err := req.RequireString("type"); err == nil && typ != "" {
			in.Type = typ
		}
		if ts, err := req.RequireString("occurred_at"); err == nil && ts != "" {
			occurredAt, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid occurred_at: %v", err)), nil
			}
			in.OccurredAt = occurredAt
		}

		result, err := p.LogInteraction(ctx, userID, in)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("learning error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerProfileTool(s *server.MCPServer, p *store.Profiler) {
	tool := mcp.NewTool("persona_profile",
		mcp.WithDescription("Return a user's learned profile: facts grouped by category with confidence and evidence counts."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Identifier of the user"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}

		profile, err := p.Profile(ctx, userID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("profile error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(profile, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerPatternsTool(s *server.MCPServer, p *store.Profiler) {
	tool := mcp.NewTool("persona_patterns",
		mcp.WithDescription("Return a user's behavioral pattern summary: active hours, dominant style, sentiment trend, cadence and top topics. Rebuilds the snapshot from the interaction log when missing."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Identifier of the user"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}

		sum, err := p.Patterns(ctx, userID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("patterns error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(sum, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerStatsTool(s *server.MCPServer, p *store.Profiler) {
	tool := mcp.NewTool("persona_stats",
		mcp.WithDescription("Return store statistics: user, interaction, fact and snapshot counts plus database size."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		stats, err := p.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("stats error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(stats, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerForgetTool(s *server.MCPServer, p *store.Profiler) {
	tool := mcp.NewTool("persona_forget",
		mcp.WithDescription("Erase all stored data for a user: interactions, learned facts, evidence and pattern snapshots. Irreversible."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Identifier of the user to erase"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError("user_id is required"), nil
		}

		if err := p.Forget(ctx, userID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("forget error: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("all data for user %q erased", userID)), nil
	})
}
