package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hurttlocker/persona/internal/config"
	"github.com/hurttlocker/persona/internal/learn"
	"github.com/hurttlocker/persona/internal/store"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// helper: profiler backed by an in-memory store
func setupTestProfiler(t *testing.T) *store.Profiler {
	t.Helper()
	s, err := store.NewStore(store.StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	p, err := store.NewProfiler(s, config.Default())
	if err != nil {
		t.Fatalf("creating profiler: %v", err)
	}
	return p
}

func TestNewServer(t *testing.T) {
	srv := NewServer(ServerConfig{Profiler: setupTestProfiler(t)})
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

// callTool invokes an MCP tool through the server's message handler.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}

	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	callResult := &mcplib.CallToolResult{
		IsError: resp.Result.IsError,
	}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			callResult.Content = append(callResult.Content, mcplib.NewTextContent(c.Text))
		}
	}
	return callResult
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func TestLogTool(t *testing.T) {
	srv := NewServer(ServerConfig{Profiler: setupTestProfiler(t)})

	result := callTool(t, srv, "persona_log", map[string]interface{}{
		"user_id":     "u1",
		"text":        "I love playing guitar and listening to jazz music!",
		"occurred_at": "2026-08-20T09:00:00Z",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var learned learn.Result
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &learned); err != nil {
		t.Fatalf("parsing log result: %v", err)
	}
	if learned.FactsCreated == 0 {
		t.Error("expected facts to be created")
	}
	if learned.Summary == nil || learned.Summary.Interactions != 1 {
		t.Errorf("summary = %+v, want 1 interaction", learned.Summary)
	}
}

func TestLogTool_EmptyText(t *testing.T) {
	srv := NewServer(ServerConfig{Profiler: setupTestProfiler(t)})

	result := callTool(t, srv, "persona_log", map[string]interface{}{
		"user_id": "u1",
		"text":    "   ",
	})
	if !result.IsError {
		t.Fatal("expected error for empty text")
	}
}

func TestProfileTool(t *testing.T) {
	srv := NewServer(ServerConfig{Profiler: setupTestProfiler(t)})

	callTool(t, srv, "persona_log", map[string]interface{}{
		"user_id": "u1",
		"text":    "I love playing guitar and listening to jazz music!",
	})

	result := callTool(t, srv, "persona_profile", map[string]interface{}{
		"user_id": "u1",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var profile store.Profile
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &profile); err != nil {
		t.Fatalf("parsing profile: %v", err)
	}
	if profile.TotalFacts == 0 {
		t.Error("expected learned facts in profile")
	}

	keys := map[string]bool{}
	for _, f := range profile.Facts[learn.CategoryInterest] {
		keys[f.Key] = true
	}
	if !keys["interest_guitar"] || !keys["interest_jazz"] {
		t.Errorf("interest keys = %v, want guitar and jazz", keys)
	}
}

func TestPatternsTool(t *testing.T) {
	srv := NewServer(ServerConfig{Profiler: setupTestProfiler(t)})

	callTool(t, srv, "persona_log", map[string]interface{}{
		"user_id":     "u1",
		"text":        "I love jazz",
		"occurred_at": "2026-08-20T09:00:00Z",
	})

	result := callTool(t, srv, "persona_patterns", map[string]interface{}{
		"user_id": "u1",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}
	if !strings.Contains(getTextContent(t, result), "active_hours") {
		t.Errorf("patterns output missing active_hours: %s", getTextContent(t, result))
	}
}

func TestStatsTool(t *testing.T) {
	srv := NewServer(ServerConfig{Profiler: setupTestProfiler(t)})

	callTool(t, srv, "persona_log", map[string]interface{}{
		"user_id": "u1",
		"text":    "I love jazz",
	})

	result := callTool(t, srv, "persona_stats", map[string]interface{}{})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	var stats store.StoreStats
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &stats); err != nil {
		t.Fatalf("parsing stats: %v", err)
	}
	if stats.UserCount != 1 || stats.InteractionCount != 1 {
		t.Errorf("stats = %+v, want 1 user and 1 interaction", stats)
	}
}

func TestForgetTool(t *testing.T) {
	p := setupTestProfiler(t)
	srv := NewServer(ServerConfig{Profiler: p})

	callTool(t, srv, "persona_log", map[string]interface{}{
		"user_id": "u1",
		"text":    "I love jazz",
	})

	result := callTool(t, srv, "persona_forget", map[string]interface{}{
		"user_id": "u1",
	})
	if result.IsError {
		t.Fatalf("tool error: %s", getTextContent(t, result))
	}

	profile, err := p.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Interactions != 0 || profile.TotalFacts != 0 {
		t.Errorf("data survived forget: %+v", profile)
	}
}

func TestMissingRequiredArgument(t *testing.T) {
	srv := NewServer(ServerConfig{Profiler: setupTestProfiler(t)})

	result := callTool(t, srv, "persona_profile", map[string]interface{}{})
	if !result.IsError {
		t.Fatal("expected error for missing user_id")
	}
}
