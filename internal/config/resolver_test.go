package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePaths_Precedence_ConfigEnvCLI(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	yaml := `db_path: ~/.persona/from-config.db
min_interactions_for_learning: 2
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PERSONA_DB", "~/from-env.db")

	resolved, err := ResolvePaths(ResolveOptions{
		ConfigPath: cfgPath,
		CLIDBPath:  "~/from-cli.db",
	})
	if err != nil {
		t.Fatalf("ResolvePaths: %v", err)
	}

	if resolved.DBPath.Source != SourceCLI {
		t.Fatalf("expected DB path source cli, got %s", resolved.DBPath.Source)
	}
	if filepath.Base(resolved.DBPath.Value) != "from-cli.db" {
		t.Fatalf("expected CLI db path, got %q", resolved.DBPath.Value)
	}
	if !filepath.IsAbs(resolved.DBPath.Value) {
		t.Fatalf("expected ~ expansion to an absolute path, got %q", resolved.DBPath.Value)
	}
}

func TestResolvePaths_EnvOverridesConfig(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("db_path: /from/config.db\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PERSONA_DB", "/from/env.db")

	resolved, err := ResolvePaths(ResolveOptions{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("ResolvePaths: %v", err)
	}
	if resolved.DBPath.Source != SourceEnv || resolved.DBPath.Value != "/from/env.db" {
		t.Fatalf("resolved = %+v, want env value", resolved.DBPath)
	}
}

func TestResolvePaths_MissingConfigUsesDefault(t *testing.T) {
	resolved, err := ResolvePaths(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	if err != nil {
		t.Fatalf("ResolvePaths: %v", err)
	}
	if resolved.DBPath.Source != SourceDefault {
		t.Fatalf("expected default source, got %s", resolved.DBPath.Source)
	}
	if resolved.DBPath.Value != "" {
		t.Fatalf("expected empty default value (store picks its own), got %q", resolved.DBPath.Value)
	}
}
