package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueSource records where a resolved setting came from, so diagnostics
// can say which layer won.
type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a setting plus its provenance.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries the CLI-level overrides into resolution.
type ResolveOptions struct {
	ConfigPath string
	CLIDBPath  string
}

// ResolvedPaths is the outcome of layering defaults, the config file,
// environment variables and CLI flags. Later layers win.
type ResolvedPaths struct {
	ConfigPath string        `json:"config_path"`
	DBPath     ResolvedValue `json:"db_path"`
}

// pathFileConfig is the subset of the YAML config the resolver reads. The
// engine's tunables go through Load; only deployment paths live here.
type pathFileConfig struct {
	DBPath string `yaml:"db_path"`
}

// ResolvePaths resolves where the database lives, with precedence
// default < config file < PERSONA_DB / PERSONA_DB_PATH < --db.
func ResolvePaths(opts ResolveOptions) (ResolvedPaths, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultPath()
	}

	out := ResolvedPaths{
		ConfigPath: path,
		DBPath:     ResolvedValue{Source: SourceDefault, From: "built-in default"},
	}

	cfg, err := loadPathConfig(path)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
	}

	applyEnv(&out.DBPath, "PERSONA_DB")
	applyEnv(&out.DBPath, "PERSONA_DB_PATH")

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadPathConfig(path string) (*pathFileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg pathFileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
