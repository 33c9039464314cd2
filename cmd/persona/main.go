package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hurttlocker/persona/internal/config"
	"github.com/hurttlocker/persona/internal/learn"
	mcpserver "github.com/hurttlocker/persona/internal/mcp"
	"github.com/hurttlocker/persona/internal/store"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "log":
		err = runLog(os.Args[2:])
	case "profile":
		err = runProfile(os.Args[2:])
	case "patterns":
		err = runPatterns(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "forget":
		err = runForget(os.Args[2:])
	case "mcp":
		err = runMCP(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("persona %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds the flags shared across subcommands.
type cliFlags struct {
	user   string
	dbPath string
	config string
	asJSON bool
	rest   []string
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--user" || arg == "-u":
			if i+1 >= len(args) {
				return f, fmt.Errorf("%s requires a value", arg)
			}
			i++
			f.user = args[i]
		case arg == "--db":
			if i+1 >= len(args) {
				return f, fmt.Errorf("--db requires a value")
			}
			i++
			f.dbPath = args[i]
		case arg == "--config":
			if i+1 >= len(args) {
				return f, fmt.Errorf("--config requires a value")
			}
			i++
			f.config = args[i]
		case arg == "--json":
			f.asJSON = true
		case strings.HasPrefix(arg, "-"):
			return f, fmt.Errorf("unknown flag: %s", arg)
		default:
			f.rest = append(f.rest, arg)
		}
	}
	return f, nil
}

func openProfiler(f cliFlags) (*store.Profiler, store.Store, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, nil, err
	}
	paths, err := config.ResolvePaths(config.ResolveOptions{
		ConfigPath: f.config,
		CLIDBPath:  f.dbPath,
	})
	if err != nil {
		return nil, nil, err
	}
	s, err := store.NewStore(store.StoreConfig{DBPath: paths.DBPath.Value})
	if err != nil {
		return nil, nil, err
	}
	p, err := store.NewProfiler(s, cfg)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return p, s, nil
}

func runLog(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.user == "" {
		return fmt.Errorf("usage: persona log --user <id> <text>")
	}
	if len(f.rest) == 0 {
		return fmt.Errorf("no interaction text given")
	}
	text := strings.Join(f.rest, " ")

	p, s, err := openProfiler(f)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := p.LogInteraction(context.Background(), f.user, store.NewInteraction{Text: text})
	if err != nil {
		return err
	}

	if f.asJSON {
		return printJSON(result)
	}

	fmt.Printf("Logged interaction for %s\n", f.user)
	fmt.Printf("  sentiment: %+.2f  intent: %s\n", result.Analysis.Sentiment, result.Analysis.Intent)
	if len(result.Analysis.Topics) > 0 {
		fmt.Printf("  topics:    %s\n", strings.Join(result.Analysis.Topics, ", "))
	}
	fmt.Printf("  facts:     %d created, %d updated\n", result.FactsCreated, result.FactsUpdated)
	for _, up := range result.Upserts {
		fmt.Printf("    [%s] %s/%s: %s (%s, evidence %d)\n",
			up.Op, up.Fact.Category, up.Fact.Key, up.Fact.Value, up.Fact.Confidence, up.Fact.EvidenceCount)
	}
	return nil
}

func runProfile(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.user == "" {
		return fmt.Errorf("usage: persona profile --user <id>")
	}

	p, s, err := openProfiler(f)
	if err != nil {
		return err
	}
	defer s.Close()

	profile, err := p.Profile(context.Background(), f.user)
	if err != nil {
		return err
	}

	if f.asJSON {
		return printJSON(profile)
	}

	fmt.Printf("Profile for %s (%d facts, %d interactions)\n",
		profile.UserID, profile.TotalFacts, profile.Interactions)

	categories := make([]learn.Category, 0, len(profile.Facts))
	for c := range profile.Facts {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, c := range categories {
		fmt.Printf("\n%s:\n", c)
		for _, fact := range profile.Facts[c] {
			fmt.Printf("  %-30s %s (%s, evidence %d)\n",
				fact.Key, fact.Value, fact.Confidence, fact.EvidenceCount)
		}
	}
	return nil
}

func runPatterns(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.user == "" {
		return fmt.Errorf("usage: persona patterns --user <id>")
	}

	p, s, err := openProfiler(f)
	if err != nil {
		return err
	}
	defer s.Close()

	sum, err := p.Patterns(context.Background(), f.user)
	if err != nil {
		return err
	}

	if f.asJSON {
		return printJSON(sum)
	}

	fmt.Printf("Patterns for %s\n", f.user)
	fmt.Printf("  interactions:  %d over %d day(s)\n", sum.Interactions, sum.SpanDays)
	fmt.Printf("  avg sentiment: %+.2f (trend %s)\n", sum.AvgSentiment, sum.SentimentTrend)
	fmt.Printf("  style:         %s (%.1f tokens avg)\n", sum.DominantStyle, sum.AvgTokens)
	if hour := sum.ModeHour(); hour >= 0 {
		fmt.Printf("  most active:   %02d:00\n", hour)
	}
	if sum.AvgGapHours > 0 {
		fmt.Printf("  cadence:       every %.1f hour(s)\n", sum.AvgGapHours)
	}
	if len(sum.TopTopics) > 0 {
		fmt.Printf("  top topics:\n")
		for _, tc := range sum.TopTopics {
			fmt.Printf("    %-20s %d\n", tc.Topic, tc.Count)
		}
	}
	return nil
}

func runStats(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	p, s, err := openProfiler(f)
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := p.Stats(context.Background())
	if err != nil {
		return err
	}

	if f.asJSON {
		return printJSON(stats)
	}

	fmt.Println("Persona store statistics")
	fmt.Printf("  users:        %d\n", stats.UserCount)
	fmt.Printf("  interactions: %d\n", stats.InteractionCount)
	fmt.Printf("  facts:        %d\n", stats.FactCount)
	fmt.Printf("  snapshots:    %d\n", stats.SnapshotCount)
	fmt.Printf("  db size:      %d bytes\n", stats.DBSizeBytes)
	return nil
}

func runForget(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.user == "" {
		return fmt.Errorf("usage: persona forget --user <id>")
	}

	p, s, err := openProfiler(f)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := p.Forget(context.Background(), f.user); err != nil {
		return err
	}
	fmt.Printf("All data for %s erased\n", f.user)
	return nil
}

func runMCP(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	p, s, err := openProfiler(f)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := mcpserver.NewServer(mcpserver.ServerConfig{
		Profiler: p,
		Version:  version,
	})

	fmt.Fprintf(os.Stderr, "persona %s MCP server starting (stdio) at %s\n",
		version, time.Now().UTC().Format(time.RFC3339))
	return server.ServeStdio(srv)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printUsage() {
	fmt.Printf(`persona %s — Rule-based user profile learning engine

Usage:
  persona <command> [arguments]

Commands:
  log --user <id> <text>   Log an interaction and learn from it
  profile --user <id>      Show a user's learned facts by category
  patterns --user <id>     Show a user's behavioral pattern summary
  stats                    Show store statistics
  forget --user <id>       Erase all data for a user
  mcp                      Run the MCP server on stdio
  version                  Print version

Flags:
  -u, --user <id>          User identifier
      --db <path>          Database path (default: %s)
      --config <path>      Config file path (default: ~/.persona/config.yaml)
      --json               Emit JSON instead of formatted text
  -h, --help               Show this help message
  -v, --version            Print version
`, version, store.DefaultDBPath)
}
