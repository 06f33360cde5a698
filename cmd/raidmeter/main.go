// Package main implements the raidmeter binary: it maintains the local
// encounter database, imports finalized encounter payloads, and lists
// stored encounters.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raidmeter/raidmeter/internal/app"
	"github.com/raidmeter/raidmeter/internal/assemble"
	"github.com/raidmeter/raidmeter/internal/codec"
	"github.com/raidmeter/raidmeter/internal/config"
	"github.com/raidmeter/raidmeter/pkg/types"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		dbPath      string
		importFile  string
		list        bool
		search      string
		page        int
		pageSize    int
		showVersion bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.StringVar(&dbPath, "db", "", "Path to the encounter database")
	flag.StringVar(&importFile, "import", "", "Import a finalized encounter payload (JSON file)")
	flag.BoolVar(&list, "list", false, "List stored encounters")
	flag.StringVar(&search, "search", "", "Search text for -list")
	flag.IntVar(&page, "page", 1, "Page number for -list")
	flag.IntVar(&pageSize, "page-size", 10, "Page size for -list")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "raidmeter - combat encounter persistence\n\n")
		fmt.Fprintf(os.Stderr, "Usage: raidmeter [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  raidmeter -import encounter.json\n")
		fmt.Fprintf(os.Stderr, "  raidmeter -list -search valtan\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  RAIDMETER_DATA_DIR        Base directory for data files\n")
		fmt.Fprintf(os.Stderr, "  RAIDMETER_DATABASE_PATH   Encounter database path\n")
		fmt.Fprintf(os.Stderr, "  RAIDMETER_UPLINK_ENABLED  Push imported encounters upstream\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("raidmeter version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile, dataDir, dbPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer application.Close()

	switch {
	case importFile != "":
		if err := runImport(ctx, application, importFile); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	case list:
		if err := runList(ctx, application, page, pageSize, search); err != nil {
			log.Fatalf("List failed: %v", err)
		}
	default:
		flag.Usage()
	}
}

func loadConfig(configFile, dataDir, dbPath string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if configFile != "" {
		loaded, err := config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	config.LoadFromEnv(cfg)

	// Flags win over file and environment.
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	cfg.Resolve()
	return cfg, nil
}

func runImport(ctx context.Context, application *app.App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw assemble.RawEncounter
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode encounter payload: %w", err)
	}

	records, err := assemble.Assemble(raw)
	if err != nil {
		return err
	}

	id, err := application.Store().InsertEncounter(ctx, records.Encounter, records.Preview, records.Entities)
	if err != nil {
		return err
	}
	log.Printf("imported encounter %d (%s)", id, records.Preview.BossName)

	if uplinkSvc := application.Uplink(); uplinkSvc != nil {
		payload, err := codec.Marshal(records.Preview)
		if err != nil {
			return err
		}
		upstreamID, err := uplinkSvc.Push(ctx, id, payload)
		if err != nil {
			// Local persistence already succeeded; the failed push is
			// recorded in the sync log for a later retry.
			log.Printf("uplink push failed: %v", err)
			return nil
		}
		log.Printf("pushed encounter %d as %s", id, upstreamID)
	}
	return nil
}

func runList(ctx context.Context, application *app.App, page, pageSize int, search string) error {
	overview, err := application.Store().ListEncounters(ctx, page, pageSize, search, types.SearchFilter{})
	if err != nil {
		return err
	}

	fmt.Printf("%d encounters\n", overview.TotalEncounters)
	for _, e := range overview.Encounters {
		start := time.UnixMilli(e.FightStart).Format(time.DateTime)
		state := "wipe"
		if e.Cleared {
			state = "clear"
		}
		fmt.Printf("#%-6d %s  %-30s %6ds  %s  %d players\n",
			e.ID, start, e.BossName, e.Duration/1000, state, len(e.Names))
	}
	return nil
}
