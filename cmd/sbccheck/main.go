package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"sbccheck/internal/binder"
	"sbccheck/internal/config"
	"sbccheck/internal/domain"
	"sbccheck/internal/kb"
	"sbccheck/internal/retrieval"
	"sbccheck/internal/rules"
	"sbccheck/internal/service"
	"sbccheck/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, projectID, assetID string
	var useTUI bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/sbccheck/config.yaml if not provided)")
	flag.StringVar(&projectID, "project", "", "Project identifier for the report")
	flag.StringVar(&assetID, "asset", "", "Asset identifier for the report")
	flag.BoolVar(&useTUI, "tui", false, "Browse the report interactively instead of printing JSON")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: sbccheck [--config=config.yaml] [--project=P] [--asset=A] [--tui] rooms.json")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rooms, err := readRooms(args[0])
	if err != nil {
		log.Fatalf("failed to read rooms: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	paths := kb.DefaultPaths(cfg.KB.Dir)
	store := kb.NewStore()
	engine := retrieval.New(retrieval.Config{Store: store, Paths: paths, Logger: logger})
	bnd := binder.New(binder.Config{
		Retriever: engine,
		Logger:    logger,
		TopK:      cfg.Retrieval.TopK,
		MinScore:  cfg.Retrieval.MinScore,
	})
	svc := service.New(service.Config{
		Catalog:   rules.BuildCatalog(),
		Binder:    bnd,
		Retriever: engine,
		Paths:     paths,
		Logger:    logger,
	})

	report := svc.Analyze(projectID, assetID, rooms)

	if useTUI {
		m := tui.New(svc, report)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			log.Fatal(err)
		}
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		log.Fatalf("failed to write report: %v", err)
	}
}

// readRooms accepts either a bare JSON array of rooms or an object with
// a "rooms" key.
func readRooms(path string) ([]domain.Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rooms []domain.Room
	if err := json.Unmarshal(data, &rooms); err == nil {
		return rooms, nil
	}
	var wrapped struct {
		Rooms []domain.Room `json:"rooms"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return wrapped.Rooms, nil
}
