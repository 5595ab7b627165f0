package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"sbccheck/internal/binder"
	"sbccheck/internal/config"
	"sbccheck/internal/kb"
	"sbccheck/internal/retrieval"
	"sbccheck/internal/rules"
	"sbccheck/internal/server"
	"sbccheck/internal/service"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	flag.Parse()

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
	if addr == "" {
		addr = cfg.Server.Addr
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

	srv := server.New(svc, paths, logger)
	logger.Info("listening", "addr", addr, "kb_ready", paths.Ready())
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
