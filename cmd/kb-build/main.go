package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"sbccheck/internal/config"
	"sbccheck/internal/kb"
	"sbccheck/internal/kbbuild"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, ocrDir string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.StringVar(&ocrDir, "ocr-dir", filepath.Join("data", "ocr"), "Directory holding the OCR Markdown sources")
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	paths := kb.DefaultPaths(cfg.KB.Dir)

	inputs := []kbbuild.DocInput{
		{
			MarkdownPath: filepath.Join(ocrDir, "sbc1101_ocr.md"),
			DocID:        "SBC1101",
			Source:       "SBC1101_MISTRAL_OCR",
			OutFile:      paths.Docs[kb.DocSBC1101],
		},
		{
			MarkdownPath: filepath.Join(ocrDir, "res_requirements_ocr.md"),
			DocID:        "RES_REQUIREMENTS",
			Source:       "RES_REQUIREMENTS_MISTRAL_OCR",
			OutFile:      paths.Docs[kb.DocResReq],
		},
	}

	builder := kbbuild.NewBuilder(logger)
	manifest, err := builder.Build(inputs, paths)
	if err != nil {
		log.Fatalf("knowledge base build failed: %v", err)
	}
	logger.Info("knowledge base built",
		"build_id", manifest.BuildID,
		"docs", len(manifest.Docs),
		"chunks", manifest.TotalChunks,
		"dir", paths.Dir)
}
