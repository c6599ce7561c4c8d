package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/file-citas/zotgraph/internal/alias"
	"github.com/file-citas/zotgraph/internal/config"
	"github.com/file-citas/zotgraph/internal/graph"
	"github.com/file-citas/zotgraph/internal/linker"
	"github.com/file-citas/zotgraph/internal/nodecache"
	"github.com/file-citas/zotgraph/internal/pdf"
	"github.com/file-citas/zotgraph/internal/refextract"
	"github.com/file-citas/zotgraph/internal/s2"
	"github.com/file-citas/zotgraph/internal/zotero"
)

// app is one opened project with all of its collaborators.
type app struct {
	cfg     *config.GlobalConfig
	project *config.Project
	engine  *graph.Engine
	bridge  *zotero.Bridge // nil when no library is configured
	opener  *pdf.Opener
}

// mustLoadConfig loads the global configuration, exits on error.
func mustLoadConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenApp opens the named project, exits on error.
// The caller is responsible for calling Close() on the returned app.
func mustOpenApp(ctx context.Context, name string) *app {
	a, err := openApp(ctx, mustLoadConfig(), name)
	if err != nil {
		if errors.Is(err, config.ErrProjectNotFound) || errors.Is(err, config.ErrInvalidProject) {
			exitWithError(ExitConfigError, "%v", err)
		}
		exitWithError(ExitError, "opening project: %v", err)
	}
	return a
}

func openApp(ctx context.Context, cfg *config.GlobalConfig, name string) (*app, error) {
	logger := slog.Default()

	project, err := config.OpenProject(cfg.ProjectsDir, name)
	if err != nil {
		return nil, err
	}
	filter, err := project.Filter()
	if err != nil {
		return nil, err
	}

	cache, err := nodecache.New(cfg.NodeCacheDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening node cache: %w", err)
	}
	aliases, err := alias.Load(cfg.AliasesFile)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		project: project,
		opener:  pdf.NewOpener(cfg.PDFRoot, cfg.PDFReader),
	}

	var lib graph.Library
	if cfg.LibraryCSV != "" {
		bridge, err := openBridge(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.bridge = bridge
		lib = resolvedLibrary{Bridge: bridge, opener: a.opener}
	} else {
		logger.Warn("no library configured; annotations and collections are unavailable")
	}

	refs, err := openReferenceSource(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	lk := linker.New(logger)
	lk.Threshold = cfg.MatchThreshold
	lk.MinTitleLen = cfg.MinTitleLen

	a.engine = graph.New(graph.Options{
		Project:    project.Name,
		Dir:        project.Dir,
		Filter:     filter,
		Resolver:   s2.NewClient(s2.WithAPIKey(cfg.S2APIKey), s2.WithLogger(logger)),
		Cache:      cache,
		Library:    lib,
		Refs:       refs,
		Aliases:    aliases,
		Linker:     lk,
		TitleFloor: cfg.TitleFloor,
		Logger:     logger,
	})
	if err := a.engine.Open(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func openBridge(cfg *config.GlobalConfig, logger *slog.Logger) (*zotero.Bridge, error) {
	path, err := cfg.ValidateLibrary()
	if err != nil {
		return nil, err
	}
	lib, err := zotero.OpenLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	var api zotero.API
	if cfg.HasZoteroAPI() {
		api = zotero.NewClient(cfg.ZoteroLibraryID, cfg.ZoteroLibraryType, cfg.ZoteroAPIKey)
	}
	return zotero.NewBridge(lib, api, logger), nil
}

// openReferenceSource prefers the extraction service when a key is set and
// falls back to reading the PDF text layer.
func openReferenceSource(cfg *config.GlobalConfig, logger *slog.Logger) (*refextract.Source, error) {
	cache, err := refextract.NewCache(cfg.ExtractCacheDir)
	if err != nil {
		return nil, fmt.Errorf("opening extraction cache: %w", err)
	}
	var primary refextract.Extractor
	if cfg.ExtractAPIKey != "" {
		primary = refextract.NewService(cfg.ExtractAPIKey)
	}
	return refextract.NewSource(cache, primary, refextract.Local{}, logger), nil
}

// Save persists the project.
func (a *app) Save() error {
	return a.engine.Save()
}

// mustSave saves the project, exits on error.
func (a *app) mustSave() {
	if err := a.Save(); err != nil {
		exitWithError(ExitError, "saving project: %v", err)
	}
}

// Close releases the library snapshot.
func (a *app) Close() {
	if a.bridge == nil {
		return
	}
	if err := a.bridge.Library().Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing library: %v\n", err)
	}
}

// resolvedLibrary makes relative PDF attachment paths absolute under the
// configured pdf_root.
type resolvedLibrary struct {
	*zotero.Bridge
	opener *pdf.Opener
}

func (l resolvedLibrary) PDFPath(ctx context.Context, key string) (string, error) {
	p, err := l.Bridge.PDFPath(ctx, key)
	if err != nil || p == "" {
		return p, err
	}
	return l.opener.ResolvePath(p)
}
