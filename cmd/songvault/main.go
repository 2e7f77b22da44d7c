package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"songvault/internal/catalog"
	"songvault/internal/flush"
	"songvault/internal/importer"
	"songvault/internal/persist"
	"songvault/internal/server"
)

var (
	listenAddr     string
	backendName    string
	databasePath   string
	importDir      string
	flushThreshold int
	flushInterval  time.Duration
	debug          bool
)

func init() {
	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, ".songvault.db")

	flag.StringVar(&listenAddr, "l", ":8080", "the address to listen on")
	flag.StringVar(&listenAddr, "listen", ":8080", "the address to listen on")
	flag.StringVar(&backendName, "b", "file", "persistence backend: file, sqlite, bolt or bleve")
	flag.StringVar(&backendName, "backend", "file", "persistence backend: file, sqlite, bolt or bleve")
	flag.StringVar(&databasePath, "database", defaultDB, "the location to store the durable catalog")
	flag.StringVar(&importDir, "import", "", "import audio files from this directory before serving")
	flag.IntVar(&flushThreshold, "flush-threshold", 100, "minimum catalog size before a dirty catalog is flushed")
	flag.DurationVar(&flushInterval, "flush-interval", 2*time.Second, "how often the flush scheduler polls the dirty flag")
	flag.BoolVar(&debug, "d", false, "enable debug logging")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
}

func truePath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	abs, _ := filepath.Abs(path)
	return abs
}

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	databasePath = truePath(databasePath)

	backend, err := openBackend(backendName, databasePath)
	if err != nil {
		logger.Error("cannot open persistence backend", "backend", backendName, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	store := catalog.FromSnapshot(persist.LoadOrEmpty(backend, logger))
	logger.Info("catalog loaded", "backend", backendName, "records", store.Len())

	if importDir != "" {
		n, err := importer.Import(store, truePath(importDir), logger)
		if err != nil {
			logger.Error("import failed", "dir", importDir, "error", err)
			os.Exit(1)
		}
		logger.Info("import finished", "records", n)
	}

	cfg := flush.DefaultConfig()
	cfg.Threshold = flushThreshold
	cfg.Interval = flushInterval
	scheduler := flush.New(store, backend, cfg, logger)
	scheduler.Start()

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: server.New(store, logger).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("serving", "addr", listenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		// ListenAndServe only returns on failure; bind errors are fatal.
		logger.Error("server failed", "error", err)
		scheduler.Stop()
		os.Exit(1)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}

	// Stop performs a best-effort final flush of any unflushed mutations.
	scheduler.Stop()
}

func openBackend(name, path string) (persist.Backend, error) {
	switch strings.ToLower(name) {
	case "file":
		return persist.NewFileBackend(path), nil
	case "sqlite":
		return persist.NewSQLiteBackend(path)
	case "bolt":
		return persist.NewBoltBackend(path)
	case "bleve":
		// Bleve indexes are directories; give the path a distinguishing
		// extension so it cannot collide with a file backend's path.
		if filepath.Ext(path) != ".bleve" {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".bleve"
		}
		return persist.NewBleveBackend(path)
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}
