package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/conorfennell/wortbox/internal/config"
	"github.com/conorfennell/wortbox/internal/domain"
	"github.com/conorfennell/wortbox/internal/importer"
	"github.com/conorfennell/wortbox/internal/logging"
	"github.com/conorfennell/wortbox/internal/storage"
	"github.com/conorfennell/wortbox/internal/study"
	"github.com/conorfennell/wortbox/internal/web"
)

// cardStore is satisfied by both storage.DB and storage.Memory.
type cardStore interface {
	study.Store
	CountCards(ctx context.Context) (int, error)
	InsertCards(ctx context.Context, cards []domain.Card) (int, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr, nil); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run loads configuration and either imports a wordlist or serves until ctx
// is cancelled. When ready is non-nil it receives the bound listener address.
func run(ctx context.Context, args []string, logOut io.Writer, ready chan<- string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	log := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	store, closeStore, err := openStore(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Importing() {
		rep, err := importer.Run(ctx, store, importer.Options{
			File:     cfg.Import.File,
			Repo:     cfg.Import.Repo,
			ReposDir: cfg.Import.ReposDir,
			Force:    cfg.Import.Force,
			Progress: logOut,
		})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		if rep.AlreadyLoaded {
			log.Info("Nothing imported; pass --force to add new words", "cards", rep.Existing)
		}
		return nil
	}

	var health func(context.Context) error
	if p, ok := store.(interface{ Ping(context.Context) error }); ok {
		health = p.Ping
	}

	srv, err := web.NewServer(study.NewService(store, log), log, web.Options{
		AudioDir:       cfg.Audio.Dir,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		QuizSize:       cfg.Quiz.MaxQuestions,
		Health:         health,
	})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}
	httpServer := &http.Server{
		Handler:  srv,
		ErrorLog: slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", ln.Addr().String(), "db", cfg.Database.Path)
		errCh <- httpServer.Serve(ln)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore opens the SQLite database at path, creating its directory, or an
// in-process store when path is config.MemoryDatabase.
func openStore(ctx context.Context, path string) (cardStore, func(), error) {
	if path == config.MemoryDatabase {
		slog.Warn("Using in-memory card store; progress is lost on exit")
		return storage.NewMemory(), func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Database opened", "path", path)
	return db, func() { db.Close() }, nil
}
