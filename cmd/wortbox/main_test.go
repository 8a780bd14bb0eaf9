package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/wortbox/internal/storage"
)

func TestRun_Help(t *testing.T) {
	err := run(context.Background(), []string{"--help"}, io.Discard, nil)
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestRun_ImportIntoSQLite(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "A1.txt")
	require.NoError(t, os.WriteFile(list, []byte("1\tja\tJa, gern.\tyes\tYes, gladly.\n2\tnein\tNein.\tno\tNo.\n"), 0o644))
	dbPath := filepath.Join(dir, "data", "flashcards.db")

	args := []string{"--db", dbPath, "--import", list, "--repos-dir", filepath.Join(dir, "repos")}
	require.NoError(t, run(context.Background(), args, io.Discard, nil))

	// A second run leaves the populated deck alone.
	require.NoError(t, run(context.Background(), args, io.Discard, nil))

	db, err := storage.Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()
	n, err := db.CountCards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_ServeAndShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- run(ctx, []string{"--db", "memory", "--addr", "127.0.0.1:0", "--audio-dir", t.TempDir()}, io.Discard, ready)
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get("http://" + addr + "/api/card")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	err := run(context.Background(), []string{"--log-level", "loud"}, io.Discard, nil)
	assert.Error(t, err)
}
