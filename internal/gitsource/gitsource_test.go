package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPath(t *testing.T) {
	testCases := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "https", url: "https://github.com/goethe/a1-wordlist.git", want: filepath.Join("repos", "github.com", "goethe", "a1-wordlist")},
		{name: "https without suffix", url: "https://gitlab.com/x/y", want: filepath.Join("repos", "gitlab.com", "x", "y")},
		{name: "scp style", url: "git@github.com:goethe/a1-wordlist.git", want: filepath.Join("repos", "github.com", "goethe", "a1-wordlist")},
		{name: "not a url", url: "just-a-dir", wantErr: true},
		{name: "escapes base dir", url: "git@github.com:../../etc", wantErr: true},
		{name: "no host", url: "user@:repo", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LocalPath("repos", tc.url)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// newOriginRepo creates a local repository with one committed wordlist.
func newOriginRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "A1.txt"), []byte("1\tja\tJa.\tyes\tYes.\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("A1.txt")
	require.NoError(t, err)
	_, err = wt.Commit("add wordlist", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestSync_CloneThenPull(t *testing.T) {
	origin := newOriginRepo(t)
	local := filepath.Join(t.TempDir(), "checkout")
	ctx := context.Background()

	require.NoError(t, Sync(ctx, origin, local, nil))
	data, err := os.ReadFile(filepath.Join(local, "A1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "ja")

	// A second sync pulls; nothing changed upstream.
	require.NoError(t, Sync(ctx, origin, local, nil))
}

func TestSync_ExistingNonRepo(t *testing.T) {
	local := t.TempDir()
	err := Sync(context.Background(), "https://example.invalid/repo.git", local, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open existing repo")
}
