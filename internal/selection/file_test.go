package selection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePersister(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file loads as empty", func(t *testing.T) {
		p := NewFilePersister(filepath.Join(t.TempDir(), "selection.json"))

		repos, err := p.Load(ctx, DefaultKey)

		require.NoError(t, err)
		assert.Empty(t, repos)
	})

	t.Run("round trips keys independently", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "selection.json")
		p := NewFilePersister(path)

		require.NoError(t, p.Save(ctx, "a", []string{"acme/api", "acme/web"}))
		require.NoError(t, p.Save(ctx, "b", []string{"other/repo"}))
		require.NoError(t, p.Save(ctx, "a", []string{"acme/web"}))

		reopened := NewFilePersister(path)
		a, err := reopened.Load(ctx, "a")
		require.NoError(t, err)
		b, err := reopened.Load(ctx, "b")
		require.NoError(t, err)

		assert.Equal(t, []string{"acme/web"}, a)
		assert.Equal(t, []string{"other/repo"}, b)
	})

	t.Run("writes the browser storage envelope", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "selection.json")
		p := NewFilePersister(path)

		require.NoError(t, p.Save(ctx, DefaultKey, nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `{"github-utils:pull-requests-storage":{"state":{"repositories":[]},"version":0}}`, string(data))
	})

	t.Run("rejects a corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "selection.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		p := NewFilePersister(path)

		_, err := p.Load(ctx, DefaultKey)

		assert.ErrorContains(t, err, "failed to decode")
	})

	t.Run("backs a store across restarts", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "selection.json")

		s, err := New(ctx, NewFilePersister(path), DefaultKey)
		require.NoError(t, err)
		require.NoError(t, s.Add(ctx, "acme/api"))
		require.NoError(t, s.Add(ctx, "acme/web"))
		require.NoError(t, s.Remove(ctx, "acme/api"))

		restarted, err := New(ctx, NewFilePersister(path), DefaultKey)
		require.NoError(t, err)
		assert.Equal(t, []string{"acme/web"}, restarted.Repositories())
	})
}
