package submission

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileIdentityStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := NewFileIdentityStore(filepath.Join(t.TempDir(), "identity.json"))
		want := Student{ID: "s-1", Name: "Ada", Token: "tok"}

		require.NoError(t, store.Save(want))
		got, err := store.Load(ctx)

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing file", func(t *testing.T) {
		store := NewFileIdentityStore(filepath.Join(t.TempDir(), "missing.json"))

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, ErrNotSignedIn)
	})

	t.Run("missing id", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "identity.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"name":"Ada"}`), 0o600))

		_, err := NewFileIdentityStore(path).Load(ctx)
		assert.ErrorIs(t, err, ErrNotSignedIn)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "identity.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

		_, err := NewFileIdentityStore(path).Load(ctx)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotSignedIn)
	})
}

func TestStaticIdentityStore(t *testing.T) {
	_, err := StaticIdentityStore{}.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)

	s, err := StaticIdentityStore{Student: Student{ID: "s-1"}}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s-1", s.ID)
}
