package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftshop/core/internal/domain/entities"
	"github.com/craftshop/core/internal/infrastructure/config"
	"github.com/craftshop/core/internal/infrastructure/database"
	"github.com/craftshop/core/internal/ports"
)

func sampleCrafts() []entities.Craft {
	return []entities.Craft{
		{
			ID:          entities.Int64Ptr(1),
			Name:        "Origami Crane",
			Image:       "uploads/crane.png",
			Description: "Fold paper",
			Supplies:    []string{"paper"},
		},
		{
			Name:        "Friendship Bracelet",
			Image:       "uploads/bracelet.png",
			Description: "Knot embroidery floss",
			Supplies:    []string{},
		},
		{
			ID:          entities.Int64Ptr(3),
			Name:        "Clay Pot",
			Image:       "uploads/pot.jpg",
			Description: "Pinch a pot",
			Supplies:    []string{"clay", "water"},
		},
	}
}

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()

	db, err := database.New(config.StoreConfig{
		Driver:          "sqlite",
		DSN:             "file:" + filepath.Join(t.TempDir(), "crafts.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mg, err := database.NewMigrator(db)
	require.NoError(t, err)
	_, err = mg.Up()
	require.NoError(t, err)

	return NewSQLStore(db)
}

// Every store implementation shares the same whole-collection contract.
func TestStores_Contract(t *testing.T) {
	stores := map[string]func(t *testing.T) ports.CraftStore{
		"json": func(t *testing.T) ports.CraftStore {
			return NewJSONFileStore(filepath.Join(t.TempDir(), "crafts.json"))
		},
		"memory": func(t *testing.T) ports.CraftStore {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) ports.CraftStore {
			return newSQLiteStore(t)
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			empty, err := store.Load(ctx)
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			want := sampleCrafts()
			require.NoError(t, store.Save(ctx, want))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("loaded crafts mismatch (-want +got):\n%s", diff)
			}

			require.NoError(t, store.Save(ctx, got[:1]))
			got, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Len(t, got, 1)
			assert.Equal(t, "Origami Crane", got[0].Name)
		})
	}
}

func TestJSONFileStore_MissingFileIsEmpty(t *testing.T) {
	store := NewJSONFileStore(filepath.Join(t.TempDir(), "nope", "crafts.json"))

	crafts, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, crafts)
}

func TestJSONFileStore_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crafts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse crafts file")
}

func TestJSONFileStore_WritesTwoSpaceIndent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crafts.json")
	store := NewJSONFileStore(path)

	require.NoError(t, store.Save(context.Background(), sampleCrafts()[1:2]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
  {
    "name": "Friendship Bracelet",
    "image": "uploads/bracelet.png",
    "description": "Knot embroidery floss",
    "supplies": []
  }
]`
	assert.Equal(t, want, string(data))
}

func TestJSONFileStore_SaveOfLoadKeepsContent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "crafts.json")
	store := NewJSONFileStore(path)
	require.NoError(t, store.Save(ctx, sampleCrafts()))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	crafts, err := store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, crafts))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestJSONFileStore_SaveKeepsFileMode(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "crafts.json")
	store := NewJSONFileStore(path)

	require.NoError(t, store.Save(ctx, sampleCrafts()[:1]))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, os.Chmod(path, 0o600))
	require.NoError(t, store.Save(ctx, sampleCrafts()))

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestJSONFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewJSONFileStore(filepath.Join(t.TempDir(), "crafts.json"))
	assert.ErrorIs(t, store.Save(ctx, sampleCrafts()), context.Canceled)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(sampleCrafts()...)

	crafts, err := store.Load(ctx)
	require.NoError(t, err)
	crafts[0].Supplies[0] = "cardboard"
	*crafts[0].ID = 99

	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "paper", again[0].Supplies[0])
	assert.Equal(t, int64(1), *again[0].ID)
}
