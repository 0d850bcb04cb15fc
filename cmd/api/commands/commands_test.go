package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftshop/core/internal/adapters/repository"
	"github.com/craftshop/core/internal/domain/entities"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "json")
	t.Setenv("STORE_PATH", filepath.Join(dir, "crafts.json"))
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ENABLE_METRICS", "false")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCommand_JSON(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("CRAFTS_ASSIGN_IDS", "true")
	file := writeFile(t, dir, "seed.json", `[
		{"id": 3, "name": "Origami Crane", "image": "uploads/crane.png", "description": "Fold paper", "supplies": ["paper"]},
		{"name": "Kite", "image": "uploads/kite.png", "description": "Fly it", "supplies": []}
	]`)

	out, err := execute(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 crafts")

	crafts, err := repository.NewJSONFileStore(filepath.Join(dir, "crafts.json")).Load(t.Context())
	require.NoError(t, err)
	require.Len(t, crafts, 2)
	assert.Equal(t, "Origami Crane", crafts[0].Name)
	require.NotNil(t, crafts[1].ID)
	assert.Equal(t, int64(4), *crafts[1].ID)
}

func TestImportCommand_YAML(t *testing.T) {
	dir := setupEnv(t)
	file := writeFile(t, dir, "seed.yaml", `
- name: Paper Lantern
  image: uploads/lantern.png
  description: Cut and glue
  supplies:
    - paper
    - glue
`)

	_, err := execute(t, "import", file)
	require.NoError(t, err)

	crafts, err := repository.NewJSONFileStore(filepath.Join(dir, "crafts.json")).Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []entities.Craft{{
		Name:        "Paper Lantern",
		Image:       "uploads/lantern.png",
		Description: "Cut and glue",
		Supplies:    []string{"paper", "glue"},
	}}, crafts)
}

func TestImportCommand_RejectsInvalidCraft(t *testing.T) {
	dir := setupEnv(t)
	file := writeFile(t, dir, "seed.json", `[
		{"name": "ok", "image": "i", "description": "d", "supplies": []},
		{"name": "", "image": "i", "description": "d", "supplies": []}
	]`)

	_, err := execute(t, "import", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "craft 1")

	_, statErr := os.Stat(filepath.Join(dir, "crafts.json"))
	assert.True(t, os.IsNotExist(statErr), "nothing should be written")
}

func TestMigrateCommand_RequiresSQLStore(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sql store")
}

func TestMigrateCommand_SQLite(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_DSN", filepath.Join(dir, "crafts.db"))

	out, err := execute(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Migration up completed successfully")

	out, err = execute(t, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "No migrations to run")

	out, err = execute(t, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Current migration version: 1")

	out, err = execute(t, "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Migration down completed successfully")
}

func TestImportCommand_SQLiteAutoMigrates(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_DSN", filepath.Join(dir, "crafts.db"))
	file := writeFile(t, dir, "seed.json", `[{"name": "n", "image": "i", "description": "d", "supplies": ["x"]}]`)

	out, err := execute(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 crafts")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Crafts dev")
}

func TestImportFormat(t *testing.T) {
	assert.Equal(t, "yaml", importFormat("seed.yml", ""))
	assert.Equal(t, "yaml", importFormat("seed.YAML", ""))
	assert.Equal(t, "json", importFormat("seed.json", ""))
	assert.Equal(t, "json", importFormat("seed", ""))
	assert.Equal(t, "yaml", importFormat("seed.json", "YAML"))

	_, err := decodeCrafts([]byte("[]"), "toml")
	assert.Error(t, err)
}
