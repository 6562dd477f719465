package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

func newTestConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore(t *testing.T) {
	t.Run("creates store in given directory", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewConfigStore(dir)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	})

	t.Run("implements ConfigStore interface", func(t *testing.T) {
		var _ driven.ConfigStore = (*ConfigStore)(nil)
	})
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set(KeyModelProvider, "gemini"))

	val, ok := store.Get(KeyModelProvider)
	require.True(t, ok)
	assert.Equal(t, "gemini", val)
	assert.Equal(t, "gemini", store.GetString(KeyModelProvider))
}

func TestConfigStore_GetMissingKey(t *testing.T) {
	store := newTestConfigStore(t)

	_, ok := store.Get("nope")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("nope"))
	assert.Zero(t, store.GetInt("nope"))
	assert.False(t, store.GetBool("nope"))
	assert.Nil(t, store.GetStringSlice("nope"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("count", 42))
	require.NoError(t, store.Set(KeyGroundingWeb, true))
	require.NoError(t, store.Set(KeyChannels, []string{"cloud", "local"}))

	assert.Equal(t, 42, store.GetInt("count"))
	assert.True(t, store.GetBool(KeyGroundingWeb))
	assert.Equal(t, []string{"cloud", "local"}, store.GetStringSlice(KeyChannels))
}

func TestConfigStore_WrongTypeReturnsZero(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set("str", "hello"))

	assert.Zero(t, store.GetInt("str"))
	assert.False(t, store.GetBool("str"))
	assert.Nil(t, store.GetStringSlice("str"))
}

func TestConfigStore_PersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	first, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(KeyElasticIndex, "documents"))
	require.NoError(t, first.Set(KeyGroundingWeb, true))

	second, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "documents", second.GetString(KeyElasticIndex))
	assert.True(t, second.GetBool(KeyGroundingWeb))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	raw := "[model]\nprovider = \"openai\"\n\n[github]\nowner = \"acme\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(raw), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString(KeyModelProvider))
	assert.Equal(t, "acme", store.GetString(KeyGitHubOwner))
}

func TestConfigStore_FileHasRestrictedPermissions(t *testing.T) {
	store := newTestConfigStore(t)

	require.NoError(t, store.Set(KeyGeminiAPIKey, "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
