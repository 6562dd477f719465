package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgfile "github.com/docent-labs/docent-cli/internal/adapters/driven/config/file"
)

func TestConfigCmd_ShowMasksSecrets(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	store := newMockConfigStore()
	store.values[cfgfile.KeyModelProvider] = "gemini"
	store.values[cfgfile.KeyGeminiAPIKey] = "AIzaSyFakeKeyForTesting"
	configStore = store

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "gemini")
	assert.Contains(t, buf.String(), "AIza...ting")
	assert.NotContains(t, buf.String(), "AIzaSyFakeKeyForTesting")
}

func TestConfigCmd_Set(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	store := newMockConfigStore()
	configStore = store

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "model.provider", "openai"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "openai", store.values[cfgfile.KeyModelProvider])
}

func TestConfigCmd_SetChannelsParsesList(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	store := newMockConfigStore()
	configStore = store

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "chat.channels", "cloud, local ,github"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"cloud", "local", "github"}, store.values[cfgfile.KeyChannels])
}

func TestConfigCmd_SetRefusesSecrets(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "set", "model.gemini_api_key", "leaky"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "set-key")
}

func TestConfigCmd_SetKeyRejectsUnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "set-key", "model.provider"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown credential key")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "abcd...wxyz", maskSecret("abcd123456wxyz"))
}
