package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	cfgfile "github.com/docent-labs/docent-cli/internal/adapters/driven/config/file"
)

// secretKeys are the configuration keys holding credentials. They are
// entered without echo and shown masked.
var secretKeys = map[string]bool{
	cfgfile.KeyGeminiAPIKey:  true,
	cfgfile.KeyOpenAIAPIKey:  true,
	cfgfile.KeyElasticAPIKey: true,
	cfgfile.KeyDriveToken:    true,
	cfgfile.KeyGitHubToken:   true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage docent configuration",
	Long: `View and change configuration: model provider, API keys, channel
endpoints and default chat channels. Values persist to the TOML file
under ~/.docent.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value by dotted key, for example:

  docent config set model.provider gemini
  docent config set cloud.endpoint https://search.example.com
  docent config set chat.channels cloud,local`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Set a credential without echoing it",
	Long: `Prompts for a secret value with terminal echo disabled and stores it.

Recognised credential keys:
  model.gemini_api_key   Gemini API key
  model.openai_api_key   OpenAI-compatible API key
  cloud.api_key          Cloud index API key
  drive.token            Google Drive OAuth token
  github.token           GitHub personal access token`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Configuration")
	cmd.Println("=============")
	cmd.Printf("File: %s\n\n", configStore.Path())

	cmd.Println("[Model]")
	printConfigValue(cmd, "Provider", cfgfile.KeyModelProvider)
	printConfigValue(cmd, "Model", cfgfile.KeyModelName)
	printConfigSecret(cmd, "Gemini API key", cfgfile.KeyGeminiAPIKey)
	printConfigSecret(cmd, "OpenAI API key", cfgfile.KeyOpenAIAPIKey)
	cmd.Println()

	cmd.Println("[Cloud]")
	printConfigValue(cmd, "Endpoint", cfgfile.KeyElasticEndpoint)
	printConfigValue(cmd, "Index", cfgfile.KeyElasticIndex)
	printConfigSecret(cmd, "API key", cfgfile.KeyElasticAPIKey)
	cmd.Println()

	cmd.Println("[Local]")
	printConfigValue(cmd, "Root", cfgfile.KeyLocalRoot)
	cmd.Println()

	cmd.Println("[Drive]")
	printConfigSecret(cmd, "Token", cfgfile.KeyDriveToken)
	printConfigValue(cmd, "Folder", cfgfile.KeyDriveFolder)
	cmd.Println()

	cmd.Println("[GitHub]")
	printConfigSecret(cmd, "Token", cfgfile.KeyGitHubToken)
	printConfigValue(cmd, "Owner", cfgfile.KeyGitHubOwner)
	printConfigValue(cmd, "Repo", cfgfile.KeyGitHubRepo)
	printConfigValue(cmd, "Branch", cfgfile.KeyGitHubBranch)
	cmd.Println()

	cmd.Println("[Chat defaults]")
	channels := configStore.GetStringSlice(cfgfile.KeyChannels)
	if len(channels) == 0 {
		cmd.Println("  Channels: cloud, local (default)")
	} else {
		cmd.Printf("  Channels: %s\n", strings.Join(channels, ", "))
	}
	cmd.Printf("  Web grounding: %t\n", configStore.GetBool(cfgfile.KeyGroundingWeb))
	cmd.Printf("  Maps grounding: %t\n", configStore.GetBool(cfgfile.KeyGroundingMaps))

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, value := args[0], args[1]
	if secretKeys[key] {
		return fmt.Errorf("%q is a credential; use 'docent config set-key %s'", key, key)
	}

	var stored any = value
	if key == cfgfile.KeyChannels {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		stored = parts
	}

	if err := configStore.Set(key, stored); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %v\n", key, stored)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	if !secretKeys[key] {
		return fmt.Errorf("unknown credential key %q", key)
	}

	cmd.Printf("Enter value for %s: ", key)
	value := readPassword()
	cmd.Println()
	if value == "" {
		return errors.New("empty value")
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	cmd.Printf("Stored %s (%s)\n", key, maskSecret(value))
	return nil
}

func printConfigValue(cmd *cobra.Command, label, key string) {
	value := configStore.GetString(key)
	if value == "" {
		value = "(not set)"
	}
	cmd.Printf("  %s: %s\n", label, value)
}

func printConfigSecret(cmd *cobra.Command, label, key string) {
	value := configStore.GetString(key)
	if value == "" {
		cmd.Printf("  %s: (not set)\n", label)
		return
	}
	cmd.Printf("  %s: %s\n", label, maskSecret(value))
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Read without echo when attached to a terminal.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input.
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
