// Command docent is a conversational assistant over your document
// sources. It wires the configured adapters into the core services and
// hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/docent-labs/docent-cli/internal/adapters/driven/channel/drive"
	"github.com/docent-labs/docent-cli/internal/adapters/driven/channel/elastic"
	githubchan "github.com/docent-labs/docent-cli/internal/adapters/driven/channel/github"
	"github.com/docent-labs/docent-cli/internal/adapters/driven/channel/local"
	cfgfile "github.com/docent-labs/docent-cli/internal/adapters/driven/config/file"
	"github.com/docent-labs/docent-cli/internal/adapters/driven/model/gemini"
	"github.com/docent-labs/docent-cli/internal/adapters/driven/model/openai"
	"github.com/docent-labs/docent-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docent-labs/docent-cli/internal/adapters/driving/cli"
	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
	"github.com/docent-labs/docent-cli/internal/core/services"
	"github.com/docent-labs/docent-cli/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := cfgfile.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "docent: open config: %v\n", err)
		os.Exit(1)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "docent: open data store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cli.SetServices(buildServices(ctx, cfg, store))

	if err := cli.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// buildServices assembles the service graph from whatever the config
// provides. Missing pieces leave the dependent services nil; each
// command reports its own "not configured" error, so docent config
// works on a fresh install.
func buildServices(ctx context.Context, cfg *cfgfile.ConfigStore, store *sqlite.Store) cli.Services {
	model := buildModel(cfg)

	channels, files := buildChannels(ctx, cfg)
	retrieval := services.NewRetrievalService(channels, model)

	chatStore := store.ChatStore()
	editStore := store.EditStore()

	chatSvc := services.NewChatService(chatStore, defaultChannels(cfg), defaultGrounding(cfg))
	fileSvc := services.NewFileService(files, editStore)

	svcs := cli.Services{
		Chat:   chatSvc,
		Search: retrieval,
		File:   fileSvc,
		Config: cfg,
	}

	// Conversational turns need a model; retrieval and browsing do not.
	if model != nil {
		suggestionSvc := services.NewSuggestionService(retrieval, model, files, editStore, chatStore)
		svcs.Suggestion = suggestionSvc
		svcs.Assistant = services.NewAssistantService(
			chatStore,
			services.NewIntentRouter(model),
			retrieval,
			services.NewAnswerStreamer(model),
			suggestionSvc,
		)
	}

	return svcs
}

// buildModel constructs the model adapter named by model.provider.
func buildModel(cfg *cfgfile.ConfigStore) driven.ModelService {
	provider := cfg.GetString(cfgfile.KeyModelProvider)
	name := cfg.GetString(cfgfile.KeyModelName)

	var (
		model driven.ModelService
		err   error
	)
	switch provider {
	case "gemini", "":
		apiKey := cfg.GetString(cfgfile.KeyGeminiAPIKey)
		if apiKey == "" {
			return nil
		}
		model, err = gemini.NewModelService(gemini.Config{APIKey: apiKey, Model: name})
	case "openai":
		apiKey := cfg.GetString(cfgfile.KeyOpenAIAPIKey)
		if apiKey == "" {
			return nil
		}
		model, err = openai.NewModelService(openai.Config{APIKey: apiKey, Model: name})
	default:
		logger.Warn("unknown model provider %q, conversational features disabled", provider)
		return nil
	}
	if err != nil {
		logger.Warn("model setup failed: %v", err)
		return nil
	}

	if aware, ok := model.(driven.PromptStoreAware); ok {
		if prompts, perr := cfgfile.NewPromptStore(""); perr == nil {
			aware.SetPromptStore(prompts)
		}
	}
	return model
}

// buildChannels constructs every channel the config describes. A channel
// that fails to initialise is skipped with a warning rather than taking
// the whole CLI down.
func buildChannels(
	ctx context.Context, cfg *cfgfile.ConfigStore,
) ([]driven.SearchChannel, map[domain.Channel]driven.FileStore) {
	var channels []driven.SearchChannel
	files := make(map[domain.Channel]driven.FileStore)

	if endpoint := cfg.GetString(cfgfile.KeyElasticEndpoint); endpoint != "" {
		ch, err := elastic.NewChannel(elastic.Config{
			Endpoint: endpoint,
			APIKey:   cfg.GetString(cfgfile.KeyElasticAPIKey),
			Index:    cfg.GetString(cfgfile.KeyElasticIndex),
		})
		if err != nil {
			logger.Warn("cloud channel unavailable: %v", err)
		} else {
			channels = append(channels, ch)
			files[domain.ChannelCloud] = ch
		}
	}

	if root := cfg.GetString(cfgfile.KeyLocalRoot); root != "" {
		ch, err := local.NewChannel(root)
		if err != nil {
			logger.Warn("local channel unavailable: %v", err)
		} else {
			channels = append(channels, ch)
			files[domain.ChannelLocal] = ch
		}
	}

	if token := cfg.GetString(cfgfile.KeyDriveToken); token != "" {
		ch, err := drive.NewChannel(ctx, drive.Config{
			AccessToken: token,
			FolderID:    cfg.GetString(cfgfile.KeyDriveFolder),
		})
		if err != nil {
			logger.Warn("drive channel unavailable: %v", err)
		} else {
			channels = append(channels, ch)
			files[domain.ChannelDrive] = ch
		}
	}

	if token := cfg.GetString(cfgfile.KeyGitHubToken); token != "" {
		ch, err := githubchan.NewChannel(ctx, githubchan.Config{
			Token:  token,
			Owner:  cfg.GetString(cfgfile.KeyGitHubOwner),
			Repo:   cfg.GetString(cfgfile.KeyGitHubRepo),
			Branch: cfg.GetString(cfgfile.KeyGitHubBranch),
		})
		if err != nil {
			logger.Warn("github channel unavailable: %v", err)
		} else {
			channels = append(channels, ch)
			files[domain.ChannelGitHub] = ch
		}
	}

	return channels, files
}

// defaultChannels reads the channel set new chats start with.
func defaultChannels(cfg *cfgfile.ConfigStore) []domain.Channel {
	names := cfg.GetStringSlice(cfgfile.KeyChannels)
	if len(names) == 0 {
		return []domain.Channel{domain.ChannelCloud, domain.ChannelLocal}
	}

	var channels []domain.Channel
	for _, name := range names {
		ch := domain.Channel(name)
		if !ch.IsValid() {
			logger.Warn("ignoring unknown default channel %q", name)
			continue
		}
		channels = append(channels, ch)
	}
	return channels
}

// defaultGrounding reads the grounding defaults for new chats.
func defaultGrounding(cfg *cfgfile.ConfigStore) domain.GroundingOptions {
	return domain.GroundingOptions{
		WebSearch: cfg.GetBool(cfgfile.KeyGroundingWeb),
		Maps:      cfg.GetBool(cfgfile.KeyGroundingMaps),
	}
}
