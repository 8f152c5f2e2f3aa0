// Command docchat indexes documents and answers questions about them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/mongo"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docchat/internal/adapters/driving/cli"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/services"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/normalisers"
	"github.com/custodia-labs/docchat/internal/postprocessors"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// store is implemented by every persistent storage backend.
type store interface {
	DocumentStore() driven.DocumentStore
	ChatStore() driven.ChatStore
	UserStore() driven.UserStore
	Close() error
}

// bootstrap wires configuration, storage, the LLM client and the services.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(ai.DefaultPingTimeout))
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	st, err := openStore(settings.Storage, opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(subdir(opts.ConfigDir, "prompts"))
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("llm: %v; chat replies are unavailable", err)
		llm = nil
	} else if llm == nil {
		logger.Debug("llm: provider %s is not configured", settings.LLM.Provider)
	}

	docStore := st.DocumentStore()
	documents := services.NewDocumentService(docStore, normalisers.NewDefaultRegistry(), postprocessors.NewDefaultBuilder(),
		services.WithMaxUploadBytes(settings.Server.MaxUploadBytes),
		services.WithPipelineSelector(settings.Indexing.Profile.Selector()))
	retrieval := services.NewRetrievalService(docStore, settings.Retrieval)
	chats := services.NewChatService(st.ChatStore(), llm, retrieval,
		services.WithPromptStore(prompts),
		services.WithChatOptions(driven.ChatOptions{
			MaxTokens:   settings.LLM.MaxTokens,
			Temperature: settings.LLM.Temperature,
		}))

	return &cli.Services{
		Documents: documents,
		Retrieval: retrieval,
		Chats:     chats,
		Identity:  services.NewIdentityService(st.UserStore()),
		Settings:  settingsService,
		Server:    settings.Server,
		Close: func() error {
			var errs []error
			if llm != nil {
				errs = append(errs, llm.Close())
			}
			errs = append(errs, st.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func openStore(settings domain.StorageSettings, configDir string) (store, error) {
	switch settings.Backend {
	case domain.StorageMongo:
		s, err := mongo.NewStore(settings.MongoURI, settings.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("opening mongo store: %w", err)
		}
		logger.Debug("storage: mongo database %s", settings.MongoDatabase)
		return s, nil
	default:
		dataDir := settings.DataDir
		if dataDir == "" {
			dataDir = subdir(configDir, "data")
		}
		s, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Debug("storage: sqlite %s", s.Path())
		return s, nil
	}
}

// subdir returns name inside dir, or empty when dir is unset so the
// adapters use their defaults under ~/.docchat.
func subdir(dir, name string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}
