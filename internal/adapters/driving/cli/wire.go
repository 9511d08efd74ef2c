package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/docrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/core/services"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/normalisers"
	"github.com/custodia-labs/docrag/internal/postprocessors"
)

var (
	// pipelineConfig is read from the config file alongside the settings.
	pipelineConfig domain.PipelineConfig

	// closers release wired resources in reverse order.
	closers []func()
)

// baseDir returns the configuration directory, ~/.docrag by default.
func baseDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".docrag"), nil
}

// ensureSettings builds the settings service over config.toml.
func ensureSettings() error {
	if settingsService != nil {
		return nil
	}
	dir, err := baseDir()
	if err != nil {
		return err
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	svc := services.NewSettingsService(store, ai.NewConfigValidator())
	pipelineConfig = svc.GetPipelineConfig()
	settingsService = svc
	return nil
}

// ensureServices builds the store, providers and core services from the
// saved settings. Overrides adjust the settings for this run only.
func ensureServices(ctx context.Context, overrides ...func(*domain.AppSettings)) error {
	if searchService != nil {
		return nil
	}
	if err := ensureSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	for _, override := range overrides {
		override(settings)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w. Run 'docrag settings' to review configuration", err)
	}

	dir, err := baseDir()
	if err != nil {
		return err
	}

	aiResult, err := ai.Init(settings, cacheDir(settings, dir))
	if err != nil {
		return err
	}
	closers = append(closers, aiResult.Close)
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	store, err := openStore(ctx, settings, dir, aiResult.EmbeddingService.Dimensions())
	if err != nil {
		return fmt.Errorf("open %s store: %w", settings.Store.Backend, err)
	}
	closers = append(closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store: %v", err)
		}
	})

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return err
	}

	return wire(store, aiResult.EmbeddingService, aiResult.LLMService, settings, prompts)
}

// wire constructs the core services over the given adapters.
func wire(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	settings *domain.AppSettings,
	prompts driven.PromptStore,
) error {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(pipelineConfig)
	if err != nil {
		return err
	}

	ingestService = services.NewIngestService(
		store, embedder, normalisers.DefaultRegistry(), pipeline,
		services.WithWorkers(settings.Ingest.Workers),
		services.WithRateLimit(settings.Ingest.RatePerSecond),
	)

	search := services.NewSearchService(store, embedder, settings.Search)
	answers := services.NewAnswerService(search, llm, settings.LLM)
	answers.SetPromptStore(prompts)

	searchService = search
	answerService = answers
	documentService = services.NewDocumentService(store)

	chatOpts := domain.SearchOptions{
		Limit:       settings.Search.Limit,
		MaxDistance: settings.Search.MaxDistance,
	}
	newChatSession = func() driving.ChatSession {
		chat := services.NewChatSession(answers, llm, chatOpts)
		chat.SetPromptStore(prompts)
		return chat
	}
	return nil
}

func openStore(ctx context.Context, settings *domain.AppSettings, dir string, dims int) (driven.ChunkStore, error) {
	switch settings.Store.Backend {
	case domain.StoreBackendMemory:
		return memory.NewChunkStore(settings.Search.Metric), nil
	case domain.StoreBackendPostgres:
		store, err := postgres.NewStore(ctx, settings.Store.DSN, dims, postgres.WithMetric(settings.Search.Metric))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := sqlite.NewStore(dataDir(settings, dir), sqlite.WithMetric(settings.Search.Metric))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func dataDir(settings *domain.AppSettings, dir string) string {
	if settings.Store.DataDir != "" {
		return settings.Store.DataDir
	}
	return filepath.Join(dir, "data")
}

// cacheDir returns where embeddings are cached, or "" when caching is off.
// In-memory runs never touch the disk.
func cacheDir(settings *domain.AppSettings, dir string) string {
	if !settings.Cache.Enabled || settings.Store.Backend == domain.StoreBackendMemory {
		return ""
	}
	if settings.Cache.Dir != "" {
		return settings.Cache.Dir
	}
	return filepath.Join(dataDir(settings, dir), "cache")
}

// closeServices releases everything opened by ensureServices.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
}
