package di

import (
	"time"

	"go.uber.org/dig"

	"github.com/mikey/sentence-assistant/internal/config"
	"github.com/mikey/sentence-assistant/internal/core"
	"github.com/mikey/sentence-assistant/internal/factory"
	"github.com/mikey/sentence-assistant/internal/logging"
	"github.com/mikey/sentence-assistant/internal/ports"
	"github.com/mikey/sentence-assistant/internal/sharelink"
	"github.com/mikey/sentence-assistant/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register cache TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register history repository
	if err := container.Provide(func(f *factory.HistoryFactory) (core.HistoryRepository, error) {
		return f.CreateHistoryRepository()
	}); err != nil {
		return nil, err
	}

	// Register assistant service
	if err := container.Provide(core.NewAssistantService); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *core.AssistantService) core.Assistant { return s }); err != nil {
		return nil, err
	}

	// Register front ends
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) ([]ports.Frontend, error) {
		return f.CreateFrontends()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCommon registers the factories and text helpers both binaries share.
// A *config.Config and *zap.Logger must already be provided.
func provideCommon(container *dig.Container) error {
	providers := []any{
		factory.NewLLMFactory,
		factory.NewCacheFactory,
		factory.NewHistoryFactory,
		factory.NewTextFactory,
		func(f *factory.TextFactory) *utils.TextProcessor { return f.CreateTextProcessor() },
		func(f *factory.TextFactory) (*utils.Repairer, error) { return f.CreateRepairer() },
		func(f *factory.TextFactory) *sharelink.Cache { return f.CreateShareCache() },
		func(f *factory.LLMFactory) (core.LLMClient, error) { return f.CreateLLMClient() },
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return err
		}
	}
	return nil
}
