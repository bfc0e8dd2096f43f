package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anime-shed/ui-critic-go/internal/analyzer"
	"github.com/anime-shed/ui-critic-go/internal/config"
	"github.com/anime-shed/ui-critic-go/internal/cropper"
	"github.com/anime-shed/ui-critic-go/internal/factory"
	"github.com/anime-shed/ui-critic-go/internal/logger"
	"github.com/anime-shed/ui-critic-go/internal/observer"
	"github.com/anime-shed/ui-critic-go/internal/service"
	"github.com/anime-shed/ui-critic-go/internal/storage"
	"github.com/anime-shed/ui-critic-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	uploads         storage.UploadStore
	crops           storage.CropStore
	critic          analyzer.Critic
	metrics         *observer.MetricsObserver
	analysisService service.AnalysisService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	return newContainer(ctx, cfg, nil)
}

// NewContainerWithCritic builds the graph around the given critic instead of the
// configured model client.
func NewContainerWithCritic(ctx context.Context, cfg *config.Config, critic analyzer.Critic) (*Container, error) {
	return newContainer(ctx, cfg, critic)
}

func newContainer(ctx context.Context, cfg *config.Config, critic analyzer.Critic) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	components := factory.NewComponentFactory(cfg)

	uploads, err := storage.NewTempUploadStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload store: %w", err)
	}

	crops, err := components.CropStoreFactory.CreateCropStore(ctx, cfg.CropStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create crop store: %w", err)
	}

	if critic == nil {
		critic = components.CriticFactory.CreateCritic()
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	analysisService := service.NewAnalysisService(uploads, critic, cropper.New(crops), events, cfg.ModelTimeout)
	handler := transport.NewHandler(analysisService, metrics, cfg)

	return &Container{
		config:          cfg,
		uploads:         uploads,
		crops:           crops,
		critic:          critic,
		metrics:         metrics,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Metrics returns the analysis counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}
