package factory

import (
	"context"
	"fmt"

	"github.com/anime-shed/ui-critic-go/internal/analyzer"
	"github.com/anime-shed/ui-critic-go/internal/config"
	"github.com/anime-shed/ui-critic-go/internal/storage"
)

// CropStoreFactory creates the crop store selected by configuration
type CropStoreFactory interface {
	CreateCropStore(ctx context.Context, storeType string) (storage.CropStore, error)
}

// CriticFactory creates model critics
type CriticFactory interface {
	CreateCritic() analyzer.Critic
}

// cropStoreFactory implements CropStoreFactory
type cropStoreFactory struct {
	cfg *config.Config
}

// NewCropStoreFactory creates a new crop store factory
func NewCropStoreFactory(cfg *config.Config) CropStoreFactory {
	return &cropStoreFactory{cfg: cfg}
}

// CreateCropStore creates a crop store for the given backend
func (f *cropStoreFactory) CreateCropStore(ctx context.Context, storeType string) (storage.CropStore, error) {
	switch storeType {
	case config.CropStoreLocal:
		store, err := storage.NewLocalCropStore(f.cfg.CropsDir, f.cfg.CropsURLPrefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.CropStoreMinio:
		m := f.cfg.Minio
		store, err := storage.NewMinioCropStore(ctx, storage.MinioOptions{
			Endpoint:      m.Endpoint,
			Region:        m.Region,
			Bucket:        m.Bucket,
			AccessKey:     m.AccessKey,
			SecretKey:     m.SecretKey,
			UseSSL:        m.UseSSL,
			PublicBaseURL: m.PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to minio: %w", err)
		}
		return store, nil
	case config.CropStoreAzure:
		a := f.cfg.Azure
		store, err := storage.NewAzureCropStore(ctx, a.AccountName, a.AccountKey, a.Container, a.ServiceURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to azure blob storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported crop store: %s", storeType)
	}
}

// criticFactory implements CriticFactory
type criticFactory struct {
	model config.ModelConfig
}

// NewCriticFactory creates a new critic factory
func NewCriticFactory(model config.ModelConfig) CriticFactory {
	return &criticFactory{model: model}
}

// CreateCritic creates an OpenAI-compatible critic for the configured model
func (f *criticFactory) CreateCritic() analyzer.Critic {
	return analyzer.NewOpenAICritic(analyzer.OpenAICriticOptions{
		APIKey:  f.model.APIKey,
		BaseURL: f.model.BaseURL,
		Model:   f.model.Name,
	})
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	CropStoreFactory CropStoreFactory
	CriticFactory    CriticFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		CropStoreFactory: NewCropStoreFactory(cfg),
		CriticFactory:    NewCriticFactory(cfg.Model),
	}
}
