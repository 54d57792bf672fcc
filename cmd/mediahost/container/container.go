package container

import (
	"fmt"

	"github.com/bergaker/mediahost/cmd/mediahost/handlers"
	"github.com/bergaker/mediahost/cmd/mediahost/repository"
	"github.com/bergaker/mediahost/cmd/mediahost/service"
	"github.com/bergaker/mediahost/common/bootstrap"
)

// Container holds all initialized services and handlers (singleton
// pattern - everything is created once at startup)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories
	MetadataRepo *repository.MetadataRepository

	// Services
	Allocator *service.FilenameAllocator
	Processor service.MediaProcessor
	Ingest    *service.IngestService
	Resolver  *service.ResolverService

	// Handlers
	UploadHandler *handlers.UploadHandler
	AssetHandler  *handlers.AssetHandler
}

// NewContainer initializes all services and handlers once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Initialize repositories
	metadataRepo := repository.NewMetadataRepository(components.Cache, cfg.Cache.DefaultTTL)

	// Initialize services (bottom-up: dependencies first)
	allocator := service.NewFilenameAllocator(components.Logger)
	processor := service.NewFFmpegProcessor(cfg.FFmpeg, components.Logger)
	ingest := service.NewIngestService(processor, metadataRepo, cfg.FFmpeg.PreviewEnabled, components.Logger)
	resolver := service.NewResolverService(cfg.Storage, metadataRepo, components.Logger)

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(components, allocator, ingest)
	assetHandler, err := handlers.NewAssetHandler(components, resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize asset handler: %w", err)
	}

	return &Container{
		Components:    components,
		MetadataRepo:  metadataRepo,
		Allocator:     allocator,
		Processor:     processor,
		Ingest:        ingest,
		Resolver:      resolver,
		UploadHandler: uploadHandler,
		AssetHandler:  assetHandler,
	}, nil
}
