package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/documentviewer/internal/adapters/driven/config/file"
	"github.com/custodia-labs/documentviewer/internal/adapters/driven/convert/office"
	"github.com/custodia-labs/documentviewer/internal/adapters/driven/convert/pdf"
	"github.com/custodia-labs/documentviewer/internal/adapters/driven/fingerprint"
	"github.com/custodia-labs/documentviewer/internal/adapters/driven/index"
	"github.com/custodia-labs/documentviewer/internal/adapters/driven/queue/redis"
	"github.com/custodia-labs/documentviewer/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/documentviewer/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/documentviewer/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/documentviewer/internal/adapters/driving/cli"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driven"
	"github.com/custodia-labs/documentviewer/internal/core/services"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// Queue backends selectable with queue.backend.
const (
	queueMemory = "memory"
	queueRedis  = "redis"
)

const defaultHTTPAddr = ":8080"

// build wires the stores, converters and services for a config directory.
func build(configDir string) (*cli.Services, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		return nil, fmt.Errorf("sqlite store: %w", err)
	}

	artifacts := filesystem.NewArtifactStoreFactory(store.ArtifactStore())

	pdfConverter := pdf.New(nil)
	registry := services.NewFormatRegistry(pdfConverter, office.New(pdfConverter))

	hasher := fingerprint.New()
	indexer := index.New()
	locks := services.NewKeyLock()

	settings := services.NewSettingsService(configStore, store.DocumentStore(), store.MetadataStore(), locks)
	if err := settings.Global().Validate(); err != nil {
		logger.Warn("settings: %v", err)
	}

	queue, err := openQueue(settings)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	converter := services.NewConverterService(
		store.DocumentStore(),
		store.MetadataStore(),
		artifacts,
		registry,
		hasher,
		indexer,
		locks,
	)
	dispatcher := services.NewDispatcher(store.DocumentStore(), settings, registry, queue, converter)
	workers := services.NewWorkerPool(settings.WorkerConfig(), queue, converter)
	documents := services.NewDocumentService(
		store.DocumentStore(),
		artifacts,
		hasher,
		indexer,
		converter,
		dispatcher,
		settings,
	)

	return &cli.Services{
		Documents:  documents,
		Converter:  converter,
		Settings:   settings,
		Dispatcher: dispatcher,
		Workers:    workers,
		HTTPAddr:   settings.String(services.KeyHTTPAddr, defaultHTTPAddr),
		InboxDir:   settings.String(services.KeyWatchDir, ""),
		Close: func() error {
			return errors.Join(queue.Close(), store.Close())
		},
	}, nil
}

// openQueue selects the job queue backend from configuration.
func openQueue(settings *services.SettingsService) (driven.JobQueue, error) {
	backend := settings.String(services.KeyQueueBackend, queueMemory)
	switch backend {
	case queueMemory:
		return memory.NewJobQueue(settings.WorkerConfig().QueueSize), nil
	case queueRedis:
		queue, err := redis.NewJobQueue(redis.Config{
			Addr: settings.String(services.KeyQueueRedisAddr, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("redis queue: %w", err)
		}
		return queue, nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", backend)
	}
}
