package main

import (
	"context"
	"fmt"

	"github.com/autoledger/autoledger/internal/accounts"
	"github.com/autoledger/autoledger/internal/cache"
	"github.com/autoledger/autoledger/internal/config"
	"github.com/autoledger/autoledger/internal/discovery"
	"github.com/autoledger/autoledger/internal/predict"
	"github.com/autoledger/autoledger/internal/service"
	"github.com/autoledger/autoledger/internal/storage"
	"github.com/autoledger/autoledger/internal/verb"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// engineDeps bundles the constructed learning components behind one
// storage handle.
type engineDeps struct {
	store      service.Storage
	cache      *cache.PatternCache
	classifier *accounts.Classifier
	extractor  *verb.Extractor
	discovery  *discovery.Engine
	predictor  *predict.Predictor
}

// initEngine wires storage, classifier, extractor, cache, discovery, and
// predictor, warming the cache for configured tenants.
func initEngine(ctx context.Context) (*engineDeps, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	extractor := verb.NewExtractor()
	classifier := accounts.NewClassifier(store)
	patternCache := cache.New(store, config.SnapshotDir())

	if tenants := config.WarmTenants(); len(tenants) > 0 {
		if err := patternCache.Warm(ctx, tenants); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to warm pattern cache: %w", err)
		}
	}

	return &engineDeps{
		store:      store,
		cache:      patternCache,
		classifier: classifier,
		extractor:  extractor,
		discovery:  discovery.NewEngine(store, classifier, extractor, patternCache),
		predictor:  predict.NewPredictor(patternCache, classifier, extractor),
	}, nil
}

// Close releases the underlying storage handle.
func (d *engineDeps) Close() error {
	return d.store.Close()
}
