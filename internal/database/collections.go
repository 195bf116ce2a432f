package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/pepe57/wexcommerce/internal/models"
)

// EnsureCollection guarantees that the model's collection exists,
// creating it when absent. When createIndexes is true the model's
// standard indexes are ensured afterwards regardless of whether the
// collection pre-existed; index creation is idempotent at the driver
// level.
func (m *Manager) EnsureCollection(ctx context.Context, model models.Model, createIndexes bool) error {
	if err := validateCollectionName(model.Collection); err != nil {
		return err
	}

	client, err := m.clientHandle()
	if err != nil {
		return err
	}

	listCtx, cancel := m.queryContext(ctx)
	defer cancel()

	names, err := m.deps.ListCollectionNames(listCtx, client, m.cfg.Database,
		bson.M{"name": model.Collection})
	if err != nil {
		m.logger.Error("failed to list collections",
			zap.String("collection", model.Collection), zap.Error(err))
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(names) == 0 {
		if err := m.deps.CreateCollection(listCtx, client, m.cfg.Database, model.Collection); err != nil {
			m.logger.Error("failed to create collection",
				zap.String("collection", model.Collection), zap.Error(err))
			return fmt.Errorf("failed to create collection %s: %w", model.Collection, err)
		}
		m.logger.Info("created collection", zap.String("collection", model.Collection))
	}

	if !createIndexes {
		return nil
	}

	return m.EnsureIndexes(ctx, model)
}
