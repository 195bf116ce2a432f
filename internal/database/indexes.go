package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/pepe57/wexcommerce/internal/models"
)

// indexNotFoundCode is the server error code for "index not found".
const indexNotFoundCode = 27

// EnsureIndexes creates the model's standard indexes. Creating an
// index that already exists with identical options is a no-op
// server-side, so this is safe to run on every startup.
func (m *Manager) EnsureIndexes(ctx context.Context, model models.Model) error {
	if len(model.Indexes) == 0 {
		return nil
	}

	client, err := m.clientHandle()
	if err != nil {
		return err
	}

	ctx, cancel := m.queryContext(ctx)
	defer cancel()

	if err := m.deps.CreateIndexes(ctx, client, m.cfg.Database, model.Collection, model.Indexes); err != nil {
		m.logger.Error("failed to create indexes",
			zap.String("collection", model.Collection), zap.Error(err))
		return fmt.Errorf("failed to create indexes on %s: %w", model.Collection, err)
	}

	return nil
}

// EnsureTextIndex converges the model's full-text index. Text indexes
// cannot be altered in place, so an existing index of the desired name
// is dropped before recreation. Full-text search is an enhancement
// rather than a correctness requirement: every failure here is logged
// and swallowed so it never aborts the larger initialization.
func (m *Manager) EnsureTextIndex(ctx context.Context, model models.Model) {
	if model.Text == nil {
		return
	}

	if err := m.recreateTextIndex(ctx, model); err != nil {
		m.logger.Error("Failed to create text index:",
			zap.String("collection", model.Collection),
			zap.String("index", model.Text.Name),
			zap.Error(err))
	}
}

func (m *Manager) recreateTextIndex(ctx context.Context, model models.Model) error {
	client, err := m.clientHandle()
	if err != nil {
		return err
	}

	ctx, cancel := m.queryContext(ctx)
	defer cancel()

	indexes, err := m.deps.ListIndexes(ctx, client, m.cfg.Database, model.Collection)
	if err != nil {
		return err
	}

	if findIndex(indexes, model.Text.Name) != nil {
		if err := m.deps.DropIndex(ctx, client, m.cfg.Database, model.Collection, model.Text.Name); err != nil {
			return err
		}
	}

	return m.deps.CreateIndexes(ctx, client, m.cfg.Database, model.Collection,
		[]mongo.IndexModel{model.Text.IndexModel()})
}

// CheckAndUpdateTTL converges the model's TTL index to the desired
// expiry. An index whose expireAfterSeconds already matches is left
// alone; a drifted one is dropped and recreated. An unexpected drop
// failure is fatal: a TTL index left in an indeterminate state risks
// silent data-retention bugs, so the error is returned for the
// orchestrator to surface. A concurrent "index not found" drop failure
// is a benign race and recreation proceeds.
func (m *Manager) CheckAndUpdateTTL(ctx context.Context, model models.Model) error {
	if model.TTL == nil {
		return nil
	}

	client, err := m.clientHandle()
	if err != nil {
		return err
	}

	ctx, cancel := m.queryContext(ctx)
	defer cancel()

	ttl := model.TTL

	indexes, err := m.deps.ListIndexes(ctx, client, m.cfg.Database, model.Collection)
	if err != nil {
		return fmt.Errorf("failed to list indexes on %s: %w", model.Collection, err)
	}

	existing := findIndex(indexes, ttl.Name)
	if existing == nil {
		return m.createTTLIndex(ctx, client, model)
	}

	if expireAfterSeconds(existing) == ttl.ExpireAfterSeconds {
		return nil
	}

	if err := m.deps.DropIndex(ctx, client, m.cfg.Database, model.Collection, ttl.Name); err != nil {
		if !isIndexNotFound(err) {
			m.logger.Error(fmt.Sprintf("Failed to drop TTL index %q:", model.Name+"."+ttl.Name),
				zap.Error(err))
			return fmt.Errorf("failed to drop TTL index %s.%s: %w", model.Name, ttl.Name, err)
		}
		// Another process already removed it; recreate below.
	}

	return m.createTTLIndex(ctx, client, model)
}

func (m *Manager) createTTLIndex(ctx context.Context, client *mongo.Client, model models.Model) error {
	ttl := model.TTL
	err := m.deps.CreateIndexes(ctx, client, m.cfg.Database, model.Collection,
		[]mongo.IndexModel{ttl.IndexModel()})
	if err != nil {
		return fmt.Errorf("failed to create TTL index %s.%s: %w", model.Name, ttl.Name, err)
	}

	m.logger.Info("created TTL index",
		zap.String("collection", model.Collection),
		zap.String("index", ttl.Name),
		zap.Int32("expireAfterSeconds", ttl.ExpireAfterSeconds))

	return nil
}

// findIndex returns the index document with the given name, or nil.
func findIndex(indexes []bson.M, name string) bson.M {
	for _, index := range indexes {
		if indexName, _ := index["name"].(string); indexName == name {
			return index
		}
	}
	return nil
}

// expireAfterSeconds extracts the expiry option from an index
// document. The server reports it as int32, int64 or double depending
// on how the index was created.
func expireAfterSeconds(index bson.M) int32 {
	switch v := index["expireAfterSeconds"].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case float64:
		return int32(v)
	}
	return -1
}

// isIndexNotFound reports whether err is the server's IndexNotFound
// error, raised when dropping an index another process already removed.
func isIndexNotFound(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == indexNotFoundCode || cmdErr.Name == "IndexNotFound"
	}
	return false
}
