// Package catalog reconciles the category/value seed data against the
// supported language set.
package catalog

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/pepe57/wexcommerce/internal/database"
)

// ValueCollection holds the localized category values, one document
// per {language, value} pair.
const ValueCollection = "Value"

// errFailed reports a reconciliation failure to the orchestrator; the
// cause is already logged by the time it is returned.
var errFailed = errors.New("category initialization failed")

// Service prunes catalog seed data that falls outside the supported
// language set.
type Service struct {
	db        *database.Manager
	languages []string
	logger    *zap.Logger
}

// NewService creates a catalog reconciler for the given language set.
func NewService(db *database.Manager, languages []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:        db,
		languages: languages,
		logger:    logger,
	}
}

// Languages returns the supported language set.
func (s *Service) Languages() []string {
	return s.languages
}

// InitializeCategories removes every category value whose language is
// not supported, in one bulk deletion, regardless of whether a
// category still references it. Categories themselves are never
// touched; a dangling reference is preferable to unsupported data
// accumulating. Returns false when disconnected or when the deletion
// fails; errors are logged, never propagated.
func (s *Service) InitializeCategories(ctx context.Context) bool {
	if !s.db.Connected() {
		s.logger.Error("cannot initialize categories: not connected to the database")
		return false
	}

	filter := bson.M{"language": bson.M{"$nin": s.languages}}

	deleted, err := s.db.DeleteMany(ctx, ValueCollection, filter)
	if err != nil {
		s.logger.Error("failed to delete unsupported category values", zap.Error(err))
		return false
	}

	if deleted > 0 {
		s.logger.Info("deleted category values in unsupported languages",
			zap.Int64("count", deleted),
			zap.Strings("supported", s.languages))
	}

	return true
}

// Routine adapts the reconciler for the initialization orchestrator.
func (s *Service) Routine() database.Routine {
	return database.Routine{
		Name: "catalog.categories",
		Run: func(ctx context.Context) error {
			if !s.InitializeCategories(ctx) {
				return errFailed
			}
			return nil
		},
	}
}
