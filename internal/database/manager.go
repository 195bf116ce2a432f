// Package database owns the MongoDB connection lifecycle and the
// reconciliation logic that converges collections and indexes to the
// desired shape before the application serves traffic.
package database

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultQueryTimeout   = 30 * time.Second
)

var (
	// ErrEmptyURI is returned when the connection URI is empty.
	ErrEmptyURI = errors.New("database uri cannot be empty")
	// ErrEmptyDatabaseName is returned when the database name is empty.
	ErrEmptyDatabaseName = errors.New("database name cannot be empty")
	// ErrNotConnected is returned by operations that require an active
	// connection when the manager is disconnected.
	ErrNotConnected = errors.New("not connected to the database")
)

// Config defines connection behavior for the Manager.
type Config struct {
	URI      string
	Database string
	// CleanStart drops the target database on Close. Used by tests and
	// reset runs; a production bootstrap leaves it false.
	CleanStart     bool
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

func (cfg Config) validate() error {
	if strings.TrimSpace(cfg.URI) == "" {
		return ErrEmptyURI
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return ErrEmptyDatabaseName
	}
	return validateDatabaseName(cfg.Database)
}

// Deps overrides the raw driver operations. Zero-value fields keep the
// real driver behavior; tests substitute the calls they exercise.
type Deps struct {
	Connect             func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)
	Ping                func(ctx context.Context, client *mongo.Client) error
	Disconnect          func(ctx context.Context, client *mongo.Client) error
	ListCollectionNames func(ctx context.Context, client *mongo.Client, db string, filter interface{}) ([]string, error)
	CreateCollection    func(ctx context.Context, client *mongo.Client, db, name string) error
	ListIndexes         func(ctx context.Context, client *mongo.Client, db, coll string) ([]bson.M, error)
	CreateIndexes       func(ctx context.Context, client *mongo.Client, db, coll string, indexes []mongo.IndexModel) error
	DropIndex           func(ctx context.Context, client *mongo.Client, db, coll, name string) error
	DeleteMany          func(ctx context.Context, client *mongo.Client, db, coll string, filter interface{}) (int64, error)
	DropDatabase        func(ctx context.Context, client *mongo.Client, db string) error
}

// Option customizes internal manager dependencies (primarily for tests).
type Option func(*Deps)

// WithDeps replaces the non-nil fields of override in the manager's
// driver dependencies.
func WithDeps(override Deps) Option {
	return func(d *Deps) {
		if override.Connect != nil {
			d.Connect = override.Connect
		}
		if override.Ping != nil {
			d.Ping = override.Ping
		}
		if override.Disconnect != nil {
			d.Disconnect = override.Disconnect
		}
		if override.ListCollectionNames != nil {
			d.ListCollectionNames = override.ListCollectionNames
		}
		if override.CreateCollection != nil {
			d.CreateCollection = override.CreateCollection
		}
		if override.ListIndexes != nil {
			d.ListIndexes = override.ListIndexes
		}
		if override.CreateIndexes != nil {
			d.CreateIndexes = override.CreateIndexes
		}
		if override.DropIndex != nil {
			d.DropIndex = override.DropIndex
		}
		if override.DeleteMany != nil {
			d.DeleteMany = override.DeleteMany
		}
		if override.DropDatabase != nil {
			d.DropDatabase = override.DropDatabase
		}
	}
}

func defaultDeps() Deps {
	return Deps{
		Connect: func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
			return mongo.Connect(ctx, opts)
		},
		Ping: func(ctx context.Context, client *mongo.Client) error {
			return client.Ping(ctx, nil)
		},
		Disconnect: func(ctx context.Context, client *mongo.Client) error {
			return client.Disconnect(ctx)
		},
		ListCollectionNames: func(ctx context.Context, client *mongo.Client, db string, filter interface{}) ([]string, error) {
			return client.Database(db).ListCollectionNames(ctx, filter)
		},
		CreateCollection: func(ctx context.Context, client *mongo.Client, db, name string) error {
			return client.Database(db).CreateCollection(ctx, name)
		},
		ListIndexes: func(ctx context.Context, client *mongo.Client, db, coll string) ([]bson.M, error) {
			cursor, err := client.Database(db).Collection(coll).Indexes().List(ctx)
			if err != nil {
				return nil, err
			}
			defer cursor.Close(ctx)

			var indexes []bson.M
			if err := cursor.All(ctx, &indexes); err != nil {
				return nil, err
			}
			return indexes, nil
		},
		CreateIndexes: func(ctx context.Context, client *mongo.Client, db, coll string, indexes []mongo.IndexModel) error {
			_, err := client.Database(db).Collection(coll).Indexes().CreateMany(ctx, indexes)
			return err
		},
		DropIndex: func(ctx context.Context, client *mongo.Client, db, coll, name string) error {
			_, err := client.Database(db).Collection(coll).Indexes().DropOne(ctx, name)
			return err
		},
		DeleteMany: func(ctx context.Context, client *mongo.Client, db, coll string, filter interface{}) (int64, error) {
			result, err := client.Database(db).Collection(coll).DeleteMany(ctx, filter)
			if err != nil {
				return 0, err
			}
			return result.DeletedCount, nil
		},
		DropDatabase: func(ctx context.Context, client *mongo.Client, db string) error {
			return client.Database(db).Drop(ctx)
		},
	}
}

// Manager owns the single shared connection to the database. Connect
// and Close are idempotent; all reconciliation entry points hang off
// the manager so every network call goes through the one handle.
type Manager struct {
	cfg    Config
	logger *zap.Logger
	deps   Deps

	mu     sync.RWMutex
	client *mongo.Client
}

// NewManager validates the config and returns a disconnected manager.
func NewManager(cfg Config, logger *zap.Logger, opts ...Option) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	deps := defaultDeps()
	for _, opt := range opts {
		opt(&deps)
	}

	return &Manager{
		cfg:    cfg,
		logger: logger,
		deps:   deps,
	}, nil
}

// Connect opens the connection if one is not already open. It returns
// true when connected (including the already-connected no-op case) and
// false on any failure, leaving the manager disconnected. Failures are
// logged, never propagated.
func (m *Manager) Connect(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return true
	}

	connectCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(m.cfg.URI).
		SetServerSelectionTimeout(m.cfg.ConnectTimeout)

	client, err := m.deps.Connect(connectCtx, clientOpts)
	if err != nil {
		m.logger.Error("failed to connect to database", zap.Error(err))
		return false
	}

	if err := m.deps.Ping(connectCtx, client); err != nil {
		if disconnectErr := m.deps.Disconnect(connectCtx, client); disconnectErr != nil {
			m.logger.Warn("failed to disconnect after ping failure", zap.Error(disconnectErr))
		}
		m.logger.Error("failed to ping database", zap.Error(err))
		return false
	}

	m.client = client
	m.logger.Info("connected to database", zap.String("database", m.cfg.Database))

	return true
}

// Close disconnects from the database. When CleanStart is configured
// the target database is dropped first, giving the next run a clean
// slate. Close never fails observably: errors are logged and
// swallowed, and calling Close while disconnected is a no-op.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return
	}

	if m.cfg.CleanStart {
		if err := m.deps.DropDatabase(ctx, m.client, m.cfg.Database); err != nil {
			m.logger.Warn("failed to drop database on close",
				zap.String("database", m.cfg.Database), zap.Error(err))
		}
	}

	if err := m.deps.Disconnect(ctx, m.client); err != nil {
		m.logger.Warn("failed to disconnect from database", zap.Error(err))
	}
	m.client = nil

	m.logger.Info("disconnected from database", zap.String("database", m.cfg.Database))
}

// Connected reports whether a connection is currently open.
func (m *Manager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// DatabaseName returns the configured database name.
func (m *Manager) DatabaseName() string {
	return m.cfg.Database
}

// clientHandle returns the active client or ErrNotConnected.
func (m *Manager) clientHandle() (*mongo.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil {
		return nil, ErrNotConnected
	}
	return m.client, nil
}

// queryContext derives a context bounded by the configured query timeout.
func (m *Manager) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.cfg.QueryTimeout)
}

// DeleteMany removes every document in the collection matching filter
// and returns the deleted count. The deletion runs as a single bulk
// operation server-side.
func (m *Manager) DeleteMany(ctx context.Context, collection string, filter interface{}) (int64, error) {
	client, err := m.clientHandle()
	if err != nil {
		return 0, err
	}

	ctx, cancel := m.queryContext(ctx)
	defer cancel()

	return m.deps.DeleteMany(ctx, client, m.cfg.Database, collection, filter)
}
