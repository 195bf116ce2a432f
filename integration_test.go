// Integration tests that run against real MongoDB using testcontainers
//
// Run with: go test -v -tags=integration ./...
//
// These tests are slower but provide high confidence that the
// reconciliation logic converges a real database.

//go:build integration

package wexcommerce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pepe57/wexcommerce/internal/catalog"
	"github.com/pepe57/wexcommerce/internal/database"
	"github.com/pepe57/wexcommerce/internal/models"
)

// testContext holds shared test resources.
type testContext struct {
	container *mongodb.MongoDBContainer
	uri       string
	client    *mongodriver.Client
	manager   *database.Manager
}

// setupTestContainer starts a MongoDB container and a connected manager.
func setupTestContainer(t *testing.T) *testContext {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err, "Failed to start MongoDB container")

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get connection string")

	// Connect directly for test setup and verification.
	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err, "Failed to connect to MongoDB")

	manager, err := database.NewManager(database.Config{
		URI:      uri,
		Database: "wexcommerce_test",
	}, nil)
	require.NoError(t, err, "Failed to create manager")
	require.True(t, manager.Connect(ctx), "Manager failed to connect")

	return &testContext{
		container: container,
		uri:       uri,
		client:    client,
		manager:   manager,
	}
}

func (tc *testContext) teardown(t *testing.T) {
	ctx := context.Background()
	tc.manager.Close(ctx)
	_ = tc.client.Disconnect(ctx)
	_ = tc.container.Terminate(ctx)
}

func TestIntegration_ConnectInvalidURI(t *testing.T) {
	manager, err := database.NewManager(database.Config{
		URI:      "mongodb://127.0.0.1:1", // nothing listens here
		Database: "wexcommerce_test",
	}, nil)
	require.NoError(t, err)

	assert.False(t, manager.Connect(context.Background()),
		"Connect against an unreachable target must return false")
	assert.False(t, manager.Connected())
}

func TestIntegration_InitializeConverges(t *testing.T) {
	tc := setupTestContainer(t)
	defer tc.teardown(t)

	ctx := context.Background()

	catalogSvc := catalog.NewService(tc.manager, []string{"en", "fr"}, nil)
	require.True(t, tc.manager.Initialize(ctx, catalogSvc.Routine()),
		"First initialization should succeed")

	// Every registered collection exists.
	db := tc.client.Database("wexcommerce_test")
	names, err := db.ListCollectionNames(ctx, bson.M{})
	require.NoError(t, err)
	for _, model := range models.All() {
		assert.Contains(t, names, model.Collection)
	}

	// The token TTL index carries the desired expiry.
	cursor, err := db.Collection("Token").Indexes().List(ctx)
	require.NoError(t, err)
	var indexes []bson.M
	require.NoError(t, cursor.All(ctx, &indexes))

	foundTTL := false
	for _, index := range indexes {
		if index["name"] == models.TokenTTLIndexName {
			foundTTL = true
			assert.EqualValues(t, models.TokenExpireAfterSeconds, index["expireAfterSeconds"])
		}
	}
	assert.True(t, foundTTL, "Token TTL index should exist")

	// A second run is idempotent.
	require.True(t, tc.manager.Initialize(ctx, catalogSvc.Routine()),
		"Re-initialization should succeed against an already-converged database")
}

func TestIntegration_TTLDriftRepaired(t *testing.T) {
	tc := setupTestContainer(t)
	defer tc.teardown(t)

	ctx := context.Background()
	db := tc.client.Database("wexcommerce_test")

	// Seed a TTL index with the wrong expiry.
	_, err := db.Collection("Token").Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "expireAt", Value: 1}},
		Options: options.Index().
			SetName(models.TokenTTLIndexName).
			SetExpireAfterSeconds(60),
	})
	require.NoError(t, err)

	var tokenModel models.Model
	for _, model := range models.All() {
		if model.Name == "Token" {
			tokenModel = model
		}
	}
	require.NoError(t, tc.manager.CheckAndUpdateTTL(ctx, tokenModel))

	cursor, err := db.Collection("Token").Indexes().List(ctx)
	require.NoError(t, err)
	var indexes []bson.M
	require.NoError(t, cursor.All(ctx, &indexes))

	for _, index := range indexes {
		if index["name"] == models.TokenTTLIndexName {
			assert.EqualValues(t, models.TokenExpireAfterSeconds, index["expireAfterSeconds"],
				"Drifted TTL index should be dropped and recreated with the desired expiry")
		}
	}
}

func TestIntegration_CategoryCleanupAtScale(t *testing.T) {
	tc := setupTestContainer(t)
	defer tc.teardown(t)

	ctx := context.Background()
	db := tc.client.Database("wexcommerce_test")

	// 1 supported value, 1 category-linked unsupported value, and 1000
	// more unsupported values.
	supported := bson.M{"language": "en", "value": "Shoes"}
	linked := bson.M{"language": "xx", "value": "Schuhe"}

	docs := []interface{}{supported, linked}
	for i := 0; i < 1000; i++ {
		docs = append(docs, bson.M{"language": "yy", "value": "Bulk"})
	}
	_, err := db.Collection("Value").InsertMany(ctx, docs)
	require.NoError(t, err)

	_, err = db.Collection("Category").InsertOne(ctx, bson.M{"values": []string{"Schuhe"}})
	require.NoError(t, err)

	catalogSvc := catalog.NewService(tc.manager, []string{"en", "fr"}, nil)
	require.True(t, catalogSvc.InitializeCategories(ctx))

	count, err := db.Collection("Value").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "Only the supported-language value should remain")

	// Categories are never cascaded.
	categories, err := db.Collection("Category").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, categories, "Referencing categories must be unaffected")
}

func TestIntegration_CleanStartClose(t *testing.T) {
	tc := setupTestContainer(t)
	defer tc.teardown(t)

	ctx := context.Background()

	manager, err := database.NewManager(database.Config{
		URI:        tc.uri,
		Database:   "wexcommerce_reset",
		CleanStart: true,
	}, nil)
	require.NoError(t, err)
	require.True(t, manager.Connect(ctx))

	db := tc.client.Database("wexcommerce_reset")
	_, err = db.Collection("Value").InsertOne(ctx, bson.M{"language": "en", "value": "Shoes"})
	require.NoError(t, err)

	manager.Close(ctx)

	names, err := db.ListCollectionNames(ctx, bson.M{})
	require.NoError(t, err)
	assert.Empty(t, names, "Clean-start close should drop the database")
}
