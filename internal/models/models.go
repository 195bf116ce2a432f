// Package models defines the collection descriptors the database
// bootstrap reconciles: collection names, standard indexes, and the
// optional text/TTL index specs per model.
package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Token lifetime in seconds for the token collection TTL index.
const TokenExpireAfterSeconds int32 = 6 * 60 * 60

// ProductTextIndexName is the name of the full-text index on products.
const ProductTextIndexName = "product_fulltext"

// TokenTTLIndexName is the name of the TTL index on tokens.
const TokenTTLIndexName = "token_expireAt_ttl"

// TextIndex describes a desired full-text index.
type TextIndex struct {
	Name   string
	Fields []string
}

// TTLIndex describes a desired TTL index on a single date field.
type TTLIndex struct {
	Name               string
	Field              string
	ExpireAfterSeconds int32
}

// Model describes one collection and its desired index shape.
type Model struct {
	Name       string // model name, used in logs
	Collection string // collection name in the database
	Indexes    []mongo.IndexModel
	Text       *TextIndex
	TTL        *TTLIndex
}

// All returns every registered model in reconciliation order.
func All() []Model {
	return []Model{
		{
			Name:       "User",
			Collection: "User",
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetUnique(true),
				},
			},
		},
		{
			Name:       "Token",
			Collection: "Token",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "user", Value: 1}}},
			},
			TTL: &TTLIndex{
				Name:               TokenTTLIndexName,
				Field:              "expireAt",
				ExpireAfterSeconds: TokenExpireAfterSeconds,
			},
		},
		{
			Name:       "Product",
			Collection: "Product",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "categories", Value: 1}}},
				{Keys: bson.D{{Key: "hidden", Value: 1}}},
			},
			Text: &TextIndex{
				Name:   ProductTextIndexName,
				Fields: []string{"name"},
			},
		},
		{
			Name:       "Category",
			Collection: "Category",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "values", Value: 1}}},
			},
		},
		{
			Name:       "Value",
			Collection: "Value",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "language", Value: 1}, {Key: "value", Value: 1}}},
			},
		},
		{
			Name:       "Cart",
			Collection: "Cart",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "user", Value: 1}}},
			},
		},
		{
			Name:       "Order",
			Collection: "Order",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "user", Value: 1}}},
				{Keys: bson.D{{Key: "status", Value: 1}}},
			},
		},
		{
			Name:       "OrderItem",
			Collection: "OrderItem",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "product", Value: 1}}},
			},
		},
		{
			Name:       "Notification",
			Collection: "Notification",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "user", Value: 1}, {Key: "isRead", Value: 1}}},
			},
		},
		{
			Name:       "NotificationCounter",
			Collection: "NotificationCounter",
			Indexes: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "user", Value: 1}},
					Options: options.Index().SetUnique(true),
				},
			},
		},
		{
			Name:       "DeliveryType",
			Collection: "DeliveryType",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "enabled", Value: 1}}},
			},
		},
		{
			Name:       "PaymentType",
			Collection: "PaymentType",
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "enabled", Value: 1}}},
			},
		},
		{
			Name:       "Setting",
			Collection: "Setting",
		},
	}
}

// IndexModel builds the driver index model for the text index.
func (t *TextIndex) IndexModel() mongo.IndexModel {
	keys := bson.D{}
	for _, f := range t.Fields {
		keys = append(keys, bson.E{Key: f, Value: "text"})
	}
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(t.Name),
	}
}

// IndexModel builds the driver index model for the TTL index.
func (t *TTLIndex) IndexModel() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: t.Field, Value: 1}},
		Options: options.Index().
			SetName(t.Name).
			SetExpireAfterSeconds(t.ExpireAfterSeconds),
	}
}
