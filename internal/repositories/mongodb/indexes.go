package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique index on
// tickets.code is what turns a generated-code collision into a duplicate key error.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	tickets := []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "redeemedBy", Value: 1}, {Key: "redeemedAt", Value: -1}}},
	}
	if _, err := db.Collection("tickets").Indexes().CreateMany(ctx, tickets); err != nil {
		return fmt.Errorf("create ticket indexes: %w", err)
	}

	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}
