// internal/infrastructure/database/mongodb/connection.go
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewConnection connects to MongoDB and returns the storefront database
func NewConnection(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(cfg.Mongo.Database), nil
}

// EnsureIndexes creates the indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database, cfg *config.Config) error {
	orders := db.Collection(cfg.Mongo.OrderCollection)
	_, err := orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("user_orders"),
		},
		{
			Keys: bson.D{{Key: "checkoutId", Value: 1}},
			Options: options.Index().
				SetName("unique_checkout").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"checkoutId": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

// HealthCheck pings the database's client
func HealthCheck(ctx context.Context, db *mongo.Database) error {
	return db.Client().Ping(ctx, nil)
}

// Close disconnects the database's client
func Close(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}
