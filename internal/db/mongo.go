package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AccountsCollection = "users"
	EntriesCollection  = "words"
)

// ConnectMongoDB opens a client and pings the server.
func ConnectMongoDB(ctx context.Context, uri string, timeout time.Duration, log *slog.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	log.Info("connected to MongoDB", slog.String("hosts", hostOf(uri)))
	return client, nil
}

// EnsureIndexes creates the unique email index and the listing index.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(AccountsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("account indexes: %w", err)
	}

	_, err = database.Collection(EntriesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "publishDate", Value: -1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "publishDate", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("entry indexes: %w", err)
	}
	return nil
}

// hostOf strips credentials from a connection string for logging.
func hostOf(uri string) string {
	return strings.Join(options.Client().ApplyURI(uri).Hosts, ",")
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
