package database

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"parts-catalog/internal/config"
	"parts-catalog/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

const pingTimeout = 5 * time.Second

type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var (
	instance *Mongo
	once     sync.Once
	connErr  error
)

// Instance connects once per process; empty uri or dbName fall back to config.
func Instance(globalCtx context.Context, uri, dbName string) (*Mongo, error) {
	once.Do(func() {
		instance, connErr = Connect(globalCtx, uri, dbName)
	})

	return instance, connErr
}

// Connect opens a client with command tracing and verifies it with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	if uri == "" || dbName == "" {
		cfg := config.Instance()
		if uri == "" {
			uri = cfg.MongoURI
		}
		if dbName == "" {
			dbName = cfg.MongoDBName
		}
	}
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}

	opts := options.Client().
		ApplyURI(uri).
		SetMonitor(otelmongo.NewMonitor())

	log := logger.Instance()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Error("Failed to connect to MongoDB", slog.String("error", err.Error()))
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		log.Error("MongoDB ping failed", slog.String("error", err.Error()))
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Info("Connected to MongoDB", slog.String("database", dbName))

	return &Mongo{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// Disconnect releases the pooled connections.
func (m *Mongo) Disconnect(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	if err := m.Client.Disconnect(ctx); err != nil {
		return err
	}
	logger.Instance().Info("Disconnected from MongoDB")
	return nil
}
