package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	RoomAuditLogsCollection = "room_audit_logs"

	DefaultDatabase          = "oekaki"
	DefaultConnectionTimeout = 20 * time.Second

	appName           = "oekaki"
	disconnectTimeout = 10 * time.Second
)

var (
	ErrMissingConfig = errors.New("mongodb config is required")
	ErrMissingURI    = errors.New("mongodb URI is required")
)

// MongoConfig backs the room audit log. Only URI is required.
type MongoConfig struct {
	URI               string
	Database          string
	ConnectionTimeout time.Duration
}

func (c *MongoConfig) validate() error {
	if c == nil {
		return ErrMissingConfig
	}
	if c.URI == "" {
		return ErrMissingURI
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = DefaultConnectionTimeout
	}
	return nil
}

// NewMongoClient connects and pings the primary so that a bad URI fails at
// startup instead of on the first audit write.
func NewMongoClient(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(cfg.ConnectionTimeout).
		SetConnectTimeout(cfg.ConnectionTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

func GetDatabase(client *mongo.Client, cfg *MongoConfig) *mongo.Database {
	if client == nil || cfg == nil {
		return nil
	}
	name := cfg.Database
	if name == "" {
		name = DefaultDatabase
	}
	return client.Database(name)
}

func DisconnectMongo(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, disconnectTimeout)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
