// Package mongo connects the process to a MongoDB-backed tenant registry,
// for deployments whose central control plane is document-based.
//
//	client, db, err := mongo.Connect(ctx, cfg)
//	store := catalog.NewMongoStore(db.Collection("tenants"))
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

var (
	// ErrEmptyDatabaseName is returned when the config names no database.
	ErrEmptyDatabaseName = errors.New("mongo database name is required")

	// ErrConnectionFailed is returned when the server cannot be reached.
	ErrConnectionFailed = errors.New("failed to connect to mongo")
)

// Config describes the registry database connection.
type Config struct {
	ConnectionURL  string        `env:"TENANCY_MONGO_URL" envDefault:"mongodb://localhost:27017"`
	DatabaseName   string        `env:"TENANCY_MONGO_DB" envDefault:"tenancy"`
	ConnectTimeout time.Duration `env:"TENANCY_MONGO_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Connect establishes a verified client and returns it together with the
// configured registry database handle. The caller owns the client and is
// responsible for Disconnect at shutdown.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.DatabaseName == "" {
		return nil, nil, ErrEmptyDatabaseName
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.ConnectionURL).
		SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, nil, errors.Join(ErrConnectionFailed, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, nil, errors.Join(ErrConnectionFailed, err)
	}

	return client, client.Database(cfg.DatabaseName), nil
}
