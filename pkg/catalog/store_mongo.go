package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoStore keeps the tenant registry in a MongoDB collection, for
// deployments whose central control plane is document-based. The tenant id
// doubles as the document key, which makes duplicate registration a driver-
// level duplicate-key error.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a registry store over the given collection.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

type mongoTenantDoc struct {
	ID                string    `bson:"_id"`
	DisplayName       string    `bson:"display_name"`
	ConnectionURL     string    `bson:"connection_url"`
	Username          string    `bson:"username"`
	Secret            string    `bson:"secret"`
	DriverKind        string    `bson:"driver_kind"`
	MaxPoolSize       int32     `bson:"max_pool_size"`
	MinIdleSize       int32     `bson:"min_idle_size"`
	Active            bool      `bson:"is_active"`
	ProvisioningStage string    `bson:"provisioning_stage,omitempty"`
	ProvisioningError string    `bson:"provisioning_error,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*Record, error) {
	var doc mongoTenantDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant %s: %w", id, err)
	}

	rec := Record{
		ID:            doc.ID,
		DisplayName:   doc.DisplayName,
		ConnectionURL: doc.ConnectionURL,
		Username:      doc.Username,
		Secret:        doc.Secret,
		DriverKind:    doc.DriverKind,
		MaxPoolSize:   doc.MaxPoolSize,
		MinIdleSize:   doc.MinIdleSize,
		Active:        doc.Active,
		CreatedAt:     doc.CreatedAt,
	}.Normalized()
	return &rec, nil
}

func (s *MongoStore) Create(ctx context.Context, rec Record) error {
	rec = rec.Normalized()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.coll.InsertOne(ctx, mongoTenantDoc{
		ID:            rec.ID,
		DisplayName:   rec.DisplayName,
		ConnectionURL: rec.ConnectionURL,
		Username:      rec.Username,
		Secret:        rec.Secret,
		DriverKind:    rec.DriverKind,
		MaxPoolSize:   rec.MaxPoolSize,
		MinIdleSize:   rec.MinIdleSize,
		Active:        rec.Active,
		CreatedAt:     createdAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrTenantExists
		}
		return fmt.Errorf("create tenant %s: %w", rec.ID, err)
	}
	return nil
}

func (s *MongoStore) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.D{
		{Key: "$set", Value: bson.D{{Key: "is_active", Value: active}}},
	})
	if err != nil {
		return fmt.Errorf("set tenant %s active=%t: %w", id, active, err)
	}
	if res.MatchedCount == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *MongoStore) SetProvisioningState(ctx context.Context, id, stage, cause string) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "provisioning_stage", Value: stage},
			{Key: "provisioning_error", Value: cause},
		}},
	})
	if err != nil {
		return fmt.Errorf("record provisioning state for tenant %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrTenantNotFound
	}
	return nil
}
