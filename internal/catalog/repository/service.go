package repository

import (
	"context"
	"errors"
	"fmt"
	catalogerrors "reservo/internal/catalog/errors"
	"reservo/pkg/config"
	"reservo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ServiceRepository interface {
	// FindActiveForBusiness resolves a service scoped to its owning business.
	// A service id that exists but belongs to another business is reported as
	// not found, never leaked across tenants.
	FindActiveForBusiness(ctx context.Context, serviceID, businessID string) (*model.Service, error)
}

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: db.Collection(ServiceCollectionName),
	}
}

func (r *mongoServiceRepository) FindActiveForBusiness(ctx context.Context, serviceID, businessID string) (*model.Service, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(serviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, serviceID)
	}

	filter := bson.M{
		"_id":         objectID,
		"business_id": businessID,
		"is_active":   true,
	}

	var service model.Service
	err = r.collection.FindOne(ctx, filter).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &service, nil
}
