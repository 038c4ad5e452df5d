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

type BusinessRepository interface {
	FindByID(ctx context.Context, id string) (*model.Business, error)
}

type mongoBusinessRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBusinessRepository(cfg *config.Config) BusinessRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBusinessRepository{
		cfg:        cfg,
		collection: db.Collection(BusinessCollectionName),
	}
}

func (r *mongoBusinessRepository) FindByID(ctx context.Context, id string) (*model.Business, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var business model.Business
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&business)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find business: %w", err)
	}

	return &business, nil
}
