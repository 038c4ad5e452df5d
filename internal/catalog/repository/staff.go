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

type StaffRepository interface {
	FindActiveForBusiness(ctx context.Context, staffID, businessID string) (*model.Staff, error)
}

type mongoStaffRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStaffRepository(cfg *config.Config) StaffRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStaffRepository{
		cfg:        cfg,
		collection: db.Collection(StaffCollectionName),
	}
}

func (r *mongoStaffRepository) FindActiveForBusiness(ctx context.Context, staffID, businessID string) (*model.Staff, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(staffID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, staffID)
	}

	filter := bson.M{
		"_id":         objectID,
		"business_id": businessID,
		"is_active":   true,
	}

	var staff model.Staff
	err = r.collection.FindOne(ctx, filter).Decode(&staff)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find staff member: %w", err)
	}

	return &staff, nil
}
