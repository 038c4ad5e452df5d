package repository

import (
	"context"
	"fmt"
	"reservo/pkg/config"
	"reservo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScheduleRepository interface {
	// FindByStaffAndDay returns the staff member's schedule entries for one
	// calendar day, ascending by start time. An empty slice means the day is
	// closed.
	FindByStaffAndDay(ctx context.Context, staffID, day string) ([]*model.ScheduleEntry, error)
}

type mongoScheduleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:        cfg,
		collection: db.Collection(ScheduleCollectionName),
	}
}

func (r *mongoScheduleRepository) FindByStaffAndDay(ctx context.Context, staffID, day string) ([]*model.ScheduleEntry, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"staff_id": staffID,
		"day":      day,
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.ScheduleEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode schedule entries: %w", err)
	}

	return entries, nil
}
