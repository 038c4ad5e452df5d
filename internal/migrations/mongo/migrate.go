package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reservo/internal/migrations/mongo/validators"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "staff_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_at", Value: 1},
			{Key: "end_at", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "business_id", Value: 1},
			{Key: "start_at", Value: 1},
		}},
	}

	// Unique sparse index on the provider payment id: the idempotency
	// backstop for concurrently delivered copies of the same webhook.
	TransactionsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "external_payment_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
	}

	SchedulesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "staff_id", Value: 1},
			{Key: "day", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	ServicesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "is_active", Value: 1}}},
	}

	StaffIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "is_active", Value: 1}}},
	}

	// Locks leaked by crashed requests are reaped by the TTL monitor.
	SlotLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("Running Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Businesses":   {},
		"Services":     {Indexes: ServicesIndexes},
		"Staff":        {Indexes: StaffIndexes},
		"Schedules":    {Indexes: SchedulesIndexes, Validator: validators.ScheduleValidator},
		"Bookings":     {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		"Transactions": {Indexes: TransactionsIndexes, Validator: validators.TransactionValidator},
		"Slot_locks":   {Indexes: SlotLocksIndexes},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return err
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}

	_, err := db.Collection(name).Indexes().CreateMany(ctx, indexes)
	return err
}
