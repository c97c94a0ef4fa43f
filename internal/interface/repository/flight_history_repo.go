package repository

import (
	"context"
	"time"

	"flight-queue-service/internal/domain/entity"
	"flight-queue-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFlightHistoryRepository implements FlightHistoryRepository
type MongoFlightHistoryRepository struct {
	collection *mongo.Collection
}

// NewMongoFlightHistoryRepository creates a new flight history repository
func NewMongoFlightHistoryRepository(db *mongo.Database) repository.FlightHistoryRepository {
	collection := db.Collection("flight_history")

	// Compound index for listing a flight's history in order
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "flightId", Value: 1},
			{Key: "timestamp", Value: 1},
		},
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	return &MongoFlightHistoryRepository{
		collection: collection,
	}
}

// Append stores a new history entry
func (r *MongoFlightHistoryRepository) Append(ctx context.Context, entry *entity.FlightHistory) error {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// ListByFlight returns the history of a flight, oldest first
func (r *MongoFlightHistoryRepository) ListByFlight(ctx context.Context, flightID uint) ([]*entity.FlightHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"flightId": flightID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]*entity.FlightHistory, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
