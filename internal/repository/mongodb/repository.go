package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/kain/internal/domain/models"
)

const reportsCollection = "stock_reports"

// Repository defines the interface for stock report storage.
type Repository interface {
	SaveStockReport(ctx context.Context, report models.StockReport) error
	LatestStockReport(ctx context.Context) (*models.StockReport, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: reportsCollection,
	}, nil
}

// SaveStockReport archives a stock report snapshot.
func (r *MongoDBRepository) SaveStockReport(ctx context.Context, report models.StockReport) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert stock report: %w", err)
	}
	return nil
}

// LatestStockReport returns the most recently archived report, or nil when
// the archive is empty.
func (r *MongoDBRepository) LatestStockReport(ctx context.Context) (*models.StockReport, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var report models.StockReport
	if err := collection.FindOne(ctx, bson.D{}, opts).Decode(&report); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest stock report: %w", err)
	}
	return &report, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
