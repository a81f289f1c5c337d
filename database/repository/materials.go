package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pitchinvest/database"
	"pitchinvest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMaterialsRepo is the MongoDB-backed MaterialsRepository.
type MongoMaterialsRepo struct {
	coll *mongo.Collection
}

// NewMongoMaterialsRepo creates a materials repository over the
// "pitch_materials" collection.
func NewMongoMaterialsRepo() *MongoMaterialsRepo {
	return &MongoMaterialsRepo{coll: database.Collection("pitch_materials")}
}

// Upsert inserts or replaces the materials document keyed by user id.
func (r *MongoMaterialsRepo) Upsert(ctx context.Context, materials *models.PitchMaterials) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	now := time.Now()
	if materials.CreatedAt.IsZero() {
		materials.CreatedAt = now
	}
	materials.UpdatedAt = now

	filter := bson.M{"userId": materials.UserID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, materials, opts); err != nil {
		return fmt.Errorf("failed to upsert pitch materials for user %s: %w", materials.UserID, err)
	}
	return nil
}

// GetByUserID fetches the materials for a user; returns (nil, nil) when absent.
func (r *MongoMaterialsRepo) GetByUserID(ctx context.Context, userID string) (*models.PitchMaterials, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var materials models.PitchMaterials
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&materials)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pitch materials for user %s: %w", userID, err)
	}
	return &materials, nil
}
