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

// MongoProfileRepo is the MongoDB-backed ProfileRepository.
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo creates a profile repository over the "profiles" collection.
func NewMongoProfileRepo() *MongoProfileRepo {
	return &MongoProfileRepo{coll: database.Collection("profiles")}
}

// Upsert inserts or replaces the profile document keyed by user id.
func (r *MongoProfileRepo) Upsert(ctx context.Context, profile *models.RoleProfile) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	filter := bson.M{"userId": profile.UserID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, profile, opts); err != nil {
		return fmt.Errorf("failed to upsert profile for user %s: %w", profile.UserID, err)
	}
	return nil
}

// GetByUserID fetches the profile for a user; returns (nil, nil) when absent.
func (r *MongoProfileRepo) GetByUserID(ctx context.Context, userID string) (*models.RoleProfile, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var profile models.RoleProfile
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for user %s: %w", userID, err)
	}
	return &profile, nil
}
