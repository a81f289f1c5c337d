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

// MongoUserRepo is the MongoDB-backed UserRepository.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a user repository over the "users" collection.
func NewMongoUserRepo() *MongoUserRepo {
	return &MongoUserRepo{coll: database.Collection("users")}
}

// Upsert inserts or replaces the user document keyed by id.
func (r *MongoUserRepo) Upsert(ctx context.Context, user *models.User) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	filter := bson.M{"id": user.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, user, opts); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.ID, err)
	}
	return nil
}

// GetByID fetches a user by id; returns (nil, nil) when absent.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return &user, nil
}

// GetByEmail fetches a user by email; returns (nil, nil) when absent.
func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	return &user, nil
}

// FindByStatus returns every user with the given profile status.
func (r *MongoUserRepo) FindByStatus(ctx context.Context, status string) ([]models.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"profileStatus": status})
	if err != nil {
		return nil, fmt.Errorf("failed to query users by status %s: %w", status, err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpdateStatus sets the profile status of a user.
func (r *MongoUserRepo) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"profileStatus": status, "updatedAt": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update status for user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s not found", id)
	}
	return nil
}
