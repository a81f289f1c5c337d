package repository

import (
	"context"
	"fmt"
	"time"

	"pitchinvest/database"
	"pitchinvest/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProjectRepo is the MongoDB-backed ProjectRepository.
type MongoProjectRepo struct {
	coll *mongo.Collection
}

// NewMongoProjectRepo creates a project repository over the "projects" collection.
func NewMongoProjectRepo() *MongoProjectRepo {
	return &MongoProjectRepo{coll: database.Collection("projects")}
}

// ExistsByOwnerAndTitle reports whether a project with the same owner and
// title already exists. The pipeline uses this pre-check to keep listing
// creation idempotent under retry.
func (r *MongoProjectRepo) ExistsByOwnerAndTitle(ctx context.Context, userID, title string) (bool, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID, "title": title})
	if err != nil {
		return false, fmt.Errorf("failed to check for existing project: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new project listing.
func (r *MongoProjectRepo) Create(ctx context.Context, project *models.Project) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, project); err != nil {
		return fmt.Errorf("failed to create project %q: %w", project.Title, err)
	}
	return nil
}

// GetByOwner returns every project owned by the given user.
func (r *MongoProjectRepo) GetByOwner(ctx context.Context, userID string) ([]models.Project, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query projects for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}
