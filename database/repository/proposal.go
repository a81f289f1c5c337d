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

// MongoProposalRepo is the MongoDB-backed ProposalRepository.
type MongoProposalRepo struct {
	coll *mongo.Collection
}

// NewMongoProposalRepo creates a proposal repository over the
// "commercial_proposals" collection.
func NewMongoProposalRepo() *MongoProposalRepo {
	return &MongoProposalRepo{coll: database.Collection("commercial_proposals")}
}

// Upsert inserts or replaces the proposal document keyed by user id.
func (r *MongoProposalRepo) Upsert(ctx context.Context, proposal *models.CommercialProposal) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	now := time.Now()
	if proposal.CreatedAt.IsZero() {
		proposal.CreatedAt = now
	}
	proposal.UpdatedAt = now

	filter := bson.M{"userId": proposal.UserID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, filter, proposal, opts); err != nil {
		return fmt.Errorf("failed to upsert proposal for user %s: %w", proposal.UserID, err)
	}
	return nil
}

// GetByUserID fetches the proposal for a user; returns (nil, nil) when absent.
func (r *MongoProposalRepo) GetByUserID(ctx context.Context, userID string) (*models.CommercialProposal, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var proposal models.CommercialProposal
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&proposal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch proposal for user %s: %w", userID, err)
	}
	return &proposal, nil
}
