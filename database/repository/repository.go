package repository

import (
	"context"
	"time"

	"pitchinvest/models"
)

// UserRepository manages identity records.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	FindByStatus(ctx context.Context, status string) ([]models.User, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// ProfileRepository manages role-specific profile records keyed by user id.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.RoleProfile) error
	GetByUserID(ctx context.Context, userID string) (*models.RoleProfile, error)
}

// ProposalRepository manages commercial-proposal records keyed by user id.
type ProposalRepository interface {
	Upsert(ctx context.Context, proposal *models.CommercialProposal) error
	GetByUserID(ctx context.Context, userID string) (*models.CommercialProposal, error)
}

// MaterialsRepository manages pitch-materials records keyed by user id.
type MaterialsRepository interface {
	Upsert(ctx context.Context, materials *models.PitchMaterials) error
	GetByUserID(ctx context.Context, userID string) (*models.PitchMaterials, error)
}

// ProjectRepository manages project listings.
type ProjectRepository interface {
	ExistsByOwnerAndTitle(ctx context.Context, userID, title string) (bool, error)
	Create(ctx context.Context, project *models.Project) error
	GetByOwner(ctx context.Context, userID string) ([]models.Project, error)
}

// opCtx bounds a single repository operation.
func opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}
