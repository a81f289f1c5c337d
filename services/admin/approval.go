package admin

import (
	"context"
	"fmt"

	"pitchinvest/database/repository"
	"pitchinvest/models"

	"go.uber.org/zap"
)

// Service exposes the admin approval workflow. New registrations land with a
// pending profile status; the route guard blocks them until an admin
// approves.
type Service interface {
	ListPending(ctx context.Context) ([]models.User, error)
	Approve(ctx context.Context, userID string) error
	Reject(ctx context.Context, userID string) error
}

// DefaultAdminService implements Service over the user repository.
type DefaultAdminService struct {
	Users  repository.UserRepository
	Logger *zap.Logger
}

// ListPending returns every registration awaiting review.
func (s *DefaultAdminService) ListPending(ctx context.Context) ([]models.User, error) {
	return s.Users.FindByStatus(ctx, models.ProfileStatusPending)
}

// Approve grants the account platform access pending its subscription.
func (s *DefaultAdminService) Approve(ctx context.Context, userID string) error {
	return s.setStatus(ctx, userID, models.ProfileStatusApproved)
}

// Reject declines the registration.
func (s *DefaultAdminService) Reject(ctx context.Context, userID string) error {
	return s.setStatus(ctx, userID, models.ProfileStatusRejected)
}

func (s *DefaultAdminService) setStatus(ctx context.Context, userID, status string) error {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}
	if err := s.Users.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}
	s.Logger.Info("Profile status updated",
		zap.String("userId", userID),
		zap.String("from", user.ProfileStatus),
		zap.String("to", status))
	return nil
}
