package billing

import (
	"context"
	"fmt"

	"pitchinvest/config"
	"pitchinvest/database/repository"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"go.uber.org/zap"
)

// Service creates Stripe checkout sessions for the mandatory subscription
// every pending-approval account must complete before platform access.
type Service interface {
	CreateSubscriptionCheckout(ctx context.Context, userID string) (string, error)
}

// StripeService is the Stripe-backed billing implementation.
type StripeService struct {
	Users  repository.UserRepository
	Logger *zap.Logger
}

// NewStripeService creates a billing service. stripe.Key must be set before use.
func NewStripeService(users repository.UserRepository, logger *zap.Logger) *StripeService {
	return &StripeService{Users: users, Logger: logger}
}

// CreateSubscriptionCheckout creates a Stripe customer for the user and a
// subscription-mode checkout session, returning the hosted checkout URL.
func (s *StripeService) CreateSubscriptionCheckout(ctx context.Context, userID string) (string, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch user: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("user not found")
	}

	custParams := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Name:  stripe.String(user.FullName),
	}
	custParams.AddMetadata("user_id", user.ID)
	cust, err := customer.New(custParams)
	if err != nil {
		return "", fmt.Errorf("failed to create billing customer: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(cust.ID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(config.AppConfig.StripeSubscriptionPrice),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(config.AppConfig.BillingSuccessURL),
		CancelURL:  stripe.String(config.AppConfig.BillingCancelURL),
	}
	params.AddMetadata("user_id", user.ID)

	checkout, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.Logger.Info("Created subscription checkout",
		zap.String("userId", user.ID),
		zap.String("checkoutSession", checkout.ID))
	return checkout.URL, nil
}
