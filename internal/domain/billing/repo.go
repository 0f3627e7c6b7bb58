package billing

import (
	"context"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, p *SubscriptionPlan) error
	// GetByID returns (nil, nil) when no plan has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*SubscriptionPlan, error)
	// ListActive returns active plans ordered by price ascending.
	ListActive(ctx context.Context) ([]*SubscriptionPlan, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, s *Subscription) error
	// GetByID returns (nil, nil) when no subscription has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	// LatestByUser returns the user's newest subscription, or (nil, nil)
	// when the user has never subscribed.
	LatestByUser(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	// ActiveByUser returns the user's ACTIVE or TRIALING subscription, or
	// (nil, nil) when there is none.
	ActiveByUser(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	Update(ctx context.Context, s *Subscription) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	// ListByUser returns the user's payments, newest first, walking through
	// the owning subscription.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, t *PaymentTransaction) error
	// GetByReference returns (nil, nil) when no transaction has the
	// reference.
	GetByReference(ctx context.Context, reference string) (*PaymentTransaction, error)
	Update(ctx context.Context, t *PaymentTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*PaymentTransaction, error)
}
