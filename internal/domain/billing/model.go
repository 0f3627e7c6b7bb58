package billing

import (
	"time"

	"github.com/google/uuid"
)

// Billing intervals.
const (
	IntervalMonthly   = "MONTHLY"
	IntervalQuarterly = "QUARTERLY"
	IntervalYearly    = "YEARLY"
)

// Subscription statuses.
const (
	SubStatusActive   = "ACTIVE"
	SubStatusTrialing = "TRIALING"
	SubStatusCanceled = "CANCELED"
	SubStatusExpired  = "EXPIRED"
)

// Payment and transaction statuses.
const (
	PayStatusPending   = "PENDING"
	PayStatusCompleted = "COMPLETED"
	PayStatusFailed    = "FAILED"
)

// PeriodEnd returns the end of a billing period that starts at the given
// time, for the given interval. Unknown intervals get a monthly period.
func PeriodEnd(start time.Time, interval string) time.Time {
	switch interval {
	case IntervalQuarterly:
		return start.AddDate(0, 3, 0)
	case IntervalYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// SubscriptionPlan is a purchasable tier of the service.
type SubscriptionPlan struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Interval    string    `json:"interval"`
	Features    []string  `json:"features"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Subscription ties a user to a plan for a billing period.
type Subscription struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"userId"`
	PlanID             uuid.UUID  `json:"planId"`
	Status             string     `json:"status"`
	StartDate          time.Time  `json:"startDate"`
	CurrentPeriodStart time.Time  `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time  `json:"currentPeriodEnd"`
	CanceledAt         *time.Time `json:"canceledAt,omitempty"`
	PaymentMethod      string     `json:"paymentMethod"`
	PaymentReference   string     `json:"paymentReference,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// SubscriptionDetail is a subscription with its plan nested, the shape the
// dashboard renders.
type SubscriptionDetail struct {
	Subscription
	Plan *SubscriptionPlan `json:"plan"`
}

// Payment records a settled charge against a subscription.
type Payment struct {
	ID               uuid.UUID  `json:"id"`
	SubscriptionID   uuid.UUID  `json:"subscriptionId"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	PaymentMethod    string     `json:"paymentMethod"`
	PaymentReference string     `json:"paymentReference,omitempty"`
	TransactionID    string     `json:"transactionId,omitempty"`
	PaymentDate      *time.Time `json:"paymentDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// PaymentTransaction tracks a gateway checkout from initialization to its
// verified outcome. The reference is unique across transactions.
type PaymentTransaction struct {
	ID            uuid.UUID  `json:"id"`
	Reference     string     `json:"reference"`
	UserID        uuid.UUID  `json:"userId"`
	PlanID        uuid.UUID  `json:"planId"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	TransactionID string     `json:"transactionId,omitempty"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// History entry types.
const (
	HistoryTypePayment     = "subscription_payment"
	HistoryTypeTransaction = "transaction"
)

// HistoryEntry is one row of a user's merged payment history, drawn from
// both settled payments and gateway transactions.
type HistoryEntry struct {
	ID            uuid.UUID `json:"id"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	Reference     string    `json:"reference"`
	PlanName      string    `json:"planName"`
	TransactionID string    `json:"transactionId"`
	Type          string    `json:"type"`
}
