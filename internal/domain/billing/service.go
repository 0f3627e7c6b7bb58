package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/360nurse/api/internal/domain/directory"
	"github.com/360nurse/api/internal/platform/db"
	"github.com/360nurse/api/internal/platform/paystack"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid request")
)

// Gateway is the slice of the payment provider the billing flow needs.
// Satisfied by *paystack.Client.
type Gateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeData, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyData, error)
}

type Service struct {
	plans    PlanRepository
	subs     SubscriptionRepository
	payments PaymentRepository
	txns     TransactionRepository
	users    directory.UserRepository
	gateway  Gateway
	appURL   string
	runTx    db.TxRunner
}

func NewService(plans PlanRepository, subs SubscriptionRepository,
	payments PaymentRepository, txns TransactionRepository,
	users directory.UserRepository, gateway Gateway, appURL string,
	runTx db.TxRunner) *Service {
	return &Service{
		plans:    plans,
		subs:     subs,
		payments: payments,
		txns:     txns,
		users:    users,
		gateway:  gateway,
		appURL:   appURL,
		runTx:    runTx,
	}
}

// Plans returns the active plans, cheapest first.
func (s *Service) Plans(ctx context.Context) ([]*SubscriptionPlan, error) {
	return s.plans.ListActive(ctx)
}

// UserSubscription returns the caller's newest subscription with its plan.
func (s *Service) UserSubscription(ctx context.Context, viewerID string) (*SubscriptionDetail, error) {
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}
	sub, err := s.subs.LatestByUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: no subscription", ErrNotFound)
	}
	return s.withPlan(ctx, sub)
}

func (s *Service) withPlan(ctx context.Context, sub *Subscription) (*SubscriptionDetail, error) {
	plan, err := s.plans.GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: plan", ErrNotFound)
	}
	return &SubscriptionDetail{Subscription: *sub, Plan: plan}, nil
}

// CreateSubscriptionRequest is the payload for subscribing to a plan
// directly, payment already settled out of band.
type CreateSubscriptionRequest struct {
	PlanID           string `json:"planId"`
	PaymentMethod    string `json:"paymentMethod"`
	PaymentReference string `json:"paymentReference"`
}

// CreateSubscription subscribes the caller to a plan. An existing ACTIVE or
// TRIALING subscription is canceled first; the new subscription and its
// payment record land in one transaction.
func (s *Service) CreateSubscription(ctx context.Context, viewerID string, req CreateSubscriptionRequest) (*SubscriptionDetail, error) {
	if req.PlanID == "" {
		return nil, fmt.Errorf("%w: plan id is required", ErrInvalid)
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid plan", ErrInvalid)
	}
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: invalid plan", ErrInvalid)
	}

	method := req.PaymentMethod
	if method == "" {
		method = "card"
	}

	var sub *Subscription
	err = s.runTx(ctx, func(ctx context.Context) error {
		sub, err = s.activate(ctx, viewer, plan, method, req.PaymentReference)
		if err != nil {
			return err
		}
		now := time.Now()
		return s.payments.Create(ctx, &Payment{
			SubscriptionID:   sub.ID,
			Amount:           plan.Price,
			Currency:         plan.Currency,
			Status:           PayStatusCompleted,
			PaymentMethod:    method,
			PaymentReference: req.PaymentReference,
			PaymentDate:      &now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &SubscriptionDetail{Subscription: *sub, Plan: plan}, nil
}

// activate cancels any ACTIVE or TRIALING subscription the user holds and
// creates a fresh ACTIVE one for the plan.
func (s *Service) activate(ctx context.Context, userID uuid.UUID, plan *SubscriptionPlan, method, reference string) (*Subscription, error) {
	existing, err := s.subs.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		now := time.Now()
		existing.Status = SubStatusCanceled
		existing.CanceledAt = &now
		if err := s.subs.Update(ctx, existing); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	sub := &Subscription{
		UserID:             userID,
		PlanID:             plan.ID,
		Status:             SubStatusActive,
		StartDate:          start,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   PeriodEnd(start, plan.Interval),
		PaymentMethod:      method,
		PaymentReference:   reference,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// CancelSubscription cancels one of the caller's own subscriptions.
func (s *Service) CancelSubscription(ctx context.Context, viewerID string, id uuid.UUID) (*SubscriptionDetail, error) {
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: subscription", ErrNotFound)
	}
	if sub.UserID != viewer {
		return nil, fmt.Errorf("%w: not your subscription", ErrForbidden)
	}

	now := time.Now()
	sub.Status = SubStatusCanceled
	sub.CanceledAt = &now
	if err := s.subs.Update(ctx, sub); err != nil {
		return nil, err
	}
	return s.withPlan(ctx, sub)
}

// History merges the caller's settled payments and gateway transactions
// into one list, newest first.
func (s *Service) History(ctx context.Context, viewerID string) ([]*HistoryEntry, error) {
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}

	payments, err := s.payments.ListByUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	txns, err := s.txns.ListByUser(ctx, viewer)
	if err != nil {
		return nil, err
	}

	planNames := map[uuid.UUID]string{}
	planName := func(id uuid.UUID) string {
		if name, ok := planNames[id]; ok {
			return name
		}
		name := ""
		if plan, err := s.plans.GetByID(ctx, id); err == nil && plan != nil {
			name = plan.Name
		}
		planNames[id] = name
		return name
	}

	entries := make([]*HistoryEntry, 0, len(payments)+len(txns))
	for _, p := range payments {
		date := p.CreatedAt
		if p.PaymentDate != nil {
			date = *p.PaymentDate
		}
		name := ""
		if sub, err := s.subs.GetByID(ctx, p.SubscriptionID); err == nil && sub != nil {
			name = planName(sub.PlanID)
		}
		entries = append(entries, &HistoryEntry{
			ID:            p.ID,
			Date:          date,
			Amount:        p.Amount,
			Currency:      p.Currency,
			Status:        p.Status,
			PaymentMethod: orUnknown(p.PaymentMethod),
			Reference:     p.PaymentReference,
			PlanName:      name,
			TransactionID: p.TransactionID,
			Type:          HistoryTypePayment,
		})
	}
	for _, t := range txns {
		date := t.CreatedAt
		if t.PaymentDate != nil {
			date = *t.PaymentDate
		}
		entries = append(entries, &HistoryEntry{
			ID:            t.ID,
			Date:          date,
			Amount:        t.Amount,
			Currency:      t.Currency,
			Status:        t.Status,
			PaymentMethod: orUnknown(t.PaymentMethod),
			Reference:     t.Reference,
			PlanName:      planName(t.PlanID),
			TransactionID: t.TransactionID,
			Type:          HistoryTypeTransaction,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	return entries, nil
}

func orUnknown(method string) string {
	if method == "" {
		return "Unknown"
	}
	return method
}

// InitializeRequest is the payload for starting a gateway checkout.
type InitializeRequest struct {
	PlanID string `json:"planId"`
}

// InitializeResult carries the hosted checkout URL back to the client.
type InitializeResult struct {
	Success          bool   `json:"success"`
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// InitializePayment starts a gateway checkout for a plan and stores a
// PENDING transaction keyed by its reference.
func (s *Service) InitializePayment(ctx context.Context, viewerID string, req InitializeRequest) (*InitializeResult, error) {
	if req.PlanID == "" {
		return nil, fmt.Errorf("%w: plan id is required", ErrInvalid)
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid plan", ErrInvalid)
	}
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: invalid plan", ErrInvalid)
	}
	user, err := s.users.GetByID(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if user.Email == "" {
		return nil, fmt.Errorf("%w: user email not found", ErrInvalid)
	}

	reference := paystack.NewReference()
	data, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:     user.Email,
		Amount:    int64(plan.Price * 100),
		Currency:  plan.Currency,
		Reference: reference,
		CallbackURL: fmt.Sprintf("%s/dashboard/subscription/verify?reference=%s&planId=%s",
			s.appURL, reference, plan.ID),
		Metadata: map[string]interface{}{
			"userId": viewer.String(),
			"planId": plan.ID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.txns.Create(ctx, &PaymentTransaction{
		Reference: reference,
		UserID:    viewer,
		PlanID:    plan.ID,
		Amount:    plan.Price,
		Currency:  plan.Currency,
		Status:    PayStatusPending,
	}); err != nil {
		return nil, err
	}

	return &InitializeResult{
		Success:          true,
		AuthorizationURL: data.AuthorizationURL,
		Reference:        reference,
	}, nil
}

// VerifyRequest is the payload for confirming a gateway checkout.
type VerifyRequest struct {
	Reference string `json:"reference"`
}

// VerifyPayment confirms a checkout with the gateway. On success the
// transaction is completed and the subscription activated in one
// transaction; on a failed checkout the transaction is marked FAILED and
// an error is returned.
func (s *Service) VerifyPayment(ctx context.Context, viewerID string, req VerifyRequest) (*SubscriptionDetail, error) {
	if req.Reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalid)
	}
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}

	txn, err := s.txns.GetByReference(ctx, req.Reference)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, fmt.Errorf("%w: transaction", ErrNotFound)
	}
	if txn.UserID != viewer {
		return nil, fmt.Errorf("%w: not your transaction", ErrForbidden)
	}

	data, err := s.gateway.VerifyTransaction(ctx, req.Reference)
	if err != nil || data.Status != "success" {
		txn.Status = PayStatusFailed
		if uerr := s.txns.Update(ctx, txn); uerr != nil {
			return nil, uerr
		}
		return nil, fmt.Errorf("%w: payment verification failed", ErrInvalid)
	}

	plan, err := s.plans.GetByID(ctx, txn.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("%w: plan", ErrNotFound)
	}

	var sub *Subscription
	err = s.runTx(ctx, func(ctx context.Context) error {
		now := time.Now()
		txn.Status = PayStatusCompleted
		txn.PaymentMethod = data.Channel
		txn.TransactionID = strconv.FormatInt(data.ID, 10)
		txn.PaymentDate = &now
		if err := s.txns.Update(ctx, txn); err != nil {
			return err
		}

		sub, err = s.activate(ctx, viewer, plan, data.Channel, req.Reference)
		if err != nil {
			return err
		}

		return s.payments.Create(ctx, &Payment{
			SubscriptionID:   sub.ID,
			Amount:           txn.Amount,
			Currency:         txn.Currency,
			Status:           PayStatusCompleted,
			PaymentMethod:    data.Channel,
			PaymentReference: req.Reference,
			TransactionID:    txn.TransactionID,
			PaymentDate:      &now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &SubscriptionDetail{Subscription: *sub, Plan: plan}, nil
}
