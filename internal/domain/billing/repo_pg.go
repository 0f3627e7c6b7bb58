package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/360nurse/api/internal/platform/db"
)

const planCols = `id, name, description, price, currency, interval, features, is_active, created_at`

type planRepoPG struct{ pool *pgxpool.Pool }

func NewPlanRepoPG(pool *pgxpool.Pool) PlanRepository { return &planRepoPG{pool: pool} }

func (r *planRepoPG) Create(ctx context.Context, p *SubscriptionPlan) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO subscription_plans (id, name, description, price, currency, interval, features, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.Description, p.Price, p.Currency, p.Interval, p.Features, p.IsActive, p.CreatedAt)
	return err
}

func scanPlan(row pgx.Row) (*SubscriptionPlan, error) {
	var p SubscriptionPlan
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency,
		&p.Interval, &p.Features, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SubscriptionPlan, error) {
	p, err := scanPlan(db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+planCols+` FROM subscription_plans WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *planRepoPG) ListActive(ctx context.Context) ([]*SubscriptionPlan, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+planCols+` FROM subscription_plans
		WHERE is_active ORDER BY price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var plans []*SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

const subCols = `id, user_id, plan_id, status, start_date, current_period_start, current_period_end, canceled_at, payment_method, payment_reference, created_at`

type subRepoPG struct{ pool *pgxpool.Pool }

func NewSubscriptionRepoPG(pool *pgxpool.Pool) SubscriptionRepository { return &subRepoPG{pool: pool} }

func (r *subRepoPG) Create(ctx context.Context, s *Subscription) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, plan_id, status, start_date, current_period_start, current_period_end, canceled_at, payment_method, payment_reference, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		s.ID, s.UserID, s.PlanID, s.Status, s.StartDate, s.CurrentPeriodStart,
		s.CurrentPeriodEnd, s.CanceledAt, s.PaymentMethod, s.PaymentReference, s.CreatedAt)
	return err
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.StartDate,
		&s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.CanceledAt,
		&s.PaymentMethod, &s.PaymentReference, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	s, err := scanSubscription(db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+subCols+` FROM subscriptions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *subRepoPG) LatestByUser(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	s, err := scanSubscription(db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+subCols+` FROM subscriptions
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *subRepoPG) ActiveByUser(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	s, err := scanSubscription(db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+subCols+` FROM subscriptions
		WHERE user_id = $1 AND status IN ('ACTIVE', 'TRIALING')
		ORDER BY created_at DESC LIMIT 1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *subRepoPG) Update(ctx context.Context, s *Subscription) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE subscriptions
		SET status = $2, current_period_start = $3, current_period_end = $4,
		    canceled_at = $5, payment_method = $6, payment_reference = $7
		WHERE id = $1`,
		s.ID, s.Status, s.CurrentPeriodStart, s.CurrentPeriodEnd,
		s.CanceledAt, s.PaymentMethod, s.PaymentReference)
	return err
}

const paymentCols = `id, subscription_id, amount, currency, status, payment_method, payment_reference, transaction_id, payment_date, created_at`

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository { return &paymentRepoPG{pool: pool} }

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO payments (id, subscription_id, amount, currency, status, payment_method, payment_reference, transaction_id, payment_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.SubscriptionID, p.Amount, p.Currency, p.Status,
		p.PaymentMethod, p.PaymentReference, p.TransactionID, p.PaymentDate, p.CreatedAt)
	return err
}

func (r *paymentRepoPG) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT p.id, p.subscription_id, p.amount, p.currency, p.status,
		       p.payment_method, p.payment_reference, p.transaction_id, p.payment_date, p.created_at
		FROM payments p
		JOIN subscriptions s ON s.id = p.subscription_id
		WHERE s.user_id = $1 ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.SubscriptionID, &p.Amount, &p.Currency, &p.Status,
			&p.PaymentMethod, &p.PaymentReference, &p.TransactionID, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

const txnCols = `id, reference, user_id, plan_id, amount, currency, status, payment_method, transaction_id, payment_date, created_at`

type txnRepoPG struct{ pool *pgxpool.Pool }

func NewTransactionRepoPG(pool *pgxpool.Pool) TransactionRepository { return &txnRepoPG{pool: pool} }

func (r *txnRepoPG) Create(ctx context.Context, t *PaymentTransaction) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO payment_transactions (id, reference, user_id, plan_id, amount, currency, status, payment_method, transaction_id, payment_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		t.ID, t.Reference, t.UserID, t.PlanID, t.Amount, t.Currency, t.Status,
		t.PaymentMethod, t.TransactionID, t.PaymentDate, t.CreatedAt)
	return err
}

func scanTransaction(row pgx.Row) (*PaymentTransaction, error) {
	var t PaymentTransaction
	err := row.Scan(&t.ID, &t.Reference, &t.UserID, &t.PlanID, &t.Amount, &t.Currency,
		&t.Status, &t.PaymentMethod, &t.TransactionID, &t.PaymentDate, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *txnRepoPG) GetByReference(ctx context.Context, reference string) (*PaymentTransaction, error) {
	t, err := scanTransaction(db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+txnCols+` FROM payment_transactions WHERE reference = $1`, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *txnRepoPG) Update(ctx context.Context, t *PaymentTransaction) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE payment_transactions
		SET status = $2, payment_method = $3, transaction_id = $4, payment_date = $5
		WHERE id = $1`,
		t.ID, t.Status, t.PaymentMethod, t.TransactionID, t.PaymentDate)
	return err
}

func (r *txnRepoPG) ListByUser(ctx context.Context, userID uuid.UUID) ([]*PaymentTransaction, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+txnCols+` FROM payment_transactions
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txns []*PaymentTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
