// Package postgres implements the persistence ports on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostedpay/payflow/internal/domain"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			identifier, order_id, amount_cents, currency, gateway_name,
			status, success_url, failure_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	m := toPaymentModel(payment)
	_, err := r.db.Exec(ctx, query,
		m.Identifier,
		m.OrderID,
		m.AmountCents,
		m.Currency,
		m.GatewayName,
		m.Status,
		m.SuccessURL,
		m.FailureURL,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicatePayment, payment.Identifier)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.Payment, error) {
	query := `
		SELECT identifier, order_id, amount_cents, currency, gateway_name,
		       status, success_url, failure_url, created_at, updated_at
		FROM payments WHERE identifier = $1
	`

	row := r.db.QueryRow(ctx, query, identifier)
	return scanPayment(row)
}

// Update persists the mutable payment fields. The status column is excluded
// on purpose: it only changes through UpdateStatus.
func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET success_url = $1, failure_url = $2, updated_at = now()
		WHERE identifier = $3
	`

	m := toPaymentModel(payment)
	result, err := r.db.Exec(ctx, query, m.SuccessURL, m.FailureURL, m.Identifier)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrPaymentNotFound, payment.Identifier)
	}
	return nil
}

// UpdateStatus moves the payment to the target status only when the stored
// status is still one of from. The conditional UPDATE makes the transition
// atomic, so racing completion triggers cannot both advance the payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, identifier string, from []domain.Status, to domain.Status) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = now()
		WHERE identifier = $2 AND status = ANY($3)
	`

	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	result, err := r.db.Exec(ctx, query, string(to), identifier, fromStrs)
	if err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// FindStalePendingAuthorizations lists payments that have been waiting for
// a completion callback longer than the cutoff allows.
func (r *PaymentRepository) FindStalePendingAuthorizations(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT identifier, order_id, amount_cents, currency, gateway_name,
		       status, success_url, failure_url, created_at, updated_at
		FROM payments
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, string(domain.StatusPendingAuthorization), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale pending authorizations: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		var m PaymentModel
		err := row.Scan(
			&m.Identifier, &m.OrderID, &m.AmountCents, &m.Currency, &m.GatewayName,
			&m.Status, &m.SuccessURL, &m.FailureURL, &m.CreatedAt, &m.UpdatedAt,
		)
		return toPaymentDomain(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan stale pending authorizations: %w", err)
	}
	return results, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var m PaymentModel
	err := row.Scan(
		&m.Identifier, &m.OrderID, &m.AmountCents, &m.Currency, &m.GatewayName,
		&m.Status, &m.SuccessURL, &m.FailureURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toPaymentDomain(m), nil
}
