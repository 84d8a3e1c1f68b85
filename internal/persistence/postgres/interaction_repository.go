package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hostedpay/payflow/internal/domain"
)

// InteractionRepository appends to and reads the interaction_log table. The
// table carries no UPDATE or DELETE path; rows are immutable once written.
type InteractionRepository struct {
	db *pgxpool.Pool
}

func NewInteractionRepository(db *pgxpool.Pool) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Append(ctx context.Context, entry *domain.InteractionEntry) error {
	query := `
		INSERT INTO interaction_log (payment_identifier, kind, reference, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	m := toInteractionModel(entry)
	err := r.db.QueryRow(ctx, query,
		m.PaymentIdentifier,
		m.Kind,
		m.Reference,
		m.Payload,
		m.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to append interaction entry: %w", err)
	}
	return nil
}

func (r *InteractionRepository) ListByPayment(ctx context.Context, identifier string) ([]*domain.InteractionEntry, error) {
	query := `
		SELECT id, payment_identifier, kind, reference, payload, created_at
		FROM interaction_log
		WHERE payment_identifier = $1
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query, identifier)
	if err != nil {
		return nil, fmt.Errorf("query interaction entries: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.InteractionEntry, error) {
		var m InteractionModel
		err := row.Scan(&m.ID, &m.PaymentIdentifier, &m.Kind, &m.Reference, &m.Payload, &m.CreatedAt)
		return toInteractionDomain(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan interaction entries: %w", err)
	}
	return results, nil
}

// LastReference returns the reference of the newest success-response entry
// that carries one, or "" when the payment has none yet.
func (r *InteractionRepository) LastReference(ctx context.Context, identifier string) (string, error) {
	query := `
		SELECT reference
		FROM interaction_log
		WHERE payment_identifier = $1
		  AND kind = ANY($2)
		  AND reference <> ''
		ORDER BY id DESC
		LIMIT 1
	`

	kinds := make([]string, len(domain.SuccessResponseKinds))
	for i, k := range domain.SuccessResponseKinds {
		kinds[i] = string(k)
	}

	var reference string
	err := r.db.QueryRow(ctx, query, identifier, kinds).Scan(&reference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("query last reference: %w", err)
	}
	return reference, nil
}
