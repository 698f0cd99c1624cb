package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceRepo implements port.SequenceGenerator on a database sequence, so
// concurrent applications never share a number.
type SequenceRepo struct {
	pool *pgxpool.Pool
}

// NewSequenceRepo creates a new sequence generator.
func NewSequenceRepo(pool *pgxpool.Pool) *SequenceRepo {
	return &SequenceRepo{pool: pool}
}

// NextApplicationSequence returns the next value of loan_application_seq.
func (r *SequenceRepo) NextApplicationSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('loan_application_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next application sequence: %w", err)
	}
	return seq, nil
}
