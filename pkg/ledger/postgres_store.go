package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/entitlements/pkg/pg"
)

// pgStore implements Store on PostgreSQL. Every mutation is a single
// UPDATE with its condition in the WHERE clause, so linearizability per
// account comes from the database's row-level atomicity; no transactions
// or explicit locks needed.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
// The credit_accounts table is created by the bundled goose migrations.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	if pool == nil {
		panic("ledger: pgxpool is required")
	}
	return &pgStore{pool: pool}
}

func (s *pgStore) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	const query = `
		SELECT id, credits, credits_used, credits_reset_at, created_at, updated_at
		FROM credit_accounts
		WHERE id = $1`

	var acc Account
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&acc.ID, &acc.Credits, &acc.CreditsUsed, &acc.CreditsResetAt, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, s.classify(err)
	}
	return &acc, nil
}

func (s *pgStore) Create(ctx context.Context, acc *Account) error {
	const query = `
		INSERT INTO credit_accounts (id, credits, credits_used, credits_reset_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		acc.ID, acc.Credits, acc.CreditsUsed, acc.CreditsResetAt, acc.CreatedAt, acc.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrAccountAlreadyExists
		}
		return s.classify(err)
	}
	return nil
}

func (s *pgStore) Deduct(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	// The WHERE clause carries the overdraft guard, making check and
	// increment one atomic statement.
	const query = `
		UPDATE credit_accounts
		SET credits_used = credits_used + $2, updated_at = now()
		WHERE id = $1 AND credits_used + $2 <= credits`

	tag, err := s.pool.Exec(ctx, query, id, amount)
	if err != nil {
		return false, s.classify(err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	// Zero rows means either insufficient credits or a missing account.
	exists, err := s.exists(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrAccountNotFound
	}
	return false, nil
}

func (s *pgStore) Reset(ctx context.Context, id uuid.UUID, newTotal int64, now time.Time) error {
	const query = `
		UPDATE credit_accounts
		SET credits = $2, credits_used = 0, credits_reset_at = $3, updated_at = $3
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, newTotal, now)
	if err != nil {
		return s.classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *pgStore) ResetIfElapsed(ctx context.Context, id uuid.UUID, newTotal int64, cutoff, now time.Time) (bool, error) {
	const query = `
		UPDATE credit_accounts
		SET credits = $2, credits_used = 0, credits_reset_at = $3, updated_at = $3
		WHERE id = $1 AND (credits_reset_at IS NULL OR credits_reset_at < $4)`

	tag, err := s.pool.Exec(ctx, query, id, newTotal, now, cutoff)
	if err != nil {
		return false, s.classify(err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	exists, err := s.exists(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrAccountNotFound
	}
	return false, nil
}

func (s *pgStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	const query = `SELECT id FROM credit_accounts ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, s.classify(err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, s.classify(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(err)
	}
	return ids, nil
}

func (s *pgStore) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM credit_accounts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, s.classify(err)
	}
	return exists, nil
}

// classify tags retryable failures with ErrStorageTransient so callers
// may retry the single atomic mutation.
func (s *pgStore) classify(err error) error {
	if pg.IsTransientError(err) {
		return errors.Join(ErrStorageTransient, err)
	}
	return err
}
