package purchase

import (
	"context"

	"github.com/google/uuid"
)

// Source lists the purchase records for an account. Implementations read
// from wherever the billing collaborator keeps them: a local table kept in
// sync by webhooks, or the provider's API directly (see PaddleSource).
type Source interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Purchase, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, accountID uuid.UUID) ([]Purchase, error)

func (f SourceFunc) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Purchase, error) {
	return f(ctx, accountID)
}
