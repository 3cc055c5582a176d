package intake

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists intake records. Lookups are by id alone; tenant
// ownership is enforced one layer up in the Service.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Record, int, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
}
