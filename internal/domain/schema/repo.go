package schema

import "context"

// Repository persists tenant form configurations.
type Repository interface {
	GetByTenant(ctx context.Context, tenantID string) (*Schema, error)
	Upsert(ctx context.Context, s *Schema) error
	List(ctx context.Context) ([]*Schema, error)
}
