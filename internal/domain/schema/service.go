package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/justintake/justintake/internal/platform/db"
)

// Service exposes schema lookups and administration on top of a Repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetSchema returns the form configuration for a tenant. A tenant with no
// configuration on record yields ErrNotFound.
func (s *Service) GetSchema(ctx context.Context, tenantID string) (*Schema, error) {
	sch, err := s.repo.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sch, nil
}

// Save validates and persists a tenant configuration. Used by the clinic
// administration CLI.
func (s *Service) Save(ctx context.Context, sch *Schema) error {
	if err := sch.Validate(); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	return s.repo.Upsert(ctx, sch)
}

// ListAll returns every tenant configuration.
func (s *Service) ListAll(ctx context.Context) ([]*Schema, error) {
	return s.repo.List(ctx)
}
