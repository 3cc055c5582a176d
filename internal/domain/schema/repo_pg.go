package schema

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justintake/justintake/internal/platform/db"
)

// PgRepository stores schemas in the clinic_config table, one row per
// tenant with the field list as a JSONB document.
type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) GetByTenant(ctx context.Context, tenantID string) (*Schema, error) {
	var s Schema
	var fields []byte

	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, tenant_name, form_fields, created_at, updated_at
		FROM clinic_config
		WHERE tenant_id = $1`,
		tenantID,
	).Scan(&s.TenantID, &s.TenantName, &fields, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, db.MapError(err)
	}

	if err := json.Unmarshal(fields, &s.Fields); err != nil {
		return nil, fmt.Errorf("decode form fields for tenant %s: %w", tenantID, err)
	}

	return &s, nil
}

func (r *PgRepository) Upsert(ctx context.Context, s *Schema) error {
	fields, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("encode form fields: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO clinic_config (tenant_id, tenant_name, form_fields)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id) DO UPDATE
		SET tenant_name = EXCLUDED.tenant_name,
		    form_fields = EXCLUDED.form_fields,
		    updated_at = NOW()`,
		s.TenantID, s.TenantName, fields,
	)
	return db.MapError(err)
}

func (r *PgRepository) List(ctx context.Context) ([]*Schema, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT tenant_id, tenant_name, form_fields, created_at, updated_at
		FROM clinic_config
		ORDER BY tenant_id`)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	var schemas []*Schema
	for rows.Next() {
		var s Schema
		var fields []byte
		if err := rows.Scan(&s.TenantID, &s.TenantName, &fields, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, db.MapError(err)
		}
		if err := json.Unmarshal(fields, &s.Fields); err != nil {
			return nil, fmt.Errorf("decode form fields for tenant %s: %w", s.TenantID, err)
		}
		schemas = append(schemas, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}

	return schemas, nil
}
