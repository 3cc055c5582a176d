package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justintake/justintake/internal/platform/db"
)

// PgRepository stores records in the patient_record table with the
// submission document as JSONB.
type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encode record data: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO patient_record (id, tenant_id, data)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		rec.ID, rec.TenantID, data,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	return db.MapError(err)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	var rec Record
	var data []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, data, created_at, updated_at
		FROM patient_record
		WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.TenantID, &data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		mapped := db.MapError(err)
		if errors.Is(mapped, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, mapped
	}

	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}

	return &rec, nil
}

func (r *PgRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM patient_record WHERE tenant_id = $1`,
		tenantID,
	).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, data, created_at, updated_at
		FROM patient_record
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, 0, db.MapError(err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var data []byte
		if err := rows.Scan(&rec.ID, &rec.TenantID, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, db.MapError(err)
		}
		if err := json.Unmarshal(data, &rec.Data); err != nil {
			return nil, 0, fmt.Errorf("decode record %s: %w", rec.ID, err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.MapError(err)
	}

	return records, total, nil
}

// Update replaces the stored document in full.
func (r *PgRepository) Update(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encode record data: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		UPDATE patient_record
		SET data = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at`,
		data, rec.ID,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		mapped := db.MapError(err)
		if errors.Is(mapped, db.ErrNotFound) {
			return ErrNotFound
		}
		return mapped
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient_record WHERE id = $1`, id)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
