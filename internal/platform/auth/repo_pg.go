package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justintake/justintake/internal/platform/db"
)

// PgUserRepository persists operator accounts in the app_user table.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, tenantID, username string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, tenant_id, created_at
		FROM app_user
		WHERE tenant_id = $1 AND username = $2`,
		tenantID, username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.TenantID, &user.CreatedAt)
	if err != nil {
		return nil, db.MapError(err)
	}
	return &user, nil
}

func (r *PgUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO app_user (id, username, password_hash, role, tenant_id)
		VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.PasswordHash, user.Role, user.TenantID,
	)
	return db.MapError(err)
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, tenantID, username, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE app_user SET password_hash = $1
		WHERE tenant_id = $2 AND username = $3`,
		passwordHash, tenantID, username,
	)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}
