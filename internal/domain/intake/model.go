// Package intake implements the patient record lifecycle: submission,
// listing, viewing, editing, and deletion, all scoped to one tenant.
package intake

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/justintake/justintake/internal/domain/schema"
)

// ErrNotFound is returned when a record does not exist or belongs to a
// different tenant. The two cases are indistinguishable to callers.
var ErrNotFound = errors.New("record not found")

// ErrTenantMismatch is returned when a submission declares a tenant that
// disagrees with the tenant resolved from the request host.
var ErrTenantMismatch = errors.New("tenant mismatch")

// Record is one stored intake submission. Data is the full document; an
// update replaces it atomically, never field by field.
type Record struct {
	ID        uuid.UUID        `json:"id"`
	TenantID  string           `json:"tenantId"`
	Data      schema.FormValue `json:"data"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
