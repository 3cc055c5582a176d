package intake

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/justintake/justintake/internal/domain/schema"
	"github.com/justintake/justintake/internal/platform/websocket"
)

// SchemaSource supplies the form configuration that submissions are
// validated against.
type SchemaSource interface {
	GetSchema(ctx context.Context, tenantID string) (*schema.Schema, error)
}

// Service implements the record lifecycle. Every operation takes the
// resolved tenant explicitly; a record belonging to another tenant is
// reported as not found, never leaked.
type Service struct {
	records Repository
	schemas SchemaSource
	events  websocket.EventPublisher
	logger  zerolog.Logger
}

func NewService(records Repository, schemas SchemaSource, events websocket.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{records: records, schemas: schemas, events: events, logger: logger}
}

// Submit validates a new submission against the tenant's schema and
// persists it. declaredTenant, when non-empty, must agree with the resolved
// tenant. The new-record notification is fire-and-forget: the submission
// is complete once persisted, whether or not any listener hears about it.
func (s *Service) Submit(ctx context.Context, tenantID, declaredTenant string, values schema.FormValue) (*Record, error) {
	if declaredTenant != "" && declaredTenant != tenantID {
		return nil, ErrTenantMismatch
	}

	sch, err := s.schemas.GetSchema(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	values = schema.Normalize(sch, values)
	if errs := schema.Validate(sch, values); errs != nil {
		return nil, errs
	}

	rec := &Record{
		ID:       uuid.New(),
		TenantID: tenantID,
		Data:     values,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.publishNewRecord(ctx, rec)

	return rec, nil
}

func (s *Service) publishNewRecord(ctx context.Context, rec *Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error().Err(err).Str("record_id", rec.ID.String()).Msg("encode new-record event")
		return
	}

	evt := websocket.Event{
		Type:      "new-record",
		Tenant:    rec.TenantID,
		Timestamp: time.Now(),
		Data:      data,
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("record_id", rec.ID.String()).Msg("publish new-record event")
	}
}

// List returns the tenant's records, newest first.
func (s *Service) List(ctx context.Context, tenantID string, limit, offset int) ([]*Record, int, error) {
	return s.records.ListByTenant(ctx, tenantID, limit, offset)
}

// Get fetches one record, requiring it to belong to the tenant.
func (s *Service) Get(ctx context.Context, tenantID string, id uuid.UUID) (*Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return rec, nil
}

// RenderView produces the read-only view of a record using the owning
// tenant's current schema.
func (s *Service) RenderView(ctx context.Context, tenantID string, id uuid.UUID) ([]schema.DisplayField, error) {
	rec, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	sch, err := s.schemas.GetSchema(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return schema.RenderView(sch, rec.Data), nil
}

// RenderEditable produces the pre-populated editable surface of a record.
func (s *Service) RenderEditable(ctx context.Context, tenantID string, id uuid.UUID) (*schema.Form, error) {
	rec, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	sch, err := s.schemas.GetSchema(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return schema.RenderEditable(sch, rec.Data), nil
}

// CommitEdit re-validates the submitted values and replaces the record's
// document in full. The record's tenant never changes.
func (s *Service) CommitEdit(ctx context.Context, tenantID string, id uuid.UUID, values schema.FormValue) (*Record, error) {
	rec, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	sch, err := s.schemas.GetSchema(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	values = schema.Normalize(sch, values)
	if errs := schema.Validate(sch, values); errs != nil {
		return nil, errs
	}

	rec.Data = values
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// Delete removes a record after confirming tenant ownership.
func (s *Service) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	return s.records.Delete(ctx, id)
}

// IsValidation reports whether an error is a collected validation failure.
func IsValidation(err error) (schema.ValidationErrors, bool) {
	var verrs schema.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
