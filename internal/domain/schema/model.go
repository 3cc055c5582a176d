// Package schema implements the per-tenant form configuration that drives
// the intake surface, submission validation, and record views. A single
// Schema document is the source of truth for all three so they cannot
// drift apart.
package schema

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no configuration exists for a tenant.
var ErrNotFound = errors.New("configuration not found")

// FieldKind enumerates the supported field types. The set is closed:
// every kind has exactly one render and validate strategy, selected in
// strategyFor. Adding a kind means adding a case there.
type FieldKind string

const (
	KindText          FieldKind = "text"
	KindTextarea      FieldKind = "textarea"
	KindDate          FieldKind = "date"
	KindSelect        FieldKind = "select"
	KindCheckboxGroup FieldKind = "checkbox-group"
	KindSlider        FieldKind = "slider"
	KindFileUpload    FieldKind = "file-upload"
)

// FieldDescriptor describes a single form field. Options is populated only
// for select and checkbox-group and defines the closed set of legal values.
// MaxLength bounds text input when greater than zero.
type FieldDescriptor struct {
	Key       string    `json:"field"`
	Label     string    `json:"label"`
	Kind      FieldKind `json:"type"`
	Required  bool      `json:"required,omitempty"`
	Options   []string  `json:"options,omitempty"`
	MaxLength int       `json:"maxLength,omitempty"`
}

// Schema is the form configuration for one tenant. Field order is
// significant and preserved through rendering.
type Schema struct {
	TenantID   string            `json:"tenantId"`
	TenantName string            `json:"tenantName"`
	Fields     []FieldDescriptor `json:"formFields"`
	CreatedAt  time.Time         `json:"createdAt,omitempty"`
	UpdatedAt  time.Time         `json:"updatedAt,omitempty"`
}

// Validate checks the schema invariants: keys unique, kinds drawn from the
// closed set, options present where the kind requires them.
func (s *Schema) Validate() error {
	if s.TenantID == "" {
		return errors.New("schema: tenant id is required")
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Key == "" {
			return errors.New("schema: field key is required")
		}
		if seen[f.Key] {
			return fmt.Errorf("schema: duplicate field key %q", f.Key)
		}
		seen[f.Key] = true

		if _, ok := strategyFor(f.Kind); !ok {
			return fmt.Errorf("schema: field %q has unknown kind %q", f.Key, f.Kind)
		}

		switch f.Kind {
		case KindSelect, KindCheckboxGroup:
			if len(f.Options) == 0 {
				return fmt.Errorf("schema: field %q of kind %q requires options", f.Key, f.Kind)
			}
		}
	}

	return nil
}

// Field returns the descriptor for a key, if declared.
func (s *Schema) Field(key string) (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}
