package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	sliderMin = 0
	sliderMax = 10
)

// Value holds a single submitted field value. Scalar kinds carry a string;
// checkbox-group carries a set of strings. A non-nil Set marks the value as
// a set even when empty.
type Value struct {
	Scalar string
	Set    []string
}

func ScalarValue(s string) Value { return Value{Scalar: s} }

func SetValue(s ...string) Value { return Value{Set: append([]string{}, s...)} }

func (v Value) IsSet() bool { return v.Set != nil }

func (v Value) IsEmpty() bool { return v.Set == nil && strings.TrimSpace(v.Scalar) == "" }

// MarshalJSON writes scalars as JSON strings and sets as JSON arrays,
// matching the stored document shape.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Set != nil {
		return json.Marshal(v.Set)
	}
	return json.Marshal(v.Scalar)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value{Scalar: s}
		return nil
	}

	var set []string
	if err := json.Unmarshal(data, &set); err == nil {
		*v = Value{Set: set}
		return nil
	}

	// Older documents stored slider values as bare numbers.
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Value{Scalar: n.String()}
		return nil
	}

	return fmt.Errorf("unsupported form value %s", string(data))
}

// FormValue is a caller-owned map of field key to submitted value. Each
// form session holds its own FormValue; nothing is shared between sessions.
type FormValue map[string]Value

// FormField pairs a descriptor with its current value on a live form.
type FormField struct {
	FieldDescriptor
	Value Value `json:"value"`
}

// Form is the ordered editable surface produced from a schema.
type Form struct {
	TenantID string      `json:"tenantId"`
	Fields   []FormField `json:"fields"`
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failing field of a submission. Validation
// never stops at the first failure.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// strategy bundles the per-kind behavior. Exactly one strategy exists per
// FieldKind; strategyFor is the single dispatch point.
type strategy struct {
	defaultValue func(f FieldDescriptor) Value
	normalize    func(f FieldDescriptor, v Value) Value
	validate     func(f FieldDescriptor, v Value) *FieldError
}

func emptyScalar(FieldDescriptor) Value { return ScalarValue("") }

func identity(_ FieldDescriptor, v Value) Value { return v }

func requiredCheck(f FieldDescriptor, v Value) *FieldError {
	if f.Required && strings.TrimSpace(v.Scalar) == "" {
		return &FieldError{Field: f.Key, Message: f.Label + " is required"}
	}
	return nil
}

// strategyFor returns the strategy for a kind. The second return value is
// false for kinds outside the closed set; callers skip those fields rather
// than fail.
func strategyFor(kind FieldKind) (strategy, bool) {
	switch kind {
	case KindText:
		return strategy{
			defaultValue: emptyScalar,
			normalize:    identity,
			validate: func(f FieldDescriptor, v Value) *FieldError {
				if err := requiredCheck(f, v); err != nil {
					return err
				}
				if f.MaxLength > 0 && utf8.RuneCountInString(v.Scalar) > f.MaxLength {
					return &FieldError{Field: f.Key, Message: fmt.Sprintf("%s exceeds maximum length of %d", f.Label, f.MaxLength)}
				}
				return nil
			},
		}, true

	case KindTextarea:
		return strategy{
			defaultValue: emptyScalar,
			normalize:    identity,
			validate:     requiredCheck,
		}, true

	case KindDate:
		return strategy{
			defaultValue: emptyScalar,
			normalize:    identity,
			validate: func(f FieldDescriptor, v Value) *FieldError {
				if err := requiredCheck(f, v); err != nil {
					return err
				}
				if v.Scalar == "" {
					return nil
				}
				if _, err := time.Parse("2006-01-02", v.Scalar); err != nil {
					return &FieldError{Field: f.Key, Message: f.Label + " must be a valid date (YYYY-MM-DD)"}
				}
				return nil
			},
		}, true

	case KindSelect:
		return strategy{
			defaultValue: emptyScalar,
			normalize:    identity,
			validate: func(f FieldDescriptor, v Value) *FieldError {
				if err := requiredCheck(f, v); err != nil {
					return err
				}
				if v.Scalar == "" {
					return nil
				}
				if !contains(f.Options, v.Scalar) {
					return &FieldError{Field: f.Key, Message: fmt.Sprintf("%q is not a valid option for %s", v.Scalar, f.Label)}
				}
				return nil
			},
		}, true

	case KindCheckboxGroup:
		return strategy{
			defaultValue: func(FieldDescriptor) Value { return SetValue() },
			normalize: func(_ FieldDescriptor, v Value) Value {
				if v.Set == nil {
					if strings.TrimSpace(v.Scalar) == "" {
						return SetValue()
					}
					return SetValue(v.Scalar)
				}
				return v
			},
			validate: func(f FieldDescriptor, v Value) *FieldError {
				for _, chosen := range v.Set {
					if !contains(f.Options, chosen) {
						return &FieldError{Field: f.Key, Message: fmt.Sprintf("%q is not a valid option for %s", chosen, f.Label)}
					}
				}
				return nil
			},
		}, true

	case KindSlider:
		return strategy{
			defaultValue: func(FieldDescriptor) Value { return ScalarValue("0") },
			normalize: func(_ FieldDescriptor, v Value) Value {
				n, err := strconv.Atoi(strings.TrimSpace(v.Scalar))
				if err != nil {
					return ScalarValue("0")
				}
				if n < sliderMin {
					n = sliderMin
				}
				if n > sliderMax {
					n = sliderMax
				}
				return ScalarValue(strconv.Itoa(n))
			},
			// Normalization clamps out-of-range input, so a slider value
			// never fails validation.
			validate: func(FieldDescriptor, Value) *FieldError { return nil },
		}, true

	case KindFileUpload:
		return strategy{
			defaultValue: emptyScalar,
			normalize:    identity,
			// Size and content-type limits belong to the transport body
			// limit, not the form engine.
			validate: func(FieldDescriptor, Value) *FieldError { return nil },
		}, true

	default:
		return strategy{}, false
	}
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// Render builds the editable surface for a schema: every known field in
// declaration order carrying its default value. Fields with an unknown
// kind are skipped rather than failing the whole form.
func Render(s *Schema) *Form {
	form := &Form{TenantID: s.TenantID}
	for _, f := range s.Fields {
		strat, ok := strategyFor(f.Kind)
		if !ok {
			continue
		}
		form.Fields = append(form.Fields, FormField{
			FieldDescriptor: f,
			Value:           strat.defaultValue(f),
		})
	}
	return form
}

// Collect extracts the current values of a form into a FormValue.
func Collect(form *Form) FormValue {
	values := make(FormValue, len(form.Fields))
	for _, f := range form.Fields {
		values[f.Key] = f.Value
	}
	return values
}

// Normalize coerces a submission into canonical shape: slider values are
// clamped into range, checkbox values become sets, and keys not declared
// by the schema (or declared with an unknown kind) are dropped.
func Normalize(s *Schema, values FormValue) FormValue {
	out := make(FormValue, len(values))
	for _, f := range s.Fields {
		strat, ok := strategyFor(f.Kind)
		if !ok {
			continue
		}
		v, present := values[f.Key]
		if !present {
			continue
		}
		out[f.Key] = strat.normalize(f, v)
	}
	return out
}

// Validate checks a normalized submission against the schema and collects
// every field-level failure. A nil return means the submission is valid.
func Validate(s *Schema, values FormValue) ValidationErrors {
	var errs ValidationErrors
	for _, f := range s.Fields {
		strat, ok := strategyFor(f.Kind)
		if !ok {
			continue
		}
		v, present := values[f.Key]
		if !present {
			v = strat.defaultValue(f)
		}
		if ferr := strat.validate(f, v); ferr != nil {
			errs = append(errs, *ferr)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
