package schema

import (
	"reflect"
	"testing"
)

func TestRenderView_MissingKeysShowSentinel(t *testing.T) {
	s := fullSchema()
	fields := RenderView(s, FormValue{"firstName": ScalarValue("Ann")})

	byKey := make(map[string]DisplayField)
	for _, f := range fields {
		byKey[f.Key] = f
	}

	if byKey["firstName"].Value != "Ann" {
		t.Errorf("expected firstName Ann, got %q", byKey["firstName"].Value)
	}
	for _, key := range []string{"notes", "dob", "insurer", "symptoms", "idCard"} {
		if byKey[key].Value != "N/A" {
			t.Errorf("expected %s to show N/A, got %q", key, byKey[key].Value)
		}
	}
}

func TestRenderView_CheckboxGroupJoined(t *testing.T) {
	s := fullSchema()
	fields := RenderView(s, FormValue{"symptoms": SetValue("A", "B")})

	for _, f := range fields {
		if f.Key == "symptoms" {
			if f.Value != "A, B" {
				t.Errorf("expected joined value %q, got %q", "A, B", f.Value)
			}
			return
		}
	}
	t.Fatal("symptoms field not rendered")
}

func TestRenderView_FileUploadPreview(t *testing.T) {
	s := fullSchema()
	dataURI := "data:image/png;base64,aGVsbG8="
	fields := RenderView(s, FormValue{"idCard": ScalarValue(dataURI)})

	for _, f := range fields {
		if f.Key == "idCard" {
			if f.File == nil {
				t.Fatal("expected a file preview")
			}
			if f.File.ContentType != "image/png" {
				t.Errorf("expected content type image/png, got %q", f.File.ContentType)
			}
			if f.File.DataURI != dataURI {
				t.Error("expected preview to carry the retrieval data URI")
			}
			if f.File.Size == 0 {
				t.Error("expected a non-zero decoded size")
			}
			return
		}
	}
	t.Fatal("idCard field not rendered")
}

func TestRenderView_PreservesSchemaOrder(t *testing.T) {
	s := fullSchema()
	fields := RenderView(s, FormValue{})

	if len(fields) != len(s.Fields) {
		t.Fatalf("expected %d fields, got %d", len(s.Fields), len(fields))
	}
	for i, f := range fields {
		if f.Key != s.Fields[i].Key {
			t.Errorf("field %d: expected %q, got %q", i, s.Fields[i].Key, f.Key)
		}
	}
}

func TestRenderView_SkipsUnknownKind(t *testing.T) {
	s := &Schema{
		TenantID: "acme",
		Fields: []FieldDescriptor{
			{Key: "a", Label: "A", Kind: KindText},
			{Key: "b", Label: "B", Kind: FieldKind("hologram")},
		},
	}

	fields := RenderView(s, FormValue{})
	if len(fields) != 1 || fields[0].Key != "a" {
		t.Errorf("expected unknown kind skipped, got %#v", fields)
	}
}

func TestRenderEditable_PrepopulatesValues(t *testing.T) {
	s := fullSchema()
	form := RenderEditable(s, FormValue{
		"firstName": ScalarValue("Ann"),
		"symptoms":  SetValue("A"),
	})

	byKey := make(map[string]Value)
	for _, f := range form.Fields {
		byKey[f.Key] = f.Value
	}

	if byKey["firstName"].Scalar != "Ann" {
		t.Errorf("expected firstName Ann, got %q", byKey["firstName"].Scalar)
	}
	if !reflect.DeepEqual(byKey["symptoms"].Set, []string{"A"}) {
		t.Errorf("expected symptoms [A], got %#v", byKey["symptoms"])
	}
	// Absent keys fall back to their defaults.
	if byKey["pain"].Scalar != "0" {
		t.Errorf("expected pain default 0, got %q", byKey["pain"].Scalar)
	}
}

func TestRenderEditable_RoundTripStable(t *testing.T) {
	s := fullSchema()
	stored := FormValue{
		"firstName": ScalarValue("Ann"),
		"notes":     ScalarValue("walk-in"),
		"dob":       ScalarValue("1990-02-14"),
		"insurer":   ScalarValue("Aetna"),
		"symptoms":  SetValue("A"),
		"pain":      ScalarValue("4"),
		"idCard":    ScalarValue(""),
	}

	// Rendering for edit and collecting without changes must not alter
	// the stored values.
	collected := Collect(RenderEditable(s, stored))
	if errs := Validate(s, collected); errs != nil {
		t.Fatalf("round-tripped values failed validation: %v", errs)
	}
	if !reflect.DeepEqual(collected, stored) {
		t.Errorf("round trip mismatch:\ngot  %#v\nwant %#v", collected, stored)
	}
}

func TestRenderEditable_CheckboxReRenderShowsChecked(t *testing.T) {
	s := &Schema{
		TenantID: "acme",
		Fields:   []FieldDescriptor{{Key: "symptoms", Label: "Symptoms", Kind: KindCheckboxGroup, Options: []string{"A", "B"}}},
	}

	form := RenderEditable(s, FormValue{"symptoms": SetValue("A")})
	if !reflect.DeepEqual(form.Fields[0].Value.Set, []string{"A"}) {
		t.Errorf("expected exactly A checked, got %#v", form.Fields[0].Value)
	}
}

func TestParseDataURI(t *testing.T) {
	if p := parseDataURI("not-a-data-uri"); p != nil {
		t.Errorf("expected nil for plain string, got %#v", p)
	}
	if p := parseDataURI("data:missing-comma"); p != nil {
		t.Errorf("expected nil for malformed data URI, got %#v", p)
	}

	p := parseDataURI("data:;base64,aGVsbG8=")
	if p == nil {
		t.Fatal("expected a preview")
	}
	if p.ContentType != "application/octet-stream" {
		t.Errorf("expected fallback content type, got %q", p.ContentType)
	}
}
