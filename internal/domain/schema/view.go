package schema

import (
	"encoding/base64"
	"strings"
)

// missingValue is shown in the read-only view for fields the record never
// captured.
const missingValue = "N/A"

// FilePreview describes an uploaded file without inlining its content into
// the display value. DataURI is the retrieval affordance for the client.
type FilePreview struct {
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	DataURI     string `json:"dataUri"`
}

// DisplayField is one row of the read-only record view.
type DisplayField struct {
	Key   string       `json:"field"`
	Label string       `json:"label"`
	Kind  FieldKind    `json:"type"`
	Value string       `json:"value"`
	File  *FilePreview `json:"file,omitempty"`
}

// RenderView reconstructs the human-readable view of a record from the
// owning schema. Fields appear in schema order; keys absent from the data
// show the missing sentinel; checkbox sets are joined for display; file
// uploads become a preview reference instead of raw content.
func RenderView(s *Schema, data FormValue) []DisplayField {
	var out []DisplayField
	for _, f := range s.Fields {
		strat, ok := strategyFor(f.Kind)
		if !ok {
			continue
		}

		df := DisplayField{Key: f.Key, Label: f.Label, Kind: f.Kind}

		v, present := data[f.Key]
		if !present || v.IsEmpty() {
			df.Value = missingValue
			out = append(out, df)
			continue
		}

		v = strat.normalize(f, v)

		switch f.Kind {
		case KindCheckboxGroup:
			if len(v.Set) == 0 {
				df.Value = missingValue
			} else {
				df.Value = strings.Join(v.Set, ", ")
			}
		case KindFileUpload:
			preview := parseDataURI(v.Scalar)
			if preview == nil {
				df.Value = missingValue
			} else {
				df.Value = preview.ContentType
				df.File = preview
			}
		default:
			df.Value = v.Scalar
		}

		out = append(out, df)
	}
	return out
}

// RenderEditable builds a form pre-populated from stored data. Absent keys
// fall back to the field defaults, so a record saved under an older schema
// still renders every current field.
func RenderEditable(s *Schema, data FormValue) *Form {
	form := Render(s)
	for i, f := range form.Fields {
		strat, _ := strategyFor(f.Kind)
		if v, ok := data[f.Key]; ok {
			form.Fields[i].Value = strat.normalize(f.FieldDescriptor, v)
		}
	}
	return form
}

// parseDataURI extracts content type and decoded size from a
// "data:<type>;base64,<payload>" string. Returns nil for anything else.
func parseDataURI(s string) *FilePreview {
	if !strings.HasPrefix(s, "data:") {
		return nil
	}

	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return nil
	}

	contentType := meta
	if ct, found := strings.CutSuffix(meta, ";base64"); found {
		contentType = ct
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &FilePreview{
		ContentType: contentType,
		Size:        base64.StdEncoding.DecodedLen(len(payload)),
		DataURI:     s,
	}
}
