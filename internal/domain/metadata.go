package domain

import "fmt"

// FieldType says where a metadata field's value comes from.
type FieldType string

// Metadata field types
const (
	// FieldTypeAI values are produced by the language model.
	FieldTypeAI FieldType = "ai"
	// FieldTypeSystem values are read from the file itself.
	FieldTypeSystem FieldType = "system"
	// FieldTypeDate values are existing dates, reformatted on every pass.
	FieldTypeDate FieldType = "date"
)

// System attributes a FieldTypeSystem field can be filled from.
const (
	SystemFieldCreated  = "created"
	SystemFieldModified = "modified"
	SystemFieldPath     = "path"
)

// MetadataField describes one frontmatter key.
type MetadataField struct {
	Key         string
	Type        FieldType
	Description string
	Required    bool
	SystemField string
}

// Validate checks the field has a key and a known type.
func (f MetadataField) Validate() error {
	if f.Key == "" {
		return fmt.Errorf("%w: metadata field key is empty", ErrValidation)
	}
	switch f.Type {
	case FieldTypeAI, FieldTypeSystem, FieldTypeDate:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFieldType, f.Type)
	}
}

// AIFields returns the fields the language model is asked to fill.
func AIFields(fields []MetadataField) []MetadataField {
	var out []MetadataField
	for _, f := range fields {
		if f.Type == FieldTypeAI {
			out = append(out, f)
		}
	}
	return out
}
