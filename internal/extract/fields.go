package extract

import "github.com/ppiankov/wdgraph/internal/model"

// Fields are the fixed, non-claim fields of an entity document
type Fields struct {
	ID          string
	Datatype    string // Empty when absent
	Label       string // Empty when absent
	Description string // Empty when absent
	Aliases     []string
}

// FieldExtractor pulls the fixed fields out of entity documents
type FieldExtractor struct {
	language string
}

// NewFieldExtractor creates a field extractor reading only the given language
func NewFieldExtractor(language string) *FieldExtractor {
	return &FieldExtractor{language: language}
}

// Extract returns the fixed fields of doc. Missing fields are not an error.
func (e *FieldExtractor) Extract(doc *model.EntityDocument) Fields {
	f := Fields{
		ID:       doc.ID,
		Datatype: doc.Datatype,
	}
	if v, ok := doc.Labels[e.language]; ok {
		f.Label = v.Value
	}
	if v, ok := doc.Descriptions[e.language]; ok {
		f.Description = v.Value
	}
	for _, alias := range doc.Aliases[e.language] {
		f.Aliases = append(f.Aliases, alias.Value)
	}
	return f
}
