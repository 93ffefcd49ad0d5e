package model

// Kind is the entity kind of a document
type Kind int

const (
	KindItem     Kind = iota // Items, identifiers like Q42
	KindProperty             // Properties, identifiers like P31
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindProperty:
		return "property"
	default:
		return "unknown"
	}
}

// NodeLabel returns the graph label attached to nodes of this kind
func (k Kind) NodeLabel() string {
	if k == KindProperty {
		return "Property"
	}
	return "Item"
}

// ScalarKind distinguishes text from numeric claim values
type ScalarKind int

const (
	ScalarText ScalarKind = iota
	ScalarNumber
)

func (k ScalarKind) String() string {
	if k == ScalarNumber {
		return "number"
	}
	return "text"
}

// Scalar is one normalized claim value
type Scalar struct {
	Kind   ScalarKind
	Text   string
	Number float64
}

// TextScalar creates a text scalar
func TextScalar(s string) Scalar {
	return Scalar{Kind: ScalarText, Text: s}
}

// NumberScalar creates a numeric scalar
func NumberScalar(f float64) Scalar {
	return Scalar{Kind: ScalarNumber, Number: f}
}

// PropertyValues is a homogeneous array of claim values for one property.
// Exactly one of Texts or Numbers is populated, according to Kind.
type PropertyValues struct {
	Kind    ScalarKind
	Texts   []string
	Numbers []float64
}

// Len returns the number of values
func (v PropertyValues) Len() int {
	if v.Kind == ScalarNumber {
		return len(v.Numbers)
	}
	return len(v.Texts)
}

// Value returns the values as []string or []float64
func (v PropertyValues) Value() any {
	if v.Kind == ScalarNumber {
		return v.Numbers
	}
	return v.Texts
}

// Record is the normalized, store-ready form of one entity document
type Record struct {
	Key         int64                     `json:"key"`
	Kind        Kind                      `json:"kind"`
	WikidataID  string                    `json:"wikidataId"`
	Datatype    string                    `json:"datatype,omitempty"`    // Empty when absent
	Label       string                    `json:"label,omitempty"`       // Empty when absent
	Description string                    `json:"description,omitempty"` // Empty when absent
	Aliases     []string                  `json:"aliases,omitempty"`
	Claims      map[string]PropertyValues `json:"-"` // Never holds an empty array
}

// Properties flattens the record into the property map written to the graph store.
// Absent fields are omitted rather than stored as empty strings.
func (r *Record) Properties() map[string]any {
	props := make(map[string]any, 5+len(r.Claims))
	props["wikidataId"] = r.WikidataID
	if r.Datatype != "" {
		props["datatype"] = r.Datatype
	}
	if r.Label != "" {
		props["label"] = r.Label
	}
	if r.Description != "" {
		props["description"] = r.Description
	}
	if len(r.Aliases) > 0 {
		props["aliases"] = r.Aliases
	}
	for name, values := range r.Claims {
		if values.Len() == 0 {
			continue
		}
		props[name] = values.Value()
	}
	return props
}
