package extract

import "fmt"

// DiagnosticKind classifies a non-fatal anomaly found while transforming a document
type DiagnosticKind string

const (
	DiagMalformedDocument DiagnosticKind = "malformed_document" // Document skipped
	DiagUnknownProperty   DiagnosticKind = "unknown_property"   // Property skipped
	DiagValueMapping      DiagnosticKind = "value_mapping"      // One value dropped
	DiagMixedTypes        DiagnosticKind = "mixed_types"        // Property dropped
)

// Diagnostic describes one anomaly. It never aborts the pass.
type Diagnostic struct {
	Kind       DiagnosticKind
	EntityID   string
	PropertyID string
	Datatype   string
	Err        error
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s entity=%s", d.Kind, d.EntityID)
	if d.PropertyID != "" {
		s += " property=" + d.PropertyID
	}
	if d.Datatype != "" {
		s += " datatype=" + d.Datatype
	}
	if d.Err != nil {
		s += " error=" + d.Err.Error()
	}
	return s
}
