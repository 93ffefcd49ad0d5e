package extract

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ppiankov/wdgraph/internal/model"
)

// NameResolver resolves property identifiers to display names
type NameResolver interface {
	// Resolve returns the name of a property, or ok=false when it is unknown
	Resolve(propertyID string) (name string, ok bool)

	// Loaded reports whether a name table is available at all
	Loaded() bool
}

// ClaimAggregator turns the claims of a document into homogeneous property arrays
type ClaimAggregator struct {
	table *DispatchTable
	names NameResolver
}

// NewClaimAggregator creates a claim aggregator
func NewClaimAggregator(table *DispatchTable, names NameResolver) *ClaimAggregator {
	return &ClaimAggregator{
		table: table,
		names: names,
	}
}

// Aggregate maps every claim of doc and groups the surviving values by property name.
// Anomalies are returned as diagnostics; none of them stops the aggregation.
// Without a name table the result is always empty.
func (a *ClaimAggregator) Aggregate(doc *model.EntityDocument) (map[string]model.PropertyValues, []Diagnostic) {
	props := make(map[string]model.PropertyValues)
	if a.names == nil || !a.names.Loaded() || len(doc.Claims) == 0 {
		return props, nil
	}

	var diags []Diagnostic
	for _, propID := range slices.Sorted(maps.Keys(doc.Claims)) {
		claims := doc.Claims[propID]
		if len(claims) == 0 {
			continue
		}

		// The first claim decides for the whole property
		first := claims[0].MainSnak
		if !first.HasValue() {
			continue
		}
		mapper, ok := a.table.Lookup(first.Datatype)
		if !ok {
			continue
		}

		name, ok := a.names.Resolve(propID)
		if !ok {
			diags = append(diags, Diagnostic{
				Kind:       DiagUnknownProperty,
				EntityID:   doc.ID,
				PropertyID: propID,
				Datatype:   first.Datatype,
			})
			continue
		}

		var values []model.Scalar
		for _, claim := range claims {
			if claim.HasQualifiers() || !claim.MainSnak.HasValue() {
				continue
			}
			v, ok, err := mapper.Map(claim.MainSnak.DataValue)
			if err != nil {
				diags = append(diags, Diagnostic{
					Kind:       DiagValueMapping,
					EntityID:   doc.ID,
					PropertyID: propID,
					Datatype:   first.Datatype,
					Err:        err,
				})
				continue
			}
			if ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}

		grouped, err := group(values)
		if err != nil {
			diags = append(diags, Diagnostic{
				Kind:       DiagMixedTypes,
				EntityID:   doc.ID,
				PropertyID: propID,
				Datatype:   first.Datatype,
				Err:        err,
			})
			continue
		}
		props[name] = grouped
	}

	return props, diags
}

// group packs scalars into one homogeneous array, failing on mixed kinds
func group(values []model.Scalar) (model.PropertyValues, error) {
	out := model.PropertyValues{Kind: values[0].Kind}
	for _, v := range values {
		if v.Kind != out.Kind {
			return model.PropertyValues{}, fmt.Errorf("mixed %s and %s values", out.Kind, v.Kind)
		}
		if v.Kind == model.ScalarNumber {
			out.Numbers = append(out.Numbers, v.Number)
		} else {
			out.Texts = append(out.Texts, v.Text)
		}
	}
	return out, nil
}
