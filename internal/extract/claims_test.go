package extract

import (
	"errors"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/wdgraph/internal/model"
)

type mapNames map[string]string

func (m mapNames) Resolve(id string) (string, bool) {
	name, ok := m[id]
	return name, ok
}

func (m mapNames) Loaded() bool { return m != nil }

var testNames = mapNames{
	"P17":   "country",
	"P31":   "instance of",
	"P625":  "coordinate location",
	"P1082": "population",
	"P1448": "official name",
	"P856":  "official website",
	"P569":  "date of birth",
}

func valueClaim(datatype, raw string) model.Claim {
	return model.Claim{MainSnak: model.Snak{
		SnakType:  model.SnakTypeValue,
		Datatype:  datatype,
		DataValue: &model.DataValue{Value: []byte(raw)},
	}}
}

func noValueClaim(datatype string) model.Claim {
	return model.Claim{MainSnak: model.Snak{SnakType: "novalue", Datatype: datatype}}
}

func aggregate(t *testing.T, names NameResolver, claims map[string][]model.Claim) (map[string]model.PropertyValues, []Diagnostic) {
	t.Helper()
	agg := NewClaimAggregator(NewDispatchTable("en"), names)
	return agg.Aggregate(&model.EntityDocument{ID: "Q90", Claims: claims})
}

func TestClaimAggregator_MapsEachDatatype(t *testing.T) {
	props, diags := aggregate(t, testNames, map[string][]model.Claim{
		"P1082": {valueClaim("quantity", `{"amount":"+12.5"}`), valueClaim("quantity", `{"amount":"+13"}`)},
		"P625":  {valueClaim("globe-coordinate", `{"latitude":48.85,"longitude":2.35}`)},
		"P856":  {valueClaim("url", `"https://www.paris.fr"`)},
		"P569":  {valueClaim("time", `{"time":"+1952-03-11T00:00:00Z"}`)},
	})

	assert.Empty(t, diags)
	assert.Equal(t, model.PropertyValues{Kind: model.ScalarNumber, Numbers: []float64{12.5, 13}}, props["population"])
	assert.Equal(t, []string{"48.85,2.35"}, props["coordinate location"].Texts)
	assert.Equal(t, []string{"https://www.paris.fr"}, props["official website"].Texts)
	assert.Equal(t, []string{"+1952-03-11T00:00:00Z"}, props["date of birth"].Texts)
}

func TestClaimAggregator_MonolingualLanguageFilter(t *testing.T) {
	props, diags := aggregate(t, testNames, map[string][]model.Claim{
		"P1448": {
			valueClaim("monolingualtext", `{"language":"fr","text":"Paris"}`),
			valueClaim("monolingualtext", `{"language":"en","text":"Paris"}`),
		},
	})

	assert.Empty(t, diags)
	assert.Equal(t, []string{"Paris"}, props["official name"].Texts)

	props, _ = aggregate(t, testNames, map[string][]model.Claim{
		"P1448": {valueClaim("monolingualtext", `{"language":"fr","text":"Paris"}`)},
	})
	assert.NotContains(t, props, "official name", "properties with no surviving values are omitted")
}

func TestClaimAggregator_BlacklistedDatatype(t *testing.T) {
	props, diags := aggregate(t, testNames, map[string][]model.Claim{
		"P31": {valueClaim("wikibase-item", `{"entity-type":"item","numeric-id":515,"id":"Q515"}`)},
		"P17": {valueClaim("wikibase-item", `"not even valid"`)},
	})

	assert.Empty(t, props)
	assert.Empty(t, diags)
}

func TestClaimAggregator_SnakTypes(t *testing.T) {
	// Only claim is novalue: the property is absent
	props, diags := aggregate(t, testNames, map[string][]model.Claim{
		"P1082": {noValueClaim("quantity")},
	})
	assert.Empty(t, props)
	assert.Empty(t, diags)

	// First claim is somevalue: the whole property is skipped
	props, _ = aggregate(t, testNames, map[string][]model.Claim{
		"P1082": {
			{MainSnak: model.Snak{SnakType: "somevalue", Datatype: "quantity"}},
			valueClaim("quantity", `{"amount":"+1"}`),
		},
	})
	assert.Empty(t, props)

	// A later novalue claim contributes nothing
	props, _ = aggregate(t, testNames, map[string][]model.Claim{
		"P1082": {valueClaim("quantity", `{"amount":"+1"}`), noValueClaim("quantity")},
	})
	assert.Equal(t, []float64{1}, props["population"].Numbers)
}

func TestClaimAggregator_QualifiedClaimsExcluded(t *testing.T) {
	qualified := valueClaim("quantity", `{"amount":"+2"}`)
	qualified.Qualifiers = map[string]jsoniter.RawMessage{"P585": jsoniter.RawMessage(`[]`)}

	props, _ := aggregate(t, testNames, map[string][]model.Claim{
		"P1082": {valueClaim("quantity", `{"amount":"+1"}`), qualified},
	})
	assert.Equal(t, []float64{1}, props["population"].Numbers)
}

func TestClaimAggregator_ValueFailureDropsOnlyThatValue(t *testing.T) {
	props, diags := aggregate(t, testNames, map[string][]model.Claim{
		"P1082": {
			valueClaim("quantity", `{"amount":"oops"}`),
			valueClaim("quantity", `{"amount":"+42"}`),
		},
		"P856": {valueClaim("url", `"https://example.org"`)},
	})

	assert.Equal(t, []float64{42}, props["population"].Numbers)
	assert.Equal(t, []string{"https://example.org"}, props["official website"].Texts)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagValueMapping, diags[0].Kind)
	assert.Equal(t, "Q90", diags[0].EntityID)
	assert.Equal(t, "P1082", diags[0].PropertyID)
	assert.True(t, errors.Is(diags[0].Err, ErrMalformedValue))
}

func TestClaimAggregator_FirstClaimDecidesDatatype(t *testing.T) {
	// The second claim is declared as a string but is mapped with the quantity mapper
	props, diags := aggregate(t, testNames, map[string][]model.Claim{
		"P1082": {
			valueClaim("quantity", `{"amount":"+5"}`),
			valueClaim("string", `"five"`),
		},
	})

	assert.Equal(t, []float64{5}, props["population"].Numbers)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagValueMapping, diags[0].Kind)
	assert.Equal(t, "quantity", diags[0].Datatype)
}

func TestClaimAggregator_UnknownPropertyName(t *testing.T) {
	props, diags := aggregate(t, testNames, map[string][]model.Claim{
		"P9999": {valueClaim("string", `"x"`)},
		"P856":  {valueClaim("url", `"https://example.org"`)},
	})

	assert.Len(t, props, 1)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagUnknownProperty, diags[0].Kind)
	assert.Equal(t, "P9999", diags[0].PropertyID)
}

func TestClaimAggregator_NoNameTable(t *testing.T) {
	claims := map[string][]model.Claim{
		"P856": {valueClaim("url", `"https://example.org"`)},
	}

	props, diags := aggregate(t, nil, claims)
	assert.Empty(t, props)
	assert.Empty(t, diags)

	props, diags = aggregate(t, mapNames(nil), claims)
	assert.Empty(t, props)
	assert.Empty(t, diags)
}

func TestClaimAggregator_MixedTypesDropProperty(t *testing.T) {
	flipped := 0
	table := NewDispatchTable("en")
	table.mappers["flaky"] = MapperFunc(func(dv *model.DataValue) (model.Scalar, bool, error) {
		flipped++
		if flipped%2 == 0 {
			return model.NumberScalar(1), true, nil
		}
		return model.TextScalar("one"), true, nil
	})

	agg := NewClaimAggregator(table, mapNames{"P1": "flaky property"})
	props, diags := agg.Aggregate(&model.EntityDocument{ID: "Q1", Claims: map[string][]model.Claim{
		"P1": {valueClaim("flaky", `"a"`), valueClaim("flaky", `"b"`)},
	}})

	assert.Empty(t, props)
	require.Len(t, diags, 1)
	assert.Equal(t, DiagMixedTypes, diags[0].Kind)
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{Kind: DiagUnknownProperty, EntityID: "Q1", PropertyID: "P9", Datatype: "string"}
	assert.Equal(t, "unknown_property entity=Q1 property=P9 datatype=string", d.String())
}
