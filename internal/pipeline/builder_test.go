package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/wdgraph/internal/extract"
	"github.com/ppiankov/wdgraph/internal/graph"
	"github.com/ppiankov/wdgraph/internal/keyspace"
	"github.com/ppiankov/wdgraph/internal/lookup"
	"github.com/ppiankov/wdgraph/internal/model"
)

const douglasAdams = `{"id":"Q42","type":"item","labels":{"en":{"language":"en","value":"Douglas Adams"}},"claims":{}}`

func testBuilder() *Builder {
	return NewBuilder("en", lookup.FromMap(map[string]string{
		"P1082": "population",
		"P31":   "instance of",
	}))
}

func TestBuilder_DouglasAdams(t *testing.T) {
	rec, diags := testBuilder().Build([]byte(douglasAdams), model.KindItem)
	require.NotNil(t, rec)
	assert.Empty(t, diags)

	want, err := keyspace.Encode(model.KindItem, 42)
	require.NoError(t, err)

	assert.Equal(t, want, rec.Key)
	assert.Equal(t, model.KindItem, rec.Kind)
	assert.Equal(t, "Q42", rec.WikidataID)
	assert.Equal(t, "Douglas Adams", rec.Label)
	assert.Empty(t, rec.Description)
	assert.Empty(t, rec.Aliases)
	assert.Empty(t, rec.Claims)

	assert.Equal(t, map[string]any{
		"wikidataId": "Q42",
		"label":      "Douglas Adams",
	}, rec.Properties())
}

func TestBuilder_PropertyDocument(t *testing.T) {
	line := `{"id":"P1082","type":"property","datatype":"quantity",
		"labels":{"en":{"language":"en","value":"population"}},
		"descriptions":{"en":{"language":"en","value":"number of people"}},
		"aliases":{"en":[{"language":"en","value":"inhabitants"}]}}`

	rec, diags := testBuilder().Build([]byte(line), model.KindProperty)
	require.NotNil(t, rec)
	assert.Empty(t, diags)

	kind, suffix, err := keyspace.Decode(rec.Key)
	require.NoError(t, err)
	assert.Equal(t, model.KindProperty, kind)
	assert.Equal(t, int64(1082), suffix)

	assert.Equal(t, "quantity", rec.Datatype)
	assert.Equal(t, "number of people", rec.Description)
	assert.Equal(t, []string{"inhabitants"}, rec.Aliases)
}

func TestBuilder_ClaimsAndDiagnostics(t *testing.T) {
	line := `{"id":"Q90","labels":{"en":{"language":"en","value":"Paris"}},"claims":{
		"P1082":[{"mainsnak":{"snaktype":"value","datatype":"quantity","datavalue":{"type":"quantity","value":{"amount":"+2145906"}}}}],
		"P31":[{"mainsnak":{"snaktype":"value","datatype":"wikibase-item","datavalue":{"type":"wikibase-entityid","value":{"id":"Q515"}}}}],
		"P9999":[{"mainsnak":{"snaktype":"value","datatype":"string","datavalue":{"type":"string","value":"x"}}}]}}`

	rec, diags := testBuilder().Build([]byte(line), model.KindItem)
	require.NotNil(t, rec)

	assert.Equal(t, []float64{2145906}, rec.Claims["population"].Numbers)
	assert.NotContains(t, rec.Claims, "instance of")
	assert.Equal(t, []float64{2145906}, rec.Properties()["population"])

	require.Len(t, diags, 1)
	assert.Equal(t, extract.DiagUnknownProperty, diags[0].Kind)
	assert.Equal(t, "P9999", diags[0].PropertyID)
}

func TestBuilder_NoNameTable(t *testing.T) {
	line := `{"id":"Q90","claims":{"P1082":[{"mainsnak":{"snaktype":"value","datatype":"quantity","datavalue":{"value":{"amount":"+1"}}}}]}}`

	rec, diags := NewBuilder("en", nil).Build([]byte(line), model.KindItem)
	require.NotNil(t, rec)
	assert.Empty(t, diags)
	assert.Empty(t, rec.Claims)
}

func TestBuilder_MalformedDocuments(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		entity string
		err    error
	}{
		{"not json", `{"id":"Q1",`, "", model.ErrMalformedDocument},
		{"no id", `{"type":"item"}`, "", model.ErrMissingID},
		{"bad id", `{"id":"Qabc"}`, "Qabc", keyspace.ErrInvalidIdentifier},
		{"suffix too large", `{"id":"Q12345678901"}`, "Q12345678901", keyspace.ErrSuffixOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, diags := testBuilder().Build([]byte(tt.line), model.KindItem)
			assert.Nil(t, rec)
			require.Len(t, diags, 1)
			assert.Equal(t, extract.DiagMalformedDocument, diags[0].Kind)
			assert.Equal(t, tt.entity, diags[0].EntityID)
			assert.True(t, errors.Is(diags[0].Err, tt.err), "got %v", diags[0].Err)
		})
	}
}

func TestApply_CreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := testBuilder()

	rec, _ := b.Build([]byte(douglasAdams), model.KindItem)
	created, err := Apply(ctx, store, rec)
	require.NoError(t, err)
	assert.True(t, created)

	updatedLine := `{"id":"Q42","labels":{"en":{"language":"en","value":"Douglas Noel Adams"}}}`
	rec, _ = b.Build([]byte(updatedLine), model.KindItem)
	created, err = Apply(ctx, store, rec)
	require.NoError(t, err)
	assert.False(t, created)

	n, err := store.CountNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	node, err := store.Node(ctx, rec.Key)
	require.NoError(t, err)
	assert.Equal(t, "Item", node.Label)
	assert.Equal(t, "Douglas Noel Adams", node.Properties["label"])
}

func TestApply_ItemAndPropertyWithSameSuffix(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := testBuilder()

	item, _ := b.Build([]byte(`{"id":"Q123"}`), model.KindItem)
	prop, _ := b.Build([]byte(`{"id":"P123","datatype":"string"}`), model.KindProperty)
	require.NotEqual(t, item.Key, prop.Key)

	for _, rec := range []*model.Record{item, prop} {
		created, err := Apply(ctx, store, rec)
		require.NoError(t, err)
		assert.True(t, created)
	}

	node, err := store.Node(ctx, prop.Key)
	require.NoError(t, err)
	assert.Equal(t, "Property", node.Label)
}

func TestBuilder_EmptyArraysKeepDocument(t *testing.T) {
	line := `{"id":"Q5","type":"item","labels":{"en":{"language":"en","value":"human"}},"descriptions":[],"aliases":[],"claims":[]}`

	rec, diags := NewBuilder("en", nil).Build([]byte(line), model.KindItem)
	require.NotNil(t, rec)
	assert.Empty(t, diags)
	assert.Equal(t, "human", rec.Label)
	assert.Equal(t, map[string]any{"wikidataId": "Q5", "label": "human"}, rec.Properties())
}
