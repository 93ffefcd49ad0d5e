package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/wdgraph/internal/model"
)

func TestFieldExtractor_DesignatedLanguageOnly(t *testing.T) {
	doc := &model.EntityDocument{
		ID:       "P31",
		Datatype: "wikibase-item",
		Labels: map[string]model.LangValue{
			"en": {Language: "en", Value: "instance of"},
			"de": {Language: "de", Value: "ist ein(e)"},
		},
		Descriptions: map[string]model.LangValue{
			"de": {Language: "de", Value: "Klasse"},
		},
		Aliases: map[string][]model.LangValue{
			"en": {{Language: "en", Value: "is a"}, {Language: "en", Value: "is an"}},
			"fr": {{Language: "fr", Value: "est un"}},
		},
	}

	f := NewFieldExtractor("en").Extract(doc)

	assert.Equal(t, "P31", f.ID)
	assert.Equal(t, "wikibase-item", f.Datatype)
	assert.Equal(t, "instance of", f.Label)
	assert.Empty(t, f.Description)
	assert.Equal(t, []string{"is a", "is an"}, f.Aliases)
}

func TestFieldExtractor_MissingFields(t *testing.T) {
	f := NewFieldExtractor("en").Extract(&model.EntityDocument{ID: "Q1"})

	assert.Equal(t, Fields{ID: "Q1"}, f)
}
