package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/wdgraph/internal/extract"
	"github.com/ppiankov/wdgraph/internal/graph"
	"github.com/ppiankov/wdgraph/internal/keyspace"
	"github.com/ppiankov/wdgraph/internal/model"
)

// Builder turns dump lines into normalized records.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	fields *extract.FieldExtractor
	claims *extract.ClaimAggregator
}

// NewBuilder creates a builder for the designated language.
// names may be nil, in which case records carry no claim-derived properties.
func NewBuilder(language string, names extract.NameResolver) *Builder {
	return &Builder{
		fields: extract.NewFieldExtractor(language),
		claims: extract.NewClaimAggregator(extract.NewDispatchTable(language), names),
	}
}

// Build decodes one dump line as an entity of the given kind.
// A malformed line yields a nil record and a single malformed_document diagnostic.
func (b *Builder) Build(line []byte, kind model.Kind) (*model.Record, []extract.Diagnostic) {
	doc, err := model.DecodeDocument(line)
	if err != nil {
		return nil, []extract.Diagnostic{{Kind: extract.DiagMalformedDocument, Err: err}}
	}
	return b.BuildDocument(doc, kind)
}

// BuildDocument builds the record of an already decoded document
func (b *Builder) BuildDocument(doc *model.EntityDocument, kind model.Kind) (*model.Record, []extract.Diagnostic) {
	key, err := keyspace.EncodeID(kind, doc.ID)
	if err != nil {
		return nil, []extract.Diagnostic{{
			Kind:     extract.DiagMalformedDocument,
			EntityID: doc.ID,
			Err:      err,
		}}
	}

	fields := b.fields.Extract(doc)
	claims, diags := b.claims.Aggregate(doc)

	return &model.Record{
		Key:         key,
		Kind:        kind,
		WikidataID:  fields.ID,
		Datatype:    fields.Datatype,
		Label:       fields.Label,
		Description: fields.Description,
		Aliases:     fields.Aliases,
		Claims:      claims,
	}, diags
}

// Apply writes rec to store: a new node when its key is unknown, a property replacement otherwise.
// created reports which of the two happened.
func Apply(ctx context.Context, store graph.Store, rec *model.Record) (created bool, err error) {
	exists, err := store.NodeExists(ctx, rec.Key)
	if err != nil {
		return false, fmt.Errorf("check node %s: %w", rec.WikidataID, err)
	}

	props := rec.Properties()
	if exists {
		if err := store.SetNodeProperties(ctx, rec.Key, props); err != nil {
			return false, fmt.Errorf("update node %s: %w", rec.WikidataID, err)
		}
		return false, nil
	}

	if err := store.CreateNode(ctx, rec.Key, props, rec.Kind.NodeLabel()); err != nil {
		return false, fmt.Errorf("create node %s: %w", rec.WikidataID, err)
	}
	return true, nil
}
