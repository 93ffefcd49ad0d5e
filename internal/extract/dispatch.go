package extract

// Datatype tags with dedicated handling
const (
	DatatypeMonolingualText = "monolingualtext"
	DatatypeQuantity        = "quantity"
	DatatypeGlobeCoordinate = "globe-coordinate"
	DatatypeTime            = "time"
	DatatypeURL             = "url"
	DatatypeString          = "string"
	DatatypeMath            = "math"
)

// Blacklist holds datatypes whose values reference other entities or external
// media and identifiers, none of which are representable as scalar properties
var Blacklist = []string{
	"commonsMedia",
	"external-id",
	"geo-shape",
	"wikibase-lexeme",
	"wikibase-property",
	"tabular-data",
	"wikibase-form",
	"wikibase-item",
}

// DispatchTable maps datatype tags to value mappers.
// It is immutable after construction and safe for concurrent use.
type DispatchTable struct {
	blacklist map[string]struct{}
	mappers   map[string]ValueMapper
	fallback  ValueMapper
}

// NewDispatchTable creates the dispatch table for the designated language
func NewDispatchTable(language string) *DispatchTable {
	t := &DispatchTable{
		blacklist: make(map[string]struct{}, len(Blacklist)),
		mappers: map[string]ValueMapper{
			DatatypeMonolingualText: MonolingualText(language),
			DatatypeQuantity:        Quantity,
			DatatypeGlobeCoordinate: GlobeCoordinate,
			DatatypeTime:            Time,
			DatatypeURL:             String,
			DatatypeString:          String,
			DatatypeMath:            String,
		},
		fallback: String,
	}
	for _, datatype := range Blacklist {
		t.blacklist[datatype] = struct{}{}
	}
	return t
}

// Lookup returns the mapper for a datatype, or ok=false when the datatype is blacklisted.
// Unrecognized datatypes get the string passthrough mapper.
func (t *DispatchTable) Lookup(datatype string) (ValueMapper, bool) {
	if t.IsBlacklisted(datatype) {
		return nil, false
	}
	if m, ok := t.mappers[datatype]; ok {
		return m, true
	}
	return t.fallback, true
}

// IsBlacklisted reports whether values of this datatype are always dropped
func (t *DispatchTable) IsBlacklisted(datatype string) bool {
	_, ok := t.blacklist[datatype]
	return ok
}
