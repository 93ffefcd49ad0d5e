package model

import jsoniter "github.com/json-iterator/go"

// SnakTypeValue marks a snak that carries a concrete datavalue.
// The other snak types ("somevalue", "novalue") carry nothing usable.
const SnakTypeValue = "value"

// Claim represents one fact attached to an entity under a property identifier
type Claim struct {
	MainSnak   Snak                     `json:"mainsnak"`
	Qualifiers Map[jsoniter.RawMessage] `json:"qualifiers,omitempty"` // Presence alone excludes the claim
	Rank       string                   `json:"rank,omitempty"`
}

// HasQualifiers reports whether the claim carried a qualifiers key, even an empty one
func (c Claim) HasQualifiers() bool {
	return c.Qualifiers != nil
}

// Snak is the main statement of a claim
type Snak struct {
	SnakType  string     `json:"snaktype"`
	Property  string     `json:"property,omitempty"`
	Datatype  string     `json:"datatype,omitempty"`
	DataValue *DataValue `json:"datavalue,omitempty"`
}

// HasValue reports whether the snak is of type "value"
func (s Snak) HasValue() bool {
	return s.SnakType == SnakTypeValue
}

// DataValue holds the datatype-specific payload of a snak.
// Value is kept raw; each value mapper decodes the shape it expects.
type DataValue struct {
	Type  string              `json:"type"`
	Value jsoniter.RawMessage `json:"value"`
}
