package model

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrMalformedDocument is returned when a dump line is not a JSON entity object
	ErrMalformedDocument = errors.New("malformed document")

	// ErrMissingID is returned when an entity document has no id
	ErrMissingID = errors.New("document has no id")
)

// EntityDocument is one entity from the knowledge-base dump, either an item or a property
type EntityDocument struct {
	ID           string           `json:"id"`
	Type         string           `json:"type,omitempty"`
	Datatype     string           `json:"datatype,omitempty"` // Only present on properties
	Labels       Map[LangValue]   `json:"labels,omitempty"`
	Descriptions Map[LangValue]   `json:"descriptions,omitempty"`
	Aliases      Map[[]LangValue] `json:"aliases,omitempty"`
	Claims       Map[[]Claim]     `json:"claims,omitempty"`
}

// LangValue is a localized string
type LangValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// Map is a JSON object keyed by language code or property id.
// Dumps write an empty object as [], which decodes to an empty map; null leaves the map nil.
type Map[V any] map[string]V

// UnmarshalJSON accepts an object, null or an empty array
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var items []jsoniter.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if len(items) > 0 {
			return fmt.Errorf("expected object, found array of %d elements", len(items))
		}
		*m = Map[V]{}
		return nil
	}

	var out map[string]V
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// DecodeDocument decodes one dump line into an EntityDocument
func DecodeDocument(data []byte) (*EntityDocument, error) {
	var doc EntityDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.ID == "" {
		return nil, ErrMissingID
	}
	return &doc, nil
}
