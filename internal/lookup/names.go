// Package lookup loads the property-identifier to display-name table
package lookup

import (
	"fmt"
	"io"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/ppiankov/wdgraph/internal/input"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// entry is one line of the lookup file. The layout matches the property dump export.
type entry struct {
	WikidataID string `json:"wikidataId"`
	Label      string `json:"label"`
}

// Names maps property identifiers to display names.
// A nil *Names is valid and resolves nothing.
type Names struct {
	names   map[string]string
	skipped int
}

// Resolve returns the display name of a property
func (n *Names) Resolve(propertyID string) (string, bool) {
	if n == nil {
		return "", false
	}
	name, ok := n.names[propertyID]
	return name, ok
}

// Loaded reports whether a table was loaded
func (n *Names) Loaded() bool {
	return n != nil
}

// Len returns the number of known properties
func (n *Names) Len() int {
	if n == nil {
		return 0
	}
	return len(n.names)
}

// Skipped returns how many lookup lines had no id or no label
func (n *Names) Skipped() int {
	if n == nil {
		return 0
	}
	return n.skipped
}

// Load reads a lookup file. An empty path returns nil: claim properties are then disabled.
func Load(path string, logger *slog.Logger) (*Names, error) {
	if path == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	r, err := input.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open property names: %w", err)
	}
	defer func() { _ = r.Close() }()

	names, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("read property names %s: %w", path, err)
	}

	logger.Info("Loaded property names",
		slog.String("path", path),
		slog.Int("names", names.Len()),
		slog.Int("skipped", names.Skipped()))
	return names, nil
}

// Read parses newline-delimited lookup entries.
// Entries without an id or label are skipped; an unparseable line is an error.
func Read(r io.Reader) (*Names, error) {
	n := &Names{names: make(map[string]string)}

	err := input.DumpLines(r, func(lineNo int, line []byte) error {
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if e.WikidataID == "" || e.Label == "" {
			n.skipped++
			return nil
		}
		n.names[e.WikidataID] = e.Label
		return nil
	})
	if err != nil {
		return nil, err
	}

	return n, nil
}

// FromMap builds a table from an in-memory map
func FromMap(m map[string]string) *Names {
	n := &Names{names: make(map[string]string, len(m))}
	for id, name := range m {
		n.names[id] = name
	}
	return n
}
