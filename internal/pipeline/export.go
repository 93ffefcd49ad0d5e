package pipeline

import (
	"bufio"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/ppiankov/wdgraph/internal/input"
	"github.com/ppiankov/wdgraph/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// exportEntry is one line of the property dump. Every field is always written.
type exportEntry struct {
	WikidataID  string   `json:"wikidataId"`
	Label       string   `json:"label"`
	Datatype    string   `json:"datatype"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases"`
}

// PropertyExporter writes the fixed fields of property records as newline-delimited JSON.
// The output doubles as a property-name lookup file.
type PropertyExporter struct {
	path  string
	out   io.WriteCloser
	buf   *bufio.Writer
	count int64
}

// NewPropertyExporter creates the dump file at path, compressed according to its extension
func NewPropertyExporter(path string) (*PropertyExporter, error) {
	out, err := input.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create property dump: %w", err)
	}
	return newPropertyExporter(path, out), nil
}

func newPropertyExporter(path string, out io.WriteCloser) *PropertyExporter {
	return &PropertyExporter{
		path: path,
		out:  out,
		buf:  bufio.NewWriterSize(out, 64*1024),
	}
}

// Export appends one record
func (e *PropertyExporter) Export(rec *model.Record) error {
	entry := exportEntry{
		WikidataID:  rec.WikidataID,
		Label:       rec.Label,
		Datatype:    rec.Datatype,
		Description: rec.Description,
		Aliases:     rec.Aliases,
	}
	if entry.Aliases == nil {
		entry.Aliases = []string{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode property %s: %w", rec.WikidataID, err)
	}
	if _, err := e.buf.Write(data); err != nil {
		return fmt.Errorf("write property dump %s: %w", e.path, err)
	}
	if err := e.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write property dump %s: %w", e.path, err)
	}
	e.count++
	return nil
}

// Count returns the number of exported properties
func (e *PropertyExporter) Count() int64 {
	return e.count
}

// Path returns the dump location
func (e *PropertyExporter) Path() string {
	return e.path
}

// Close flushes and closes the dump
func (e *PropertyExporter) Close() error {
	flushErr := e.buf.Flush()
	closeErr := e.out.Close()
	if flushErr != nil {
		return fmt.Errorf("flush property dump %s: %w", e.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close property dump %s: %w", e.path, closeErr)
	}
	return nil
}
