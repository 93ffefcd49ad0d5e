package input

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DumpLines calls fn with every entity line of a dump, in order.
// Full dumps are one JSON array with an entity per line, so array brackets,
// blank lines and the trailing comma of each line are dropped.
// lineNo is 1-based and counts physical lines. The slice passed to fn is not reused.
func DumpLines(r io.Reader, fn func(lineNo int, line []byte) error) error {
	br := bufio.NewReaderSize(r, readBufferSize)

	lineNo := 0
	for {
		raw, err := br.ReadBytes('\n')
		if len(raw) > 0 {
			lineNo++
			if line := frame(raw); line != nil {
				if fnErr := fn(lineNo, line); fnErr != nil {
					return fnErr
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line %d: %w", lineNo+1, err)
		}
	}
}

// frame trims one physical line down to its JSON object, or nil when there is none
func frame(raw []byte) []byte {
	line := bytes.TrimSpace(raw)
	line = bytes.TrimSuffix(line, []byte(","))
	line = bytes.TrimSpace(line)
	if len(line) == 0 || bytes.Equal(line, []byte("[")) || bytes.Equal(line, []byte("]")) {
		return nil
	}
	return line
}
