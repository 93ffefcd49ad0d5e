package input

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCompression(t *testing.T) {
	tests := map[string]Compression{
		"latest-all.json":       CompressionNone,
		"latest-all.json.gz":    CompressionGzip,
		"latest-all.json.GZ":    CompressionGzip,
		"latest-all.json.zst":   CompressionZstd,
		"latest-all.json.zstd":  CompressionZstd,
		"latest-all.json.lz4":   CompressionLZ4,
		"latest-all.json.bz2":   CompressionBzip2,
		"dir.gz/latest-all.txt": CompressionNone,
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectCompression(path), path)
	}
}

func TestCreateOpen_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	content := `{"id":"Q1"}` + "\n" + `{"id":"Q2"}` + "\n"

	for _, name := range []string{"plain.json", "dump.json.gz", "dump.json.zst", "dump.json.lz4", "nested/dir/dump.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)

			w, err := Create(path)
			require.NoError(t, err)
			_, err = io.WriteString(w, content)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := Open(path)
			require.NoError(t, err)
			defer func() { _ = r.Close() }()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, content, string(got))
		})
	}
}

func TestCreate_Bzip2Unsupported(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "out.json.bz2"))
	assert.True(t, errors.Is(err, ErrUnsupportedCompression))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"items-2.json", "items-1.json", "props.json", "sub/items-3.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	}

	files, err := Expand([]string{
		filepath.Join(dir, "items-*.json"),
		filepath.Join(dir, "items-1.json"),
		filepath.Join(dir, "**", "items-3.json"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "items-1.json"),
		filepath.Join(dir, "items-2.json"),
		filepath.Join(dir, "sub", "items-3.json"),
	}, files)

	_, err = Expand([]string{filepath.Join(dir, "nothing-*.json")})
	assert.True(t, errors.Is(err, ErrNoMatch))
}

func TestDumpLines_ArrayFraming(t *testing.T) {
	dump := "[\n" +
		`{"id":"Q1"},` + "\n" +
		"\n" +
		`  {"id":"Q2"} ,` + "\r\n" +
		`{"id":"Q3"}` + "\n" +
		"]\n"

	var lines []string
	var numbers []int
	err := DumpLines(strings.NewReader(dump), func(lineNo int, line []byte) error {
		lines = append(lines, string(line))
		numbers = append(numbers, lineNo)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{`{"id":"Q1"}`, `{"id":"Q2"}`, `{"id":"Q3"}`}, lines)
	assert.Equal(t, []int{2, 4, 5}, numbers)
}

func TestDumpLines_NoTrailingNewline(t *testing.T) {
	var lines []string
	err := DumpLines(strings.NewReader(`{"id":"Q1"}`), func(_ int, line []byte) error {
		lines = append(lines, string(line))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{`{"id":"Q1"}`}, lines)
}

func TestDumpLines_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := DumpLines(strings.NewReader("{}\n{}\n{}\n"), func(int, []byte) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
