package keyspace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/wdgraph/internal/model"
)

func TestEncode_KindsNeverCollide(t *testing.T) {
	suffixes := []int64{0, 1, 42, 123, 9_999_999, 1_000_000_000, MaxSuffix}

	items := make(map[int64]bool)
	for _, n := range suffixes {
		key, err := Encode(model.KindItem, n)
		require.NoError(t, err)
		items[key] = true
	}
	for _, n := range suffixes {
		key, err := Encode(model.KindProperty, n)
		require.NoError(t, err)
		assert.False(t, items[key], "property suffix %d collides with an item key", n)
	}
}

func TestEncode_Values(t *testing.T) {
	item, err := Encode(model.KindItem, 123)
	require.NoError(t, err)
	prop, err := Encode(model.KindProperty, 123)
	require.NoError(t, err)

	assert.Equal(t, int64(10_000_000_123), item)
	assert.Equal(t, int64(20_000_000_123), prop)
	assert.NotEqual(t, item, prop)
}

func TestEncode_OutOfRange(t *testing.T) {
	_, err := Encode(model.KindItem, MaxSuffix+1)
	assert.True(t, errors.Is(err, ErrSuffixOutOfRange))

	_, err = Encode(model.KindItem, -1)
	assert.True(t, errors.Is(err, ErrSuffixOutOfRange))

	_, err = Encode(model.Kind(7), 1)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestDecode_RoundTrip(t *testing.T) {
	for _, kind := range []model.Kind{model.KindItem, model.KindProperty} {
		for _, n := range []int64{0, 42, MaxSuffix} {
			key, err := Encode(kind, n)
			require.NoError(t, err)

			gotKind, gotSuffix, err := Decode(key)
			require.NoError(t, err)
			assert.Equal(t, kind, gotKind)
			assert.Equal(t, n, gotSuffix)
		}
	}

	_, _, err := Decode(42)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestParseSuffix(t *testing.T) {
	tests := []struct {
		id      string
		want    int64
		wantErr error
	}{
		{"Q42", 42, nil},
		{"P31", 31, nil},
		{"Q0", 0, nil},
		{"Q9999999999", 9_999_999_999, nil},
		{"Q", 0, ErrInvalidIdentifier},
		{"", 0, ErrInvalidIdentifier},
		{"Q4a", 0, ErrInvalidIdentifier},
		{"Q-1", 0, ErrInvalidIdentifier},
		{"L1-F2", 0, ErrInvalidIdentifier},
		{"Q10000000000", 0, ErrSuffixOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseSuffix(tt.id)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeID(t *testing.T) {
	key, err := EncodeID(model.KindItem, "Q42")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000_042), key)
}
