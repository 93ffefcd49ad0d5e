// Package keyspace encodes entity identifiers into one collision-free numeric key space.
//
// A key is the kind prefix followed by the numeric suffix left-padded to
// SuffixWidth decimal digits: key = prefix * 10^SuffixWidth + suffix.
// Two kinds can never share a key as long as suffixes stay below 10^SuffixWidth.
package keyspace

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ppiankov/wdgraph/internal/model"
)

// SuffixWidth is the number of decimal digits reserved for the numeric suffix
const SuffixWidth = 10

// Kind prefixes
const (
	ItemPrefix     int64 = 1
	PropertyPrefix int64 = 2
)

// MaxSuffix is the largest suffix that can be encoded
const MaxSuffix int64 = suffixSpace - 1

const suffixSpace int64 = 10_000_000_000 // 10^SuffixWidth

var (
	// ErrInvalidIdentifier is returned for identifiers that are not a letter followed by digits
	ErrInvalidIdentifier = errors.New("invalid entity identifier")

	// ErrSuffixOutOfRange is returned when a suffix does not fit in SuffixWidth digits
	ErrSuffixOutOfRange = errors.New("identifier suffix out of range")

	// ErrUnknownKind is returned for kinds or keys with no assigned prefix
	ErrUnknownKind = errors.New("unknown entity kind")
)

// Encode maps (kind, suffix) to its numeric key
func Encode(kind model.Kind, suffix int64) (int64, error) {
	if suffix < 0 || suffix > MaxSuffix {
		return 0, fmt.Errorf("%w: %d", ErrSuffixOutOfRange, suffix)
	}
	prefix, err := prefixOf(kind)
	if err != nil {
		return 0, err
	}
	return prefix*suffixSpace + suffix, nil
}

// Decode inverts Encode
func Decode(key int64) (model.Kind, int64, error) {
	suffix := key % suffixSpace
	switch key / suffixSpace {
	case ItemPrefix:
		return model.KindItem, suffix, nil
	case PropertyPrefix:
		return model.KindProperty, suffix, nil
	default:
		return 0, 0, fmt.Errorf("%w: key %d", ErrUnknownKind, key)
	}
}

// ParseSuffix returns the numeric suffix of an identifier such as "Q42".
// The leading kind letter is dropped without being checked.
func ParseSuffix(id string) (int64, error) {
	if len(id) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	digits := id[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
		}
	}
	if len(digits) > SuffixWidth {
		return 0, fmt.Errorf("%w: %q", ErrSuffixOutOfRange, id)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidIdentifier, id, err)
	}
	return n, nil
}

// EncodeID parses id and encodes it for kind
func EncodeID(kind model.Kind, id string) (int64, error) {
	suffix, err := ParseSuffix(id)
	if err != nil {
		return 0, err
	}
	return Encode(kind, suffix)
}

func prefixOf(kind model.Kind) (int64, error) {
	switch kind {
	case model.KindItem:
		return ItemPrefix, nil
	case model.KindProperty:
		return PropertyPrefix, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
}
