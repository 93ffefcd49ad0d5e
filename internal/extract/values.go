package extract

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/ppiankov/wdgraph/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformedValue is returned when a datavalue payload does not have the shape its datatype requires
var ErrMalformedValue = errors.New("malformed datavalue")

// ValueMapper extracts a normalized scalar from a claim's datavalue.
// It returns ok=false when the value is semantically empty, and an error
// wrapping ErrMalformedValue when the payload cannot be read.
type ValueMapper interface {
	Map(dv *model.DataValue) (model.Scalar, bool, error)
}

// MapperFunc adapts a function to ValueMapper
type MapperFunc func(dv *model.DataValue) (model.Scalar, bool, error)

// Map calls f(dv)
func (f MapperFunc) Map(dv *model.DataValue) (model.Scalar, bool, error) {
	return f(dv)
}

// MonolingualText keeps the text only when it is written in language
func MonolingualText(language string) ValueMapper {
	return MapperFunc(func(dv *model.DataValue) (model.Scalar, bool, error) {
		var v struct {
			Text     *string `json:"text"`
			Language string  `json:"language"`
		}
		if err := decodeValue(dv, &v); err != nil {
			return model.Scalar{}, false, err
		}
		if v.Language != language {
			return model.Scalar{}, false, nil
		}
		if v.Text == nil {
			return model.Scalar{}, false, malformed("monolingual text without text")
		}
		return model.TextScalar(*v.Text), true, nil
	})
}

// Quantity parses the amount of a quantity as a decimal number
var Quantity = MapperFunc(func(dv *model.DataValue) (model.Scalar, bool, error) {
	var v struct {
		Amount jsoniter.RawMessage `json:"amount"`
	}
	if err := decodeValue(dv, &v); err != nil {
		return model.Scalar{}, false, err
	}

	// Dumps write amounts as signed decimal strings ("+12.5"); bare numbers are accepted too
	raw := strings.Trim(strings.TrimSpace(string(v.Amount)), `"`)
	if raw == "" || raw == "null" {
		return model.Scalar{}, false, malformed("quantity without amount")
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.Scalar{}, false, malformed("quantity amount %q: %v", raw, err)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return model.Scalar{}, false, malformed("quantity amount %q is not finite", raw)
	}
	return model.NumberScalar(amount), true, nil
})

// GlobeCoordinate formats a coordinate as "<latitude>,<longitude>"
var GlobeCoordinate = MapperFunc(func(dv *model.DataValue) (model.Scalar, bool, error) {
	var v struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := decodeValue(dv, &v); err != nil {
		return model.Scalar{}, false, err
	}
	if v.Latitude == nil || v.Longitude == nil {
		return model.Scalar{}, false, malformed("coordinate without latitude or longitude")
	}
	return model.TextScalar(formatCoordinate(*v.Latitude) + "," + formatCoordinate(*v.Longitude)), true, nil
})

// Time passes the raw time string through unmodified
var Time = MapperFunc(func(dv *model.DataValue) (model.Scalar, bool, error) {
	var v struct {
		Time *string `json:"time"`
	}
	if err := decodeValue(dv, &v); err != nil {
		return model.Scalar{}, false, err
	}
	if v.Time == nil {
		return model.Scalar{}, false, malformed("time without time field")
	}
	return model.TextScalar(*v.Time), true, nil
})

// String passes a plain string datavalue through unmodified.
// It serves url, string, math and every datatype without a dedicated mapper.
var String = MapperFunc(func(dv *model.DataValue) (model.Scalar, bool, error) {
	var s string
	if err := decodeValue(dv, &s); err != nil {
		return model.Scalar{}, false, err
	}
	return model.TextScalar(s), true, nil
})

// decodeValue decodes the datavalue payload into out
func decodeValue(dv *model.DataValue, out any) error {
	if dv == nil || len(dv.Value) == 0 {
		return malformed("missing datavalue")
	}
	if string(dv.Value) == "null" {
		return malformed("null datavalue")
	}
	if err := json.Unmarshal(dv.Value, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	return nil
}

// formatCoordinate renders a degree value the way the JVM prints doubles:
// plain decimals with at least one fractional digit inside [1e-3, 1e7),
// "<mantissa>E<exponent>" outside it (0.0001 -> "1.0E-4")
func formatCoordinate(f float64) string {
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	n, _ := strconv.Atoi(exp)
	return mantissa + "E" + strconv.Itoa(n)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedValue, fmt.Sprintf(format, args...))
}
