package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ParseQuantity accepts a raw quantity and returns it as a positive int.
// Strings must consist of decimal digits only; numbers must be integral.
// A ceiling <= 0 disables the upper bound.
func ParseQuantity(raw any, ceiling int) (int, error) {
	var (
		n   int
		err error
	)

	switch v := raw.(type) {
	case string:
		n, err = parseDigits(v)
	case []byte:
		n, err = parseDigits(string(v))
	case json.Number:
		n, err = parseDigits(v.String())
	case int:
		n = v
	case int8:
		n = int(v)
	case int16:
		n = int(v)
	case int32:
		n = int(v)
	case int64:
		n, err = fromInt64(v)
	case uint:
		n, err = fromUint64(uint64(v))
	case uint8:
		n = int(v)
	case uint16:
		n = int(v)
	case uint32:
		n, err = fromUint64(uint64(v))
	case uint64:
		n, err = fromUint64(v)
	case float32:
		n, err = fromFloat(float64(v))
	case float64:
		n, err = fromFloat(v)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidQuantity, raw)
	}
	if err != nil {
		return 0, err
	}

	if n <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidQuantity, n)
	}
	if ceiling > 0 && n > ceiling {
		return 0, fmt.Errorf("%w: %d > %d", ErrQuantityTooLarge, n, ceiling)
	}
	return n, nil
}

func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidQuantity)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidQuantity, s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrQuantityTooLarge, s)
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	return n, nil
}

func fromInt64(v int64) (int, error) {
	if v > math.MaxInt || v < math.MinInt {
		return 0, fmt.Errorf("%w: %d", ErrQuantityTooLarge, v)
	}
	return int(v), nil
}

func fromUint64(v uint64) (int, error) {
	if v > math.MaxInt {
		return 0, fmt.Errorf("%w: %d", ErrQuantityTooLarge, v)
	}
	return int(v), nil
}

func fromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, fmt.Errorf("%w: %v is not a whole number", ErrInvalidQuantity, f)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidQuantity, f)
	}
	if f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v", ErrQuantityTooLarge, f)
	}
	return int(f), nil
}
