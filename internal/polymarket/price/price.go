// Package price handles price values from Polymarket APIs
// without losing precision.
package price

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Price is a fixed-point price with six decimal places.
// Polymarket quotes live in [0, 1], so int64 leaves plenty of headroom.
type Price int64

var _ json.Unmarshaler = (*Price)(nil)

const Scale int64 = 1_000_000

// Parse converts a decimal string like "0.81" into a Price.
// Fractional digits past the sixth are truncated.
func Parse(s string) (Price, error) {
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}

	var res int64
	i := 0

	for i < len(s) && s[i] != '.' {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		res = res*10 + int64(s[i]-'0')*Scale
		i++
	}

	if i < len(s) && s[i] == '.' {
		i++
		mult := Scale
		for i < len(s) {
			if s[i] < '0' || s[i] > '9' {
				return 0, fmt.Errorf("invalid price %q", s)
			}
			mult /= 10
			res += int64(s[i]-'0') * mult
			i++
		}
	}

	return Price(res), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	if len(data) > 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	// Else we assume that it is a raw number.

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// FromFloat converts a float to a Price, rounding to six decimals.
func FromFloat(f float64) Price {
	return Price(math.Round(f * float64(Scale)))
}

func (p Price) Float64() float64 {
	return float64(p) / float64(Scale)
}

func (p Price) String() string {
	return strconv.FormatFloat(p.Float64(), 'f', -1, 64)
}
