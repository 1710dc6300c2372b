package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a currency-denominated figure reported by the upstream service.
// It decodes from a JSON number, a numeric string, or null; null and absent
// fields decode to zero. Any other shape is rejected.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding amount %s: %w", raw, err)
		}
		if s == "" {
			*a = 0
			return nil
		}
		raw = s
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("decoding amount %s: %w", string(data), err)
	}
	*a = Amount(d.InexactFloat64())
	return nil
}

// Float64 returns the amount as a plain float64.
func (a Amount) Float64() float64 {
	return float64(a)
}
