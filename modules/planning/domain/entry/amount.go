package entry

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a nullable decimal that encodes as a JSON number or null.
type Amount struct {
	value decimal.Decimal
	valid bool
}

var Null = Amount{}

func AmountOf(d decimal.Decimal) Amount {
	return Amount{value: d, valid: true}
}

func (a Amount) Valid() bool { return a.valid }

func (a Amount) Decimal() (decimal.Decimal, bool) {
	return a.value, a.valid
}

func (a Amount) String() string {
	if !a.valid {
		return "null"
	}
	return a.value.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return []byte(a.value.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Null
		return nil
	}
	d, err := decimal.NewFromString(string(bytes.Trim(data, `"`)))
	if err != nil {
		return fmt.Errorf("decode amount %s: %w", data, err)
	}
	*a = AmountOf(d)
	return nil
}
