package spreadsheet

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
)

// Cell is a decoded spreadsheet value. Raw cell strings are classified once, by
// NewCell, and consumed as this closed type everywhere else.
type Cell struct {
	kind Kind
	text string
	num  decimal.Decimal
}

var Empty = Cell{}

// NewCell classifies a raw cell string. Blank strings become Empty; strings that parse
// as a number (with "." or a German "," decimal separator) become numbers; anything
// else is text. Text keeps its trimmed form.
func NewCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Empty
	}
	if d, ok := ParseNumber(s); ok {
		return Cell{kind: KindNumber, text: s, num: d}
	}
	return Cell{kind: KindText, text: s}
}

func Number(d decimal.Decimal) Cell {
	return Cell{kind: KindNumber, text: d.String(), num: d}
}

// Text builds a text cell without numeric classification.
func Text(s string) Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return Empty
	}
	return Cell{kind: KindText, text: s}
}

func (c Cell) Kind() Kind     { return c.kind }
func (c Cell) IsEmpty() bool  { return c.kind == KindEmpty }
func (c Cell) IsNumber() bool { return c.kind == KindNumber }

// String returns the trimmed textual form; numbers keep the spelling they were read with.
func (c Cell) String() string { return c.text }

// Decimal returns the numeric value, if the cell holds one.
func (c Cell) Decimal() (decimal.Decimal, bool) {
	if c.kind != KindNumber {
		return decimal.Zero, false
	}
	return c.num, true
}

// plainNumberRe is the only numeric shape accepted. Exponents are limited to two
// digits so decimal arithmetic never rescales to an absurd precision.
var plainNumberRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d{1,2})?$`)

// ParseNumber accepts plain decimals, German decimal commas ("40,5") and
// a trailing percent sign ("40 %"). Thousands separators are not supported.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if !plainNumberRe.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
