// Package personname parses "Last, First" roster names into identity keys.
package personname

import (
	"errors"
	"strings"

	"github.com/iota-uz/utilization/pkg/textnorm"
)

var (
	ErrInvalidFormat     = errors.New("name must be in \"Last, First\" format")
	ErrInvalidComponents = errors.New("name has an empty last or first name")
)

// KeySeparator joins the normalized last and first name.
const KeySeparator = "|"

type Name struct {
	LastName      string
	FirstName     string
	NormalizedKey string
	RawName       string
}

// Parse splits raw at its first comma. Everything after that comma is the first name.
func Parse(raw string) (Name, error) {
	last, first, ok := strings.Cut(raw, ",")
	if !ok {
		return Name{}, ErrInvalidFormat
	}
	last, first = strings.TrimSpace(last), strings.TrimSpace(first)
	if last == "" || first == "" {
		return Name{}, ErrInvalidComponents
	}
	return Name{
		LastName:      last,
		FirstName:     first,
		NormalizedKey: Key(last, first),
		RawName:       strings.TrimSpace(raw),
	}, nil
}

// ParseLenient never fails: without a comma the whole string becomes the last name.
func ParseLenient(raw string) Name {
	last, first, _ := strings.Cut(raw, ",")
	n := Name{
		LastName:  strings.TrimSpace(last),
		FirstName: strings.TrimSpace(first),
		RawName:   strings.TrimSpace(raw),
	}
	n.NormalizedKey = Key(n.LastName, n.FirstName)
	return n
}

func Key(last, first string) string {
	return textnorm.Normalize(last) + KeySeparator + textnorm.Normalize(first)
}

// Display renders "First Last" with diacritics folded and case kept.
func (n Name) Display() string {
	if n.FirstName == "" {
		return textnorm.NormalizeDisplay(n.LastName)
	}
	return textnorm.NormalizeDisplay(n.FirstName + " " + n.LastName)
}
