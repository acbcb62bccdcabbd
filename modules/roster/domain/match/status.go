package match

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStatus = errors.New("unknown match status")

// ParseStatus reads a status filter. The empty string means any status.
func ParseStatus(v string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(v))); s {
	case "", StatusMatched, StatusUnmatched, StatusDuplicate:
		return s, nil
	default:
		return "", fmt.Errorf("%w %q (expected matched|unmatched|duplicate)", ErrUnknownStatus, v)
	}
}
