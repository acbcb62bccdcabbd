package spreadsheet

import (
	"regexp"
	"strconv"
	"strings"
)

// RepeatWindow is the widest column distance allowed between the three members of a
// repeated (unsuffixed) triplet.
const RepeatWindow = 10

// TripletNames are the three header names that make up one period block.
type TripletNames struct {
	A, B, C string
}

// Triplet holds the column indexes of one period block, in period order.
type Triplet struct {
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
}

// PeriodColumn is a "KW n" header: its column and the week number it names.
type PeriodColumn struct {
	Index int `json:"index"`
	Week  int `json:"week"`
}

// DetectNamedColumn returns the first column whose trimmed header equals name,
// ignoring case, or -1.
func DetectNamedColumn(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// HeaderIndex maps lower-cased, trimmed header names to their first column.
func HeaderIndex(headers []string) map[string]int {
	m := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, ok := m[key]; !ok {
			m[key] = i
		}
	}
	return m
}

// DetectTriplets finds the bare triplet (period 0) and then "<name>.1", "<name>.2", ...
// Detection stops at the first suffix for which any of the three names is missing.
func DetectTriplets(headers []string, names TripletNames) []Triplet {
	idx := HeaderIndex(headers)
	lookup := func(suffix string) (Triplet, bool) {
		a, okA := idx[strings.ToLower(names.A+suffix)]
		b, okB := idx[strings.ToLower(names.B+suffix)]
		c, okC := idx[strings.ToLower(names.C+suffix)]
		if !okA || !okB || !okC {
			return Triplet{}, false
		}
		return Triplet{A: a, B: b, C: c}, true
	}

	base, ok := lookup("")
	if !ok {
		return nil
	}
	out := []Triplet{base}
	for n := 1; ; n++ {
		t, ok := lookup("." + strconv.Itoa(n))
		if !ok {
			return out
		}
		out = append(out, t)
	}
}

// DetectRepeatedTriplets finds triplets whose headers repeat verbatim once per period.
// From the current position it takes the next occurrence of each name; all three must
// lie within window columns of each other, and the scan resumes after the right-most.
func DetectRepeatedTriplets(headers []string, names TripletNames, window int) []Triplet {
	if window <= 0 {
		window = RepeatWindow
	}
	next := func(from int, name string) int {
		for i := from; i < len(headers); i++ {
			if strings.EqualFold(strings.TrimSpace(headers[i]), name) {
				return i
			}
		}
		return -1
	}

	var out []Triplet
	pos := 0
	for pos < len(headers) {
		a := next(pos, names.A)
		b := next(pos, names.B)
		c := next(pos, names.C)
		if a < 0 || b < 0 || c < 0 {
			break
		}
		lo, hi := min(a, b, c), max(a, b, c)
		if hi-lo > window {
			break
		}
		out = append(out, Triplet{A: a, B: b, C: c})
		pos = hi + 1
	}
	return out
}

var kwHeaderRe = regexp.MustCompile(`(?i)^KW\s*(?:\d{2}/(\d+)|(\d+))$`)

// ParseKWHeader reads the week number from "KW 33" or "KW 25/01" (two-digit year
// first, discarded). It reports false for other headers and weeks outside [1,53].
func ParseKWHeader(header string) (int, bool) {
	m := kwHeaderRe.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return 0, false
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	week, err := strconv.Atoi(digits)
	if err != nil || week < 1 || week > 53 {
		return 0, false
	}
	return week, true
}

// DetectPeriodColumns returns every week-number header in column order.
func DetectPeriodColumns(headers []string) []PeriodColumn {
	var out []PeriodColumn
	for i, h := range headers {
		if week, ok := ParseKWHeader(h); ok {
			out = append(out, PeriodColumn{Index: i, Week: week})
		}
	}
	return out
}
