// Package isoweek implements ISO-8601 week numbering.
//
// Every conversion from a (year, week) pair to a calendar date goes through the
// Jan-4 anchor: January 4th always lies in week 1 of its ISO year.
package isoweek

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const day = 24 * time.Hour

var (
	ErrInvalidFormat = errors.New("invalid date format")
	ErrInvalidDate   = errors.New("invalid calendar date")
	ErrMissingPeriod = errors.New("missing week declaration")
	ErrMissingDate   = errors.New("missing generation date")
)

// Week is an ISO-8601 (year, week) pair.
type Week struct {
	Year int `json:"isoYear"`
	Week int `json:"isoWeek"`
}

func (w Week) Key() string { return Key(w.Year, w.Week) }

func (w Week) String() string { return w.Key() }

// Monday returns the first day of the week in UTC.
func (w Week) Monday() time.Time { return StartOfWeek(w.Year, w.Week) }

// Of returns the ISO week containing t (date part only, in t's location).
func Of(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Week: w}
}

// Key formats a week as "YYYY-Wnn".
func Key(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

var keyRe = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// ParseKey is the inverse of Key. It reports false for malformed input and for
// week numbers outside [1,53].
func ParseKey(key string) (Week, bool) {
	m := keyRe.FindStringSubmatch(key)
	if m == nil {
		return Week{}, false
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	if week < 1 || week > 53 {
		return Week{}, false
	}
	return Week{Year: year, Week: week}, true
}

// StartOfWeek returns the Monday (00:00 UTC) of the given ISO week.
func StartOfWeek(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	// time.Sunday == 0; ISO weekdays run Monday=1..Sunday=7.
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}

// Offset shifts (year, week) by delta weeks. The result is re-derived from an actual
// calendar date, so 52- and 53-week years roll over correctly.
func Offset(year, week, delta int) (Week, string) {
	w := Of(StartOfWeek(year, week).AddDate(0, 0, delta*7))
	return w, w.Key()
}

// WeeksInYear returns 52 or 53.
func WeeksInYear(year int) int {
	// Dec 28 is always in the last ISO week of its year.
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// Between returns the signed number of weeks from a to b.
func Between(a, b Week) int {
	return int(b.Monday().Sub(a.Monday()) / (7 * day))
}

// NextWithNumber returns the first week at or after from whose week number is n.
func NextWithNumber(from Week, n int) (Week, bool) {
	if n < 1 || n > 53 {
		return Week{}, false
	}
	cur := from
	// Two ISO years cover every week number, including a 53rd week.
	for i := 0; i < 2*53+1; i++ {
		if cur.Week == n {
			return cur, true
		}
		cur, _ = Offset(cur.Year, cur.Week, 1)
	}
	return Week{}, false
}

var localDateRe = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)

// ParseLocalDate parses "D.M.YYYY" / "DD.MM.YYYY" into a UTC date.
func ParseLocalDate(text string) (time.Time, error) {
	m := localDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	d, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow (Feb 30 -> Mar 2); reject anything that moved.
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	return t, nil
}

// Declaration is the reporting period and export date a file declares about itself.
type Declaration struct {
	PeriodWeek  int
	PeriodYear  int
	GeneratedAt time.Time
}

func (d Declaration) Period() Week { return Week{Year: d.PeriodYear, Week: d.PeriodWeek} }

var (
	periodRe = regexp.MustCompile(`(?i)KW\s*(\d{1,2})\s*\(\s*(\d{4})\s*\)`)
	standRe  = regexp.MustCompile(`(?i)Stand:\s*(\d{1,2}\.\d{1,2}\.\d{4})`)
)

// ParseDeclaration extracts "KW <n> (<yyyy>)" and "Stand: <d>.<m>.<yyyy>" from free text.
func ParseDeclaration(text string) (Declaration, error) {
	pm := periodRe.FindStringSubmatch(text)
	if pm == nil {
		return Declaration{}, ErrMissingPeriod
	}
	week, _ := strconv.Atoi(pm[1])
	year, _ := strconv.Atoi(pm[2])
	if week < 1 || week > 53 {
		return Declaration{}, fmt.Errorf("%w: week %d out of range", ErrMissingPeriod, week)
	}

	sm := standRe.FindStringSubmatch(text)
	if sm == nil {
		return Declaration{}, ErrMissingDate
	}
	generatedAt, err := ParseLocalDate(sm[1])
	if err != nil {
		return Declaration{}, err
	}
	return Declaration{PeriodWeek: week, PeriodYear: year, GeneratedAt: generatedAt}, nil
}
