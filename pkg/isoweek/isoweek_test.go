package isoweek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOf_YearBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   time.Time
		want Week
	}{
		{in: date(2024, time.December, 30), want: Week{Year: 2025, Week: 1}},
		{in: date(2021, time.January, 3), want: Week{Year: 2020, Week: 53}},
		{in: date(2026, time.January, 1), want: Week{Year: 2026, Week: 1}},
		{in: date(2027, time.January, 1), want: Week{Year: 2026, Week: 53}},
		{in: date(2025, time.August, 17), want: Week{Year: 2025, Week: 33}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Of(tc.in), tc.in.Format("2006-01-02"))
	}
}

func TestStartOfWeek(t *testing.T) {
	t.Parallel()

	require.Equal(t, date(2024, time.December, 30), StartOfWeek(2025, 1))
	require.Equal(t, date(2025, time.August, 11), StartOfWeek(2025, 33))
	require.Equal(t, date(2020, time.December, 28), StartOfWeek(2020, 53))
	require.Equal(t, time.Monday, StartOfWeek(2031, 17).Weekday())
}

func TestKeyAndParseKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2025-W03", Key(2025, 3))
	for year := 1999; year <= 2031; year++ {
		for week := 1; week <= 53; week++ {
			got, ok := ParseKey(Key(year, week))
			require.True(t, ok)
			require.Equal(t, Week{Year: year, Week: week}, got)
		}
	}

	for _, bad := range []string{"", "2025-W00", "2025-W54", "2025-W5", "2025W05", "25-W05", "2025-w05", " 2025-W05", "2025-W05x"} {
		_, ok := ParseKey(bad)
		require.False(t, ok, bad)
	}
}

func TestOffset_RollsOverYears(t *testing.T) {
	t.Parallel()

	w, key := Offset(2025, 52, 1)
	require.Equal(t, Week{Year: 2026, Week: 1}, w)
	require.Equal(t, "2026-W01", key)

	w, _ = Offset(2020, 52, 1)
	require.Equal(t, Week{Year: 2020, Week: 53}, w)

	w, _ = Offset(2021, 1, -1)
	require.Equal(t, Week{Year: 2020, Week: 53}, w)

	w, _ = Offset(2025, 33, 0)
	require.Equal(t, Week{Year: 2025, Week: 33}, w)
}

func TestOffset_RoundTrip(t *testing.T) {
	t.Parallel()

	for year := 2018; year <= 2028; year++ {
		for week := 1; week <= WeeksInYear(year); week++ {
			for _, d := range []int{-110, -53, -52, -1, 0, 1, 7, 52, 53, 104} {
				fwd, _ := Offset(year, week, d)
				back, _ := Offset(fwd.Year, fwd.Week, -d)
				require.Equal(t, Week{Year: year, Week: week}, back, "start %d-W%02d delta %d", year, week, d)
			}
		}
	}
}

func TestWeeksInYear(t *testing.T) {
	t.Parallel()

	require.Equal(t, 53, WeeksInYear(2020))
	require.Equal(t, 52, WeeksInYear(2025))
	require.Equal(t, 53, WeeksInYear(2026))
}

func TestBetweenAndNextWithNumber(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2, Between(Week{2025, 33}, Week{2025, 35}))
	require.Equal(t, 1, Between(Week{2025, 52}, Week{2026, 1}))
	require.Equal(t, -1, Between(Week{2026, 1}, Week{2025, 52}))

	got, ok := NextWithNumber(Week{2025, 51}, 2)
	require.True(t, ok)
	require.Equal(t, Week{2026, 2}, got)

	got, ok = NextWithNumber(Week{2025, 33}, 33)
	require.True(t, ok)
	require.Equal(t, Week{2025, 33}, got)

	got, ok = NextWithNumber(Week{2025, 10}, 53)
	require.True(t, ok)
	require.Equal(t, Week{2026, 53}, got)

	_, ok = NextWithNumber(Week{2025, 10}, 0)
	require.False(t, ok)
}

func TestParseLocalDate(t *testing.T) {
	t.Parallel()

	got, err := ParseLocalDate("17.08.2025")
	require.NoError(t, err)
	require.Equal(t, date(2025, time.August, 17), got)

	got, err = ParseLocalDate("1.2.2024")
	require.NoError(t, err)
	require.Equal(t, date(2024, time.February, 1), got)

	got, err = ParseLocalDate("29.02.2024")
	require.NoError(t, err)
	require.Equal(t, date(2024, time.February, 29), got)

	for _, bad := range []string{"2025-08-17", "17.08.25", "17/08/2025", "117.08.2025", ""} {
		_, err := ParseLocalDate(bad)
		require.ErrorIs(t, err, ErrInvalidFormat, bad)
	}
	for _, bad := range []string{"30.02.2025", "29.02.2025", "31.04.2025", "00.01.2025", "10.13.2025"} {
		_, err := ParseLocalDate(bad)
		require.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestParseDeclaration(t *testing.T) {
	t.Parallel()

	d, err := ParseDeclaration("Einsatzplan-Export für KW 33 (2025). Stand: 17.08.2025")
	require.NoError(t, err)
	require.Equal(t, 33, d.PeriodWeek)
	require.Equal(t, 2025, d.PeriodYear)
	require.True(t, d.GeneratedAt.Equal(date(2025, time.August, 17)))
	require.Equal(t, Week{2025, 33}, d.Period())

	d, err = ParseDeclaration("stand: 2.1.2026 -- kw2(2026)")
	require.NoError(t, err)
	require.Equal(t, Week{2026, 2}, d.Period())

	_, err = ParseDeclaration("Stand: 17.08.2025")
	require.ErrorIs(t, err, ErrMissingPeriod)

	_, err = ParseDeclaration("KW 33 (2025)")
	require.ErrorIs(t, err, ErrMissingDate)

	_, err = ParseDeclaration("KW 33 (2025) Stand: 31.02.2025")
	require.ErrorIs(t, err, ErrInvalidDate)
}
