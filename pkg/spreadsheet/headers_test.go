package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var planTriplet = TripletNames{A: "Proj", B: "NKV (%)", C: "Ort"}

func TestDetectNamedColumn(t *testing.T) {
	t.Parallel()

	headers := []string{"Name", " cc ", "Team", "CC"}
	require.Equal(t, 0, DetectNamedColumn(headers, "name"))
	require.Equal(t, 1, DetectNamedColumn(headers, "CC"))
	require.Equal(t, -1, DetectNamedColumn(headers, "Standort"))
}

func TestDetectTriplets(t *testing.T) {
	t.Parallel()

	got := DetectTriplets([]string{"Name", "Proj", "NKV (%)", "Ort"}, planTriplet)
	require.Equal(t, []Triplet{{A: 1, B: 2, C: 3}}, got)

	got = DetectTriplets([]string{"Name", "Proj", "NKV (%)", "Ort", "Proj.1", "NKV (%).1", "Ort.1"}, planTriplet)
	require.Equal(t, []Triplet{{A: 1, B: 2, C: 3}, {A: 4, B: 5, C: 6}}, got)

	// ".1" misses a member, so ".2" is never reached.
	got = DetectTriplets([]string{
		"Name", "Proj", "NKV (%)", "Ort",
		"Proj.1", "Ort.1",
		"Proj.2", "NKV (%).2", "Ort.2",
	}, planTriplet)
	require.Equal(t, []Triplet{{A: 1, B: 2, C: 3}}, got)

	require.Empty(t, DetectTriplets([]string{"Name", "Proj.1", "NKV (%).1", "Ort.1"}, planTriplet))
}

func TestDetectRepeatedTriplets(t *testing.T) {
	t.Parallel()

	headers := []string{"Name", "CC", "Proj", "NKV (%)", "Ort", "Proj", "NKV (%)", "Ort", "Proj", "NKV (%)", "Ort"}
	got := DetectRepeatedTriplets(headers, planTriplet, RepeatWindow)
	require.Equal(t, []Triplet{{2, 3, 4}, {5, 6, 7}, {8, 9, 10}}, got)

	// The third block's "Ort" is too far away.
	far := []string{"Proj", "NKV (%)", "Ort", "Proj", "NKV (%)"}
	for i := 0; i < 12; i++ {
		far = append(far, "x")
	}
	far = append(far, "Ort")
	got = DetectRepeatedTriplets(far, planTriplet, RepeatWindow)
	require.Equal(t, []Triplet{{0, 1, 2}}, got)

	require.Empty(t, DetectRepeatedTriplets([]string{"Name", "Proj", "Ort"}, planTriplet, 0))
}

func TestParseKWHeader(t *testing.T) {
	t.Parallel()

	week, ok := ParseKWHeader("KW 33")
	require.True(t, ok)
	require.Equal(t, 33, week)

	week, ok = ParseKWHeader("KW 25/01")
	require.True(t, ok)
	require.Equal(t, 1, week)

	week, ok = ParseKWHeader("kw7")
	require.True(t, ok)
	require.Equal(t, 7, week)

	for _, bad := range []string{"KW 54", "KW 0", "Week 33", "KW", "KW 25/", "KW 33 (2025)", ""} {
		_, ok := ParseKWHeader(bad)
		require.False(t, ok, bad)
	}
}

func TestDetectPeriodColumns(t *testing.T) {
	t.Parallel()

	got := DetectPeriodColumns([]string{"Name", "CC", "KW 33", "Summe", "KW 34", "KW 25/35", "KW 99"})
	require.Equal(t, []PeriodColumn{{Index: 2, Week: 33}, {Index: 4, Week: 34}, {Index: 5, Week: 35}}, got)
}

func TestHeaderIndex_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	idx := HeaderIndex([]string{"Team", "", "team", "Standort"})
	require.Equal(t, map[string]int{"team": 0, "standort": 3}, idx)
}
