package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/modules/roster/domain/match"
	"github.com/iota-uz/utilization/modules/roster/domain/personname"
	"github.com/iota-uz/utilization/pkg/isoweek"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

type stubMatcher struct {
	result match.Result
	calls  []string
}

func (m *stubMatcher) Match(_ context.Context, normalizedName, orgUnit string) match.Result {
	m.calls = append(m.calls, normalizedName+"|"+orgUnit)
	return m.result
}

func cells(values ...string) []spreadsheet.Cell {
	out := make([]spreadsheet.Cell, len(values))
	for i, v := range values {
		out[i] = spreadsheet.NewCell(v)
	}
	return out
}

func workloadLayout(t *testing.T, headers ...string) *plan.Layout {
	t.Helper()
	f := format.Workload()
	l, err := DetectLayout(f, headers)
	require.NoError(t, err)
	_, err = ResolveReference(f, nil, l, importClock())
	require.NoError(t, err)
	return l
}

func TestProcessRow_WorkloadScenario(t *testing.T) {
	t.Parallel()

	m := &stubMatcher{result: match.Matched("e1")}
	l := workloadLayout(t, "Name", "CC", "Team", "KW 33", "KW 34", "KW 35")

	e, err := NewRowProcessor(m).ProcessRow(context.Background(),
		cells("Müller, Hans", "IT Services", "", "40", "35", "30"), 2, l, isoweek.Week{Year: 2025, Week: 33})
	require.NoError(t, err)

	require.Equal(t, "mueller|hans", e.NormalizedName)
	require.Equal(t, "Müller", e.LastName)
	require.Equal(t, "Hans", e.FirstName)
	require.Equal(t, "IT Services", e.OrgUnit)
	require.Nil(t, e.Fields.Team)
	require.Equal(t, match.Matched("e1"), e.Match)
	require.Equal(t, []string{"mueller|hans|IT Services"}, m.calls)

	require.Len(t, e.Periods, 3)
	for i, want := range []string{"2025-W33", "2025-W34", "2025-W35"} {
		require.Equal(t, want, e.Periods[i].IsoKey)
		require.Equal(t, i, e.Periods[i].PeriodIndex)
		require.Nil(t, e.Periods[i].Plan)
	}
	require.Equal(t, "40", e.Periods[0].Workload.Utilization.String())
	require.Equal(t, "30", e.Periods[2].Workload.Utilization.String())
}

func TestProcessRow_EmptyPolicy(t *testing.T) {
	t.Parallel()

	l := workloadLayout(t, "Name", "CC", "KW 33", "KW 34", "KW 35")
	p := NewRowProcessor(&stubMatcher{})
	ref := isoweek.Week{Year: 2025, Week: 33}

	e, err := p.ProcessRow(context.Background(), cells("Doe, Jane", "HR", "", "40,5", "n/a"), 3, l, ref)
	require.NoError(t, err)
	require.Equal(t, "0", e.Periods[0].Workload.Utilization.String())
	require.Equal(t, "40.5", e.Periods[1].Workload.Utilization.String())
	// Text stays null whatever the policy says about empty cells.
	require.False(t, e.Periods[2].Workload.Utilization.Valid())

	l.Empty = format.EmptyAsNull
	e, err = p.ProcessRow(context.Background(), cells("Doe, Jane", "HR", "", "1", "2"), 3, l, ref)
	require.NoError(t, err)
	require.False(t, e.Periods[0].Workload.Utilization.Valid())
	require.Equal(t, match.StatusUnmatched, e.Match.Status())
}

func TestProcessRow_TripletsDeriveUnclampedUtilization(t *testing.T) {
	t.Parallel()

	f := format.Einsatzplan()
	l, err := DetectLayout(f, []string{"Name", "CC", "Rolle", "Proj", "NKV (%)", "Ort", "Proj.1", "NKV (%).1", "Ort.1", "Proj.2", "NKV (%).2", "Ort.2"})
	require.NoError(t, err)
	l.Weeks = []isoweek.Week{{Year: 2025, Week: 33}, {Year: 2025, Week: 34}, {Year: 2025, Week: 35}}

	e, err := NewRowProcessor(&stubMatcher{}).ProcessRow(context.Background(),
		cells("Müller, Hans", "IT Services", "Dev", "P1", "120", "Berlin", "P2", "0", "", "", "", ""), 4, l, l.Weeks[0])
	require.NoError(t, err)

	require.Equal(t, "Dev", *e.Fields.Role)
	p0, p1, p2 := e.Periods[0].Plan, e.Periods[1].Plan, e.Periods[2].Plan
	require.Equal(t, "P1", *p0.Project)
	require.Equal(t, "120", p0.NKV.String())
	require.Equal(t, "-20", p0.Utilization.String())
	require.Equal(t, "Berlin", *p0.Location)

	require.Equal(t, "100", p1.Utilization.String())
	require.Nil(t, p1.Location)

	require.Nil(t, p2.Project)
	require.False(t, p2.NKV.Valid())
	require.False(t, p2.Utilization.Valid())
}

func TestProcessRow_HugeExponentIsNull(t *testing.T) {
	t.Parallel()

	f := format.Einsatzplan()
	l, err := DetectLayout(f, []string{"Name", "CC", "Proj", "NKV (%)", "Ort"})
	require.NoError(t, err)
	l.Weeks = []isoweek.Week{{Year: 2025, Week: 33}}

	e, err := NewRowProcessor(&stubMatcher{}).ProcessRow(context.Background(),
		cells("Müller, Hans", "IT Services", "P1", "1e-50000000", "Berlin"), 4, l, l.Weeks[0])
	require.NoError(t, err)
	p := e.Periods[0].Plan
	require.False(t, p.NKV.Valid())
	require.False(t, p.Utilization.Valid())
	require.Equal(t, "P1", *p.Project)
}

func TestProcessRow_Errors(t *testing.T) {
	t.Parallel()

	l := workloadLayout(t, "Name", "CC", "KW 33")
	ref := isoweek.Week{Year: 2025, Week: 33}
	m := &stubMatcher{}
	p := NewRowProcessor(m)

	cases := []struct {
		name string
		row  []spreadsheet.Cell
		want error
	}{
		{name: "missing name", row: cells("", "IT", "1"), want: ErrMissingName},
		{name: "no comma", row: cells("Hans Mueller", "IT", "1"), want: personname.ErrInvalidFormat},
		{name: "empty first name", row: cells("Mueller, ", "IT", "1"), want: personname.ErrInvalidComponents},
		{name: "missing org unit", row: cells("Mueller, Hans", "  ", "1"), want: ErrMissingOrgUnit},
		{name: "short row", row: cells("Mueller, Hans"), want: ErrMissingOrgUnit},
		{name: "pipe in org unit", row: cells("Mueller, Hans", "IT|Ops", "1"), want: ErrOrgUnitSeparator},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := p.ProcessRow(context.Background(), tc.row, 7, l, ref)
			require.Nil(t, e)
			require.ErrorIs(t, err, tc.want)

			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			require.Equal(t, 7, rowErr.Row)
			require.Contains(t, err.Error(), "row 7: ")
		})
	}
	require.Empty(t, m.calls)
}

func TestProcessRow_MissingNameColumn(t *testing.T) {
	t.Parallel()

	l := workloadLayout(t, "Mitarbeiter", "CC", "KW 33")
	_, err := NewRowProcessor(&stubMatcher{}).ProcessRow(context.Background(),
		cells("Mueller, Hans", "IT", "1"), 2, l, isoweek.Week{Year: 2025, Week: 33})
	require.ErrorIs(t, err, ErrMissingName)
}
