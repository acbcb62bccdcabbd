package match

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult_JSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		want string
		r    Result
	}{
		{`{"status":"matched","employeeId":"e1"}`, Matched("e1")},
		{`{"status":"unmatched"}`, Unmatched()},
		{`{"status":"duplicate","employeeIds":["e1","e2"]}`, Duplicate([]string{"e2", "e1"})},
	}
	for _, tc := range cases {
		want, r := tc.want, tc.r
		data, err := json.Marshal(r)
		require.NoError(t, err)
		require.JSONEq(t, want, string(data))

		var back Result
		require.NoError(t, json.Unmarshal(data, &back))
		require.Equal(t, r, back)
	}
}

func TestResult_RejectsInvalidJSON(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		`{"status":"matched"}`,
		`{"status":"duplicate","employeeIds":["e1"]}`,
		`{"status":"maybe"}`,
	} {
		var r Result
		require.Error(t, json.Unmarshal([]byte(in), &r), in)
	}
}

func TestResult_ZeroValueIsUnmatched(t *testing.T) {
	t.Parallel()

	var r Result
	require.Equal(t, StatusUnmatched, r.Status())
	_, ok := r.EmployeeID()
	require.False(t, ok)
	require.Equal(t, "unmatched", r.String())
	require.Equal(t, "duplicate[a b]", Duplicate([]string{"b", "a"}).String())
}
