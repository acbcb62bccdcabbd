package spreadsheet_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	require.NoError(t, f.DeleteSheet("Sheet1"))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestWorkbook_RowsArePaddedAndTyped(t *testing.T) {
	blob := buildWorkbook(t, "Auslastung", [][]interface{}{
		{"Name", "CC", "KW 33"},
		{"Müller, Hans", "IT Services", 40},
		{"Doe, Jane"},
	})

	require.NoError(t, spreadsheet.CheckContentType(blob))

	wb, err := spreadsheet.OpenBytes(blob)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()

	require.Equal(t, []string{"Auslastung"}, wb.SheetNames())

	rows, err := wb.Rows("Auslastung")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		require.Len(t, r, 3)
	}

	require.Equal(t, []string{"Name", "CC", "KW 33"}, spreadsheet.Strings(rows[0]))
	v, ok := rows[1][2].Decimal()
	require.True(t, ok)
	require.Equal(t, "40", v.String())
	require.True(t, rows[2][1].IsEmpty())

	_, err = wb.Rows("Einsatzplan")
	require.ErrorIs(t, err, spreadsheet.ErrSheetNotFound)
}

func TestCheckContentType_RejectsText(t *testing.T) {
	err := spreadsheet.CheckContentType([]byte("Name;CC\nMüller, Hans;IT\n"))
	require.ErrorIs(t, err, spreadsheet.ErrNotWorkbook)
}
