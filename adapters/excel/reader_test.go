package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("age, wbc ,UTI\n40,12.5,1\n31, 6 ,0\n"), 0o644))

	r := NewDataReader(path, nil)
	assert.Equal(t, "csv", r.FileType())
	data, err := r.ReadData()
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "wbc", "UTI"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "6", data.Rows[1]["wbc"])

	wbc, err := data.Floats("wbc")
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5, 6}, wbc)
	assert.Equal(t, 2, data.Column("UTI"))
	assert.Equal(t, -1, data.Column("nope"))
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(SheetName, "A1", &[]any{"age", "UTI"}))
	require.NoError(t, f.SetSheetRow(SheetName, "A2", &[]any{44.5, 1}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	data, err := NewDataReader(path, nil).ReadData()
	require.NoError(t, err)
	age, err := data.Floats("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{44.5}, age)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewDataReader(filepath.Join(dir, "missing.csv"), nil).ReadData()
	assert.ErrorContains(t, err, "not found")

	headerOnly := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("age\n"), 0o644))
	_, err = NewDataReader(headerOnly, nil).ReadData()
	assert.Error(t, err)

	dup := filepath.Join(dir, "dup.csv")
	require.NoError(t, os.WriteFile(dup, []byte("age,age\n1,2\n"), 0o644))
	_, err = NewDataReader(dup, nil).ReadData()
	assert.ErrorContains(t, err, "duplicate")

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("age\nold\n"), 0o644))
	data, err := NewDataReader(bad, nil).ReadData()
	require.NoError(t, err)
	_, err = data.Floats("age")
	assert.ErrorContains(t, err, "row 2")
	_, err = data.Floats("wbc")
	assert.Error(t, err)
}
