package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.csv")
	content := "Owner List,,\nName,Hand Phone,Unit\nAli,012-345 6789,A-1\nSiti,,B-2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rows, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Owner List", rows[0].Cell(0))
	assert.Nil(t, rows[0].Cell(1))
	assert.Equal(t, "Hand Phone", rows[1].Cell(1))
	assert.Equal(t, "012-345 6789", rows[2].Cell(1))
	assert.Nil(t, rows[3].Cell(1))
}

func TestLoad_CSVRagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\nb,c,d\n"), 0644))

	rows, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Cell(2))
	assert.Equal(t, "d", rows[1].Cell(2))
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Name"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Mobile"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Ali"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "0123456789"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "Siti"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Mobile", rows[0].Cell(1))
	assert.Equal(t, "0123456789", rows[1].Cell(1))
	assert.Nil(t, rows[2].Cell(1))
}

func TestLoad_XLSXNamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("Owners")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Owners", "A1", "Telephone No."))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := Load(path, Options{Sheet: "Owners"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Telephone No.", rows[0].Cell(0))

	_, err = Load(path, Options{Sheet: "Missing"})
	assert.Error(t, err)
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load("contacts.ods", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.Error(t, err)
}

func TestRowCell_OutOfRange(t *testing.T) {
	r := Row{"a"}
	assert.Nil(t, r.Cell(-1))
	assert.Nil(t, r.Cell(5))
}
