package exporter

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"recordformatter/records"
)

func sampleRecords() []records.OutputRecord {
	return []records.OutputRecord{
		{
			Row:                   2,
			Name:                  records.Present("Marie, Durand, Blanc"),
			FirstName:             records.Present("Marie"),
			LastName:              records.Present("Durand"),
			MaidenName:            records.Present("Blanc"),
			FormattedDate:         records.Present("23/05/1939"),
			FormattedAddress:      records.Present("262 CH DE GIBBES, MARSEILLE"),
			FormattedBirthCountry: records.Present("ORAN, ALGERIE"),
			AdditionalInfo:        records.Present(`Rapatriée en 1962, "Les Pins"`),
			ResolvedCode:          "13055",
		},
		{
			Row:              3,
			Name:             records.Present("Jean, Martin"),
			FirstName:        records.Present("Jean"),
			LastName:         records.Present("Martin"),
			FormattedAddress: records.Missing(),
			ResolvedCode:     "UNRESOLVED",
		},
	}
}

func headers(columns []Column) []string {
	result := make([]string, len(columns))
	for i, column := range columns {
		result[i] = column.Header
	}
	return result
}

func TestColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"Name", "Formatted Date", "Formatted Address", "Formatted Birth Country", "Additional Info"},
		headers(Columns(Options{})))

	assert.Equal(t,
		[]string{"First Name", "Last Name", "Maiden Name", "Formatted Date", "Formatted Address",
			"Formatted Birth Country", "Additional Info", "Resolved Code"},
		headers(Columns(Options{NameMode: NameParts, IncludeCode: true})))
}

func TestExportToExcel(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, sampleRecords(), Options{Format: FormatExcel, IncludeCode: true})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheetName}, f.GetSheetList())

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, headers(Columns(Options{IncludeCode: true})), rows[0])
	assert.Equal(t, []string{"Marie, Durand, Blanc", "23/05/1939", "262 CH DE GIBBES, MARSEILLE",
		"ORAN, ALGERIE", `Rapatriée en 1962, "Les Pins"`, "13055"}, rows[1])

	// Отсутствующие значения остаются пустыми ячейками
	address, err := f.GetCellValue(DefaultSheetName, "C3")
	require.NoError(t, err)
	assert.Empty(t, address)
	code, err := f.GetCellValue(DefaultSheetName, "F3")
	require.NoError(t, err)
	assert.Equal(t, "UNRESOLVED", code)
}

func TestExportToExcel_CustomSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportToExcel(&buf, nil, Options{SheetName: "Résultats"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Résultats"}, f.GetSheetList())
}

func TestExportToCSV(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, sampleRecords(), Options{Format: FormatCSV, NameMode: NameParts})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "First Name,Last Name,Maiden Name,Formatted Date,Formatted Address,Formatted Birth Country,Additional Info", lines[0])
	assert.Equal(t, `Marie,Durand,Blanc,23/05/1939,"262 CH DE GIBBES, MARSEILLE","ORAN, ALGERIE","Rapatriée en 1962, ""Les Pins"""`, lines[1])
	assert.Equal(t, "Jean,Martin,,,,,", lines[2])
}

func TestExportToJSON(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, sampleRecords(), Options{Format: FormatJSON, IncludeCode: true, RunID: "run-1"})
	require.NoError(t, err)

	var payload struct {
		Total   int                      `json:"total"`
		RunID   string                   `json:"run_id"`
		Records []map[string]interface{} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))

	assert.Equal(t, 2, payload.Total)
	assert.Equal(t, "run-1", payload.RunID)
	require.Len(t, payload.Records, 2)

	assert.Equal(t, "13055", payload.Records[0]["resolved_code"])
	assert.Equal(t, float64(3), payload.Records[1]["row"])

	value, present := payload.Records[1]["formatted_address"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestExportFile_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "records.sqlite")

	require.NoError(t, ExportFile(path, sampleRecords(), Options{IncludeCode: true, RunID: "run-1"}))
	require.NoError(t, ExportFile(path, sampleRecords()[:1], Options{RunID: "run-2"}))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM formatted_records").Scan(&count))
	assert.Equal(t, 3, count)

	var (
		name    string
		address sql.NullString
		code    sql.NullString
	)
	err = db.QueryRow(`SELECT name, formatted_address, resolved_code FROM formatted_records
		WHERE run_id = ? AND source_row = ?`, "run-1", 3).Scan(&name, &address, &code)
	require.NoError(t, err)
	assert.Equal(t, "Jean, Martin", name)
	assert.False(t, address.Valid)
	assert.Equal(t, "UNRESOLVED", code.String)

	err = db.QueryRow(`SELECT resolved_code FROM formatted_records WHERE run_id = ?`, "run-2").Scan(&code)
	require.NoError(t, err)
	assert.False(t, code.Valid)
}

func TestExportFile_ByExtension(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out.xlsx", "out.csv", "out.json"} {
		require.NoError(t, ExportFile(filepath.Join(dir, name), sampleRecords(), Options{}), name)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, "out.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Export(&buf, nil, Options{Format: FormatSQLite}), ErrUnsupportedFormat)
	assert.ErrorIs(t, ExportFile(filepath.Join(t.TempDir(), "out.pdf"), nil, Options{}), ErrUnsupportedFormat)
	assert.ErrorIs(t, ExportFile(filepath.Join(t.TempDir(), "out"), nil, Options{}), ErrUnsupportedFormat)
}

func TestParseFormatAndNameMode(t *testing.T) {
	format, err := ParseFormat("Excel")
	require.NoError(t, err)
	assert.Equal(t, FormatExcel, format)

	format, err = DetectFormat("result.db")
	require.NoError(t, err)
	assert.Equal(t, FormatSQLite, format)

	_, err = ParseFormat("parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	mode, err := ParseNameMode("")
	require.NoError(t, err)
	assert.Equal(t, NameCombined, mode)

	mode, err = ParseNameMode(" PARTS ")
	require.NoError(t, err)
	assert.Equal(t, NameParts, mode)

	_, err = ParseNameMode("initials")
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Contains(t, ContentType(FormatExcel), "spreadsheetml")
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(FormatCSV))
	assert.Equal(t, "application/octet-stream", ContentType(FormatSQLite))
}
