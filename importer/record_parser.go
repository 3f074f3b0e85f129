package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"recordformatter/records"
)

var (
	// ErrMissingColumn в заголовке нет обязательной колонки
	ErrMissingColumn = errors.New("required column not found")
	// ErrUnsupportedFormat расширение файла не поддерживается
	ErrUnsupportedFormat = errors.New("unsupported input format")
	// ErrUnsupportedEncoding неизвестная кодировка CSV
	ErrUnsupportedEncoding = errors.New("unsupported CSV encoding")
)

// Format формат входного файла
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Options параметры чтения входного файла
type Options struct {
	Sheet     string // Лист xlsx, по умолчанию первый
	Separator rune   // Разделитель CSV, по умолчанию ','
	Encoding  string // Кодировка CSV: utf-8, windows-1252, iso-8859-1, iso-8859-15
}

// DetectFormat определяет формат по расширению имени файла
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ImportFile читает записи из xlsx или csv файла
func ImportFile(path string, opts Options) ([]records.Record, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return Import(file, format, opts)
}

// Import читает записи из потока в указанном формате
func Import(r io.Reader, format Format, opts Options) ([]records.Record, error) {
	switch format {
	case FormatXLSX:
		return ParseXLSX(r, opts)
	case FormatCSV:
		return ParseCSV(r, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseXLSX читает записи с листа книги Excel
func ParseXLSX(r io.Reader, opts Options) ([]records.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := opts.Sheet
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %q: %w", sheetName, err)
	}

	return buildRecords(rows)
}

// ParseCSV читает записи из CSV с заголовком в первой строке
func ParseCSV(r io.Reader, opts Options) ([]records.Record, error) {
	decoder, err := csvDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if decoder != nil {
		data, _, err = transform.Bytes(decoder.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode CSV: %w", err)
		}
	} else if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8, set the CSV encoding", ErrUnsupportedEncoding)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = ','
	if opts.Separator != 0 {
		reader.Comma = opts.Separator
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	return buildRecords(rows)
}

// csvDecoder возвращает декодер однобайтовой кодировки; nil для UTF-8
func csvDecoder(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

// buildRecords сопоставляет колонки по заголовку и строит записи.
// Полностью пустые строки пропускаются; Row - номер строки в исходном файле.
func buildRecords(rows [][]string) ([]records.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file has no header row", ErrMissingColumn)
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		key := NormalizeHeader(header)
		if _, exists := columns[key]; !exists && key != "" {
			columns[key] = i
		}
	}

	for _, required := range records.RequiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}

	result := make([]records.Record, 0, len(rows)-1)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if isEmptyRow(row) {
			continue
		}

		rec := records.Record{Row: rowIdx + 1}
		for _, column := range records.InputColumns {
			idx, ok := columns[column]
			if !ok || idx >= len(row) {
				continue
			}
			rec.SetColumn(column, records.FromCell(row[idx]))
		}
		result = append(result, rec)
	}

	return result, nil
}

// NormalizeHeader приводит заголовок к имени колонки: нижний регистр, пробелы заменены на "_"
func NormalizeHeader(header string) string {
	header = strings.TrimPrefix(header, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(header), "_"))
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
