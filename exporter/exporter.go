package exporter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recordformatter/records"
)

// ErrUnsupportedFormat формат вывода не поддерживается
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format формат экспорта
type Format string

const (
	FormatExcel  Format = "xlsx"
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// NameMode способ вывода имени
type NameMode string

const (
	// NameCombined одна колонка "prenoms, nom[, nom_de_jeune_fille]"
	NameCombined NameMode = "combined"
	// NameParts отдельные колонки для каждой части имени
	NameParts NameMode = "parts"
)

// DefaultSheetName лист результата по умолчанию
const DefaultSheetName = "Formatted Records"

// Options параметры экспорта
type Options struct {
	Format      Format
	NameMode    NameMode
	IncludeCode bool   // Колонка Resolved Code, только при включенном обогащении
	SheetName   string // Лист xlsx
	RunID       string // Идентификатор запуска для sqlite
}

// Column колонка результирующей таблицы
type Column struct {
	Header string
	Key    string
	value  func(records.OutputRecord) records.Value
}

var (
	nameColumn       = Column{"Name", "name", func(r records.OutputRecord) records.Value { return r.Name }}
	firstNameColumn  = Column{"First Name", "first_name", func(r records.OutputRecord) records.Value { return r.FirstName }}
	lastNameColumn   = Column{"Last Name", "last_name", func(r records.OutputRecord) records.Value { return r.LastName }}
	maidenNameColumn = Column{"Maiden Name", "maiden_name", func(r records.OutputRecord) records.Value { return r.MaidenName }}

	commonColumns = []Column{
		{"Formatted Date", "formatted_date", func(r records.OutputRecord) records.Value { return r.FormattedDate }},
		{"Formatted Address", "formatted_address", func(r records.OutputRecord) records.Value { return r.FormattedAddress }},
		{"Formatted Birth Country", "formatted_birth_country", func(r records.OutputRecord) records.Value { return r.FormattedBirthCountry }},
		{"Additional Info", "additional_info", func(r records.OutputRecord) records.Value { return r.AdditionalInfo }},
	}

	codeColumn = Column{"Resolved Code", "resolved_code", func(r records.OutputRecord) records.Value {
		if r.ResolvedCode == "" {
			return records.Missing()
		}
		return records.Present(r.ResolvedCode)
	}}
)

// Columns возвращает колонки вывода для заданных опций
func Columns(opts Options) []Column {
	var columns []Column
	switch opts.NameMode {
	case NameParts:
		columns = append(columns, firstNameColumn, lastNameColumn, maidenNameColumn)
	default:
		columns = append(columns, nameColumn)
	}
	columns = append(columns, commonColumns...)
	if opts.IncludeCode {
		columns = append(columns, codeColumn)
	}
	return columns
}

// Value значение колонки для записи
func (c Column) Value(r records.OutputRecord) records.Value {
	return c.value(r)
}

// ParseNameMode разбирает режим вывода имени
func ParseNameMode(s string) (NameMode, error) {
	switch NameMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", NameCombined:
		return NameCombined, nil
	case NameParts:
		return NameParts, nil
	default:
		return "", fmt.Errorf("unknown name mode %q", s)
	}
}

// ParseFormat разбирает название формата
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "excel":
		return FormatExcel, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// DetectFormat определяет формат по расширению файла
func DetectFormat(filename string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: file %q has no extension", ErrUnsupportedFormat, filename)
	}
	return ParseFormat(ext)
}

// ContentType MIME-тип формата для HTTP-ответа
func ContentType(format Format) string {
	switch format {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// ExportFile сохраняет записи в файл; формат берется из opts или из расширения
func ExportFile(path string, recs []records.OutputRecord, opts Options) error {
	if opts.Format == "" {
		format, err := DetectFormat(path)
		if err != nil {
			return err
		}
		opts.Format = format
	}

	if opts.Format == FormatSQLite {
		return ExportToSQLite(path, recs, opts)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Export(file, recs, opts); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// Export пишет записи в поток. SQLite требует файла, см. ExportFile.
func Export(w io.Writer, recs []records.OutputRecord, opts Options) error {
	switch opts.Format {
	case FormatExcel:
		return ExportToExcel(w, recs, opts)
	case FormatCSV:
		return ExportToCSV(w, recs, opts)
	case FormatJSON:
		return ExportToJSON(w, recs, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
}

// ExportToCSV пишет записи в CSV; отсутствующие значения - пустые поля
func ExportToCSV(w io.Writer, recs []records.OutputRecord, opts Options) error {
	columns := Columns(opts)
	writer := csv.NewWriter(w)

	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = column.Header
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	row := make([]string, len(columns))
	for _, rec := range recs {
		for i, column := range columns {
			row[i] = column.Value(rec).String()
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// ExportToJSON пишет записи в JSON; отсутствующие значения - null
func ExportToJSON(w io.Writer, recs []records.OutputRecord, opts Options) error {
	columns := Columns(opts)

	items := make([]map[string]interface{}, len(recs))
	for i, rec := range recs {
		item := make(map[string]interface{}, len(columns)+1)
		item["row"] = rec.Row
		for _, column := range columns {
			if s, ok := column.Value(rec).Get(); ok {
				item[column.Key] = s
			} else {
				item[column.Key] = nil
			}
		}
		items[i] = item
	}

	result := map[string]interface{}{
		"exported_at": time.Now().Format(time.RFC3339),
		"total":       len(items),
		"records":     items,
	}
	if opts.RunID != "" {
		result["run_id"] = opts.RunID
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
