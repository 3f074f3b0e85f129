package exporter

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"recordformatter/records"
)

// TableName таблица результатов в SQLite
const TableName = "formatted_records"

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS formatted_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL DEFAULT '',
		source_row INTEGER NOT NULL,
		name TEXT,
		first_name TEXT,
		last_name TEXT,
		maiden_name TEXT,
		formatted_date TEXT,
		formatted_address TEXT,
		formatted_birth_country TEXT,
		additional_info TEXT,
		resolved_code TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_formatted_records_run_id ON formatted_records(run_id);
`

const sqliteInsert = `
	INSERT INTO formatted_records (
		run_id, source_row, name, first_name, last_name, maiden_name,
		formatted_date, formatted_address, formatted_birth_country, additional_info, resolved_code
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ExportToSQLite добавляет записи в таблицу formatted_records одной транзакцией.
// Таблица содержит все поля независимо от NameMode; отсутствующие значения - NULL.
func ExportToSQLite(path string, recs []records.OutputRecord, opts Options) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("failed to create %s schema: %w", TableName, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(sqliteInsert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		code := records.Missing()
		if opts.IncludeCode && rec.ResolvedCode != "" {
			code = records.Present(rec.ResolvedCode)
		}

		_, err := stmt.Exec(
			opts.RunID,
			rec.Row,
			nullString(rec.Name),
			nullString(rec.FirstName),
			nullString(rec.LastName),
			nullString(rec.MaidenName),
			nullString(rec.FormattedDate),
			nullString(rec.FormattedAddress),
			nullString(rec.FormattedBirthCountry),
			nullString(rec.AdditionalInfo),
			nullString(code),
		)
		if err != nil {
			return fmt.Errorf("failed to insert row %d: %w", rec.Row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullString(v records.Value) sql.NullString {
	s, ok := v.Get()
	return sql.NullString{String: s, Valid: ok}
}
