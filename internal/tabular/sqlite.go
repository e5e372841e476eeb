package tabular

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/teachsync/internal/model"
)

//go:embed sheets.sql
var catalogSQL string

// Catalog version tracking:
// 1 - sheets catalog plus one table per sheet
const catalogVersion = 1

// SQLiteCodec stores workbooks in a SQLite database: a sheets catalog table
// plus one table per sheet with a row_index column and one TEXT column per
// header cell.
type SQLiteCodec struct{}

// Read implements Codec.
func (SQLiteCodec) Read(path string) (*Workbook, error) {
	// sql.Open would create an empty database for a missing path.
	if !fileExists(path) {
		return nil, model.Errorf(model.CodeNotFound, "read_workbook", "workbook not found: %s", path)
	}
	db, err := openSQLite(path)
	if err != nil {
		return nil, model.Wrap(model.CodeMalformedDocument, "read_workbook", err, "open %s", path)
	}
	defer db.Close()

	wb, err := readCatalog(db)
	if err != nil {
		return nil, model.Wrap(model.CodeMalformedDocument, "read_workbook", err, "read %s", path)
	}
	return wb, nil
}

// Write implements Codec. The database is built under a temporary name and
// renamed over path once complete.
func (SQLiteCodec) Write(path string, wb *Workbook) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := writeDatabase(tmp, wb); err != nil {
		_ = os.Remove(tmp)
		return model.Wrap(model.CodePersistence, "write_workbook", err, "write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return model.Wrap(model.CodePersistence, "write_workbook", err, "replace %s", path)
	}
	return nil
}

// openSQLite opens the database and applies connection pragmas.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return db, nil
}

func writeDatabase(path string, wb *Workbook) (err error) {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer func() {
		// Fold the WAL back into the main file so the rename moves one file.
		if _, cerr := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); cerr != nil && err == nil {
			err = cerr
		}
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(catalogSQL); err != nil {
		return fmt.Errorf("failed to create catalog: %w", err)
	}
	for pos, s := range wb.Sheets {
		if err := writeSheetTable(tx, pos, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", catalogVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return tx.Commit()
}

func writeSheetTable(tx *sql.Tx, pos int, s *Sheet) error {
	header, err := json.Marshal(nonNil(s.Header))
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO sheets (position, name, header) VALUES (?, ?, ?)`,
		pos, s.Name, string(header)); err != nil {
		return err
	}

	width := len(s.Header)
	for _, row := range s.Rows {
		width = max(width, len(row))
	}

	cols := make([]string, width)
	defs := make([]string, width)
	marks := make([]string, width)
	for i := range cols {
		cols[i] = fmt.Sprintf("c%d", i)
		defs[i] = cols[i] + " TEXT NOT NULL DEFAULT ''"
		marks[i] = "?"
	}

	table := quoteIdent(s.Name)
	create := fmt.Sprintf("CREATE TABLE %s (row_index INTEGER PRIMARY KEY", table)
	if width > 0 {
		create += ", " + strings.Join(defs, ", ")
	}
	if _, err := tx.Exec(create + ")"); err != nil {
		return err
	}
	if width == 0 {
		return nil
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (row_index, %s) VALUES (?, %s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, width+1)
	for r, row := range s.Rows {
		args[0] = r
		for c := 0; c < width; c++ {
			args[c+1] = ""
			if c < len(row) {
				args[c+1] = row[c]
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}
	return nil
}

func readCatalog(db *sql.DB) (*Workbook, error) {
	rows, err := db.Query(`SELECT name, header FROM sheets ORDER BY position`)
	if err != nil {
		return nil, err
	}
	type entry struct {
		name   string
		header []string
	}
	var entries []entry
	for rows.Next() {
		var name, header string
		if err := rows.Scan(&name, &header); err != nil {
			rows.Close()
			return nil, err
		}
		e := entry{name: name}
		if err := json.Unmarshal([]byte(header), &e.header); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sheet %s header: %w", name, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	wb := &Workbook{}
	for _, e := range entries {
		data, err := readSheetTable(db, e.name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", e.name, err)
		}
		wb.Sheets = append(wb.Sheets, &Sheet{Name: e.name, Header: e.header, Rows: data})
	}
	return wb, nil
}

func readSheetTable(db *sql.DB, name string) ([][]string, error) {
	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY row_index", quoteIdent(name)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := [][]string{}
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		// Column 0 is row_index.
		row := make([]string, len(cols)-1)
		for i := 1; i < len(cols); i++ {
			row[i-1] = values[i].String
		}
		out = append(out, trimTrailing(row))
	}
	return out, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// trimTrailing drops trailing empty cells, matching what spreadsheet readers
// return for short rows.
func trimTrailing(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}
