// Package store provides the embedded SQL store the agent queries.
// It loads the royalties CSV files into an in-memory SQLite database,
// creates the current_songs deduplication view, and executes admitted
// read-only SQL with a per-query timeout.
//
// Key features include:
//   - In-memory SQLite via the pure-Go modernc.org/sqlite driver
//   - CSV loading with header-derived column lists
//   - Normalized results (column names plus ordered rows) for formatting
//   - JSON-friendly row maps for backend/LLM communication
package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

// Result represents a normalized SQL result.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Empty reports whether the query returned no rows.
func (r *Result) Empty() bool { return len(r.Rows) == 0 }

// Maps returns the rows as ordered column→value mappings, one map per row.
// This is the shape serialized for the answer-formatting model.
func (r *Result) Maps() []map[string]any {
	out := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		m := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

// JSON serializes the row maps for prompt embedding. Marshal errors cannot
// occur for SQLite scalar types; on the off chance one does, the error text
// is returned so the pipeline still has something to show.
func (r *Result) JSON() string {
	b, err := json.MarshalIndent(r.Maps(), "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(b)
}

// Store wraps the embedded SQLite database.
type Store struct {
	db *sql.DB
	// Timeout bounds a single Query call when non-zero.
	Timeout time.Duration
}

// Open creates an empty in-memory store.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// database/sql opens one memory database per connection; a single
	// connection keeps every query on the same database.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// schemaDDL creates the three royalties tables.
var schemaDDL = []string{
	`CREATE TABLE dim_writer (
		writer_id INTEGER PRIMARY KEY,
		writer_name TEXT NOT NULL
	)`,
	`CREATE TABLE dim_song (
		song_id INTEGER,
		title TEXT NOT NULL,
		writer_id INTEGER,
		etl_date TEXT,
		FOREIGN KEY (writer_id) REFERENCES dim_writer(writer_id)
	)`,
	`CREATE TABLE fact_royalties (
		transaction_id TEXT PRIMARY KEY,
		song_id INTEGER,
		amount_usd REAL,
		FOREIGN KEY (song_id) REFERENCES dim_song(song_id)
	)`,
}

// Init creates the royalties tables and loads each CSV from dataDir.
// File names must match the table names (dim_writer.csv etc.).
func (s *Store) Init(ctx context.Context, dataDir string) error {
	for _, ddl := range schemaDDL {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	for _, table := range []string{"dim_writer", "dim_song", "fact_royalties"} {
		path := filepath.Join(dataDir, table+".csv")
		n, err := s.loadCSV(ctx, table, path)
		if err != nil {
			return fmt.Errorf("load %s: %w", table, err)
		}
		log.Info().Str("table", table).Int("rows", n).Msg("loaded csv")
	}

	return s.createCurrentSongsView(ctx)
}

// loadCSV inserts every record of the file into table, using the CSV header
// as the column list. Returns the number of rows loaded.
func (s *Store) loadCSV(ctx context.Context, table, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	// Excel exports prefix the first header cell with a BOM.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(header, ", "), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	count := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		args := make([]any, len(record))
		for i, v := range record {
			args[i] = v
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return 0, err
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// createCurrentSongsView builds the slowly-changing-dimension resolution view.
// dim_song retains historical title records; joining it directly to
// fact_royalties would count each transaction once per historical row. The
// view keeps only the row with the latest etl_date per song_id.
func (s *Store) createCurrentSongsView(ctx context.Context) error {
	const ddl = `
		CREATE VIEW IF NOT EXISTS current_songs AS
		SELECT song_id, title, writer_id
		FROM dim_song
		WHERE rowid IN (
			SELECT rowid FROM dim_song d1
			WHERE d1.etl_date = (
				SELECT MAX(d2.etl_date) FROM dim_song d2
				WHERE d2.song_id = d1.song_id
			)
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create current_songs view: %w", err)
	}
	log.Info().Msg("created current_songs deduplication view")
	return nil
}

// Query executes an admitted read-only statement and returns the normalized
// result. Execution errors (unknown column, bad syntax the gate could not
// catch) come back as errors, never as partial results.
func (s *Store) Query(ctx context.Context, sqlText string) (*Result, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			// The driver returns TEXT as []byte through the generic scan path.
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
