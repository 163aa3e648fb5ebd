// Package query is the read-only SQLite query engine over the navigation
// database: schema-version detection, the range-query predicate, row
// aggregation for airways/airspaces/procedures, and the raw
// execute_sql_query escape hatch. It never writes to the database; the
// downloader owns the only path that replaces the file on disk.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/glebarez/go-sqlite"

	"github.com/navigraph/navdata-interface/internal/cycle"
)

// SchemaVersion identifies which generation of the DFD schema is open, since
// v1 and v2 rename and reshape several tables.
type SchemaVersion int

const (
	SchemaUnknown SchemaVersion = iota
	SchemaV1
	SchemaV2
)

// ErrNoDatabaseOpen is returned by any query made while no database is active.
var ErrNoDatabaseOpen = errors.New("no database open")

// ErrNotSupportedOnSchema is returned when an operation has no
// implementation for the currently active schema version.
type ErrNotSupportedOnSchema struct {
	Operation string
	Version   SchemaVersion
}

func (e *ErrNotSupportedOnSchema) Error() string {
	return fmt.Sprintf("%s is not supported on schema version %d", e.Operation, e.Version)
}

// Warning is a row-level inconsistency: a documented sentinel default was
// substituted for an unexpected null, or an enum letter wasn't recognized.
// These are not errors — the row is still returned — but are handed to a
// diagnostic sink for visibility.
type Warning struct {
	Table  string
	Detail string
	Row    map[string]any
}

// WarnFunc receives non-fatal row-level diagnostics.
type WarnFunc func(Warning)

// Engine owns the current database connection, if any.
type Engine struct {
	mu      sync.Mutex
	db      *sql.DB
	path    string
	version SchemaVersion
	onWarn  WarnFunc
}

// New constructs an Engine with no database open.
func New(onWarn WarnFunc) *Engine {
	if onWarn == nil {
		onWarn = func(Warning) {}
	}
	return &Engine{onWarn: onWarn}
}

// dsn builds the read-only connection string: no write access, a short
// busy timeout (the file is never contended since nothing else holds a
// write lock on it), and no shared mutex since the dispatcher only ever
// touches the engine from one goroutine at a time.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(1000)&_mutex=no", path)
}

// EnableCycle opens path as the active database, closing any previously
// open connection first so a replace-in-place never leaves two handles on
// the same inode.
func (e *Engine) EnableCycle(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db != nil {
		_ = e.db.Close()
		e.db = nil
		e.path = ""
		e.version = SchemaUnknown
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("open database: %w", err)
	}

	version, err := probeSchema(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("probe schema: %w", err)
	}

	e.db = db
	e.path = path
	e.version = version
	return nil
}

// DisableCycle closes the active connection, returning an error (nil on
// success) for a uniform (..., error) contract with the rest of the engine.
func (e *Engine) DisableCycle() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	e.path = ""
	e.version = SchemaUnknown
	return err
}

// Version reports the active schema version, or SchemaUnknown if nothing
// is open.
func (e *Engine) Version() SchemaVersion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Path is the filesystem path of the active database, or "" if none.
func (e *Engine) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

func (e *Engine) conn() (*sql.DB, SchemaVersion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil, SchemaUnknown, ErrNoDatabaseOpen
	}
	return e.db, e.version, nil
}

func probeSchema(db *sql.DB) (SchemaVersion, error) {
	has := func(table string) (bool, error) {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return err == nil, err
	}

	if ok, err := has("tbl_pa_airports"); err != nil {
		return SchemaUnknown, err
	} else if ok {
		return SchemaV2, nil
	}
	if ok, err := has("tbl_airports"); err != nil {
		return SchemaUnknown, err
	} else if ok {
		return SchemaV1, nil
	}
	return SchemaUnknown, fmt.Errorf("neither v1 nor v2 airport table found")
}

// queryRows runs sql with args and scans the result generically into a
// slice of column-name -> value maps. NULL cells are omitted from the map
// entirely and []byte (BLOB) cells are dropped rather than included, per
// execute_sql_query's documented contract — callers building typed output
// records instead apply their own per-field defaulting on top of this.
func queryRows(ctx context.Context, db *sql.DB, query string, args ...any) ([]map[string]any, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		scan := make([]any, len(cols))
		holders := make([]any, len(cols))
		for i := range scan {
			scan[i] = &holders[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			value := holders[i]
			if value == nil {
				continue // NULL: omitted entirely
			}
			if _, isBlob := value.([]byte); isBlob {
				continue // BLOB: dropped rather than included
			}
			row[col] = value
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// ExecuteSQLQuery runs an arbitrary parameterised read and projects every
// row into a {column_name: scalar} object. It is the one escape hatch that
// lets a caller run SQL the engine doesn't otherwise expose a typed
// accessor for.
func (e *Engine) ExecuteSQLQuery(ctx context.Context, query string, params []string) ([]map[string]any, error) {
	db, _, err := e.conn()
	if err != nil {
		return nil, err
	}
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	rows, err := queryRows(ctx, db, query, args...)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}

// DatabaseInfo is the decoded tbl_header row.
type DatabaseInfo struct {
	AiracCycle    string `json:"airac_cycle"`
	EffectiveFrom string `json:"effective_from"`
	EffectiveTo   string `json:"effective_to"`
	PreviousFrom  string `json:"previous_from"`
	PreviousTo    string `json:"previous_to"`
}

// GetDatabaseInfo decodes the single row of tbl_header.
func (e *Engine) GetDatabaseInfo(ctx context.Context) (*DatabaseInfo, error) {
	db, _, err := e.conn()
	if err != nil {
		return nil, err
	}

	rows, err := queryRows(ctx, db, "SELECT * FROM tbl_header")
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("tbl_header is empty")
	}
	row := rows[0]

	effective, err := cycle.ParseFromTo(fmt.Sprint(row["effective_fromto"]))
	if err != nil {
		return nil, fmt.Errorf("parse effective_fromto: %w", err)
	}
	previous, err := cycle.ParseFromTo(fmt.Sprint(row["previous_fromto"]))
	if err != nil {
		return nil, fmt.Errorf("parse previous_fromto: %w", err)
	}

	return &DatabaseInfo{
		AiracCycle:    fmt.Sprint(row["current_airac"]),
		EffectiveFrom: effective.From,
		EffectiveTo:   effective.To,
		PreviousFrom:  previous.From,
		PreviousTo:    previous.To,
	}, nil
}
