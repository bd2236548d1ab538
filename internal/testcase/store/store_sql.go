package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // driver: postgres
	_ "modernc.org/sqlite" // driver: sqlite

	"slecriteria/internal/testcase"
	"slecriteria/pkg/platform/sentinel"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open connects to the run-history database and ensures the schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "file:slecriteria.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		if dsn == "" {
			dsn = "postgres://localhost:5432/slecriteria?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// runsSchema is portable between sqlite and postgres; timestamps are unix
// milliseconds.
const runsSchema = `
CREATE TABLE IF NOT EXISTS test_runs (
  id TEXT PRIMARY KEY,
  started_at BIGINT NOT NULL,
  finished_at BIGINT NOT NULL,
  case_filter TEXT NOT NULL DEFAULT '',
  total INTEGER NOT NULL,
  failed INTEGER NOT NULL,
  report_json TEXT NOT NULL
)`

const runsIndex = `CREATE INDEX IF NOT EXISTS test_runs_started_at_idx ON test_runs (started_at DESC)`

// EnsureSchema creates the run-history table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{runsSchema, runsIndex} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SQLStore persists run records through database/sql.
type SQLStore struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Ping reports whether the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Save(ctx context.Context, run testcase.RunRecord) error {
	report, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO test_runs (id, started_at, finished_at, case_filter, total, failed, report_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			finished_at = excluded.finished_at,
			total = excluded.total,
			failed = excluded.failed,
			report_json = excluded.report_json`,
		run.ID.String(),
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.CaseFilter,
		run.Summary.Total,
		run.Summary.Fail+run.Summary.Error,
		string(report),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id uuid.UUID) (testcase.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, case_filter, report_json
		FROM test_runs WHERE id = $1`, id.String())
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return testcase.RunRecord{}, sentinel.ErrNotFound
		}
		return testcase.RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns all.
func (s *SQLStore) List(ctx context.Context, limit int) ([]testcase.RunRecord, error) {
	query := `SELECT id, started_at, finished_at, case_filter, report_json
		FROM test_runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []testcase.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (testcase.RunRecord, error) {
	var (
		id                string
		started, finished int64
		run               testcase.RunRecord
		report            string
	)
	if err := row.Scan(&id, &started, &finished, &run.CaseFilter, &report); err != nil {
		return testcase.RunRecord{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return testcase.RunRecord{}, fmt.Errorf("%w: run id %q", sentinel.ErrMalformed, id)
	}
	if err := json.Unmarshal([]byte(report), &run.Report); err != nil {
		return testcase.RunRecord{}, fmt.Errorf("%w: run report: %v", sentinel.ErrMalformed, err)
	}
	run.ID = parsed
	run.StartedAt = time.UnixMilli(started).UTC()
	run.FinishedAt = time.UnixMilli(finished).UTC()
	return run, nil
}
