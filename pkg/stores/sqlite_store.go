package stores

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/vmweaver/vmweaver/pkg/engine"
	"github.com/vmweaver/vmweaver/pkg/telemetry"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeFormat is the fixed-width UTC layout used for persisted timestamps.
// Lexicographic order equals chronological order, which the list queries
// rely on.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements engine.Store backed by SQLite. WAL journaling
// keeps the on-disk state consistent across process termination; a single
// write at a time with concurrent readers is the serialization discipline.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	metrics *telemetry.Metrics
}

// Config holds SQLite store configuration.
type Config struct {
	// Path is the database file path, or ":memory:" for an in-memory
	// store scoped to the process lifetime (no durability guarantee).
	Path string

	// Metrics optionally records operation durations. May be nil.
	Metrics *telemetry.Metrics
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	return &SQLiteStore{
		path:    cfg.Path,
		metrics: cfg.Metrics,
	}, nil
}

// Init opens the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// An in-memory database exists per connection; a pool of one keeps
	// every statement on the same database.
	if s.path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations from the embedded schema.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// timeOp returns a deferred duration recorder for op.
func (s *SQLiteStore) timeOp(op string) func() {
	start := time.Now()
	return func() {
		s.metrics.RecordStoreOperation(op, time.Since(start))
	}
}

// CreateVM persists a new VM record. The primary key enforces id
// uniqueness.
func (s *SQLiteStore) CreateVM(ctx context.Context, vm *engine.VMRecord) error {
	defer s.timeOp("create")()

	params, err := json.Marshal(vm.Parameters)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}

	query := `
		INSERT INTO vms (id, provider_type, status, parameters, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		vm.ID,
		string(vm.Provider),
		string(vm.Status),
		string(params),
		vm.CreatedAt.UTC().Format(timeFormat),
		vm.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return engine.NewDuplicateID(vm.ID)
		}
		return fmt.Errorf("failed to create VM record: %w", err)
	}

	return nil
}

// GetVM retrieves a VM record by id.
func (s *SQLiteStore) GetVM(ctx context.Context, id string) (*engine.VMRecord, error) {
	defer s.timeOp("get")()

	query := `
		SELECT id, provider_type, status, parameters, created_at, updated_at
		FROM vms
		WHERE id = ?
	`
	vm, err := scanVM(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.NewNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get VM record: %w", err)
	}
	return vm, nil
}

// ListVMs lists VM records most-recent-first with pagination. Ties on
// created_at fall back to insertion order, newest first.
func (s *SQLiteStore) ListVMs(ctx context.Context, limit, offset int) ([]*engine.VMRecord, error) {
	defer s.timeOp("list")()

	query := `
		SELECT id, provider_type, status, parameters, created_at, updated_at
		FROM vms
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`
	return s.queryVMs(ctx, query, limit, offset)
}

// ListVMsByProvider lists VM records for one provider, optionally narrowed
// to a status, in the same relative order as ListVMs.
func (s *SQLiteStore) ListVMsByProvider(ctx context.Context, t engine.ProviderType, status *engine.VMStatus) ([]*engine.VMRecord, error) {
	defer s.timeOp("list_by_provider")()

	if status != nil {
		query := `
			SELECT id, provider_type, status, parameters, created_at, updated_at
			FROM vms
			WHERE provider_type = ? AND status = ?
			ORDER BY created_at DESC, rowid DESC
		`
		return s.queryVMs(ctx, query, string(t), string(*status))
	}

	query := `
		SELECT id, provider_type, status, parameters, created_at, updated_at
		FROM vms
		WHERE provider_type = ?
		ORDER BY created_at DESC, rowid DESC
	`
	return s.queryVMs(ctx, query, string(t))
}

// ListVMsByStatus lists VM records in the given status, in the same
// relative order as ListVMs.
func (s *SQLiteStore) ListVMsByStatus(ctx context.Context, status engine.VMStatus) ([]*engine.VMRecord, error) {
	defer s.timeOp("list_by_status")()

	query := `
		SELECT id, provider_type, status, parameters, created_at, updated_at
		FROM vms
		WHERE status = ?
		ORDER BY created_at DESC, rowid DESC
	`
	return s.queryVMs(ctx, query, string(status))
}

// UpdateVMStatus applies a status transition inside a transaction so the
// transition check and the write are atomic. updated_at is refreshed;
// created_at and all other fields are untouched.
func (s *SQLiteStore) UpdateVMStatus(ctx context.Context, id string, status engine.VMStatus) (*engine.VMRecord, error) {
	defer s.timeOp("update_status")()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		SELECT id, provider_type, status, parameters, created_at, updated_at
		FROM vms
		WHERE id = ?
	`
	vm, err := scanVM(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.NewNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get VM record: %w", err)
	}

	if !vm.Status.CanTransitionTo(status) {
		return nil, engine.NewInvalidTransition(id, vm.Status, status)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE vms SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), now.Format(timeFormat), id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update VM status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	vm.Status = status
	vm.UpdatedAt = now
	return vm, nil
}

// Summary aggregates all VM records in a single pass over one full scan.
// Counts are never stored incrementally, so they cannot drift from the
// collection itself.
func (s *SQLiteStore) Summary(ctx context.Context, recentN int) (*engine.Summary, error) {
	defer s.timeOp("summary")()

	query := `
		SELECT id, provider_type, status, parameters, created_at, updated_at
		FROM vms
		ORDER BY created_at DESC, rowid DESC
	`
	vms, err := s.queryVMs(ctx, query)
	if err != nil {
		return nil, err
	}

	summary := &engine.Summary{
		ByProvider: make(map[engine.ProviderType]int),
		ByStatus:   make(map[engine.VMStatus]int),
		Recent:     []*engine.VMRecord{},
	}
	for _, vm := range vms {
		summary.Total++
		summary.ByProvider[vm.Provider]++
		summary.ByStatus[vm.Status]++
		if len(summary.Recent) < recentN {
			summary.Recent = append(summary.Recent, vm)
		}
	}

	return summary, nil
}

// HealthCheck verifies the database is reachable.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanVM decodes one VM row.
func scanVM(row rowScanner) (*engine.VMRecord, error) {
	var (
		vm        engine.VMRecord
		provider  string
		status    string
		params    string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&vm.ID, &provider, &status, &params, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	vm.Provider = engine.ProviderType(provider)
	vm.Status = engine.VMStatus(status)

	if err := json.Unmarshal([]byte(params), &vm.Parameters); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}

	var err error
	if vm.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if vm.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &vm, nil
}

// queryVMs runs a multi-row VM query.
func (s *SQLiteStore) queryVMs(ctx context.Context, query string, args ...any) ([]*engine.VMRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query VM records: %w", err)
	}
	defer rows.Close()

	vms := []*engine.VMRecord{}
	for rows.Next() {
		vm, err := scanVM(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan VM record: %w", err)
		}
		vms = append(vms, vm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating VM records: %w", err)
	}

	return vms, nil
}
