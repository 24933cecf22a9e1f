package backend

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/anand-gl/jsoncanonicalizer"
	_ "github.com/jackc/pgx/v4/stdlib"
	json "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/store/keys"
	_ "modernc.org/sqlite"
)

const DefaultTable = "config_store"

// Drivers supported by the database backend.
const (
	DriverSQLite   = "sqlite"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

// Database stores values as canonical JSON rows of one table, scoped by a
// resource type so several stores can share the table.
type Database struct {
	db           *sql.DB
	driver       string
	table        string
	resourceType string
}

var _ Backend = (*Database)(nil)

// DatabaseOptions configures OpenDatabase.
type DatabaseOptions struct {
	Driver       string
	DSN          string
	Table        string
	ResourceType string
}

// OpenDatabase opens the database described by opts and prepares the table.
func OpenDatabase(ctx context.Context, opts DatabaseOptions) (*Database, apperrors.Error) {
	switch opts.Driver {
	case DriverSQLite, DriverPgx, DriverPostgres:
	default:
		return nil, ErrUnknownDriver.Msgf("unknown database driver %q", opts.Driver)
	}
	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("driver", opts.Driver).Msg("failed to open db")
		return nil, ErrBackendFailure.Err(err)
	}
	if opts.Driver == DriverSQLite {
		// an in-memory database lives as long as its single connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("driver", opts.Driver).Msg("failed to ping db")
		db.Close()
		return nil, ErrBackendFailure.Err(err)
	}
	d, aerr := NewDatabase(ctx, db, opts.Driver, opts.Table, opts.ResourceType)
	if aerr != nil {
		db.Close()
		return nil, aerr
	}
	return d, nil
}

// NewDatabase wraps an open database. The table is created if missing.
func NewDatabase(ctx context.Context, db *sql.DB, driver, table, resourceType string) (*Database, apperrors.Error) {
	if table == "" {
		table = DefaultTable
	}
	if resourceType == "" {
		resourceType = "datasource"
	}
	d := &Database{
		db:           db,
		driver:       driver,
		table:        pq.QuoteIdentifier(table),
		resourceType: resourceType,
	}
	query := `CREATE TABLE IF NOT EXISTS ` + d.table + ` (
		resource_type TEXT NOT NULL,
		store_key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (resource_type, store_key)
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("table", table).Msg("failed to create table")
		return nil, ErrBackendFailure.Err(err)
	}
	return d, nil
}

func (d *Database) Kind() Kind { return KindDatabase }

// Close closes the underlying database.
func (d *Database) Close() error {
	return d.db.Close()
}

// rebind rewrites ? placeholders into $n for the postgres drivers.
func (d *Database) rebind(query string) string {
	if d.driver == DriverSQLite {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (d *Database) Get(ctx context.Context, key keys.Key) (map[string]any, apperrors.Error) {
	if err := requireKey(key); err != nil {
		return nil, err
	}
	query := d.rebind(`SELECT value FROM ` + d.table + ` WHERE resource_type = ? AND store_key = ?`)
	var value string
	err := d.db.QueryRowContext(ctx, query, d.resourceType, key.String()).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound.Msgf("key %q not found", key.String())
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("key", key.String()).Msg("failed to read entry")
		return nil, ErrBackendFailure.Err(err)
	}
	m := make(map[string]any)
	if err := json.Unmarshal([]byte(value), &m); err != nil {
		return nil, ErrInvalidValue.Err(err)
	}
	return m, nil
}

func (d *Database) Set(ctx context.Context, key keys.Key, value map[string]any) (map[string]any, apperrors.Error) {
	if err := requireKey(key); err != nil {
		return nil, err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, ErrInvalidValue.Err(err)
	}
	canonical, err := jsoncanonicalizer.Transform(b)
	if err != nil {
		return nil, ErrInvalidValue.Err(err)
	}
	query := d.rebind(`INSERT INTO ` + d.table + ` (resource_type, store_key, value) VALUES (?, ?, ?)
		ON CONFLICT (resource_type, store_key) DO UPDATE SET value = excluded.value`)
	if _, err := d.db.ExecContext(ctx, query, d.resourceType, key.String(), string(canonical)); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("key", key.String()).Msg("failed to write entry")
		return nil, ErrBackendFailure.Err(err)
	}
	return d.Get(ctx, key)
}

func (d *Database) Delete(ctx context.Context, key keys.Key) apperrors.Error {
	if err := requireKey(key); err != nil {
		return err
	}
	query := d.rebind(`DELETE FROM ` + d.table + ` WHERE resource_type = ? AND store_key = ?`)
	res, err := d.db.ExecContext(ctx, query, d.resourceType, key.String())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("key", key.String()).Msg("failed to delete entry")
		return ErrBackendFailure.Err(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ErrBackendFailure.Err(err)
	}
	if n == 0 {
		return ErrKeyNotFound.Msgf("key %q not found", key.String())
	}
	return nil
}

func (d *Database) Has(ctx context.Context, key keys.Key) (bool, apperrors.Error) {
	if err := requireKey(key); err != nil {
		return false, err
	}
	query := d.rebind(`SELECT COUNT(*) FROM ` + d.table + ` WHERE resource_type = ? AND store_key = ?`)
	var n int
	if err := d.db.QueryRowContext(ctx, query, d.resourceType, key.String()).Scan(&n); err != nil {
		return false, ErrBackendFailure.Err(err)
	}
	return n > 0, nil
}

// ListKeys returns the stored keys ordered by name.
func (d *Database) ListKeys(ctx context.Context) ([]keys.Key, apperrors.Error) {
	query := d.rebind(`SELECT store_key FROM ` + d.table + ` WHERE resource_type = ? ORDER BY store_key`)
	rows, err := d.db.QueryContext(ctx, query, d.resourceType)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list entries")
		return nil, ErrBackendFailure.Err(err)
	}
	defer rows.Close()
	ks := []keys.Key{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ErrBackendFailure.Err(err)
		}
		ks = append(ks, keys.NewDataContextVariableKey(name))
	}
	if err := rows.Err(); err != nil {
		return nil, ErrBackendFailure.Err(err)
	}
	return ks, nil
}
