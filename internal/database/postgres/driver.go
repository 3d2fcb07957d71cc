package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koustreak/fdw/internal/database"
	"github.com/koustreak/fdw/internal/errs"
)

const defaultPort = 5432

// Driver is a PostgreSQL implementation of database.DB backed by pgxpool.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	cfg = cfg.WithDefaults()

	poolCfg, err := pgxpool.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create connection pool", err)
	}

	d := &Driver{pool: pool}

	if err := d.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return d, nil
}

// buildDSN returns cfg.DSN, or a postgres:// URL assembled from the discrete
// fields when DSN is empty.
func buildDSN(cfg *database.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, port),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// --- database.DB implementation ---

// Ping verifies the database is reachable by acquiring and releasing a connection.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool.
func (d *Driver) Close() {
	d.pool.Close()
}

func (d *Driver) Dialect() database.Dialect { return database.DialectPostgres }

// Query executes a SQL statement that returns multiple rows.
func (d *Driver) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &pgxRows{rows: rows}, nil
}

// TableExists reports whether a base table or view with the given name is
// visible on the search path.
func (d *Driver) TableExists(ctx context.Context, table string) (bool, error) {
	const q = `SELECT to_regclass($1) IS NOT NULL`

	var exists bool
	if err := d.pool.QueryRow(ctx, q, table).Scan(&exists); err != nil {
		return false, mapError(err, "failed to check table existence")
	}
	return exists, nil
}

// TableColumns lists the columns of table. A "schema.table" name is looked
// up in that schema, a bare name in the current schema.
func (d *Driver) TableColumns(ctx context.Context, table string) ([]database.ColumnInfo, error) {
	const q = `
		SELECT column_name,
		       data_type,
		       is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema())
		  AND table_name   = $2
		ORDER BY ordinal_position`

	schema, name := database.SplitTableName(table)
	rows, err := d.pool.Query(ctx, q, schema, name)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var cols []database.ColumnInfo
	for rows.Next() {
		var c database.ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable); err != nil {
			return nil, mapError(err, "failed to scan column info")
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	return cols, nil
}

// --- pgx type wrappers ---

// pgxRows wraps pgx.Rows to satisfy database.Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *pgxRows) Close()                 { r.rows.Close() }
func (r *pgxRows) Err() error             { return r.rows.Err() }

func (r *pgxRows) Columns() ([]string, error) {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}
	return cols, nil
}

// --- error mapping ---

// PostgreSQL SQLSTATE codes with a specific kind.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrUndefinedTable      = "42P01"
	pgErrInsufficientPrivs   = "42501"
	pgErrInvalidPassword     = "28P01"
	pgErrInvalidAuthSpec     = "28000"
	pgErrQueryCanceled       = "57014"
	pgErrClassConnection     = "08"
	pgErrClassInsufficientRs = "53"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(classifySQLState(pgErr.Code), fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	// connection-level errors (TLS, network, auth)
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classifySQLState(code string) errs.ErrKind {
	switch code {
	case pgErrUndefinedTable:
		return errs.ErrKindNotFound
	case pgErrInsufficientPrivs:
		return errs.ErrKindPermissionDenied
	case pgErrInvalidPassword, pgErrInvalidAuthSpec:
		return errs.ErrKindConnectionFailed
	case pgErrQueryCanceled:
		return errs.ErrKindTimeout
	}
	if len(code) >= 2 {
		switch code[:2] {
		case pgErrClassConnection, pgErrClassInsufficientRs:
			return errs.ErrKindConnectionFailed
		}
	}
	return errs.ErrKindQueryFailed
}
