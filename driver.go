package dbop

import (
	"context"
	"database/sql"
	"fmt"
)

// Executor runs generated statements. Implementations must not retry and
// must honour ctx.
type Executor interface {
	// ExecuteNonQuery runs text and returns the number of affected rows.
	ExecuteNonQuery(ctx context.Context, text string, params []Param) (int64, error)
	// ExecuteScalar runs text and returns the first column of the first row.
	ExecuteScalar(ctx context.Context, text string, params []Param) (any, error)
	// ExecuteQuery runs text and returns every row.
	ExecuteQuery(ctx context.Context, text string, params []Param) (*ResultSet, error)
}

// ExecContextQuery is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type ExecContextQuery interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Driver is an Executor over database/sql.
type Driver struct {
	conn    ExecContextQuery
	dialect Dialect
}

var _ Executor = (*Driver)(nil)

// Open opens a database with the given database/sql driver name and
// connection string. The connection string is passed through untouched.
func Open(driver, source string, dialect Dialect) (*Driver, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}
	return &Driver{conn: db, dialect: dialect}, nil
}

// OpenDB wraps an existing connection.
func OpenDB(dialect Dialect, conn ExecContextQuery) *Driver {
	return &Driver{conn: conn, dialect: dialect}
}

// DB returns the underlying *sql.DB, or nil when the driver wraps something else.
func (d *Driver) DB() *sql.DB {
	db, _ := d.conn.(*sql.DB)
	return db
}

func (d *Driver) Dialect() Dialect {
	return d.dialect
}

// Ping verifies the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	db := d.DB()
	if db == nil {
		return nil
	}
	return db.PingContext(ctx)
}

func (d *Driver) Close() error {
	if db := d.DB(); db != nil {
		return db.Close()
	}
	return nil
}

func (d *Driver) args(text string, params []Param) (string, []any, error) {
	return Positional(&Statement{Text: text, Params: params}, d.dialect)
}

func (d *Driver) ExecuteNonQuery(ctx context.Context, text string, params []Param) (int64, error) {
	query, args, err := d.args(text, params)
	if err != nil {
		return 0, err
	}
	res, err := d.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *Driver) ExecuteScalar(ctx context.Context, text string, params []Param) (any, error) {
	query, args, err := d.args(text, params)
	if err != nil {
		return nil, err
	}
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanFirst(rows)
}

func (d *Driver) ExecuteQuery(ctx context.Context, text string, params []Param) (*ResultSet, error) {
	query, args, err := d.args(text, params)
	if err != nil {
		return nil, err
	}
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rs, err := ReadResultSet(rows)
	if err != nil {
		return nil, fmt.Errorf("sql/scan: %w", err)
	}
	return rs, nil
}
