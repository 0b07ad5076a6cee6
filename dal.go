package dbop

import (
	"context"
	"log/slog"
	"time"
)

// DAL generates statements from models and runs them through an Executor.
// A DAL is safe for concurrent use; it holds no state between calls.
type DAL struct {
	exec    Executor
	stmt    StatementBuilder
	logger  *slog.Logger
	metrics *Metrics
	timeout time.Duration
}

// An Option configures a DAL.
type Option func(*DAL)

// WithDialect sets the dialect statements are generated in.
func WithDialect(d Dialect) Option {
	return func(dal *DAL) { dal.stmt = For(d) }
}

// WithLogger sets the logger. Generated statements are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(dal *DAL) { dal.logger = l }
}

// WithMetrics records every operation in m.
func WithMetrics(m *Metrics) Option {
	return func(dal *DAL) { dal.metrics = m }
}

// WithTimeout bounds each executor call. Zero leaves the caller's deadline alone.
func WithTimeout(d time.Duration) Option {
	return func(dal *DAL) { dal.timeout = d }
}

// New returns a DAL running statements on exec. When exec is a *Driver and
// no dialect option is given, the driver's dialect is used.
func New(exec Executor, opts ...Option) *DAL {
	dal := &DAL{exec: exec, logger: slog.Default()}
	if d, ok := exec.(*Driver); ok {
		dal.stmt = For(d.Dialect())
	}
	for _, opt := range opts {
		opt(dal)
	}
	return dal
}

// Statements returns the builder the DAL generates statements with.
func (d *DAL) Statements() StatementBuilder {
	return d.stmt
}

// Exists counts the rows of table whose field equals value.
func (d *DAL) Exists(ctx context.Context, value any, table, field string) (int64, error) {
	return d.scalar(ctx, "Exists", func() (*Statement, error) {
		return d.stmt.Exists(value, table, field)
	})
}

// AddModel inserts model and returns the number of affected rows.
func (d *DAL) AddModel(ctx context.Context, model any) (int64, error) {
	return d.nonQuery(ctx, "AddModel", func() (*Statement, error) {
		return d.stmt.Insert(model)
	})
}

// UpdateModel writes every field of model to the rows whose keys equal the
// model's key values.
func (d *DAL) UpdateModel(ctx context.Context, model any, keys ...string) (int64, error) {
	return d.nonQuery(ctx, "UpdateModel", func() (*Statement, error) {
		return d.stmt.Update(model, keys...)
	})
}

// DeleteModel deletes the rows whose keys equal the model's key values.
func (d *DAL) DeleteModel(ctx context.Context, model any, keys ...string) (int64, error) {
	return d.nonQuery(ctx, "DeleteModel", func() (*Statement, error) {
		return d.stmt.Delete(model, keys...)
	})
}

// SelectList returns columns of every row of the model's table, at most top
// rows when top > 0.
func (d *DAL) SelectList(ctx context.Context, model any, columns []string, top int) (*ResultSet, error) {
	return d.query(ctx, "SelectList", func() (*Statement, error) {
		return d.stmt.SelectList(model, columns, top)
	})
}

// SelectRow returns the full rows matching pred.
func (d *DAL) SelectRow(ctx context.Context, model any, pred Predicate, top int) (*ResultSet, error) {
	return d.query(ctx, "SelectRow", func() (*Statement, error) {
		return d.stmt.SelectRow(model, pred, top)
	})
}

// SelectField returns columns of the rows matching pred.
func (d *DAL) SelectField(ctx context.Context, model any, pred Predicate, columns []string, top int) (*ResultSet, error) {
	return d.query(ctx, "SelectField", func() (*Statement, error) {
		return d.stmt.SelectField(model, pred, columns, top)
	})
}

// MostID counts the non-null values of fields in the model's table and
// returns the first count.
func (d *DAL) MostID(ctx context.Context, model any, fields ...string) (int64, error) {
	return d.scalar(ctx, "MostID", func() (*Statement, error) {
		return d.stmt.MostID(model, fields...)
	})
}

func (d *DAL) nonQuery(ctx context.Context, op string, build func() (*Statement, error)) (n int64, err error) {
	defer func(start time.Time) { d.metrics.observe(op, start, err) }(time.Now())
	stmt, err := d.build(op, build)
	if err != nil {
		return 0, err
	}
	ctx, cancel := d.context(ctx)
	defer cancel()
	if n, err = d.exec.ExecuteNonQuery(ctx, stmt.Text, stmt.Params); err != nil {
		return 0, d.failed(op, stmt, err)
	}
	return n, nil
}

func (d *DAL) scalar(ctx context.Context, op string, build func() (*Statement, error)) (n int64, err error) {
	defer func(start time.Time) { d.metrics.observe(op, start, err) }(time.Now())
	stmt, err := d.build(op, build)
	if err != nil {
		return 0, err
	}
	ctx, cancel := d.context(ctx)
	defer cancel()
	v, err := d.exec.ExecuteScalar(ctx, stmt.Text, stmt.Params)
	if err != nil {
		return 0, d.failed(op, stmt, err)
	}
	if n, err = toInt64(v); err != nil {
		return 0, d.failed(op, stmt, err)
	}
	return n, nil
}

func (d *DAL) query(ctx context.Context, op string, build func() (*Statement, error)) (rs *ResultSet, err error) {
	defer func(start time.Time) { d.metrics.observe(op, start, err) }(time.Now())
	stmt, err := d.build(op, build)
	if err != nil {
		return nil, err
	}
	ctx, cancel := d.context(ctx)
	defer cancel()
	if rs, err = d.exec.ExecuteQuery(ctx, stmt.Text, stmt.Params); err != nil {
		return nil, d.failed(op, stmt, err)
	}
	return rs, nil
}

func (d *DAL) build(op string, build func() (*Statement, error)) (*Statement, error) {
	stmt, err := build()
	if err != nil {
		d.logger.Error("dbop: statement generation failed", "op", op, "error", err)
		return nil, err
	}
	d.logger.Debug("dbop: generated statement", "op", op, "sql", stmt.Text, "params", len(stmt.Params))
	return stmt, nil
}

func (d *DAL) failed(op string, stmt *Statement, err error) error {
	d.logger.Error("dbop: execution failed", "op", op, "sql", stmt.Text, "error", err)
	return execErr(op, err)
}

func (d *DAL) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout > 0 {
		return context.WithTimeout(ctx, d.timeout)
	}
	return ctx, func() {}
}
