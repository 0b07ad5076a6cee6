package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/wule61/dbop"
	"github.com/wule61/dbop/config"
)

type app struct {
	configPath string
	dryRun     bool
	metrics    bool
	out        io.Writer

	registry *prometheus.Registry

	cfg    *config.Config
	driver *dbop.Driver
	dal    *dbop.DAL
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:                "dbop",
		Short:              "Run generated statements against a configured database",
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default .dbop.yaml)")
	root.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "print statements instead of running them")
	root.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "print operation metrics on exit")
	root.AddCommand(a.pingCmd(), a.existsCmd(), a.listCmd(), a.countCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.out = cmd.OutOrStdout()
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	dialect, err := dbop.ParseDialect(cfg.Database.Dialect)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)

	var exec dbop.Executor
	if a.dryRun {
		exec = &printer{out: a.out}
	} else {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if a.driver, err = dbop.Open(cfg.Database.Driver, cfg.Database.DSN, dialect); err != nil {
			return fmt.Errorf("open %s: %w", cfg.Database.Driver, err)
		}
		exec = a.driver
	}
	a.registry = prometheus.NewRegistry()
	metrics, err := dbop.NewMetrics(a.registry)
	if err != nil {
		return err
	}
	a.dal = dbop.New(exec,
		dbop.WithDialect(dialect),
		dbop.WithLogger(logger),
		dbop.WithMetrics(metrics),
		dbop.WithTimeout(cfg.Database.Timeout),
	)
	return nil
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.metrics {
		if err := a.printMetrics(); err != nil {
			return err
		}
	}
	if a.driver != nil {
		return a.driver.Close()
	}
	return nil
}

// printMetrics writes the collected metrics in the Prometheus text format.
func (a *app) printMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.out, mf); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the database connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.driver == nil {
				return nil
			}
			if err := a.driver.Ping(cmd.Context()); err != nil {
				return err
			}
			pterm.Fprintln(a.out, pterm.Success.Sprint("connected"))
			return nil
		},
	}
}

func (a *app) existsCmd() *cobra.Command {
	var table, field, value string
	cmd := &cobra.Command{
		Use:   "exists",
		Short: "Count the rows whose field equals a value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.dal.Exists(cmd.Context(), value, table, field)
			if err != nil {
				return err
			}
			return a.printCount(n)
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "table name")
	cmd.Flags().StringVar(&field, "field", "", "column compared to --value")
	cmd.Flags().StringVar(&value, "value", "", "value to look for")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var (
		table   string
		columns []string
		top     int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print columns of a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, err := a.dal.SelectList(cmd.Context(), dbop.TableRef(table), columns, top)
			if err != nil {
				return err
			}
			return a.printResult(rs)
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "table name")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "columns to print")
	cmd.Flags().IntVar(&top, "top", 0, "maximum number of rows, 0 for all")
	return cmd
}

func (a *app) countCmd() *cobra.Command {
	var (
		table  string
		fields []string
	)
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the non-null values of a column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.dal.MostID(cmd.Context(), dbop.TableRef(table), fields...)
			if err != nil {
				return err
			}
			return a.printCount(n)
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "table name")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "columns to count")
	return cmd
}

func (a *app) printCount(n int64) error {
	_, err := fmt.Fprintln(a.out, n)
	return err
}

func (a *app) printResult(rs *dbop.ResultSet) error {
	if rs == nil {
		return nil
	}
	data := pterm.TableData{rs.Columns}
	for _, row := range rs.Rows {
		line := make([]string, len(row))
		for i, v := range row {
			line[i] = cell(v)
		}
		data = append(data, line)
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, s)
	return err
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprint(v)
}

// printer is the executor behind --dry-run. It prints each statement and
// returns empty results.
type printer struct {
	out io.Writer
}

func (p *printer) print(text string, params []dbop.Param) error {
	if _, err := fmt.Fprintln(p.out, text); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	data := pterm.TableData{{"param", "value"}}
	for _, prm := range params {
		data = append(data, []string{prm.Name, cell(prm.Value)})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.out, s)
	return err
}

func (p *printer) ExecuteNonQuery(_ context.Context, text string, params []dbop.Param) (int64, error) {
	return 0, p.print(text, params)
}

func (p *printer) ExecuteScalar(_ context.Context, text string, params []dbop.Param) (any, error) {
	return int64(0), p.print(text, params)
}

func (p *printer) ExecuteQuery(_ context.Context, text string, params []dbop.Param) (*dbop.ResultSet, error) {
	return &dbop.ResultSet{}, p.print(text, params)
}
