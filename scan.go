package dbop

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"

	"github.com/modern-go/reflect2"
)

// ColumnScanner is the subset of *sql.Rows the scan helpers read from.
// *ResultSet cursors implement it as well.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// ScanOne scans the single value of a one-column, one-row result into v.
func ScanOne(rows ColumnScanner, v any) error {
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("sql/scan: failed getting column names: %w", err)
	}
	if n := len(columns); n != 1 {
		return fmt.Errorf("sql/scan: unexpected number of columns: %d", n)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	if err := rows.Scan(v); err != nil {
		return err
	}
	if rows.Next() {
		return fmt.Errorf("sql/scan: expect exactly one row in result set")
	}
	return nil
}

func Scan[T any](rows ColumnScanner) (T, error) {
	var n T
	err := ScanOne(rows, &n)
	return n, err
}

func ScanValue(rows ColumnScanner) (driver.Value, error) {
	var v driver.Value
	if err := ScanOne(rows, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ScanFirst returns the first column of the first row and ignores the rest,
// the way a scalar query result is read.
func ScanFirst(rows ColumnScanner) (any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sql/scan: failed getting column names: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("sql/scan: no columns in result set")
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	values, dest := anyRow(len(columns))
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return values[0], nil
}

// ScanSlice reads every row into a T. T may be a scalar, a struct or a
// pointer to either. Struct columns are matched as described on Decode.
func ScanSlice[T any](rows ColumnScanner) ([]T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var t T
	typ := reflect.ValueOf(reflect2.TypeOf(t).New()).Elem().Type()
	plan, err := planFor(typ, columns)
	if err != nil {
		return nil, err
	}
	if n, m := len(columns), len(plan.columns); n > m {
		return nil, fmt.Errorf("sql/scan: columns do not match (%d > %d)", n, m)
	}

	var res []T
	for rows.Next() {
		dest := plan.dest()
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("sql/scan: failed scanning rows: %w", err)
		}
		res = append(res, plan.build(dest).Interface().(T))
	}
	return res, rows.Err()
}

// anyRow returns a row of empty interface values and pointers to them.
func anyRow(n int) ([]any, []any) {
	values := make([]any, n)
	dest := make([]any, n)
	for i := range values {
		dest[i] = &values[i]
	}
	return values, dest
}

// scanPlan reads a result row into one value of a Go type.
type scanPlan struct {
	// columns are the destination types, one per result column.
	columns []reflect.Type
	// build assembles the value from scanned destinations.
	build func(dest []any) reflect.Value
}

func (p *scanPlan) dest() []any {
	dest := make([]any, len(p.columns))
	for i, t := range p.columns {
		dest[i] = reflect.New(t).Interface()
	}
	return dest
}

func planFor(typ reflect.Type, columns []string) (*scanPlan, error) {
	switch k := typ.Kind(); {
	case assignable(typ):
		return &scanPlan{
			columns: []reflect.Type{typ},
			build: func(dest []any) reflect.Value {
				return reflect.Indirect(reflect.ValueOf(dest[0]))
			},
		}, nil
	case k == reflect.Ptr:
		return planPtr(typ, columns)
	case k == reflect.Struct:
		return planStruct(typ, columns)
	default:
		return nil, reflectErr("scan", "unsupported type []"+typ.String())
	}
}

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

func assignable(typ reflect.Type) bool {
	switch k := typ.Kind(); {
	case typ.Implements(scannerType), reflect.PointerTo(typ).Implements(scannerType) && k == reflect.Struct:
	case k == reflect.Interface && typ.NumMethod() == 0:
	case k == reflect.String || k >= reflect.Bool && k <= reflect.Float64:
	case (k == reflect.Slice || k == reflect.Array) && typ.Elem().Kind() == reflect.Uint8:
	default:
		return false
	}
	return true
}

func planPtr(typ reflect.Type, columns []string) (*scanPlan, error) {
	plan, err := planFor(typ.Elem(), columns)
	if err != nil {
		return nil, err
	}
	build := plan.build
	plan.build = func(dest []any) reflect.Value {
		v := build(dest)
		pv := reflect.New(v.Type())
		pv.Elem().Set(v)
		return pv
	}
	return plan, nil
}

// planStruct maps columns to struct fields. Fields of embedded structs are
// reachable at any depth, the same way Fields enumerates them.
func planStruct(typ reflect.Type, columns []string) (*scanPlan, error) {
	index := make(map[string][]int, typ.NumField())
	indexFields(typ, nil, index)

	plan := &scanPlan{}
	paths := make([][]int, 0, len(columns))
	for _, c := range columns {
		// COUNT(*) and friends map to the field named after the function.
		name := strings.ToLower(strings.Split(c, "(")[0])
		path, ok := index[name]
		if !ok {
			return nil, reflectErr("scan", "missing struct field for column "+c+" in "+typ.String())
		}
		paths = append(paths, path)
		ft := typ.FieldByIndex(path).Type
		if !nillable(ft) {
			// Scan through a pointer so NULL leaves the field zero.
			ft = reflect.PointerTo(ft)
		}
		plan.columns = append(plan.columns, ft)
	}
	plan.build = func(dest []any) reflect.Value {
		st := reflect.New(typ).Elem()
		for i, d := range dest {
			rv := reflect.Indirect(reflect.ValueOf(d))
			if rv.IsNil() {
				continue
			}
			field := st.FieldByIndex(paths[i])
			if !nillable(field.Type()) {
				rv = rv.Elem()
			}
			field.Set(rv)
		}
		return st
	}
	return plan, nil
}

func indexFields(typ reflect.Type, parent []int, index map[string][]int) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		path := append(append([]int(nil), parent...), i)
		if embedded(f) {
			indexFields(f.Type, path, index)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name, ok := columnName(f)
		if !ok {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = path
		}
	}
}

// columnName is the lower-cased column a struct field is read from: its db
// tag as Fields reads it, else its sql or json tag, else its name.
func columnName(f reflect.StructField) (string, bool) {
	if _, ok := f.Tag.Lookup("db"); ok {
		name, ok := fieldColumn(f)
		return strings.ToLower(name), ok
	}
	for _, key := range [...]string{"sql", "json"} {
		if tag, ok := f.Tag.Lookup(key); ok {
			if tag = strings.Split(tag, ",")[0]; tag != "" && tag != "-" {
				return strings.ToLower(tag), true
			}
			break
		}
	}
	return strings.ToLower(f.Name), true
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Slice, reflect.Map, reflect.Ptr, reflect.UnsafePointer:
		return true
	}
	return false
}
