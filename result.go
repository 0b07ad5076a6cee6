package dbop

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ResultSet is a fully read query result.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Value returns the value of column in row i, or nil if either is out of range.
func (rs *ResultSet) Value(i int, column string) any {
	if rs == nil || i < 0 || i >= len(rs.Rows) {
		return nil
	}
	for j, c := range rs.Columns {
		if c == column {
			return rs.Rows[i][j]
		}
	}
	return nil
}

// Maps returns the rows keyed by column name.
func (rs *ResultSet) Maps() []map[string]any {
	if rs == nil {
		return nil
	}
	out := make([]map[string]any, len(rs.Rows))
	for i, row := range rs.Rows {
		m := make(map[string]any, len(rs.Columns))
		for j, c := range rs.Columns {
			m[c] = row[j]
		}
		out[i] = m
	}
	return out
}

// ReadResultSet reads every remaining row of rows.
func ReadResultSet(rows ColumnScanner) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed getting column names: %w", err)
	}
	rs := &ResultSet{Columns: columns}
	for rows.Next() {
		values, dest := anyRow(len(columns))
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed scanning rows: %w", err)
		}
		rs.Rows = append(rs.Rows, values)
	}
	return rs, rows.Err()
}

// Cursor returns a ColumnScanner over the rows of rs.
func (rs *ResultSet) Cursor() ColumnScanner {
	return &cursor{rs: rs, pos: -1}
}

// Decode maps the rows of rs onto T, which may be a scalar, a struct or a
// pointer to either. Struct fields are matched to columns by their db, sql or
// json tag, or by their lower-cased name.
func Decode[T any](rs *ResultSet) ([]T, error) {
	if rs == nil {
		return nil, nil
	}
	return ScanSlice[T](rs.Cursor())
}

type cursor struct {
	rs  *ResultSet
	pos int
}

func (c *cursor) Close() error { return nil }
func (c *cursor) Err() error   { return nil }

func (c *cursor) Columns() ([]string, error) {
	return c.rs.Columns, nil
}

func (c *cursor) Next() bool {
	if c.pos+1 >= len(c.rs.Rows) {
		c.pos = len(c.rs.Rows)
		return false
	}
	c.pos++
	return true
}

func (c *cursor) Scan(dest ...any) error {
	if c.pos < 0 || c.pos >= len(c.rs.Rows) {
		return errors.New("sql/scan: Scan called without calling Next")
	}
	row := c.rs.Rows[c.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("sql/scan: expected %d destination arguments in Scan, not %d", len(row), len(dest))
	}
	for i := range dest {
		if err := assign(dest[i], row[i]); err != nil {
			return fmt.Errorf("sql/scan: column %d (%s): %w", i, c.rs.Columns[i], err)
		}
	}
	return nil
}

// assign stores src in the value dest points to, allocating intermediate
// pointers and converting between numeric kinds and from []byte.
func assign(dest, src any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return errors.New("destination not a pointer")
	}
	if s, ok := dest.(sql.Scanner); ok {
		return s.Scan(src)
	}
	dv = dv.Elem()
	if src == nil {
		dv.Set(reflect.Zero(dv.Type()))
		return nil
	}
	for dv.Kind() == reflect.Ptr {
		if dv.IsNil() {
			dv.Set(reflect.New(dv.Type().Elem()))
		}
		if s, ok := dv.Interface().(sql.Scanner); ok {
			return s.Scan(src)
		}
		dv = dv.Elem()
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dv.Type()) {
		dv.Set(sv)
		return nil
	}
	if b, ok := src.([]byte); ok {
		return assignBytes(dv, b)
	}
	switch {
	case numeric(sv.Kind()) && numeric(dv.Kind()):
		return assignNumber(dv, sv)
	case dv.Kind() == reflect.String:
		dv.SetString(fmt.Sprint(src))
		return nil
	}
	return fmt.Errorf("unsupported conversion %T -> %s", src, dv.Type())
}

func assignBytes(dv reflect.Value, b []byte) error {
	s := string(b)
	switch k := dv.Kind(); {
	case k == reflect.String:
		dv.SetString(s)
	case k >= reflect.Int && k <= reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		if dv.OverflowInt(n) {
			return rangeErr(s, dv)
		}
		dv.SetInt(n)
	case k >= reflect.Uint && k <= reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		if dv.OverflowUint(n) {
			return rangeErr(s, dv)
		}
		dv.SetUint(n)
	case k == reflect.Float32 || k == reflect.Float64:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		if dv.OverflowFloat(n) {
			return rangeErr(s, dv)
		}
		dv.SetFloat(n)
	case k == reflect.Bool:
		n, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		dv.SetBool(n)
	case k == reflect.Slice && dv.Type().Elem().Kind() == reflect.Uint8:
		dv.SetBytes(append([]byte(nil), b...))
	default:
		return fmt.Errorf("unsupported conversion []byte -> %s", dv.Type())
	}
	return nil
}

// assignNumber converts between numeric kinds. Values that don't fit dv, and
// fractional values going into integers, are errors rather than truncated.
func assignNumber(dv, sv reflect.Value) error {
	switch dk, sk := dv.Kind(), sv.Kind(); {
	case signed(dk):
		var n int64
		switch {
		case signed(sk):
			n = sv.Int()
		case unsigned(sk):
			u := sv.Uint()
			if u > math.MaxInt64 {
				return rangeErr(sv, dv)
			}
			n = int64(u)
		default:
			f := sv.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return rangeErr(sv, dv)
			}
			n = int64(f)
		}
		if dv.OverflowInt(n) {
			return rangeErr(sv, dv)
		}
		dv.SetInt(n)
	case unsigned(dk):
		var u uint64
		switch {
		case signed(sk):
			n := sv.Int()
			if n < 0 {
				return rangeErr(sv, dv)
			}
			u = uint64(n)
		case unsigned(sk):
			u = sv.Uint()
		default:
			f := sv.Float()
			if f != math.Trunc(f) || f < 0 || f >= float64(math.MaxUint64) {
				return rangeErr(sv, dv)
			}
			u = uint64(f)
		}
		if dv.OverflowUint(u) {
			return rangeErr(sv, dv)
		}
		dv.SetUint(u)
	default:
		var f float64
		switch {
		case signed(sk):
			f = float64(sv.Int())
		case unsigned(sk):
			f = float64(sv.Uint())
		default:
			f = sv.Float()
		}
		if dv.OverflowFloat(f) {
			return rangeErr(sv, dv)
		}
		dv.SetFloat(f)
	}
	return nil
}

func rangeErr(v any, dv reflect.Value) error {
	return fmt.Errorf("converting %v to %s: value out of range", v, dv.Type())
}

func numeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

func signed(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func unsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

// toInt64 converts a scalar query result to int64.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	rv := reflect.ValueOf(v)
	switch k := rv.Kind(); {
	case k >= reflect.Int && k <= reflect.Int64:
		return rv.Int(), nil
	case k >= reflect.Uint && k <= reflect.Uint64:
		return int64(rv.Uint()), nil
	case k == reflect.Float32 || k == reflect.Float64:
		return int64(rv.Float()), nil
	}
	return 0, fmt.Errorf("unexpected scalar type %T", v)
}
