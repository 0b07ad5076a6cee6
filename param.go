package dbop

import (
	"database/sql"
	"reflect"
	"strings"
)

// Placeholder suffixes of range bounds.
const (
	maxSuffix = "MAX"
	minSuffix = "MIN"
)

// A Param is a named value bound to a placeholder of a Statement.
// Name includes the leading '@'.
type Param struct {
	Name  string
	Value any
}

// Named returns p as a database/sql named argument.
func (p Param) Named() sql.NamedArg {
	return sql.Named(strings.TrimPrefix(p.Name, "@"), p.Value)
}

func placeholder(name string) string {
	return "@" + name
}

// BindModel binds one parameter per field, named '@' + the column name.
func BindModel(fields []Field) ([]Param, error) {
	if len(fields) == 0 {
		return nil, configErr("bind", "no fields to bind")
	}
	params := make([]Param, len(fields))
	for i, f := range fields {
		params[i] = Param{Name: placeholder(f.Name), Value: f.Value}
	}
	return params, nil
}

// BindRange binds the present bounds of each entry, the upper bound first.
// Absent bounds produce no parameter.
func BindRange(bounds []Bound) ([]Param, error) {
	if len(bounds) == 0 {
		return nil, configErr("bind", "no range bounds to bind")
	}
	params := make([]Param, 0, 2*len(bounds))
	for _, b := range bounds {
		if present(b.Max) {
			params = append(params, Param{Name: placeholder(b.Field + maxSuffix), Value: b.Max})
		}
		if present(b.Min) {
			params = append(params, Param{Name: placeholder(b.Field + minSuffix), Value: b.Min})
		}
	}
	return params, nil
}

// NamedArgs converts params into arguments for database/sql.
func NamedArgs(params []Param) []any {
	args := make([]any, len(params))
	for i := range params {
		args[i] = params[i].Named()
	}
	return args
}

// present reports whether a bound was supplied. Nil interfaces and nil
// pointers are absent.
func present(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() != reflect.Ptr || !rv.IsNil()
}
