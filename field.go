package dbop

import (
	"reflect"
	"strings"
)

// Table is implemented by models whose table name differs from their type name.
type Table interface {
	TableName() string
}

// TableRef names a table without a model type. It is enough for statements
// that never read model fields, such as SelectList and MostID.
type TableRef string

func (t TableRef) TableName() string { return string(t) }

// A Field is one column of a model together with its current value.
type Field struct {
	Name  string
	Value any
}

// Fields returns the columns of model in declaration order.
//
// Exported fields map to columns named by their `db` tag, or by the field name
// when the tag is absent. A `db:"-"` tag skips the field. Fields of an embedded
// struct are enumerated in place of the embedding field. The order is the
// reflect field index order, which is the order fields are declared in, so
// column lists and placeholder lists built from the same model always line up.
//
// Column names double as placeholder names, so they must be ASCII identifiers
// (letters, digits and '_', not starting with a digit).
func Fields(model any) ([]Field, error) {
	v, err := structValue(model)
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, v.NumField())
	fields = appendFields(fields, v)
	if len(fields) == 0 {
		return nil, reflectErr("fields", "model "+v.Type().String()+" has no columns")
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if !validColumn(f.Name) {
			return nil, reflectErr("fields", "column "+f.Name+" in "+v.Type().String()+" is not an ASCII identifier")
		}
		if _, ok := seen[f.Name]; ok {
			return nil, reflectErr("fields", "duplicate column "+f.Name+" in "+v.Type().String())
		}
		seen[f.Name] = struct{}{}
	}
	return fields, nil
}

// FieldNames returns the column names of fields in the same order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i := range fields {
		names[i] = fields[i].Name
	}
	return names
}

// TableName returns the table a model maps to.
func TableName(model any) (string, error) {
	if t, ok := model.(Table); ok {
		if name := t.TableName(); name != "" {
			return name, nil
		}
		return "", configErr("table", "empty table name")
	}
	v, err := structValue(model)
	if err != nil {
		return "", err
	}
	return v.Type().Name(), nil
}

func appendFields(fields []Field, v reflect.Value) []Field {
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		// Promoted fields of an embedded struct are columns even when the
		// embedded type itself is unexported.
		if embedded(f) {
			fields = appendFields(fields, v.Field(i))
			continue
		}
		if !f.IsExported() {
			continue
		}
		name, ok := fieldColumn(f)
		if !ok {
			continue
		}
		fields = append(fields, Field{Name: name, Value: v.Field(i).Interface()})
	}
	return fields
}

func validColumn(name string) bool {
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isIdentByte(name[i]) {
			return false
		}
	}
	return true
}

func embedded(f reflect.StructField) bool {
	_, tagged := f.Tag.Lookup("db")
	return f.Anonymous && !tagged && f.Type.Kind() == reflect.Struct
}

func fieldColumn(f reflect.StructField) (string, bool) {
	tag, ok := f.Tag.Lookup("db")
	if !ok {
		return f.Name, true
	}
	name := strings.Split(tag, ",")[0]
	switch name {
	case "-":
		return "", false
	case "":
		return f.Name, true
	}
	return name, true
}

func structValue(model any) (reflect.Value, error) {
	if model == nil {
		return reflect.Value{}, reflectErr("fields", "nil model")
	}
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, reflectErr("fields", "nil model "+v.Type().String())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, reflectErr("fields", "model must be a struct, got "+v.Kind().String())
	}
	return v, nil
}
