package dbop

// A StatementBuilder generates statements in one dialect.
type StatementBuilder struct {
	dialect Dialect
}

// For returns a StatementBuilder for d.
func For(d Dialect) StatementBuilder {
	return StatementBuilder{dialect: d}
}

func (s StatementBuilder) Dialect() Dialect {
	if s.dialect == "" {
		return DefaultDialect
	}
	return s.dialect
}

func (s StatementBuilder) builder() *Builder {
	return &Builder{dialect: s.Dialect()}
}

// Insert generates
//
//	INSERT INTO T (f1,f2) VALUES (@f1,@f2)
//
// with one parameter per field.
func (s StatementBuilder) Insert(model any) (*Statement, error) {
	table, fields, err := modelFields(model)
	if err != nil {
		return nil, err
	}
	params, err := BindModel(fields)
	if err != nil {
		return nil, err
	}

	b := s.builder()
	b.WriteString("INSERT INTO ").Ident(table).Pad()
	b.WriteByte('(').IdentComma(FieldNames(fields)...).WriteByte(')')
	b.WriteString(" VALUES (")
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Placeholder(f.Name)
	}
	b.WriteByte(')')
	b.Bind(params...)
	return b.Statement()
}

// Insert generates an INSERT statement in the default dialect.
func Insert(model any) (*Statement, error) {
	return For(DefaultDialect).Insert(model)
}

func modelFields(model any) (string, []Field, error) {
	table, err := TableName(model)
	if err != nil {
		return "", nil, err
	}
	fields, err := Fields(model)
	if err != nil {
		return "", nil, err
	}
	return table, fields, nil
}
