package dbop

// SelectList generates a projection of columns over the model's table:
//
//	SELECT [TOP n] c1,c2 FROM T
//
// Columns are taken as given, not checked against the model, and the
// statement has no parameters. The model's fields are never read.
func (s StatementBuilder) SelectList(model any, columns []string, top int) (*Statement, error) {
	if len(columns) == 0 {
		return nil, configErr("select list", "no columns")
	}
	table, err := TableName(model)
	if err != nil {
		return nil, err
	}

	b := s.builder()
	b.Select(top).IdentComma(columns...)
	b.WriteString(" FROM ").Ident(table)
	b.Limit(top)
	return b.Statement()
}

// SelectRow generates
//
//	SELECT [TOP n] <all fields> FROM T WHERE <pred>
func (s StatementBuilder) SelectRow(model any, pred Predicate, top int) (*Statement, error) {
	table, fields, err := modelFields(model)
	if err != nil {
		return nil, err
	}
	return s.selectWhere(table, fields, FieldNames(fields), pred, top)
}

// SelectField generates
//
//	SELECT [TOP n] <columns> FROM T WHERE <pred>
func (s StatementBuilder) SelectField(model any, pred Predicate, columns []string, top int) (*Statement, error) {
	if len(columns) == 0 {
		return nil, configErr("select field", "no columns")
	}
	table, fields, err := modelFields(model)
	if err != nil {
		return nil, err
	}
	return s.selectWhere(table, fields, columns, pred, top)
}

func (s StatementBuilder) selectWhere(table string, fields []Field, columns []string, pred Predicate, top int) (*Statement, error) {
	b := s.builder()
	b.Select(top).IdentComma(columns...)
	b.WriteString(" FROM ").Ident(table).WriteString(" WHERE ")
	b.where(fields, pred)
	b.Limit(top)
	return b.Statement()
}

// Exists generates a count of the rows of table whose field equals value:
//
//	SELECT COUNT(*) FROM table WHERE field=@field
func (s StatementBuilder) Exists(value any, table, field string) (*Statement, error) {
	switch {
	case table == "":
		return nil, configErr("exists", "no table name")
	case field == "":
		return nil, configErr("exists", "no field name")
	}

	b := s.builder()
	b.WriteString("SELECT COUNT(*) FROM ").Ident(table)
	b.WriteString(" WHERE ").Ident(field).WriteOp(OpEQ).Arg(field, value)
	return b.Statement()
}

// MostID generates one count per field over the model's table:
//
//	SELECT COUNT(f1),COUNT(f2) FROM T
func (s StatementBuilder) MostID(model any, fields ...string) (*Statement, error) {
	if len(fields) == 0 {
		return nil, configErr("most id", "no fields")
	}
	table, err := TableName(model)
	if err != nil {
		return nil, err
	}

	b := s.builder()
	b.WriteString("SELECT ")
	for i, f := range fields {
		if f == "" {
			return nil, configErr("most id", "empty field name")
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("COUNT(").Ident(f).WriteByte(')')
	}
	b.WriteString(" FROM ").Ident(table)
	return b.Statement()
}

// SelectList generates a projection in the default dialect.
func SelectList(model any, columns []string, top int) (*Statement, error) {
	return For(DefaultDialect).SelectList(model, columns, top)
}

// SelectRow generates a full-row SELECT in the default dialect.
func SelectRow(model any, pred Predicate, top int) (*Statement, error) {
	return For(DefaultDialect).SelectRow(model, pred, top)
}

// SelectField generates a column SELECT in the default dialect.
func SelectField(model any, pred Predicate, columns []string, top int) (*Statement, error) {
	return For(DefaultDialect).SelectField(model, pred, columns, top)
}

// Exists generates a row count in the default dialect.
func Exists(value any, table, field string) (*Statement, error) {
	return For(DefaultDialect).Exists(value, table, field)
}

// MostID generates field counts in the default dialect.
func MostID(model any, fields ...string) (*Statement, error) {
	return For(DefaultDialect).MostID(model, fields...)
}
