package dbop

// Update generates
//
//	UPDATE T SET f1=@f1, f2=@f2 WHERE k=@k
//
// The SET list covers every field, including the keys. Rows are matched by
// equality on keys only.
func (s StatementBuilder) Update(model any, keys ...string) (*Statement, error) {
	if len(keys) == 0 {
		return nil, configErr("update", "no key fields")
	}
	table, fields, err := modelFields(model)
	if err != nil {
		return nil, err
	}
	params, err := BindModel(fields)
	if err != nil {
		return nil, err
	}

	b := s.builder()
	b.WriteString("UPDATE ").Ident(table).WriteString(" SET ")
	for i, f := range fields {
		if i > 0 {
			b.Comma()
		}
		b.Ident(f.Name).WriteOp(OpEQ).Placeholder(f.Name)
	}
	b.Bind(params...)
	b.WriteString(" WHERE ").where(fields, Equal(keys))
	return b.Statement()
}

// Update generates an UPDATE statement in the default dialect.
func Update(model any, keys ...string) (*Statement, error) {
	return For(DefaultDialect).Update(model, keys...)
}
