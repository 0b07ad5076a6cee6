package dbop

// Delete generates
//
//	DELETE FROM T WHERE k=@k
//
// binding the model's current values of keys.
func (s StatementBuilder) Delete(model any, keys ...string) (*Statement, error) {
	if len(keys) == 0 {
		return nil, configErr("delete", "no key fields")
	}
	table, fields, err := modelFields(model)
	if err != nil {
		return nil, err
	}

	b := s.builder()
	b.WriteString("DELETE FROM ").Ident(table).WriteString(" WHERE ")
	b.where(fields, Equal(keys))
	return b.Statement()
}

// Delete generates a DELETE statement in the default dialect.
func Delete(model any, keys ...string) (*Statement, error) {
	return For(DefaultDialect).Delete(model, keys...)
}
