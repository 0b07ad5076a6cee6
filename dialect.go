package dbop

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// A Dialect selects the row-limiting clause and placeholder style of
// generated statements. Its value matches the database/sql driver name.
type Dialect string

const (
	SQLServer Dialect = "sqlserver"
	SQLite    Dialect = "sqlite3"
	MySQL     Dialect = "mysql"
	Postgres  Dialect = "postgres"
)

// DefaultDialect is used by the package-level statement helpers.
const DefaultDialect = SQLServer

// ParseDialect maps a dialect or driver name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "", "sqlserver", "mssql", "tsql":
		return SQLServer, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return "", configErr("dialect", "unknown dialect "+s)
}

// top reports whether the dialect limits rows with SELECT TOP n.
func (d Dialect) top() bool {
	return d == SQLServer || d == ""
}

// named reports whether the dialect's drivers accept @name placeholders.
func (d Dialect) named() bool {
	return d == SQLServer || d == SQLite || d == ""
}

// Positional rewrites the @name placeholders of stmt for dialects whose
// drivers only take positional arguments. Each occurrence becomes a '?'
// (or $n for Postgres) and gets its own copy of the value, so a placeholder
// used twice is bound twice. Statements for named dialects are returned
// with their parameters as sql.NamedArg.
func Positional(stmt *Statement, d Dialect) (string, []any, error) {
	if d.named() {
		text, args := stmt.Query()
		return text, args, nil
	}

	values := make(map[string]any, len(stmt.Params))
	for _, p := range stmt.Params {
		values[p.Name] = p.Value
	}

	var (
		text = stmt.Text
		sb   strings.Builder
		args []any
	)
	for i := 0; i < len(text); {
		if text[i] != '@' {
			sb.WriteByte(text[i])
			i++
			continue
		}
		j := i + 1
		for j < len(text) && isIdentByte(text[j]) {
			j++
		}
		name := text[i:j]
		v, ok := values[name]
		if !ok {
			return "", nil, configErr("positional", "placeholder "+name+" has no parameter")
		}
		sb.WriteByte('?')
		args = append(args, v)
		i = j
	}

	out := sb.String()
	if d == Postgres {
		var err error
		if out, err = sq.Dollar.ReplacePlaceholders(out); err != nil {
			return "", nil, configErr("positional", err.Error())
		}
	}
	return out, args, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
