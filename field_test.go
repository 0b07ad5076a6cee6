package dbop

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Audit struct {
	CreatedAt time.Time `db:"created_at"`
	CreatedBy string    `db:"created_by"`
}

type Order struct {
	ID int `db:"id"`
	Audit
	Total float64 `db:"total"`
}

func TestFields(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	fields, err := Fields(&Order{ID: 3, Audit: Audit{CreatedAt: now, CreatedBy: "bob"}, Total: 1.5})
	require.NoError(t, err)
	assert.Equal(t, []Field{
		{Name: "id", Value: 3},
		{Name: "created_at", Value: now},
		{Name: "created_by", Value: "bob"},
		{Name: "total", Value: 1.5},
	}, fields)
	assert.Equal(t, []string{"id", "created_at", "created_by", "total"}, FieldNames(fields))

	// Enumeration is stable across calls.
	again, err := Fields(&Order{ID: 3, Audit: Audit{CreatedAt: now, CreatedBy: "bob"}, Total: 1.5})
	require.NoError(t, err)
	assert.Equal(t, fields, again)
}

type rowBase struct {
	ID int `db:"id"`
}

type Row struct {
	rowBase
	Name string `db:"name"`
}

func TestFieldsUnexportedEmbedding(t *testing.T) {
	fields, err := Fields(Row{rowBase: rowBase{ID: 4}, Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, []Field{{Name: "id", Value: 4}, {Name: "name", Value: "n"}}, fields)

	stmt, err := Insert(Row{rowBase: rowBase{ID: 4}, Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO Row (id,name) VALUES (@id,@name)", stmt.Text)

	stmt, err = Update(Row{rowBase: rowBase{ID: 4}, Name: "n"}, "id")
	require.NoError(t, err)
	assert.Equal(t, "UPDATE Row SET id=@id, name=@name WHERE id=@id", stmt.Text)

	rows, err := Decode[Row](&ResultSet{Columns: []string{"id", "name"}, Rows: [][]any{{int64(4), "n"}}})
	require.NoError(t, err)
	assert.Equal(t, []Row{{rowBase: rowBase{ID: 4}, Name: "n"}}, rows)
}

func TestFieldsColumnNames(t *testing.T) {
	for _, model := range []any{
		struct {
			Name string `db:"名字"`
		}{},
		struct {
			Name string `db:"first-name"`
		}{},
		struct {
			Name string `db:"1st"`
		}{},
	} {
		_, err := Fields(model)
		assert.True(t, errors.Is(err, ErrReflection), "%T", model)
	}

	fields, err := Fields(struct {
		Name string `db:"first_name2"`
	}{})
	require.NoError(t, err)
	assert.Equal(t, "first_name2", fields[0].Name)
}

func TestFieldsErrors(t *testing.T) {
	_, err := Fields(nil)
	assert.True(t, errors.Is(err, ErrReflection))

	var u *User
	_, err = Fields(u)
	assert.True(t, errors.Is(err, ErrReflection))

	_, err = Fields(42)
	assert.True(t, errors.Is(err, ErrReflection))

	_, err = Fields(struct{}{})
	assert.True(t, errors.Is(err, ErrReflection))

	_, err = Fields(struct {
		A int `db:"x"`
		B int `db:"x"`
	}{})
	assert.True(t, errors.Is(err, ErrReflection))
}

func TestTableName(t *testing.T) {
	name, err := TableName(User{})
	require.NoError(t, err)
	assert.Equal(t, "User", name)

	name, err = TableName(&Account{})
	require.NoError(t, err)
	assert.Equal(t, "accounts", name)

	name, err = TableName(TableRef("logs"))
	require.NoError(t, err)
	assert.Equal(t, "logs", name)

	_, err = TableName(TableRef(""))
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestBind(t *testing.T) {
	params, err := BindModel([]Field{{Name: "Id", Value: 1}})
	require.NoError(t, err)
	assert.Equal(t, []Param{{Name: "@Id", Value: 1}}, params)
	assert.Equal(t, "Id", params[0].Named().Name)

	_, err = BindModel(nil)
	assert.True(t, errors.Is(err, ErrConfiguration))

	params, err = BindRange([]Bound{Below("Age", 9), Above("Id", 2)})
	require.NoError(t, err)
	assert.Equal(t, []Param{{Name: "@AgeMAX", Value: 9}, {Name: "@IdMIN", Value: 2}}, params)

	_, err = BindRange(nil)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestErrorMessage(t *testing.T) {
	err := execErr("AddModel", errors.New("no such table: users"))
	assert.Equal(t, "dbop/AddModel: execution error: no such table: users", err.Error())
	assert.True(t, errors.Is(err, ErrExecution))
	assert.False(t, errors.Is(err, ErrReflection))
	assert.Equal(t, "dbop/where: configuration error: no equality keys", configErr("where", "no equality keys").Error())
}
