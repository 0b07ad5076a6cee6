package dbop

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSlice(t *testing.T) {
	mock := sqlmock.NewRows([]string{"name"}).
		AddRow("foo").
		AddRow("bar")
	var strArr []string
	strArr, err := ScanSlice[string](toRows(mock))
	assert.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, strArr)

	mock = sqlmock.NewRows([]string{"age"}).AddRow(1).AddRow(2)
	var intArr []int
	intArr, err = ScanSlice[int](toRows(mock))
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2}, intArr)

	mock = sqlmock.NewRows([]string{"name", "COUNT(*)"}).AddRow("foo", 1).AddRow("bar", 2)
	type NameCount struct {
		Name  string
		Count int
	}

	nameCounts, err := ScanSlice[NameCount](toRows(mock))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(nameCounts))
	assert.Equal(t, "foo", nameCounts[0].Name)
	assert.Equal(t, "bar", nameCounts[1].Name)

	mock = sqlmock.NewRows([]string{"name", "COUNT(*)"}).AddRow("foo", 2).AddRow("bar", 3)
	nameCountPtrs, err := ScanSlice[*NameCount](toRows(mock))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(nameCountPtrs))
	assert.Equal(t, "foo", nameCountPtrs[0].Name)
	assert.Equal(t, 3, nameCountPtrs[1].Count)
}

func TestScanSliceTags(t *testing.T) {
	type account struct {
		ID    int64  `db:"id"`
		Owner string `json:"owner_name"`
		Note  *string
	}
	mock := sqlmock.NewRows([]string{"id", "owner_name", "note"}).
		AddRow(1, "ann", nil).
		AddRow(2, "bob", "vip")
	accounts, err := ScanSlice[account](toRows(mock))
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(1), accounts[0].ID)
	assert.Equal(t, "ann", accounts[0].Owner)
	assert.Nil(t, accounts[0].Note)
	require.NotNil(t, accounts[1].Note)
	assert.Equal(t, "vip", *accounts[1].Note)

	mock = sqlmock.NewRows([]string{"missing"}).AddRow(1)
	_, err = ScanSlice[account](toRows(mock))
	assert.Error(t, err)
}

func TestScanOne(t *testing.T) {
	n, err := Scan[int](toRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(4)))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = Scan[int](toRows(sqlmock.NewRows([]string{"COUNT(*)"})))
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = Scan[int](toRows(sqlmock.NewRows([]string{"a", "b"}).AddRow(1, 2)))
	assert.Error(t, err)

	_, err = Scan[int](toRows(sqlmock.NewRows([]string{"a"}).AddRow(1).AddRow(2)))
	assert.Error(t, err)

	v, err := ScanValue(toRows(sqlmock.NewRows([]string{"name"}).AddRow("foo")))
	require.NoError(t, err)
	assert.Equal(t, "foo", v)
}

func TestScanFirst(t *testing.T) {
	v, err := ScanFirst(toRows(sqlmock.NewRows([]string{"a", "b"}).AddRow(int64(7), 8).AddRow(int64(9), 10)))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	_, err = ScanFirst(toRows(sqlmock.NewRows([]string{"a"})))
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func toRows(mrows *sqlmock.Rows) *sql.Rows {
	db, mock, _ := sqlmock.New()
	mock.ExpectQuery("").WillReturnRows(mrows)
	rows, _ := db.Query("")
	return rows
}
