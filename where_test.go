package dbop

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereEqual(t *testing.T) {
	stmt, err := Where(User{Id: 5}, Equal{"Id"})
	require.NoError(t, err)
	assert.Equal(t, "Id=@Id", stmt.Text)
	assert.Equal(t, []Param{{Name: "@Id", Value: 5}}, stmt.Params)

	// Field order wins over selector order.
	stmt, err = Where(User{Id: 1, Name: "a", Age: 2}, Equal{"Age", "Name", "Id"})
	require.NoError(t, err)
	assert.Equal(t, "Id=@Id AND Name=@Name AND Age=@Age", stmt.Text)

	// Duplicate selectors produce one fragment.
	stmt, err = Where(User{Id: 1}, Equal{"Id", "Id"})
	require.NoError(t, err)
	assert.Equal(t, "Id=@Id", stmt.Text)
	assert.Len(t, stmt.Params, 1)
}

func TestWhereEqualErrors(t *testing.T) {
	_, err := Where(User{}, Equal{})
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = Where(User{}, Equal{""})
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = Where(User{}, Equal{"Email"})
	assert.True(t, errors.Is(err, ErrReflection))

	_, err = Where(User{}, Equal{"Id", "Email"})
	assert.True(t, errors.Is(err, ErrReflection))
}

func TestWhereRange(t *testing.T) {
	stmt, err := Where(User{}, Range{Below("Age", 10)})
	require.NoError(t, err)
	assert.Equal(t, "Age < @AgeMAX", stmt.Text)
	assert.Equal(t, []Param{{Name: "@AgeMAX", Value: 10}}, stmt.Params)

	stmt, err = Where(User{}, Range{Above("Age", 3)})
	require.NoError(t, err)
	assert.Equal(t, "Age > @AgeMIN", stmt.Text)
	assert.Equal(t, []Param{{Name: "@AgeMIN", Value: 3}}, stmt.Params)

	// Clause in field order, params in bound order.
	stmt, err = Where(User{}, Range{Between("Age", 18, 65), Below("Id", 100)})
	require.NoError(t, err)
	assert.Equal(t, "Id < @IdMAX AND Age < @AgeMAX AND Age > @AgeMIN", stmt.Text)
	assert.Equal(t, []Param{
		{Name: "@AgeMAX", Value: 65},
		{Name: "@AgeMIN", Value: 18},
		{Name: "@IdMAX", Value: 100},
	}, stmt.Params)

	var absent *int
	stmt, err = Where(User{}, Range{{Field: "Age", Max: 9, Min: absent}})
	require.NoError(t, err)
	assert.Equal(t, "Age < @AgeMAX", stmt.Text)
	assert.Len(t, stmt.Params, 1)
}

func TestWhereRangeErrors(t *testing.T) {
	_, err := Where(User{}, Range{})
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = Where(User{}, Range{{Field: "Age"}})
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = Where(User{}, Range{Below("Age", 1), Above("Age", 0)})
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = Where(User{}, Range{Below("", 1)})
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = Where(User{}, Range{Below("Height", 200)})
	assert.True(t, errors.Is(err, ErrReflection))
}

func TestMatch(t *testing.T) {
	p, err := Match([]string{"Id"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Equal{"Id"}, p)

	p, err = Match(nil, []Bound{Below("Age", 3)})
	require.NoError(t, err)
	assert.Equal(t, Range{Below("Age", 3)}, p)

	_, err = Match([]string{"Id"}, []Bound{Below("Age", 3)})
	assert.True(t, errors.Is(err, ErrConditionConflict))

	_, err = Match(nil, nil)
	assert.True(t, errors.Is(err, ErrConditionConflict))

	_, err = Where(User{}, nil)
	assert.True(t, errors.Is(err, ErrConditionConflict))
}

func TestSelectRowConflict(t *testing.T) {
	_, err := Match([]string{"Id"}, []Bound{Below("Age", 3)})
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, ErrConditionConflict, e.Kind)

	_, err = SelectRow(User{}, nil, 0)
	assert.True(t, errors.Is(err, ErrConditionConflict))
}
