package dbop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	exec := &fakeExec{affected: 1}
	dal := New(exec, WithLogger(quietLogger()), WithMetrics(m))
	ctx := context.Background()

	_, err = dal.AddModel(ctx, User{Id: 1})
	require.NoError(t, err)
	_, err = dal.AddModel(ctx, 42)
	require.Error(t, err)
	_, err = dal.SelectRow(ctx, User{}, nil, 0)
	require.Error(t, err)

	exec.err = errors.New("down")
	_, err = dal.DeleteModel(ctx, User{Id: 1}, "Id")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("AddModel", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("AddModel", "reflection")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("SelectRow", "condition_conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("DeleteModel", "execution")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.Duration))

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "configuration", outcome(configErr("x", "y")))
	assert.Equal(t, "error", outcome(errors.New("other")))

	var m *Metrics
	assert.NotPanics(t, func() { m.observe("AddModel", time.Time{}, nil) })
}
