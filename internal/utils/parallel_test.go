package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParallel(t *testing.T) {
	var ran atomic.Int32
	boom := errors.New("boom")

	errs := RunParallel(context.Background(), []Task{
		func(context.Context) error { ran.Add(1); return nil },
		func(context.Context) error { ran.Add(1); return boom },
		func(context.Context) error { ran.Add(1); return nil },
	})

	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], boom)
	assert.NoError(t, errs[2])
	assert.EqualValues(t, 3, ran.Load())
}

func TestRunParallel_Empty(t *testing.T) {
	assert.Empty(t, RunParallel(context.Background(), nil))
}
