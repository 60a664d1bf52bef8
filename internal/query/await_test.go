package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwait(t *testing.T) {
	runner := NewRunner(newFakeBackend(), RunnerOptions{})
	defer runner.Close()

	stops, err := Await(context.Background(), runner, Stops("N", "N_IB1"))
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Equal(t, "13913", stops[0].ID)
}

func TestAwaitError(t *testing.T) {
	runner := NewRunner(newFakeBackend(), RunnerOptions{})
	defer runner.Close()

	_, err := Await(context.Background(), runner, RunName("N", "missing"))
	assert.ErrorIs(t, err, errNotFound)
}

func TestAwaitContextDeadline(t *testing.T) {
	backend := newFakeBackend()
	backend.gate = make(chan struct{})
	defer close(backend.gate)
	runner := NewRunner(backend, RunnerOptions{})
	defer runner.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Await(ctx, runner, Routes())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
