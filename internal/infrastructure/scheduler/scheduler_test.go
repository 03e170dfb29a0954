package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRunsOnSchedule(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.AddJob("@every 1s", "count", func(context.Context) error {
		runs.Add(1)
		return errors.New("failure is only logged")
	}))
	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestAddJobRejectsBadSpec(t *testing.T) {
	s, err := New(1)
	require.NoError(t, err)
	defer s.Stop(context.Background())

	assert.Error(t, s.AddJob("every now and then", "bad", func(context.Context) error { return nil }))
}
