package jobmgr

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) report(s string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, s)
	r.mu.Unlock()
}

func (r *recorder) has(s string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m == s {
			return true
		}
	}
	return false
}

func TestStartAsyncAndStop(t *testing.T) {
	rec := &recorder{}
	jm := NewManager(rec.report)

	stopped := make(chan struct{})
	require.NoError(t, jm.StartAsync(context.Background(), "nav:1", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return nil
	}))

	assert.True(t, jm.Running("nav:1"))
	assert.Error(t, jm.StartAsync(context.Background(), "nav:1", func(context.Context) error { return nil }))
	assert.Equal(t, "Running jobs: nav:1", jm.Status())

	require.NoError(t, jm.Stop("nav:1"))
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled")
	}
	assert.False(t, jm.Running("nav:1"))
	assert.Error(t, jm.Stop("nav:1"))
}

func TestJobRemovedOnCompletion(t *testing.T) {
	rec := &recorder{}
	jm := NewManager(rec.report)

	require.NoError(t, jm.StartAsync(context.Background(), "fail", func(context.Context) error {
		return errors.New("boom")
	}))

	assert.Eventually(t, func() bool { return !jm.Running("fail") }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return rec.has("error:fail:boom") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "No jobs are running.", jm.Status())
}

func TestStopAllWaits(t *testing.T) {
	jm := NewManager(nil)
	var mu sync.Mutex
	finished := 0
	for _, name := range []string{"b", "a"} {
		require.NoError(t, jm.StartAsync(context.Background(), name, func(ctx context.Context) error {
			<-ctx.Done()
			mu.Lock()
			finished++
			mu.Unlock()
			return nil
		}))
	}
	assert.Equal(t, []string{"a", "b"}, jm.List())

	jm.StopAll()
	mu.Lock()
	assert.Equal(t, 2, finished)
	mu.Unlock()
	assert.Empty(t, jm.List())
}
