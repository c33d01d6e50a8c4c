package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	once    sync.Once
	startFn func() error
	onStop  func()
}

func newMockService() *mockService {
	return &mockService{stopCh: make(chan struct{})}
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	<-m.stopCh
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
	if m.onStop != nil {
		m.onStop()
	}
	m.once.Do(func() { close(m.stopCh) })
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycle_CancelStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1, svc2 := newMockService(), newMockService()
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)

	require.Eventually(t, func() bool { return svc1.started.Load() && svc2.started.Load() },
		2*time.Second, 10*time.Millisecond)
	cancel()

	assert.NoError(t, waitDone(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycle_FinishedServiceEndsRun(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	background := newMockService()
	console := newMockService()
	console.startFn = func() error { return nil }
	lc.Add("background", background)
	lc.Add("console", console)

	assert.NoError(t, waitDone(t, runAsync(lc, context.Background())))
	assert.True(t, background.stopped.Load())
	assert.True(t, console.stopped.Load())
}

func TestLifecycle_FailedServiceReturnsError(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")
	svc := newMockService()
	svc.startFn = func() error { return boom }
	lc.Add("broken", svc)

	err := waitDone(t, runAsync(lc, context.Background()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestLifecycle_StopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}
	first, second := newMockService(), newMockService()
	first.onStop = record("first")
	second.onStop = record("second")
	lc.Add("first", first)
	lc.Add("second", second)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	require.Eventually(t, func() bool { return first.started.Load() && second.started.Load() },
		2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, waitDone(t, done))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)
	svc.Stop()
	assert.True(t, stopped)
}

func TestFuncService_NilStop(t *testing.T) {
	svc := &FuncService{StartFn: func() error { return nil }}
	assert.NotPanics(t, svc.Stop)
}
