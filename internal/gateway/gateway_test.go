package gateway

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/G-Research/qfactor/internal/circuit"
)

var testStart = time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC)

type backendFunc func(ctx context.Context, descriptor *circuit.Descriptor, shots int) (circuit.Counts, error)

func (f backendFunc) Run(ctx context.Context, descriptor *circuit.Descriptor, shots int) (circuit.Counts, error) {
	return f(ctx, descriptor, shots)
}

func descriptors(t *testing.T, n int64, bases ...int64) []*circuit.Descriptor {
	target, err := circuit.NewTarget(big.NewInt(n), 128)
	require.NoError(t, err)
	builder, err := circuit.NewBuilder(target, 0)
	require.NoError(t, err)
	result := make([]*circuit.Descriptor, len(bases))
	for i, a := range bases {
		result[i] = builder.Build(big.NewInt(a))
	}
	return result
}

// steppingClock moves the fake clock forward by the full delay as soon as something waits on it.
type steppingClock struct {
	*clocktesting.FakeClock
}

func (c steppingClock) After(d time.Duration) <-chan time.Time {
	ch := c.FakeClock.After(d)
	c.FakeClock.Step(d)
	return ch
}

func newTestGateway(backend Backend, maxParallelJobs int) (*Gateway, *clocktesting.FakeClock) {
	fakeClock := clocktesting.NewFakeClock(testStart)
	g := New(backend, DefaultRetryPolicy(), maxParallelJobs)
	g.clock = steppingClock{fakeClock}
	return g, fakeClock
}

func TestExecuteBatch_AlwaysFailingBackend(t *testing.T) {
	var calls int32
	backend := backendFunc(func(context.Context, *circuit.Descriptor, int) (circuit.Counts, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("backend unavailable")
	})
	g, fakeClock := newTestGateway(backend, 4)

	results := g.ExecuteBatch(context.Background(), descriptors(t, 21, 2), 4096)

	require.Len(t, results, 1)
	assert.NotNil(t, results[0])
	assert.True(t, results[0].Empty())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	// 1 + 2 + 4 seconds of backoff
	assert.Equal(t, 7*time.Second, fakeClock.Since(testStart))
}

func TestExecuteBatch_SucceedsAfterFailures(t *testing.T) {
	var calls int32
	backend := backendFunc(func(context.Context, *circuit.Descriptor, int) (circuit.Counts, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, errors.New("transient")
		}
		return circuit.Counts{"0000000000": 4096}, nil
	})
	g, fakeClock := newTestGateway(backend, 1)

	results := g.ExecuteBatch(context.Background(), descriptors(t, 21, 2), 4096)

	assert.Equal(t, []circuit.Counts{{"0000000000": 4096}}, results)
	assert.Equal(t, 3*time.Second, fakeClock.Since(testStart))
}

func TestExecuteBatch_PreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	backend := backendFunc(func(_ context.Context, descriptor *circuit.Descriptor, shots int) (circuit.Counts, error) {
		// Finish later circuits first to shuffle completion order
		a, err := descriptor.BaseInt()
		if err != nil {
			return nil, err
		}
		time.Sleep(time.Duration(20-a.Int64()) * time.Millisecond)
		return circuit.Counts{descriptor.Base: int64(shots)}, nil
	})
	g, _ := newTestGateway(backend, 3)

	bases := []int64{2, 4, 5, 8, 10, 11, 13}
	results := g.ExecuteBatch(context.Background(), descriptors(t, 21, bases...), 100)

	require.Len(t, results, len(bases))
	for i, a := range bases {
		assert.Equal(t, circuit.Counts{big.NewInt(a).String(): 100}, results[i])
	}
}

func TestExecuteBatch_BoundsInFlightSubmissions(t *testing.T) {
	var inFlight, maxInFlight int32
	mutex := sync.Mutex{}
	backend := backendFunc(func(context.Context, *circuit.Descriptor, int) (circuit.Counts, error) {
		current := atomic.AddInt32(&inFlight, 1)
		mutex.Lock()
		if current > maxInFlight {
			maxInFlight = current
		}
		mutex.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return circuit.Counts{"0": 1}, nil
	})
	g, _ := newTestGateway(backend, 2)

	results := g.ExecuteBatch(context.Background(), descriptors(t, 35, 2, 3, 4, 6, 8, 9, 11, 12), 1)

	assert.Len(t, results, 8)
	assert.LessOrEqual(t, maxInFlight, int32(2))
}

func TestExecuteBatch_MixedResults(t *testing.T) {
	backend := backendFunc(func(_ context.Context, descriptor *circuit.Descriptor, _ int) (circuit.Counts, error) {
		if descriptor.Base == "4" {
			return nil, errors.New("always fails for this base")
		}
		return circuit.Counts{"1": 1}, nil
	})
	g, _ := newTestGateway(backend, 2)

	results := g.ExecuteBatch(context.Background(), descriptors(t, 21, 2, 4, 5), 1)

	assert.Equal(t, []circuit.Counts{{"1": 1}, {}, {"1": 1}}, results)
}

func TestExecuteBatch_BackendPanicIsTransient(t *testing.T) {
	var calls int32
	backend := backendFunc(func(context.Context, *circuit.Descriptor, int) (circuit.Counts, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("connection reset")
		}
		return circuit.Counts{"11": 2}, nil
	})
	g, _ := newTestGateway(backend, 1)

	results := g.ExecuteBatch(context.Background(), descriptors(t, 15, 7), 2)

	assert.Equal(t, []circuit.Counts{{"11": 2}}, results)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestExecuteBatch_NilCountsBecomeEmpty(t *testing.T) {
	backend := backendFunc(func(context.Context, *circuit.Descriptor, int) (circuit.Counts, error) {
		return nil, nil
	})
	g, fakeClock := newTestGateway(backend, 1)

	results := g.ExecuteBatch(context.Background(), descriptors(t, 15, 7), 2)

	require.Len(t, results, 1)
	assert.NotNil(t, results[0])
	assert.True(t, results[0].Empty())
	assert.Equal(t, time.Duration(0), fakeClock.Since(testStart))
}

func TestExecuteBatch_CancelledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int32
	backend := backendFunc(func(ctx context.Context, _ *circuit.Descriptor, _ int) (circuit.Counts, error) {
		atomic.AddInt32(&calls, 1)
		return nil, ctx.Err()
	})
	g, fakeClock := newTestGateway(backend, 1)

	results := g.ExecuteBatch(ctx, descriptors(t, 15, 7, 11), 2)

	assert.Equal(t, []circuit.Counts{{}, {}}, results)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, time.Duration(0), fakeClock.Since(testStart))
}

func TestExecuteBatch_CancelDuringBackoffReturnsWithoutWaiting(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls int32
	backend := backendFunc(func(context.Context, *circuit.Descriptor, int) (circuit.Counts, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return nil, errors.New("backend unavailable")
	})
	fakeClock := clocktesting.NewFakeClock(testStart)
	g := New(backend, DefaultRetryPolicy(), 1)
	// Never stepped, so the backoff can only end through the context
	g.clock = fakeClock

	batch := descriptors(t, 21, 2)
	done := make(chan []circuit.Counts)
	go func() {
		done <- g.ExecuteBatch(ctx, batch, 4096)
	}()

	select {
	case results := <-done:
		assert.Equal(t, []circuit.Counts{{}}, results)
	case <-time.After(5 * time.Second):
		t.Fatal("ExecuteBatch did not return after the context was cancelled")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, time.Duration(0), fakeClock.Since(testStart))
}

func TestNew_NormalisesLimits(t *testing.T) {
	g := New(backendFunc(nil), RetryPolicy{}, 0)
	assert.Equal(t, 1, g.retryPolicy.MaxAttempts)
	assert.Equal(t, 1, g.maxParallelJobs)
}
