package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/metrics"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

func records(ids ...string) []models.ScoredVideoRecord {
	out := make([]models.ScoredVideoRecord, len(ids))
	for i, id := range ids {
		out[i] = models.ScoredVideoRecord{VideoRecord: models.VideoRecord{ID: id}}
	}
	return out
}

func TestGetOrCompute_MissThenHit(t *testing.T) {
	c := New(nil, metrics.New(prometheus.NewRegistry()))
	key := Key{Keyword: "golang", LookbackMonths: 3}

	calls := 0
	compute := func(ctx context.Context) ([]models.ScoredVideoRecord, error) {
		calls++
		return records("a", "b"), nil
	}

	first, err := c.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	second, err := c.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestGetOrCompute_ErrorIsNotCached(t *testing.T) {
	c := New(nil, nil)
	key := Key{Keyword: "golang", LookbackMonths: 1}
	boom := errors.New("quota exceeded")

	_, err := c.GetOrCompute(context.Background(), key, func(ctx context.Context) ([]models.ScoredVideoRecord, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get(key)
	assert.False(t, ok)

	got, err := c.GetOrCompute(context.Background(), key, func(ctx context.Context) ([]models.ScoredVideoRecord, error) {
		return records("a"), nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetOrCompute_EmptyResultIsCached(t *testing.T) {
	c := New(nil, nil)
	key := Key{Keyword: "nothing", LookbackMonths: 1}

	calls := 0
	compute := func(ctx context.Context) ([]models.ScoredVideoRecord, error) {
		calls++
		return nil, nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute(context.Background(), key, compute)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrCompute_KeysAreExact(t *testing.T) {
	c := New(nil, nil)

	calls := 0
	compute := func(ctx context.Context) ([]models.ScoredVideoRecord, error) {
		calls++
		return records("x"), nil
	}

	keys := []Key{
		{Keyword: "golang", LookbackMonths: 1},
		{Keyword: "Golang", LookbackMonths: 1},
		{Keyword: "golang ", LookbackMonths: 1},
		{Keyword: "golang", LookbackMonths: 2},
	}
	for _, k := range keys {
		_, err := c.GetOrCompute(context.Background(), k, compute)
		require.NoError(t, err)
	}

	assert.Equal(t, len(keys), calls)
	assert.Equal(t, len(keys), c.Len())
}

func TestGetOrCompute_ConcurrentMissesComputeOnce(t *testing.T) {
	c := New(nil, nil)
	key := Key{Keyword: "golang", LookbackMonths: 6}

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(ctx context.Context) ([]models.ScoredVideoRecord, error) {
		calls.Add(1)
		<-release
		return records("a"), nil
	}

	const callers = 20
	var wg sync.WaitGroup
	results := make([][]models.ScoredVideoRecord, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := c.GetOrCompute(context.Background(), key, compute)
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Len(t, r, 1)
	}
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "3:golang", Key{Keyword: "golang", LookbackMonths: 3}.String())
	assert.NotEqual(t, Key{Keyword: "1:a", LookbackMonths: 2}.String(), Key{Keyword: "a", LookbackMonths: 21}.String())
}

func TestGetOrCompute_CancelledCallerDoesNotFailOthers(t *testing.T) {
	c := New(nil, nil)
	key := Key{Keyword: "golang", LookbackMonths: 6}

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	var computeErr error
	compute := func(ctx context.Context) ([]models.ScoredVideoRecord, error) {
		calls.Add(1)
		close(started)
		<-release
		computeErr = ctx.Err()
		return records("a", "b"), nil
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(ctxA, key, compute)
		errA <- err
	}()
	<-started

	type result struct {
		records []models.ScoredVideoRecord
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := c.GetOrCompute(context.Background(), key, compute)
		resB <- result{records: got, err: err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelA()

	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)

	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Len(t, res.records, 2)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}

	assert.NoError(t, computeErr)
	assert.Equal(t, int32(1), calls.Load())
	_, ok := c.Get(key)
	assert.True(t, ok)
}

func TestGetOrCompute_CancelledBeforeResult(t *testing.T) {
	c := New(nil, nil)
	key := Key{Keyword: "slow", LookbackMonths: 1}
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.GetOrCompute(ctx, key, func(ctx context.Context) ([]models.ScoredVideoRecord, error) {
		<-release
		return records("a"), nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
