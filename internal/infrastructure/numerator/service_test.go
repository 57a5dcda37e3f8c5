package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "anbar/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences with one counter per key.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	calls  int
	err    error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := args[0].(string)
	increment := int64(1)
	if len(args) == 2 {
		increment = args[1].(int64)
	}
	m.values[key] += increment
	return &mockRow{val: m.values[key]}
}

// 1403/05/12 in Tehran.
var period = time.Date(2024, 8, 2, 12, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("PI")

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "PI-1403-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "PI-1403-00002", num)

	assert.Equal(t, int64(2), q.values["PI_1403"])
}

func TestGetNextNumber_ResetsPerJalaaliYear(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("SI")

	// 2024-03-19 is still 1402, 2024-03-20 is 1 Farvardin 1403.
	lastDay := time.Date(2024, 3, 19, 10, 0, 0, 0, time.UTC)
	firstDay := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, nil, lastDay)
	require.NoError(t, err)
	assert.Equal(t, "SI-1402-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, firstDay)
	require.NoError(t, err)
	assert.Equal(t, "SI-1403-00001", num)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("SA")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	for i := 1; i <= 10; i++ {
		_, err := svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls, "one range reservation for ten numbers")

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SA-1403-00011", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Concurrent(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("IS")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 7}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.GetNextNumber(ctx, cfg, opts, period)
			assert.NoError(t, err)
			mu.Lock()
			seen[num] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

func TestGetNextNumber_Error(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")
	svc := New(q)

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("PI"), nil, period)
	assert.ErrorContains(t, err, "connection refused")
}

func TestBuildKeyAndFormat(t *testing.T) {
	cfg := corenumerator.DefaultConfig("PI")
	assert.Equal(t, "PI_1403", buildKey(cfg, period))

	cfg.ResetPeriod = corenumerator.ResetMonthly
	assert.Equal(t, "PI_1403_05", buildKey(cfg, period))

	cfg.ResetPeriod = corenumerator.ResetNever
	assert.Equal(t, "PI", buildKey(cfg, period))

	cfg.IncludeYear = false
	cfg.PadWidth = 3
	assert.Equal(t, "PI-007", formatNumber(cfg, period, 7))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("PI-1403-00042"))
	assert.Equal(t, int64(7), ParseNumber("SA-007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
	assert.Equal(t, int64(-1), ParseNumber("PI-"))
}
