package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quilldesk/brokerage-api/internal/models"
	appErrors "github.com/quilldesk/brokerage-api/pkg/errors"
)

type mockTotalsReader struct {
	totals models.LedgerTotals
	calls  int
}

func (m *mockTotalsReader) Totals(ctx context.Context) (*models.LedgerTotals, error) {
	m.calls++
	t := m.totals
	return &t, nil
}

type mockCounter struct{ n int }

func (m *mockCounter) Count(ctx context.Context) (int, error) { return m.n, nil }

type mockSummaryCache struct {
	entries map[string][]byte
}

func newMockSummaryCache() *mockSummaryCache {
	return &mockSummaryCache{entries: make(map[string][]byte)}
}

func (m *mockSummaryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockSummaryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *mockSummaryCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func newDashboardFixture(cache summaryCache) (*DashboardService, *mockTotalsReader) {
	totals := &mockTotalsReader{totals: models.LedgerTotals{
		Assignments:        4,
		Completed:          2,
		Receivable:         350,
		WriterPayable:      120,
		SunkCosts:          45,
		CollectedPayments:  650,
		WriterDisbursement: 180,
	}}
	svc := NewDashboardService(totals, &mockCounter{n: 10}, &mockCounter{n: 6}, &mockCounter{n: 3}, cache, time.Minute, nil)
	return svc, totals
}

func TestDashboardSummaryComputesAndCaches(t *testing.T) {
	cache := newMockSummaryCache()
	svc, totals := newDashboardFixture(cache)

	summary, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 10, summary.Students)
	assert.Equal(t, 6, summary.Writers)
	assert.Equal(t, 3, summary.Universities)
	assert.Equal(t, 350.0, summary.Receivable)
	assert.Equal(t, 1, totals.calls)

	// Second read is served from the cache without recomputing.
	again, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, summary.Receivable, again.Receivable)
	assert.Equal(t, 1, totals.calls)
}

func TestDashboardInvalidateForcesRecompute(t *testing.T) {
	cache := newMockSummaryCache()
	svc, totals := newDashboardFixture(cache)

	_, _, err := svc.Summary(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())

	_, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, totals.calls)
}

func TestDashboardWorksWithoutCache(t *testing.T) {
	svc, totals := newDashboardFixture(nil)

	_, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, totals.calls)
}
