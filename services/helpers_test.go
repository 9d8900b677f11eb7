package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"waterBuddyAPI/internal/kv"
	"waterBuddyAPI/internal/types/water"
)

var errBackendDown = errors.New("backend down")

// failingStore fails reads or writes of selected keys.
type failingStore struct {
	kv.Store
	failGet map[string]bool
	failSet map[string]bool
}

func newFailingStore(inner kv.Store) *failingStore {
	return &failingStore{
		Store:   inner,
		failGet: make(map[string]bool),
		failSet: make(map[string]bool),
	}
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet[key] {
		return nil, errBackendDown
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet[key] {
		return errBackendDown
	}
	return s.Store.Set(ctx, key, value)
}

// barrierStore holds the first n reads of key until all n have read, so
// concurrent read-modify-write cycles all see the same snapshot.
type barrierStore struct {
	kv.Store
	key string
	n   int

	mu       sync.Mutex
	arrivals int
	release  chan struct{}
}

func newBarrierStore(inner kv.Store, key string, n int) *barrierStore {
	return &barrierStore{Store: inner, key: key, n: n, release: make(chan struct{})}
}

func (s *barrierStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.Store.Get(ctx, key)
	if key != s.key {
		return value, err
	}

	s.mu.Lock()
	s.arrivals++
	arrival := s.arrivals
	if arrival == s.n {
		close(s.release)
	}
	s.mu.Unlock()

	if arrival <= s.n {
		<-s.release
	}
	return value, err
}

var testNow = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

type testServices struct {
	store    kv.Store
	records  *RecordService
	progress *ProgressService
	daily    *DailyService
	stats    *StatisticsService
}

func newTestServices(t *testing.T, store kv.Store) *testServices {
	t.Helper()
	if store == nil {
		store = kv.NewMemoryStore()
	}

	records := NewRecordService(store)
	progress := NewProgressService(store)
	daily := NewDailyService(store, records, progress, time.UTC)
	daily.SetClock(func() time.Time { return testNow })

	return &testServices{
		store:    store,
		records:  records,
		progress: progress,
		daily:    daily,
		stats:    NewStatisticsService(records, daily),
	}
}

func seedRecords(t *testing.T, store kv.Store, days map[string][]int) {
	t.Helper()

	records := water.RecordStore{}
	for date, amounts := range days {
		day := []water.Record{}
		for i, amount := range amounts {
			day = append(day, water.Record{
				ID:        date + "-" + string(rune('a'+i)),
				Amount:    amount,
				Timestamp: testNow.UnixMilli(),
			})
		}
		records[date] = day
	}
	require.NoError(t, kv.SetJSON(context.Background(), store, kv.KeyWaterRecords, records))
}

func seedStats(t *testing.T, store kv.Store, stats water.UserStats) {
	t.Helper()
	require.NoError(t, kv.SetJSON(context.Background(), store, kv.KeyUserStats, stats))
}
