package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"waterBuddyAPI/internal/kv"
	"waterBuddyAPI/internal/types/water"
	"waterBuddyAPI/utils"
)

// RecordService owns the per-day intake log stored under kv.KeyWaterRecords.
// Every mutation rewrites the whole map in one Set.
type RecordService struct {
	store kv.Store
}

func NewRecordService(store kv.Store) *RecordService {
	return &RecordService{store: store}
}

// All returns every stored day. A store that was never written yields an
// empty map.
func (s *RecordService) All(ctx context.Context) (water.RecordStore, error) {
	records := water.RecordStore{}
	if _, err := kv.GetJSON(ctx, s.store, kv.KeyWaterRecords, &records); err != nil {
		return nil, readError(kv.KeyWaterRecords, err)
	}
	if records == nil {
		records = water.RecordStore{}
	}
	return records, nil
}

// Day returns the records of a single date in insertion order.
func (s *RecordService) Day(ctx context.Context, date string) ([]water.Record, error) {
	if _, err := utils.ParseDateKey(date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}

	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return cloneRecords(records[date]), nil
}

// Append logs amount ml at time at into the date bucket and returns the
// updated sequence for that date.
func (s *RecordService) Append(ctx context.Context, date string, amount int, at time.Time) ([]water.Record, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if _, err := utils.ParseDateKey(date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}

	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	record := water.Record{
		ID:        newRecordID(),
		Amount:    amount,
		Timestamp: at.UnixMilli(),
	}
	day := append(cloneRecords(records[date]), record)
	records[date] = day

	if err := kv.SetJSON(ctx, s.store, kv.KeyWaterRecords, records); err != nil {
		return nil, writeError(kv.KeyWaterRecords, err)
	}

	return cloneRecords(day), nil
}

// Clear empties a date. The date key is kept with an empty sequence.
func (s *RecordService) Clear(ctx context.Context, date string) error {
	if _, err := utils.ParseDateKey(date); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}

	records, err := s.All(ctx)
	if err != nil {
		return err
	}

	records[date] = []water.Record{}

	if err := kv.SetJSON(ctx, s.store, kv.KeyWaterRecords, records); err != nil {
		return writeError(kv.KeyWaterRecords, err)
	}
	return nil
}

// TotalsByDate returns the stored ml per date, uncapped.
func (s *RecordService) TotalsByDate(ctx context.Context) (map[string]int, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return records.Totals(), nil
}

func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func cloneRecords(records []water.Record) []water.Record {
	out := make([]water.Record, len(records))
	copy(out, records)
	return out
}
