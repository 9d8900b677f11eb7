// Package kv is the key-value substrate the tracker persists its state in.
// Values are JSON documents addressed by a small set of stable keys.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by the tracker. They are part of the persisted contract.
const (
	KeyWaterRecords = "waterRecords"
	KeyDailyGoal    = "dailyGoal"
	KeyUserStats    = "userStats"
	KeyUserProgress = "userProgress"
	KeyReminders    = "reminders"
	KeySettings     = "settings"
	KeyDeviceTokens = "deviceTokens"
)

// ErrNotFound is returned by Get when a key has never been set.
var ErrNotFound = errors.New("kv: key not found")

// Store is a get/set-by-key service holding raw JSON values. Implementations
// replace a value in a single write: readers see the old or the new value,
// never a partial one.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// GetJSON decodes the value under key into dst. found is false when the key
// is absent, in which case dst is left untouched.
func GetJSON(ctx context.Context, s Store, key string, dst any) (found bool, err error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
