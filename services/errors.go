package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount       = errors.New("amount must be a positive number of ml")
	ErrInvalidGoal         = errors.New("daily goal must be a positive number of ml")
	ErrInvalidPeriod       = errors.New("period must be one of daily, weekly, monthly")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidReminderTime = errors.New("reminder time must be HH:MM")
	ErrReminderNotFound    = errors.New("reminder not found")
	ErrInvalidDevice       = errors.New("device token and platform are required")

	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("storage error")
)

// StorageError wraps a failure of the key-value substrate. It is returned
// as-is; retrying is left to the caller.
type StorageError struct {
	Op  string // read, write
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func readError(key string, err error) error {
	return &StorageError{Op: "read", Key: key, Err: err}
}

func writeError(key string, err error) error {
	return &StorageError{Op: "write", Key: key, Err: err}
}
