package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterBuddyAPI/internal/kv"
	"waterBuddyAPI/internal/types/reminder"
)

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[string]reminder.Reminder
	cancelled []string
	failWith  error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[string]reminder.Reminder)}
}

func (f *fakeScheduler) Schedule(ctx context.Context, r reminder.Reminder) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	f.scheduled[r.ID] = r
	return r.ID, nil
}

func (f *fakeScheduler) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scheduled, id)
	f.cancelled = append(f.cancelled, id)
	return f.failWith
}

func (f *fakeScheduler) isScheduled(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.scheduled[id]
	return ok
}

func TestParseTimeOfDay(t *testing.T) {
	hour, minute, err := ParseTimeOfDay("08:05")
	require.NoError(t, err)
	assert.Equal(t, 8, hour)
	assert.Equal(t, 5, minute)

	hour, minute, err = ParseTimeOfDay("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23, hour)
	assert.Equal(t, 59, minute)

	for _, raw := range []string{"", "8", "24:00", "12:60", "ab:cd", "-1:30", "12:30:00"} {
		_, _, err := ParseTimeOfDay(raw)
		assert.ErrorIs(t, err, ErrInvalidReminderTime, raw)
	}
}

func TestReminderAddSchedules(t *testing.T) {
	ctx := context.Background()
	scheduler := newFakeScheduler()
	svc := NewReminderService(kv.NewMemoryStore(), scheduler)

	created, err := svc.Add(ctx, "09:30")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 9, created.Hour)
	assert.Equal(t, 30, created.Minute)
	assert.True(t, created.Enabled)
	assert.Equal(t, "09:30", created.TimeOfDay())
	assert.True(t, scheduler.isScheduled(created.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []reminder.Reminder{*created}, list)

	_, err = svc.Add(ctx, "25:00")
	assert.ErrorIs(t, err, ErrInvalidReminderTime)
}

func TestReminderToggle(t *testing.T) {
	ctx := context.Background()
	scheduler := newFakeScheduler()
	svc := NewReminderService(kv.NewMemoryStore(), scheduler)

	created, err := svc.Add(ctx, "14:00")
	require.NoError(t, err)

	off, err := svc.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, off.Enabled)
	assert.False(t, scheduler.isScheduled(created.ID))

	on, err := svc.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, on.Enabled)
	assert.True(t, scheduler.isScheduled(created.ID))

	_, err = svc.Toggle(ctx, "missing")
	assert.ErrorIs(t, err, ErrReminderNotFound)
}

func TestReminderDelete(t *testing.T) {
	ctx := context.Background()
	scheduler := newFakeScheduler()
	svc := NewReminderService(kv.NewMemoryStore(), scheduler)

	keep, err := svc.Add(ctx, "08:00")
	require.NoError(t, err)
	drop, err := svc.Add(ctx, "20:00")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, drop.ID))
	assert.False(t, scheduler.isScheduled(drop.ID))
	assert.True(t, scheduler.isScheduled(keep.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	assert.ErrorIs(t, svc.Delete(ctx, drop.ID), ErrReminderNotFound)
}

func TestNotificationsSwitch(t *testing.T) {
	ctx := context.Background()
	scheduler := newFakeScheduler()
	svc := NewReminderService(kv.NewMemoryStore(), scheduler)

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.NotificationsEnabled)

	first, err := svc.Add(ctx, "10:00")
	require.NoError(t, err)
	second, err := svc.Add(ctx, "16:00")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, second.ID)
	require.NoError(t, err)

	updated, err := svc.SetNotificationsEnabled(ctx, false)
	require.NoError(t, err)
	assert.False(t, updated.NotificationsEnabled)
	assert.False(t, scheduler.isScheduled(first.ID))

	// Reminders added while notifications are off are stored but not scheduled.
	third, err := svc.Add(ctx, "18:00")
	require.NoError(t, err)
	assert.False(t, scheduler.isScheduled(third.ID))

	_, err = svc.SetNotificationsEnabled(ctx, true)
	require.NoError(t, err)
	assert.True(t, scheduler.isScheduled(first.ID))
	assert.False(t, scheduler.isScheduled(second.ID))
	assert.True(t, scheduler.isScheduled(third.ID))
}

func TestReminderRestore(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	setup := NewReminderService(store, nil)
	a, err := setup.Add(ctx, "07:00")
	require.NoError(t, err)
	b, err := setup.Add(ctx, "12:00")
	require.NoError(t, err)
	_, err = setup.Toggle(ctx, b.ID)
	require.NoError(t, err)

	scheduler := newFakeScheduler()
	restored, err := NewReminderService(store, scheduler).Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)
	assert.True(t, scheduler.isScheduled(a.ID))
	assert.False(t, scheduler.isScheduled(b.ID))

	_, err = setup.SetNotificationsEnabled(ctx, false)
	require.NoError(t, err)
	restored, err = NewReminderService(store, newFakeScheduler()).Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, restored)
}

func TestSchedulerFailuresDoNotFailReminders(t *testing.T) {
	ctx := context.Background()
	scheduler := newFakeScheduler()
	scheduler.failWith = errors.New("scheduler offline")
	svc := NewReminderService(kv.NewMemoryStore(), scheduler)

	created, err := svc.Add(ctx, "09:00")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))
}

func TestRegisterDevice(t *testing.T) {
	ctx := context.Background()
	svc := NewReminderService(kv.NewMemoryStore(), nil)

	tokens, err := svc.RegisterDevice(ctx, "token-1", "iOS")
	require.NoError(t, err)
	assert.Equal(t, []reminder.DeviceToken{{Token: "token-1", Platform: "ios"}}, tokens)

	_, err = svc.RegisterDevice(ctx, "token-2", "android")
	require.NoError(t, err)

	// Re-registering a token replaces its platform.
	tokens, err = svc.RegisterDevice(ctx, "token-1", "web")
	require.NoError(t, err)
	assert.Equal(t, []reminder.DeviceToken{
		{Token: "token-2", Platform: "android"},
		{Token: "token-1", Platform: "web"},
	}, tokens)

	_, err = svc.RegisterDevice(ctx, "", "ios")
	assert.ErrorIs(t, err, ErrInvalidDevice)
	_, err = svc.RegisterDevice(ctx, "token-3", "blackberry")
	assert.ErrorIs(t, err, ErrInvalidDevice)

	stored, err := svc.DeviceTokens(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}
