package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterBuddyAPI/internal/kv"
	"waterBuddyAPI/internal/types/reminder"
)

type pushCall struct {
	tokens []reminder.DeviceToken
	title  string
	data   map[string]any
}

type fakePushProvider struct {
	mu       sync.Mutex
	calls    []pushCall
	failWith error
}

func (f *fakePushProvider) SendPush(ctx context.Context, tokens []reminder.DeviceToken, title, body string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, pushCall{tokens: tokens, title: title, data: data})
	return f.failWith
}

func (f *fakePushProvider) sent() []pushCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pushCall(nil), f.calls...)
}

type staticTokens []reminder.DeviceToken

func (s staticTokens) DeviceTokens(ctx context.Context) ([]reminder.DeviceToken, error) {
	return s, nil
}

func TestDispatcherScheduleAndCancel(t *testing.T) {
	ctx := context.Background()
	d := NewReminderDispatcher(time.UTC)

	id, err := d.Schedule(ctx, reminder.Reminder{ID: "r1", Hour: 9, Minute: 0, Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, "r1", id)
	assert.Len(t, d.Scheduled(), 1)

	id, err = d.Schedule(ctx, reminder.Reminder{ID: "r1", Hour: 9, Minute: 0, Enabled: false})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, d.Scheduled())

	_, err = d.Schedule(ctx, reminder.Reminder{ID: "bad", Hour: 24, Enabled: true})
	assert.ErrorIs(t, err, ErrInvalidReminderTime)

	require.NoError(t, d.Cancel(ctx, "unknown"))
}

func TestDispatcherSendsDueReminders(t *testing.T) {
	ctx := context.Background()
	provider := &fakePushProvider{}
	tokens := staticTokens{{Token: "abc", Platform: "android"}}

	d := NewReminderDispatcher(time.UTC)
	d.SetPushProvider(provider)
	d.SetTokenSource(tokens)

	_, err := d.Schedule(ctx, reminder.Reminder{ID: "morning", Hour: 9, Minute: 30, Enabled: true})
	require.NoError(t, err)
	_, err = d.Schedule(ctx, reminder.Reminder{ID: "evening", Hour: 20, Minute: 0, Enabled: true})
	require.NoError(t, err)

	d.Start()

	at := time.Date(2024, 5, 15, 9, 30, 10, 0, time.UTC)
	assert.Equal(t, 1, d.DispatchDue(at))
	// Same minute fires once.
	assert.Equal(t, 0, d.DispatchDue(at.Add(20*time.Second)))
	// Not due.
	assert.Equal(t, 0, d.DispatchDue(at.Add(time.Hour)))

	d.Stop()

	calls := provider.sent()
	require.Len(t, calls, 1)
	assert.Equal(t, reminderTitle, calls[0].title)
	assert.Equal(t, []reminder.DeviceToken(tokens), calls[0].tokens)
	assert.Equal(t, "morning", calls[0].data["reminder_id"])
	assert.Equal(t, "09:30", calls[0].data["time"])
}

func TestDispatcherFiresAgainNextDay(t *testing.T) {
	ctx := context.Background()
	provider := &fakePushProvider{}

	d := NewReminderDispatcher(time.UTC)
	d.SetPushProvider(provider)
	d.SetTokenSource(staticTokens{{Token: "abc", Platform: "ios"}})
	_, err := d.Schedule(ctx, reminder.Reminder{ID: "r", Hour: 7, Minute: 0, Enabled: true})
	require.NoError(t, err)

	d.Start()
	day := time.Date(2024, 5, 15, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, d.DispatchDue(day))
	assert.Equal(t, 1, d.DispatchDue(day.AddDate(0, 0, 1)))
	d.Stop()

	assert.Len(t, provider.sent(), 2)
}

func TestDispatcherUsesLocation(t *testing.T) {
	ctx := context.Background()
	berlin := time.FixedZone("CEST", 2*60*60)
	d := NewReminderDispatcher(berlin)

	_, err := d.Schedule(ctx, reminder.Reminder{ID: "r", Hour: 8, Minute: 0, Enabled: true})
	require.NoError(t, err)

	d.Start()
	defer d.Stop()

	assert.Equal(t, 0, d.DispatchDue(time.Date(2024, 5, 15, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, d.DispatchDue(time.Date(2024, 5, 15, 6, 0, 0, 0, time.UTC)))
}

func TestDispatcherSkipsWithoutDevices(t *testing.T) {
	ctx := context.Background()
	provider := &fakePushProvider{}

	d := NewReminderDispatcher(time.UTC)
	d.SetPushProvider(provider)
	d.SetTokenSource(staticTokens{})
	_, err := d.Schedule(ctx, reminder.Reminder{ID: "r", Hour: 12, Minute: 0, Enabled: true})
	require.NoError(t, err)

	d.Start()
	assert.Equal(t, 1, d.DispatchDue(time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)))
	d.Stop()

	assert.Empty(t, provider.sent())
}

func TestDispatcherSurvivesPushFailure(t *testing.T) {
	ctx := context.Background()
	provider := &fakePushProvider{failWith: errors.New("fcm unavailable")}

	d := NewReminderDispatcher(time.UTC)
	d.SetPushProvider(provider)
	d.SetTokenSource(staticTokens{{Token: "abc", Platform: "web"}})
	_, err := d.Schedule(ctx, reminder.Reminder{ID: "r", Hour: 12, Minute: 0, Enabled: true})
	require.NoError(t, err)

	d.Start()
	d.DispatchDue(time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC))
	d.DispatchDue(time.Date(2024, 5, 16, 12, 0, 0, 0, time.UTC))
	d.Stop()

	assert.Len(t, provider.sent(), 2)
}

func TestDispatcherStopIsIdempotent(t *testing.T) {
	d := NewReminderDispatcher(nil)
	d.Start()
	d.Stop()
	d.Stop()

	// Nothing is queued after Stop.
	_, err := d.Schedule(context.Background(), reminder.Reminder{ID: "r", Hour: 1, Minute: 1, Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, 0, d.DispatchDue(time.Date(2024, 5, 15, 1, 1, 0, 0, time.UTC)))
}

func TestReminderServiceDrivesDispatcher(t *testing.T) {
	ctx := context.Background()
	provider := &fakePushProvider{}

	d := NewReminderDispatcher(time.UTC)
	svc := NewReminderService(kv.NewMemoryStore(), d)
	d.SetTokenSource(svc)
	d.SetPushProvider(provider)

	_, err := svc.RegisterDevice(ctx, "device", "android")
	require.NoError(t, err)
	created, err := svc.Add(ctx, "21:15")
	require.NoError(t, err)

	d.Start()
	assert.Equal(t, 1, d.DispatchDue(time.Date(2024, 5, 15, 21, 15, 0, 0, time.UTC)))

	_, err = svc.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, d.DispatchDue(time.Date(2024, 5, 16, 21, 15, 0, 0, time.UTC)))
	d.Stop()

	calls := provider.sent()
	require.Len(t, calls, 1)
	assert.Equal(t, "device", calls[0].tokens[0].Token)
}
