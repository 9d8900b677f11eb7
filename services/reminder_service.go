package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"waterBuddyAPI/internal/kv"
	"waterBuddyAPI/internal/types/reminder"
)

// ReminderScheduler schedules a daily push at a reminder's time of day.
// Schedule returns the schedule identifier, or "" when the reminder is
// disabled and nothing was scheduled.
type ReminderScheduler interface {
	Schedule(ctx context.Context, r reminder.Reminder) (string, error)
	Cancel(ctx context.Context, id string) error
}

// ReminderService manages reminder times, the global notification switch and
// registered push devices. Scheduling failures are logged and do not fail the
// triggering operation.
type ReminderService struct {
	store     kv.Store
	scheduler ReminderScheduler
}

func NewReminderService(store kv.Store, scheduler ReminderScheduler) *ReminderService {
	return &ReminderService{store: store, scheduler: scheduler}
}

// ParseTimeOfDay parses HH:MM into hour and minute.
func ParseTimeOfDay(raw string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: got %q", ErrInvalidReminderTime, raw)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: got %q", ErrInvalidReminderTime, raw)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: got %q", ErrInvalidReminderTime, raw)
	}
	return hour, minute, nil
}

func (s *ReminderService) List(ctx context.Context) ([]reminder.Reminder, error) {
	reminders := []reminder.Reminder{}
	if _, err := kv.GetJSON(ctx, s.store, kv.KeyReminders, &reminders); err != nil {
		return nil, readError(kv.KeyReminders, err)
	}
	if reminders == nil {
		reminders = []reminder.Reminder{}
	}
	return reminders, nil
}

func (s *ReminderService) save(ctx context.Context, reminders []reminder.Reminder) error {
	if err := kv.SetJSON(ctx, s.store, kv.KeyReminders, reminders); err != nil {
		return writeError(kv.KeyReminders, err)
	}
	return nil
}

// Settings returns the notification settings. Notifications are on until
// the user turns them off.
func (s *ReminderService) Settings(ctx context.Context) (reminder.Settings, error) {
	settings := reminder.Settings{NotificationsEnabled: true}
	if _, err := kv.GetJSON(ctx, s.store, kv.KeySettings, &settings); err != nil {
		return reminder.Settings{}, readError(kv.KeySettings, err)
	}
	return settings, nil
}

// Add creates an enabled reminder at timeOfDay (HH:MM) and schedules it when
// notifications are on.
func (s *ReminderService) Add(ctx context.Context, timeOfDay string) (*reminder.Reminder, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, err
	}

	reminders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	created := reminder.Reminder{
		ID:      newReminderID(),
		Hour:    hour,
		Minute:  minute,
		Enabled: true,
	}

	if err := s.save(ctx, append(reminders, created)); err != nil {
		return nil, err
	}

	if settings.NotificationsEnabled {
		s.schedule(ctx, created)
	}

	log.Printf("ReminderService: added reminder %s at %s", created.ID, created.TimeOfDay())
	return &created, nil
}

// Toggle flips a reminder's enabled flag and schedules or cancels it.
func (s *ReminderService) Toggle(ctx context.Context, id string) (*reminder.Reminder, error) {
	reminders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	var toggled *reminder.Reminder
	updated := make([]reminder.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.ID == id {
			r = r.WithEnabled(!r.Enabled)
			toggled = &r
		}
		updated = append(updated, r)
	}
	if toggled == nil {
		return nil, fmt.Errorf("%w: %s", ErrReminderNotFound, id)
	}

	if err := s.save(ctx, updated); err != nil {
		return nil, err
	}

	if toggled.Enabled && settings.NotificationsEnabled {
		s.schedule(ctx, *toggled)
	} else {
		s.cancel(ctx, id)
	}

	return toggled, nil
}

// Delete cancels and removes a reminder.
func (s *ReminderService) Delete(ctx context.Context, id string) error {
	reminders, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := make([]reminder.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(reminders) {
		return fmt.Errorf("%w: %s", ErrReminderNotFound, id)
	}

	s.cancel(ctx, id)
	return s.save(ctx, kept)
}

// SetNotificationsEnabled persists the global switch and brings the
// scheduler in line with it.
func (s *ReminderService) SetNotificationsEnabled(ctx context.Context, enabled bool) (*reminder.Settings, error) {
	settings := reminder.Settings{NotificationsEnabled: enabled}
	if err := kv.SetJSON(ctx, s.store, kv.KeySettings, settings); err != nil {
		return nil, writeError(kv.KeySettings, err)
	}

	reminders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range reminders {
		if enabled && r.Enabled {
			s.schedule(ctx, r)
		} else {
			s.cancel(ctx, r.ID)
		}
	}

	return &settings, nil
}

// Restore re-schedules every enabled reminder. Called once at startup since
// the scheduler keeps no state of its own across restarts.
func (s *ReminderService) Restore(ctx context.Context) (int, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return 0, err
	}
	if !settings.NotificationsEnabled {
		return 0, nil
	}

	reminders, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range reminders {
		if r.Enabled {
			s.schedule(ctx, r)
			count++
		}
	}
	return count, nil
}

func (s *ReminderService) DeviceTokens(ctx context.Context) ([]reminder.DeviceToken, error) {
	tokens := []reminder.DeviceToken{}
	if _, err := kv.GetJSON(ctx, s.store, kv.KeyDeviceTokens, &tokens); err != nil {
		return nil, readError(kv.KeyDeviceTokens, err)
	}
	return tokens, nil
}

// RegisterDevice stores a push token, replacing an earlier registration of
// the same token.
func (s *ReminderService) RegisterDevice(ctx context.Context, token, platform string) ([]reminder.DeviceToken, error) {
	token = strings.TrimSpace(token)
	platform = strings.ToLower(strings.TrimSpace(platform))
	if token == "" || (platform != "ios" && platform != "android" && platform != "web") {
		return nil, ErrInvalidDevice
	}

	tokens, err := s.DeviceTokens(ctx)
	if err != nil {
		return nil, err
	}

	updated := make([]reminder.DeviceToken, 0, len(tokens)+1)
	for _, t := range tokens {
		if t.Token != token {
			updated = append(updated, t)
		}
	}
	updated = append(updated, reminder.DeviceToken{Token: token, Platform: platform})

	if err := kv.SetJSON(ctx, s.store, kv.KeyDeviceTokens, updated); err != nil {
		return nil, writeError(kv.KeyDeviceTokens, err)
	}
	return updated, nil
}

func (s *ReminderService) schedule(ctx context.Context, r reminder.Reminder) {
	if s.scheduler == nil {
		return
	}
	if _, err := s.scheduler.Schedule(ctx, r); err != nil {
		log.Printf("ReminderService: failed to schedule reminder %s: %v", r.ID, err)
	}
}

func (s *ReminderService) cancel(ctx context.Context, id string) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.Cancel(ctx, id); err != nil {
		log.Printf("ReminderService: failed to cancel reminder %s: %v", id, err)
	}
}

func newReminderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
