package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"waterBuddyAPI/internal/metrics"
	"waterBuddyAPI/internal/types/reminder"
)

const (
	reminderTitle = "Time to drink water"
	reminderBody  = "Have a glass of water and keep the healthy habit going 💧"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []reminder.DeviceToken, title, body string, data map[string]any) error
}

// DeviceTokenSource lists the devices a reminder push goes to.
type DeviceTokenSource interface {
	DeviceTokens(ctx context.Context) ([]reminder.DeviceToken, error)
}

// ReminderDispatcher is the in-process ReminderScheduler. A ticker matches
// scheduled reminders against the local time of day and hands due ones to a
// worker pool that sends the push.
type ReminderDispatcher struct {
	pushProvider PushNotificationProvider
	tokens       DeviceTokenSource
	loc          *time.Location
	now          func() time.Time
	interval     time.Duration

	workers  int
	jobQueue chan *DispatchJob
	stopChan chan struct{}
	wg       sync.WaitGroup
	tickerWg sync.WaitGroup
	stopOnce sync.Once

	mu        sync.Mutex
	started   bool
	stopped   bool
	scheduled map[string]reminder.Reminder
	lastFired map[string]string // reminder id -> local minute it last fired in
}

type DispatchJob struct {
	Reminder reminder.Reminder
	FiredAt  time.Time
}

func NewReminderDispatcher(loc *time.Location) *ReminderDispatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderDispatcher{
		loc:       loc,
		now:       time.Now,
		interval:  20 * time.Second,
		workers:   2,
		jobQueue:  make(chan *DispatchJob, 100),
		stopChan:  make(chan struct{}),
		scheduled: make(map[string]reminder.Reminder),
		lastFired: make(map[string]string),
	}
}

// SetPushProvider injects the real push provider (FCM) from main.go.
func (d *ReminderDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushProvider = provider
}

func (d *ReminderDispatcher) SetTokenSource(tokens DeviceTokenSource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens = tokens
}

// Start launches the worker pool and the ticker. It is a no-op after the
// first call.
func (d *ReminderDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	d.tickerWg.Add(1)
	go d.run()
}

func (d *ReminderDispatcher) run() {
	defer d.tickerWg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.DispatchDue(d.now())
		case <-d.stopChan:
			return
		}
	}
}

func (d *ReminderDispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobQueue {
		d.processJob(job)
	}
}

// Schedule registers an enabled reminder for daily dispatch and returns its
// id as the schedule identifier. A disabled reminder is cancelled instead.
func (d *ReminderDispatcher) Schedule(ctx context.Context, r reminder.Reminder) (string, error) {
	if !r.Enabled {
		return "", d.Cancel(ctx, r.ID)
	}
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 {
		return "", fmt.Errorf("%w: %s", ErrInvalidReminderTime, r.TimeOfDay())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.scheduled[r.ID] = r
	return r.ID, nil
}

func (d *ReminderDispatcher) Cancel(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.scheduled, id)
	delete(d.lastFired, id)
	return nil
}

// Scheduled returns the reminders currently scheduled.
func (d *ReminderDispatcher) Scheduled() []reminder.Reminder {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]reminder.Reminder, 0, len(d.scheduled))
	for _, r := range d.scheduled {
		out = append(out, r)
	}
	return out
}

// DispatchDue queues every scheduled reminder whose time of day matches now
// in the dispatcher's location. Each reminder fires at most once per minute.
// It returns how many jobs were queued.
func (d *ReminderDispatcher) DispatchDue(now time.Time) int {
	local := now.In(d.loc)
	minuteKey := local.Format("2006-01-02 15:04")

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return 0
	}

	count := 0
	for id, r := range d.scheduled {
		if r.Hour != local.Hour() || r.Minute != local.Minute() {
			continue
		}
		if d.lastFired[id] == minuteKey {
			continue
		}
		d.lastFired[id] = minuteKey

		select {
		case d.jobQueue <- &DispatchJob{Reminder: r, FiredAt: local}:
			count++
		default:
			log.Printf("ReminderDispatcher: queue full, dropping reminder %s", id)
			metrics.RemindersDispatched.WithLabelValues("skipped").Inc()
		}
	}
	return count
}

func (d *ReminderDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d.mu.Lock()
	provider, tokenSource := d.pushProvider, d.tokens
	d.mu.Unlock()

	if provider == nil || tokenSource == nil {
		log.Printf("ReminderDispatcher: skipping reminder %s: ProviderSet=%v, TokenSourceSet=%v",
			job.Reminder.ID, provider != nil, tokenSource != nil)
		metrics.RemindersDispatched.WithLabelValues("skipped").Inc()
		return
	}

	tokens, err := tokenSource.DeviceTokens(ctx)
	if err != nil {
		log.Printf("ReminderDispatcher: failed to load device tokens: %v", err)
		metrics.RemindersDispatched.WithLabelValues("failed").Inc()
		return
	}
	if len(tokens) == 0 {
		log.Printf("ReminderDispatcher: no registered devices for reminder %s", job.Reminder.ID)
		metrics.RemindersDispatched.WithLabelValues("skipped").Inc()
		return
	}

	data := map[string]any{
		"type":        "water_reminder",
		"reminder_id": job.Reminder.ID,
		"time":        job.Reminder.TimeOfDay(),
	}

	if err := provider.SendPush(ctx, tokens, reminderTitle, reminderBody, data); err != nil {
		log.Printf("ReminderDispatcher: push failed for reminder %s: %v", job.Reminder.ID, err)
		metrics.RemindersDispatched.WithLabelValues("failed").Inc()
		return
	}

	metrics.RemindersDispatched.WithLabelValues("sent").Inc()
}

// Stop the dispatcher gracefully. Jobs already queued are still delivered.
func (d *ReminderDispatcher) Stop() {
	d.stopOnce.Do(func() {
		log.Println("Stopping reminder dispatcher...")
		close(d.stopChan)
		d.tickerWg.Wait()

		d.mu.Lock()
		d.stopped = true
		started := d.started
		close(d.jobQueue)
		d.mu.Unlock()

		if started {
			d.wg.Wait()
		}
		log.Println("Reminder dispatcher stopped")
	})
}

// LogPushProvider logs pushes instead of sending them. It is used when FCM
// credentials are not configured.
type LogPushProvider struct{}

func (LogPushProvider) SendPush(ctx context.Context, tokens []reminder.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("LOG PUSH: Sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}
