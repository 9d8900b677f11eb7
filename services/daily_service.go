package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"waterBuddyAPI/internal/achievement"
	"waterBuddyAPI/internal/kv"
	"waterBuddyAPI/internal/metrics"
	"waterBuddyAPI/internal/types/water"
	"waterBuddyAPI/utils"
)

// DailyService owns what is true about today: the goal-clamped consumption,
// the streak rollover and the lifetime total kept in kv.KeyUserStats.
//
// Operations are serialized within the process. The store itself offers no
// cross-writer guarantee, so two processes sharing one store can lose updates.
type DailyService struct {
	store    kv.Store
	records  *RecordService
	progress *ProgressService
	loc      *time.Location
	now      func() time.Time

	mu sync.Mutex
}

type TodayState struct {
	Date           string         `json:"date"`
	Consumed       int            `json:"consumed"` // clamped to [0, goal]
	Goal           int            `json:"goal"`
	Records        []water.Record `json:"records"`
	Streak         int            `json:"streak"`
	TotalConsumed  int            `json:"totalConsumed"`
	LastRecordDate string         `json:"lastRecordDate"`
}

type AddWaterResult struct {
	Requested       int                       `json:"requested"`
	Added           int                       `json:"added"`
	Clamped         bool                      `json:"clamped"`
	GoalMet         bool                      `json:"goalMet"`
	Today           TodayState                `json:"today"`
	NewAchievements []achievement.Achievement `json:"newAchievements"`
	Progress        *achievement.UserProgress `json:"progress,omitempty"`
}

func NewDailyService(store kv.Store, records *RecordService, progress *ProgressService, loc *time.Location) *DailyService {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyService{
		store:    store,
		records:  records,
		progress: progress,
		loc:      loc,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Tests use it to pin "today".
func (s *DailyService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Today returns the current date key in the service's location.
func (s *DailyService) Today() string {
	return utils.DateKey(s.now(), s.loc)
}

// Goal returns the configured daily goal, falling back to the default.
func (s *DailyService) Goal(ctx context.Context) (int, error) {
	var goal int
	found, err := kv.GetJSON(ctx, s.store, kv.KeyDailyGoal, &goal)
	if err != nil {
		return 0, readError(kv.KeyDailyGoal, err)
	}
	if !found || goal <= 0 {
		return water.DefaultDailyGoal, nil
	}
	return goal, nil
}

func (s *DailyService) SetGoal(ctx context.Context, goal int) error {
	if goal <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidGoal, goal)
	}
	if err := kv.SetJSON(ctx, s.store, kv.KeyDailyGoal, goal); err != nil {
		return writeError(kv.KeyDailyGoal, err)
	}
	log.Printf("DailyService: daily goal set to %d ml", goal)
	return nil
}

// Stats returns the persisted user stats, zero-valued when absent.
func (s *DailyService) Stats(ctx context.Context) (water.UserStats, error) {
	var stats water.UserStats
	if _, err := kv.GetJSON(ctx, s.store, kv.KeyUserStats, &stats); err != nil {
		return water.UserStats{}, readError(kv.KeyUserStats, err)
	}
	return stats, nil
}

func (s *DailyService) saveStats(ctx context.Context, stats water.UserStats) error {
	if err := kv.SetJSON(ctx, s.store, kv.KeyUserStats, stats); err != nil {
		return writeError(kv.KeyUserStats, err)
	}
	return nil
}

// LoadToday reads today's state and applies the streak rollover once: if the
// last recorded day is yesterday the streak grows by one, any other day
// resets it to 1, and today leaves it untouched.
func (s *DailyService) LoadToday(ctx context.Context) (*TodayState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := utils.DateKey(s.now(), s.loc)

	goal, err := s.Goal(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	day, err := s.records.Day(ctx, today)
	if err != nil {
		return nil, err
	}

	if stats.LastRecordDate != today {
		rolled, err := rollStreak(stats, today)
		if err != nil {
			return nil, err
		}
		if err := s.saveStats(ctx, rolled); err != nil {
			return nil, err
		}
		log.Printf("DailyService: streak rolled from %d to %d (last record %q, today %s)",
			stats.Streak, rolled.Streak, stats.LastRecordDate, today)
		stats = rolled
	}

	return buildToday(today, goal, day, stats), nil
}

// AddWater records amount ml for today. When the amount would overshoot the
// goal it is reduced to exactly what is left; once the goal is reached the call
// is a no-op reported through GoalMet. Only the clamped amount is stored.
func (s *DailyService) AddWater(ctx context.Context, amount int) (*AddWaterResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := utils.DateKey(now, s.loc)

	goal, err := s.Goal(ctx)
	if err != nil {
		return nil, err
	}

	day, err := s.records.Day(ctx, today)
	if err != nil {
		return nil, err
	}
	consumed := min(water.Sum(day), goal)

	result := &AddWaterResult{
		Requested:       amount,
		NewAchievements: []achievement.Achievement{},
	}

	if consumed+amount > goal {
		remaining := goal - consumed
		if remaining <= 0 {
			stats, err := s.Stats(ctx)
			if err != nil {
				return nil, err
			}
			metrics.WaterIntakeClamped.WithLabelValues("goal_met").Inc()
			result.GoalMet = true
			result.Today = *buildToday(today, goal, day, stats)
			return result, nil
		}
		amount = remaining
		result.Clamped = true
		metrics.WaterIntakeClamped.WithLabelValues("reduced").Inc()
	}

	updated, err := s.records.Append(ctx, today, amount, now)
	if err != nil {
		return nil, err
	}
	newTotal := min(consumed+amount, goal)

	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats = stats.WithTotal(stats.TotalConsumed + amount)
	if err := s.saveStats(ctx, stats); err != nil {
		return nil, err
	}

	metrics.WaterIntakeML.Add(float64(amount))

	update := s.progress.UpdateProgress(ctx, newTotal, stats.Streak, stats.TotalConsumed)

	result.Added = amount
	result.GoalMet = newTotal >= goal
	result.Today = *buildToday(today, goal, updated, stats)
	result.NewAchievements = update.NewlyUnlocked
	result.Progress = &update.Progress

	return result, nil
}

// Reset clears today's records and takes their stored sum back out of the
// lifetime total. Streak and last recorded date are left alone.
func (s *DailyService) Reset(ctx context.Context) (*TodayState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := utils.DateKey(s.now(), s.loc)

	goal, err := s.Goal(ctx)
	if err != nil {
		return nil, err
	}

	day, err := s.records.Day(ctx, today)
	if err != nil {
		return nil, err
	}
	todayTotal := water.Sum(day)

	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	// Records are cleared before the total is lowered, so a failed clear
	// leaves both untouched and a retry subtracts today's sum only once.
	if err := s.records.Clear(ctx, today); err != nil {
		return nil, err
	}

	stats = stats.WithTotal(stats.TotalConsumed - todayTotal)
	if err := s.saveStats(ctx, stats); err != nil {
		return nil, err
	}

	log.Printf("DailyService: reset %s, removed %d ml from lifetime total", today, todayTotal)
	return buildToday(today, goal, nil, stats), nil
}

func rollStreak(stats water.UserStats, today string) (water.UserStats, error) {
	yesterday, err := utils.PreviousDateKey(today)
	if err != nil {
		return water.UserStats{}, err
	}
	if stats.LastRecordDate == yesterday {
		return stats.WithStreak(stats.Streak+1, today), nil
	}
	return stats.WithStreak(1, today), nil
}

func buildToday(today string, goal int, day []water.Record, stats water.UserStats) *TodayState {
	if day == nil {
		day = []water.Record{}
	}
	return &TodayState{
		Date:           today,
		Consumed:       max(0, min(water.Sum(day), goal)),
		Goal:           goal,
		Records:        day,
		Streak:         stats.Streak,
		TotalConsumed:  stats.TotalConsumed,
		LastRecordDate: stats.LastRecordDate,
	}
}
