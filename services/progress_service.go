package services

import (
	"context"
	"log"

	"waterBuddyAPI/internal/achievement"
	"waterBuddyAPI/internal/kv"
	"waterBuddyAPI/internal/metrics"
)

// ProgressService turns consumption and streak figures into experience, level
// and achievement unlocks, persisted under kv.KeyUserProgress.
type ProgressService struct {
	store kv.Store
}

type ProgressUpdate struct {
	NewlyUnlocked []achievement.Achievement `json:"newAchievements"`
	Progress      achievement.UserProgress  `json:"currentProgress"`
}

func NewProgressService(store kv.Store) *ProgressService {
	return &ProgressService{store: store}
}

// GetProgress returns the persisted progress, or the initial progress when
// nothing was stored yet.
func (s *ProgressService) GetProgress(ctx context.Context) (*achievement.UserProgress, error) {
	var progress achievement.UserProgress
	found, err := kv.GetJSON(ctx, s.store, kv.KeyUserProgress, &progress)
	if err != nil {
		return nil, readError(kv.KeyUserProgress, err)
	}
	if !found {
		initial := achievement.InitialProgress()
		return &initial, nil
	}

	progress.Achievements = withCatalog(progress.Achievements)
	if progress.Level < 1 {
		progress.Level = achievement.LevelFor(progress.Experience)
	}
	return &progress, nil
}

// Achievements lists the catalog with each entry's unlock state.
func (s *ProgressService) Achievements(ctx context.Context) (*achievement.AchievementsResponse, error) {
	progress, err := s.GetProgress(ctx)
	if err != nil {
		return nil, err
	}
	return &achievement.AchievementsResponse{
		Achievements: progress.Achievements,
		Completed:    progress.CompletedCount(),
		Total:        len(progress.Achievements),
	}, nil
}

// UpdateProgress grants experience for dailyConsumed, recomputes the level and
// unlocks every locked achievement whose threshold is now met. Already
// completed achievements are never reported again.
//
// dailyConsumed is today's running total, not the amount just added, so
// repeated calls on the same day grant experience for the same ml again.
//
// Failures never surface: the caller gets the persisted progress (or the
// initial one) and no new unlocks.
func (s *ProgressService) UpdateProgress(ctx context.Context, dailyConsumed, streak, totalConsumed int) ProgressUpdate {
	current, err := s.GetProgress(ctx)
	if err != nil {
		log.Printf("ProgressService: failed to load progress: %v", err)
		metrics.ProgressDegraded.Inc()
		return ProgressUpdate{
			NewlyUnlocked: []achievement.Achievement{},
			Progress:      achievement.InitialProgress(),
		}
	}

	inputs := achievement.Inputs{
		DailyConsumed: dailyConsumed,
		Streak:        streak,
		TotalConsumed: totalConsumed,
	}

	unlocked := []achievement.Achievement{}
	achievements := make([]achievement.Achievement, 0, len(current.Achievements))
	for _, a := range current.Achievements {
		if !a.Completed && a.Satisfied(inputs) {
			a = a.Unlocked()
			unlocked = append(unlocked, a)
		}
		achievements = append(achievements, a)
	}

	experience := current.Experience + achievement.ExperienceFor(dailyConsumed)
	updated := achievement.UserProgress{
		Level:         achievement.LevelFor(experience),
		Experience:    experience,
		TotalConsumed: totalConsumed,
		Streak:        streak,
		Achievements:  achievements,
	}

	if err := kv.SetJSON(ctx, s.store, kv.KeyUserProgress, updated); err != nil {
		log.Printf("ProgressService: failed to save progress: %v", err)
		metrics.ProgressDegraded.Inc()
		return ProgressUpdate{
			NewlyUnlocked: []achievement.Achievement{},
			Progress:      *current,
		}
	}

	for _, a := range unlocked {
		metrics.AchievementsUnlocked.WithLabelValues(a.Name).Inc()
		log.Printf("ProgressService: unlocked achievement %d (%s)", a.ID, a.Name)
	}

	return ProgressUpdate{NewlyUnlocked: unlocked, Progress: updated}
}

// withCatalog keeps stored unlock state and appends any catalog entry missing
// from an older persisted progress.
func withCatalog(stored []achievement.Achievement) []achievement.Achievement {
	seen := make(map[int]bool, len(stored))
	out := make([]achievement.Achievement, 0, len(stored))
	for _, a := range stored {
		seen[a.ID] = true
		out = append(out, a)
	}
	for _, a := range achievement.Catalog() {
		if !seen[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
