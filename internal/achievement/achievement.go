package achievement

type CriteriaType string

const (
	CriteriaDaily  CriteriaType = "daily"
	CriteriaStreak CriteriaType = "streak"
	CriteriaTotal  CriteriaType = "total"
)

const (
	mlPerExperience    = 100
	experiencePerLevel = 1000
)

type Achievement struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Icon          string       `json:"icon"`
	RequiredValue int          `json:"requiredValue"`
	Type          CriteriaType `json:"type"`
	Completed     bool         `json:"completed"`
}

// Unlocked returns a completed copy of a.
func (a Achievement) Unlocked() Achievement {
	return Achievement{
		ID:            a.ID,
		Name:          a.Name,
		Description:   a.Description,
		Icon:          a.Icon,
		RequiredValue: a.RequiredValue,
		Type:          a.Type,
		Completed:     true,
	}
}

// Satisfied reports whether the achievement's threshold is met by the input
// matching its criteria type.
func (a Achievement) Satisfied(in Inputs) bool {
	switch a.Type {
	case CriteriaDaily:
		return in.DailyConsumed >= a.RequiredValue
	case CriteriaStreak:
		return in.Streak >= a.RequiredValue
	case CriteriaTotal:
		return in.TotalConsumed >= a.RequiredValue
	default:
		return false
	}
}

// Inputs are the values achievement predicates are evaluated against.
type Inputs struct {
	DailyConsumed int
	Streak        int
	TotalConsumed int
}

type UserProgress struct {
	Level         int           `json:"level"`
	Experience    int           `json:"experience"`
	TotalConsumed int           `json:"totalConsumed"`
	Streak        int           `json:"streak"`
	Achievements  []Achievement `json:"achievements"`
}

// CompletedCount returns how many achievements are unlocked.
func (p UserProgress) CompletedCount() int {
	n := 0
	for _, a := range p.Achievements {
		if a.Completed {
			n++
		}
	}
	return n
}

type AchievementsResponse struct {
	Achievements []Achievement `json:"achievements"`
	Completed    int           `json:"completed"`
	Total        int           `json:"total"`
}

// Catalog returns a fresh copy of the fixed achievement catalog. Clients rely
// on these ids and thresholds.
func Catalog() []Achievement {
	return []Achievement{
		{
			ID:            1,
			Name:          "First Steps",
			Description:   "Reach the daily water goal for the first time",
			Icon:          "🌱",
			RequiredValue: 2000,
			Type:          CriteriaDaily,
		},
		{
			ID:            2,
			Name:          "One Week Strong",
			Description:   "Keep a 7 day streak",
			Icon:          "🔥",
			RequiredValue: 7,
			Type:          CriteriaStreak,
		},
		{
			ID:            3,
			Name:          "Aqua Champion",
			Description:   "Drink 100 liters in total",
			Icon:          "🏆",
			RequiredValue: 100000,
			Type:          CriteriaTotal,
		},
	}
}

// InitialProgress is the progress of a user who has never logged anything.
func InitialProgress() UserProgress {
	return UserProgress{
		Level:        1,
		Experience:   0,
		Achievements: Catalog(),
	}
}

// ExperienceFor converts consumed ml into experience points.
func ExperienceFor(consumed int) int {
	if consumed <= 0 {
		return 0
	}
	return consumed / mlPerExperience
}

// LevelFor returns the level reached with the given experience.
func LevelFor(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return experience/experiencePerLevel + 1
}
