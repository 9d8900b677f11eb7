package stats

import "time"

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

type ChartPoint struct {
	Date     string `json:"date"` // bucket label: YYYY-MM-DD, YYYY-Www or YYYY-MM
	Consumed int    `json:"consumed"`
}

type Summary struct {
	TotalConsumed   int `json:"totalConsumed"`
	AverageConsumed int `json:"averageConsumed"`
	GoalAchievement int `json:"goalAchievement"` // percent, uncapped
	Streak          int `json:"streak"`
}

type Statistics struct {
	Period    Period       `json:"period"`
	ChartData []ChartPoint `json:"chartData"`
	Summary   Summary      `json:"summary"`
}

// Empty is the degraded result returned when there is nothing (or nothing
// readable) to aggregate.
func Empty(period Period) *Statistics {
	return &Statistics{
		Period:    period,
		ChartData: []ChartPoint{},
	}
}

type CalendarDay struct {
	Date     time.Time `json:"date"`
	Consumed int       `json:"consumed"`
	GoalMet  bool      `json:"goal_met"`
	IsToday  bool      `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Goal  int            `json:"goal"`
	Days  []*CalendarDay `json:"days"`
}
