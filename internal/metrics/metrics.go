package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WaterIntakeML = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "water_intake_ml_total",
			Help: "Total ml of water recorded after goal clamping",
		},
	)
	WaterIntakeClamped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "water_intake_clamped_total",
			Help: "Intake requests reduced or skipped because of the daily goal",
		},
		[]string{"outcome"}, // reduced, goal_met
	)
	AchievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_unlocked_total",
			Help: "Achievements unlocked, by achievement name",
		},
		[]string{"achievement"},
	)
	ProgressDegraded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_update_degraded_total",
			Help: "Progress updates that fell back to the persisted progress",
		},
	)
	StatisticsDegraded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "statistics_degraded_total",
			Help: "Statistics requests answered with an empty result after a read failure",
		},
	)
	RemindersDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_dispatched_total",
			Help: "Reminder pushes by delivery status",
		},
		[]string{"status"}, // sent, failed, skipped
	)
)

// Register adds the domain collectors to reg. Call it once from main.go.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		WaterIntakeML,
		WaterIntakeClamped,
		AchievementsUnlocked,
		ProgressDegraded,
		StatisticsDegraded,
		RemindersDispatched,
	)
}
