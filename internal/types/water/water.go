package water

// DefaultDailyGoal is used until the user stores a goal of their own.
const DefaultDailyGoal = 2000

// Record is a single intake event. It belongs to the date bucket it was
// appended to and never moves.
type Record struct {
	ID        string `json:"id"`
	Amount    int    `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// RecordStore maps a YYYY-MM-DD date to the records logged that day, in
// insertion order.
type RecordStore map[string][]Record

// Sum returns the total ml of a day's records.
func Sum(records []Record) int {
	total := 0
	for _, r := range records {
		total += r.Amount
	}
	return total
}

// Totals reduces the store to date -> ml.
func (s RecordStore) Totals() map[string]int {
	totals := make(map[string]int, len(s))
	for date, records := range s {
		totals[date] = Sum(records)
	}
	return totals
}

type UserStats struct {
	TotalConsumed  int    `json:"totalConsumed"`
	Streak         int    `json:"streak"`
	LastRecordDate string `json:"lastRecordDate"`
}

// WithTotal returns a copy of s with a new lifetime total, floored at zero.
func (s UserStats) WithTotal(total int) UserStats {
	if total < 0 {
		total = 0
	}
	return UserStats{
		TotalConsumed:  total,
		Streak:         s.Streak,
		LastRecordDate: s.LastRecordDate,
	}
}

// WithStreak returns a copy of s with a new streak and last recorded date.
func (s UserStats) WithStreak(streak int, lastRecordDate string) UserStats {
	return UserStats{
		TotalConsumed:  s.TotalConsumed,
		Streak:         streak,
		LastRecordDate: lastRecordDate,
	}
}

type AddWaterRequest struct {
	Amount int `json:"amount"`
}

type UpdateGoalRequest struct {
	Goal int `json:"goal"`
}
