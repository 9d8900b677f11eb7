package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"waterBuddyAPI/internal/metrics"
	"waterBuddyAPI/internal/stats"
	"waterBuddyAPI/utils"
)

const (
	dailyBuckets   = 7
	weeklyBuckets  = 4
	monthlyBuckets = 4
)

// StatisticsService reduces the record store into chart buckets and summary
// figures. It only reads.
type StatisticsService struct {
	records *RecordService
	daily   *DailyService
}

func NewStatisticsService(records *RecordService, daily *DailyService) *StatisticsService {
	return &StatisticsService{records: records, daily: daily}
}

func ParsePeriod(raw string) (stats.Period, error) {
	switch stats.Period(strings.ToLower(strings.TrimSpace(raw))) {
	case stats.PeriodDaily:
		return stats.PeriodDaily, nil
	case stats.PeriodWeekly:
		return stats.PeriodWeekly, nil
	case stats.PeriodMonthly:
		return stats.PeriodMonthly, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidPeriod, raw)
	}
}

// GetStatistics aggregates the whole record store for period. It never fails:
// an empty store or any read error yields a zeroed summary with no chart data.
func (s *StatisticsService) GetStatistics(ctx context.Context, period stats.Period) *stats.Statistics {
	result, err := s.aggregate(ctx, period)
	if err != nil {
		log.Printf("StatisticsService: returning empty %s statistics: %v", period, err)
		metrics.StatisticsDegraded.Inc()
		return stats.Empty(period)
	}
	return result
}

func (s *StatisticsService) aggregate(ctx context.Context, period stats.Period) (*stats.Statistics, error) {
	records, err := s.records.All(ctx)
	if err != nil {
		return nil, err
	}

	// A cleared day keeps its key and counts as a 0 ml date, both in the
	// chart and in the average divisor.
	totals := records.Totals()
	dates := make([]string, 0, len(totals))
	for date := range totals {
		dates = append(dates, date)
	}

	if len(dates) == 0 {
		return stats.Empty(period), nil
	}
	sort.Strings(dates)

	var chart []stats.ChartPoint
	switch period {
	case stats.PeriodDaily:
		chart = dailyChart(dates, totals)
	case stats.PeriodWeekly:
		chart, err = bucketChart(dates, totals, utils.ISOWeekKey, weeklyBuckets)
	case stats.PeriodMonthly:
		chart, err = bucketChart(dates, totals, utils.MonthKey, monthlyBuckets)
	default:
		chart = []stats.ChartPoint{}
	}
	if err != nil {
		return nil, err
	}

	total := 0
	for _, date := range dates {
		total += totals[date]
	}

	goal, err := s.daily.Goal(ctx)
	if err != nil {
		return nil, err
	}
	userStats, err := s.daily.Stats(ctx)
	if err != nil {
		return nil, err
	}

	average := utils.RoundHalfUp(total, len(dates))

	return &stats.Statistics{
		Period:    period,
		ChartData: chart,
		Summary: stats.Summary{
			TotalConsumed:   total,
			AverageConsumed: average,
			GoalAchievement: utils.RoundHalfUp(average*100, goal),
			Streak:          userStats.Streak,
		},
	}, nil
}

func dailyChart(dates []string, totals map[string]int) []stats.ChartPoint {
	if len(dates) > dailyBuckets {
		dates = dates[len(dates)-dailyBuckets:]
	}
	chart := make([]stats.ChartPoint, 0, len(dates))
	for _, date := range dates {
		chart = append(chart, stats.ChartPoint{Date: date, Consumed: totals[date]})
	}
	return chart
}

// bucketChart sums dates into the buckets named by keyOf and keeps the last
// limit buckets. Bucket keys are zero-padded so string order is chronological.
func bucketChart(dates []string, totals map[string]int, keyOf func(string) (string, error), limit int) ([]stats.ChartPoint, error) {
	sums := make(map[string]int)
	keys := make([]string, 0)
	for _, date := range dates {
		key, err := keyOf(date)
		if err != nil {
			return nil, err
		}
		if _, ok := sums[key]; !ok {
			keys = append(keys, key)
		}
		sums[key] += totals[date]
	}

	sort.Strings(keys)
	if len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}

	chart := make([]stats.ChartPoint, 0, len(keys))
	for _, key := range keys {
		chart = append(chart, stats.ChartPoint{Date: key, Consumed: sums[key]})
	}
	return chart, nil
}

// Calendar returns one entry per day of the month with the stored ml and
// whether the goal was reached.
func (s *StatisticsService) Calendar(ctx context.Context, year, month int) (*stats.CalendarResponse, error) {
	if year < 1 || month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: year=%d month=%d", ErrInvalidDate, year, month)
	}

	totals, err := s.records.TotalsByDate(ctx)
	if err != nil {
		return nil, err
	}

	goal, err := s.daily.Goal(ctx)
	if err != nil {
		return nil, err
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)
	today := s.daily.Today()

	days := make([]*stats.CalendarDay, 0, endDate.Day())
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format(utils.DateLayout)
		consumed := totals[dateStr]
		days = append(days, &stats.CalendarDay{
			Date:     d,
			Consumed: consumed,
			GoalMet:  consumed >= goal,
			IsToday:  dateStr == today,
		})
	}

	return &stats.CalendarResponse{
		Year:  year,
		Month: month,
		Goal:  goal,
		Days:  days,
	}, nil
}
