// Package temporal rolls scored videos up by weekday, hour of day and calendar day in
// Korea Standard Time.
package temporal

import (
	"sort"
	"time"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

// TimezoneName is the IANA name reported alongside the aggregates.
const TimezoneName = "Asia/Seoul"

// Location is UTC+9. Korea observes no daylight saving time, so a fixed zone avoids a
// tzdata dependency.
var Location = time.FixedZone("KST", 9*60*60)

// Weekdays lists weekday names in bucket order.
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const dateLayout = "2006-01-02"

type accumulator struct {
	count      int
	views      int64
	comments   int64
	likes      int64
	engagement float64
}

func (a *accumulator) add(r models.ScoredVideoRecord) {
	a.count++
	a.views += r.Views
	a.comments += r.Comments
	a.likes += r.Likes
	a.engagement += r.EngagementScore
}

func (a *accumulator) stats() models.BucketStats {
	s := models.BucketStats{
		VideoCount:    a.count,
		TotalViews:    a.views,
		TotalComments: a.comments,
		TotalLikes:    a.likes,
	}
	if a.count == 0 {
		return s
	}
	n := float64(a.count)
	s.MeanViews = float64(a.views) / n
	s.MeanComments = float64(a.comments) / n
	s.MeanLikes = float64(a.likes) / n
	s.MeanEngagement = a.engagement / n
	return s
}

// Aggregate buckets records by their publish time in Location. All seven weekday and
// twenty-four hour buckets are present regardless of input. Records without a publish
// time are left out of every bucket.
func Aggregate(records []models.ScoredVideoRecord) models.TemporalReport {
	var (
		byWeekday [7]accumulator
		byHour    [24]accumulator
	)
	byDay := make(map[string]*accumulator)

	for _, r := range records {
		if r.PublishedAt.IsZero() {
			continue
		}
		local := r.PublishedAt.In(Location)

		byWeekday[weekdayIndex(local.Weekday())].add(r)
		byHour[local.Hour()].add(r)

		day := local.Format(dateLayout)
		acc, ok := byDay[day]
		if !ok {
			acc = &accumulator{}
			byDay[day] = acc
		}
		acc.add(r)
	}

	report := models.TemporalReport{
		Timezone: TimezoneName,
		Daily:    make([]models.DailyBucket, 0, len(byDay)),
	}

	for i := range byWeekday {
		report.Weekdays[i] = models.WeekdayBucket{Weekday: Weekdays[i], BucketStats: byWeekday[i].stats()}
	}
	for h := range byHour {
		report.Hours[h] = models.HourBucket{Hour: h, BucketStats: byHour[h].stats()}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		acc := byDay[day]
		report.Daily = append(report.Daily, models.DailyBucket{
			Date:          day,
			VideoCount:    acc.count,
			TotalViews:    acc.views,
			TotalComments: acc.comments,
		})
	}

	report.Peaks = peaks(report.Weekdays, report.Hours)
	return report
}

func peaks(weekdays [7]models.WeekdayBucket, hours [24]models.HourBucket) models.PeakBuckets {
	weekdayStats := make([]models.BucketStats, len(weekdays))
	for i, b := range weekdays {
		weekdayStats[i] = b.BucketStats
	}
	hourStats := make([]models.BucketStats, len(hours))
	for i, b := range hours {
		hourStats[i] = b.BucketStats
	}

	byViews := func(s models.BucketStats) float64 { return s.MeanViews }
	byEngagement := func(s models.BucketStats) float64 { return s.MeanEngagement }

	return models.PeakBuckets{
		WeekdayByViews:      weekdays[argmax(weekdayStats, byViews)].Weekday,
		WeekdayByEngagement: weekdays[argmax(weekdayStats, byEngagement)].Weekday,
		HourByViews:         hours[argmax(hourStats, byViews)].Hour,
		HourByEngagement:    hours[argmax(hourStats, byEngagement)].Hour,
	}
}

// argmax returns the first index holding the largest value.
func argmax(buckets []models.BucketStats, value func(models.BucketStats) float64) int {
	best := 0
	for i := 1; i < len(buckets); i++ {
		if value(buckets[i]) > value(buckets[best]) {
			best = i
		}
	}
	return best
}

// weekdayIndex maps time.Weekday (Sunday = 0) onto a Monday-first index.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
