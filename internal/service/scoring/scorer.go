// Package scoring ranks collected videos by engagement after removing comment-ratio
// outliers.
package scoring

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

const (
	// TopN is the maximum number of ranked videos returned.
	TopN = 20

	// OutlierSigma is the number of standard deviations above the mean comment ratio
	// past which a video is dropped.
	OutlierSigma = 2.0

	// CommentWeight multiplies the comment ratio in the engagement score.
	CommentWeight = 3.0

	// RecencyMultiplier boosts videos published inside RecencyWindow.
	RecencyMultiplier = 1.2

	// RecencyWindow is how far back a video still counts as recent.
	RecencyWindow = 7 * 24 * time.Hour
)

// Scorer computes engagement scores. It holds no state besides its clock.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a Scorer. A nil now uses time.Now.
func NewScorer(now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{now: now}
}

// Score filters comment-ratio outliers, scores the remaining records and returns at
// most TopN of them in descending score order. Equal scores keep input order.
func (s *Scorer) Score(records []models.VideoRecord) []models.ScoredVideoRecord {
	if len(records) == 0 {
		return []models.ScoredVideoRecord{}
	}

	threshold, ok := outlierThreshold(records)
	recentAfter := s.now().Add(-RecencyWindow)

	scored := make([]models.ScoredVideoRecord, 0, len(records))
	for _, r := range records {
		commentRatio := ratio(r.Comments, r.Views)
		if ok && commentRatio > threshold {
			continue
		}

		likeRatio := ratio(r.Likes, r.Views)
		isRecent := r.PublishedAt.After(recentAfter)
		multiplier := 1.0
		if isRecent {
			multiplier = RecencyMultiplier
		}

		scored = append(scored, models.ScoredVideoRecord{
			VideoRecord:     r,
			CommentRatio:    commentRatio,
			LikeRatio:       likeRatio,
			IsRecent:        isRecent,
			EngagementScore: (likeRatio + CommentWeight*commentRatio) * multiplier,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].EngagementScore > scored[j].EngagementScore
	})

	if len(scored) > TopN {
		scored = scored[:TopN]
	}
	return scored
}

// outlierThreshold returns mean + OutlierSigma×σ over the comment ratios of records
// with views. ok is false when no record has views.
func outlierThreshold(records []models.VideoRecord) (threshold float64, ok bool) {
	ratios := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Views > 0 {
			ratios = append(ratios, ratio(r.Comments, r.Views))
		}
	}
	if len(ratios) == 0 {
		return 0, false
	}

	mean, std := stat.PopMeanStdDev(ratios, nil)
	return mean + OutlierSigma*std, true
}

// ratio returns n per hundred views, or zero without views.
func ratio(n, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return float64(n) / float64(views) * 100
}
