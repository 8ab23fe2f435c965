// Package models contains the data models and DTOs for the keyword analytics service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoRecord is one video assembled from the search, statistics and comment responses.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PublishedAt  time.Time `json:"published_at"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	CommentTexts []string  `json:"comment_texts"`
	Duration     string    `json:"duration"` // ISO 8601 format (e.g., "PT4M13S")
	Tags         []string  `json:"tags"`
}

// ScoredVideoRecord is a VideoRecord enriched by the engagement scorer.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ScoredVideoRecord struct {
	VideoRecord
	CommentRatio    float64 `json:"comment_ratio"`
	LikeRatio       float64 `json:"like_ratio"`
	IsRecent        bool    `json:"is_recent"`
	EngagementScore float64 `json:"engagement_score"`
}

// QuotaInfo provides current quota status.
type QuotaInfo struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// BucketStats holds the aggregate values shared by weekday and hour buckets.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type BucketStats struct {
	VideoCount     int     `json:"video_count"`
	TotalViews     int64   `json:"total_views"`
	MeanViews      float64 `json:"mean_views"`
	TotalComments  int64   `json:"total_comments"`
	MeanComments   float64 `json:"mean_comments"`
	TotalLikes     int64   `json:"total_likes"`
	MeanLikes      float64 `json:"mean_likes"`
	MeanEngagement float64 `json:"mean_engagement"`
}

// WeekdayBucket aggregates videos published on one weekday.
type WeekdayBucket struct {
	Weekday string `json:"weekday"`
	BucketStats
}

// HourBucket aggregates videos published in one hour of the day.
type HourBucket struct {
	Hour int `json:"hour"`
	BucketStats
}

// DailyBucket holds the per-day totals used for the daily trend line.
type DailyBucket struct {
	Date          string `json:"date"` // YYYY-MM-DD in the target timezone
	VideoCount    int    `json:"video_count"`
	TotalViews    int64  `json:"total_views"`
	TotalComments int64  `json:"total_comments"`
}

// PeakBuckets names the buckets with the highest mean views and mean engagement.
type PeakBuckets struct {
	WeekdayByViews      string `json:"weekday_by_views"`
	WeekdayByEngagement string `json:"weekday_by_engagement"`
	HourByViews         int    `json:"hour_by_views"`
	HourByEngagement    int    `json:"hour_by_engagement"`
}

// TemporalReport is the output of the temporal aggregator.
type TemporalReport struct {
	Timezone string           `json:"timezone"`
	Weekdays [7]WeekdayBucket `json:"weekdays"`
	Hours    [24]HourBucket   `json:"hours"`
	Peaks    PeakBuckets      `json:"peaks"`
	Daily    []DailyBucket    `json:"daily"`
}

// Summary holds the headline metrics of a ranked video set.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Summary struct {
	TotalVideos  int     `json:"total_videos"`
	TotalViews   int64   `json:"total_views"`
	MeanLikes    float64 `json:"mean_likes"`
	MeanComments float64 `json:"mean_comments"`
}

// KeywordCount is one entry of the title keyword frequency table.
type KeywordCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// SentimentLabel classifies a compound sentiment score.
type SentimentLabel string

// SentimentLabel constants define the possible sentiment classes.
const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// VideoSentiment is the averaged comment sentiment of one video.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoSentiment struct {
	VideoID      string         `json:"video_id"`
	CommentCount int            `json:"comment_count"`
	Compound     float64        `json:"compound"`
	Label        SentimentLabel `json:"label"`
}

// SentimentReport aggregates comment sentiment over a ranked video set.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SentimentReport struct {
	Videos       []VideoSentiment `json:"videos"`
	MeanCompound float64          `json:"mean_compound"`
	Label        SentimentLabel   `json:"label"`
}

// AnalysisRequest represents a keyword analysis request.
type AnalysisRequest struct {
	Keyword        string `form:"keyword" json:"keyword" binding:"required"`
	LookbackMonths int    `form:"months" json:"months"`
	MaxResults     int    `form:"maxResults" json:"maxResults"`
}

// AnalysisReport is the complete result of one keyword analysis.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type AnalysisReport struct {
	ID             uuid.UUID           `json:"id"`
	Keyword        string              `json:"keyword"`
	LookbackMonths int                 `json:"lookback_months"`
	MaxResults     int                 `json:"max_results"`
	GeneratedAt    time.Time           `json:"generated_at"`
	Videos         []ScoredVideoRecord `json:"videos"`
	Summary        Summary             `json:"summary"`
	Temporal       TemporalReport      `json:"temporal"`
	TitleKeywords  []KeywordCount      `json:"title_keywords"`
	Sentiment      SentimentReport     `json:"sentiment"`
	Quota          QuotaInfo           `json:"quota"`
}

// ReportListItem is the lightweight listing row of a stored report.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ReportListItem struct {
	ID             uuid.UUID `json:"id"`
	Keyword        string    `json:"keyword"`
	LookbackMonths int       `json:"lookback_months"`
	VideoCount     int       `json:"video_count"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
