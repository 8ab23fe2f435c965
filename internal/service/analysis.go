// Package service orchestrates keyword analysis: cached collection and scoring,
// temporal aggregation, insight extraction and report delivery.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/db/repository"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/metrics"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/cache"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/collector"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/insight"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/quota"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/scoring"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/temporal"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/validation"
)

// Collector gathers raw video records for a keyword.
type Collector interface {
	Collect(ctx context.Context, keyword string, lookbackMonths, maxResults int) ([]models.VideoRecord, error)
}

// ReportStore persists finished reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *models.AnalysisReport) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.AnalysisReport, error)
	ListReports(ctx context.Context, filters *repository.ReportFilters) ([]*models.ReportListItem, int, error)
}

// ReportSink receives finished reports for downstream consumers.
type ReportSink interface {
	PublishReport(ctx context.Context, report *models.AnalysisReport) error
}

// Options carries the optional collaborators of AnalysisService.
type Options struct {
	Store        ReportStore
	Sink         ReportSink
	Validator    *validation.Validator
	Sentiment    *insight.SentimentAnalyzer
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
	Now          func() time.Time
	KeywordLimit int
}

// AnalysisService runs the analysis pipeline. The ledger and cache it is given define
// the quota and memoization scope; share them to share budget and results.
type AnalysisService struct {
	collector    Collector
	scorer       *scoring.Scorer
	cache        *cache.CollectionCache
	ledger       *quota.Ledger
	validator    *validation.Validator
	sentiment    *insight.SentimentAnalyzer
	store        ReportStore
	sink         ReportSink
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
	keywordLimit int
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(c Collector, scorer *scoring.Scorer, resultCache *cache.CollectionCache, ledger *quota.Ledger, opts Options) *AnalysisService {
	if opts.Validator == nil {
		opts.Validator = validation.New(validation.MaxLookbackMonths, validation.MaxResultsLimit)
	}
	if opts.Sentiment == nil {
		opts.Sentiment = insight.NewSentimentAnalyzer()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.KeywordLimit <= 0 {
		opts.KeywordLimit = insight.DefaultKeywordLimit
	}

	return &AnalysisService{
		collector:    c,
		scorer:       scorer,
		cache:        resultCache,
		ledger:       ledger,
		validator:    opts.Validator,
		sentiment:    opts.Sentiment,
		store:        opts.Store,
		sink:         opts.Sink,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		now:          opts.Now,
		keywordLimit: opts.KeywordLimit,
	}
}

// CollectAndScore returns the ranked videos for keyword and lookbackMonths. Results are
// cached per (keyword, lookbackMonths) once a collection succeeds, so repeated calls
// consume no quota. maxResults only affects the first, uncached call. Only positivity is
// checked here; request bounds are applied by Analyze.
func (s *AnalysisService) CollectAndScore(ctx context.Context, keyword string, lookbackMonths, maxResults int) ([]models.ScoredVideoRecord, error) {
	if err := validation.ValidateCollection(keyword, lookbackMonths, maxResults); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	key := cache.Key{Keyword: keyword, LookbackMonths: lookbackMonths}
	return s.cache.GetOrCompute(ctx, key, func(ctx context.Context) ([]models.ScoredVideoRecord, error) {
		start := time.Now()

		records, err := s.collector.Collect(ctx, keyword, lookbackMonths, maxResults)
		if err != nil {
			s.logger.Error("Collection failed",
				zap.String("keyword", keyword),
				zap.Int("lookbackMonths", lookbackMonths),
				zap.Int("partialRecords", len(records)),
				zap.Error(err),
			)
			return nil, err
		}

		scored := s.scorer.Score(records)
		s.metrics.ObserveCollection(time.Since(start))

		s.logger.Info("Collected and scored videos",
			zap.String("keyword", keyword),
			zap.Int("collected", len(records)),
			zap.Int("ranked", len(scored)),
			zap.Duration("duration", time.Since(start)),
		)
		return scored, nil
	})
}

// AggregateTemporal buckets ranked videos by weekday, hour and day in Asia/Seoul.
func (s *AnalysisService) AggregateTemporal(records []models.ScoredVideoRecord) models.TemporalReport {
	return temporal.Aggregate(records)
}

// Analyze validates req, runs the pipeline and assembles a full report. Storing and
// publishing the report are best effort and never fail the analysis.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	if err := s.validator.Normalize(&req); err != nil {
		s.logger.Warn("Analysis request rejected",
			zap.String("keyword", req.Keyword),
			zap.Error(err),
		)
		return nil, &ValidationError{Message: err.Error()}
	}

	videos, err := s.CollectAndScore(ctx, req.Keyword, req.LookbackMonths, req.MaxResults)
	if err != nil {
		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr),
			errors.Is(err, quota.ErrQuotaExceeded),
			errors.Is(err, collector.ErrRemoteCall),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, &ProcessingError{Message: "failed to collect videos", Cause: err}
		}
	}

	report := &models.AnalysisReport{
		ID:             uuid.New(),
		Keyword:        req.Keyword,
		LookbackMonths: req.LookbackMonths,
		MaxResults:     req.MaxResults,
		GeneratedAt:    s.now().UTC(),
		Videos:         videos,
		Summary:        insight.Summarize(videos),
		Temporal:       temporal.Aggregate(videos),
		TitleKeywords:  insight.TitleKeywords(videos, s.keywordLimit),
		Sentiment:      s.sentiment.Analyze(videos),
		Quota:          s.ledger.Info(),
	}

	s.deliver(ctx, report)

	s.logger.Info("Analysis completed",
		zap.String("reportId", report.ID.String()),
		zap.String("keyword", report.Keyword),
		zap.Int("videos", len(report.Videos)),
		zap.Int("quotaUsed", report.Quota.Used),
	)

	return report, nil
}

func (s *AnalysisService) deliver(ctx context.Context, report *models.AnalysisReport) {
	if s.store != nil {
		if err := s.store.SaveReport(ctx, report); err != nil {
			s.logger.Error("Failed to store report",
				zap.String("reportId", report.ID.String()),
				zap.Error(err),
			)
		}
	}

	if s.sink != nil {
		if err := s.sink.PublishReport(ctx, report); err != nil {
			s.logger.Error("Failed to publish report",
				zap.String("reportId", report.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// QuotaInfo returns the current quota snapshot.
func (s *AnalysisService) QuotaInfo() models.QuotaInfo {
	return s.ledger.Info()
}

// GetReport loads a stored report.
func (s *AnalysisService) GetReport(ctx context.Context, id uuid.UUID) (*models.AnalysisReport, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.GetReport(ctx, id)
}

// ListReports lists stored reports, newest first.
func (s *AnalysisService) ListReports(ctx context.Context, filters *repository.ReportFilters) ([]*models.ReportListItem, int, error) {
	if s.store == nil {
		return nil, 0, ErrStorageDisabled
	}
	return s.store.ListReports(ctx, filters)
}

// StorageEnabled reports whether a report store is configured.
func (s *AnalysisService) StorageEnabled() bool {
	return s.store != nil
}
