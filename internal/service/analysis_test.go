package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/db/repository"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/cache"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/collector"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/quota"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/scoring"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeSource serves a fixed result set and counts calls.
type fakeSource struct {
	mu       sync.Mutex
	hits     []models.SearchHit
	stats    map[string]models.VideoStatistics
	comments map[string][]string
	searches int
}

func (f *fakeSource) Search(ctx context.Context, query models.SearchQuery) (models.SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	hits := f.hits
	if len(hits) > query.MaxResults {
		hits = hits[:query.MaxResults]
	}
	return models.SearchPage{Hits: hits}, nil
}

func (f *fakeSource) Statistics(ctx context.Context, videoIDs []string) (map[string]models.VideoStatistics, error) {
	return f.stats, nil
}

func (f *fakeSource) Comments(ctx context.Context, videoID string, maxResults int) ([]string, error) {
	return f.comments[videoID], nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		hits: []models.SearchHit{
			{ID: "v1", Title: "Golang concurrency explained", PublishedAt: "2024-05-30T03:00:00Z"},
			{ID: "v2", Title: "Golang generics tutorial", PublishedAt: "2024-05-01T12:00:00Z"},
			{ID: "v3", Title: "Rust vs Golang", PublishedAt: "2024-04-20T23:30:00Z"},
		},
		stats: map[string]models.VideoStatistics{
			"v1": {ViewCount: "20000", LikeCount: "900", CommentCount: "80"},
			"v2": {ViewCount: "15000", LikeCount: "300", CommentCount: "40"},
			"v3": {ViewCount: "8000", LikeCount: "100", CommentCount: "10"},
		},
		comments: map[string][]string{
			"v1": {"Great explanation, thank you!"},
			"v2": {"I love this"},
		},
	}
}

type stubCollector struct {
	records []models.VideoRecord
	err     error
	calls   int
}

func (s *stubCollector) Collect(ctx context.Context, keyword string, lookbackMonths, maxResults int) ([]models.VideoRecord, error) {
	s.calls++
	return s.records, s.err
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveReport(ctx context.Context, report *models.AnalysisReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockStore) GetReport(ctx context.Context, id uuid.UUID) (*models.AnalysisReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisReport), args.Error(1)
}

func (m *mockStore) ListReports(ctx context.Context, filters *repository.ReportFilters) ([]*models.ReportListItem, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.ReportListItem), args.Int(1), args.Error(2)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) PublishReport(ctx context.Context, report *models.AnalysisReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func newPipeline(source collector.Source, ledger *quota.Ledger, opts Options) *AnalysisService {
	now := func() time.Time { return testNow }
	c := collector.New(source, ledger, collector.Options{Now: now})
	opts.Now = now
	return NewAnalysisService(c, scoring.NewScorer(now), cache.New(nil, nil), ledger, opts)
}

func TestCollectAndScore_SecondCallConsumesNoQuota(t *testing.T) {
	source := newFakeSource()
	ledger := quota.NewLedger(quota.DefaultDailyLimit, nil)
	svc := newPipeline(source, ledger, Options{})
	ctx := context.Background()

	first, err := svc.CollectAndScore(ctx, "golang", 3, 50)
	require.NoError(t, err)
	require.Len(t, first, 3)
	used := ledger.Used()
	assert.Equal(t, quota.SearchCost+3+3, used)

	second, err := svc.CollectAndScore(ctx, "golang", 3, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, used, ledger.Used())
	assert.Equal(t, 1, source.searches)
}

func TestCollectAndScore_EmptyResult(t *testing.T) {
	source := &fakeSource{}
	ledger := quota.NewLedger(quota.DefaultDailyLimit, nil)
	svc := newPipeline(source, ledger, Options{})

	scored, err := svc.CollectAndScore(context.Background(), "nothing", 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, scored)
	assert.Empty(t, scored)

	report := svc.AggregateTemporal(scored)
	assert.Len(t, report.Weekdays, 7)
	assert.Len(t, report.Hours, 24)
	for _, b := range report.Weekdays {
		assert.Zero(t, b.VideoCount)
	}
	for _, b := range report.Hours {
		assert.Zero(t, b.VideoCount)
	}
}

func TestCollectAndScore_ValidationError(t *testing.T) {
	stub := &stubCollector{}
	ledger := quota.NewLedger(quota.DefaultDailyLimit, nil)
	svc := NewAnalysisService(stub, scoring.NewScorer(nil), cache.New(nil, nil), ledger, Options{})

	_, err := svc.CollectAndScore(context.Background(), "", 3, 50)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 0, stub.calls)
}

func TestCollectAndScore_AcceptsCountsBeyondRequestBounds(t *testing.T) {
	stub := &stubCollector{records: []models.VideoRecord{{ID: "v1", Views: 5000, Likes: 50}}}
	ledger := quota.NewLedger(quota.DefaultDailyLimit, nil)
	svc := NewAnalysisService(stub, scoring.NewScorer(nil), cache.New(nil, nil), ledger, Options{})

	scored, err := svc.CollectAndScore(context.Background(), "golang", 36, 250)
	require.NoError(t, err)
	assert.Len(t, scored, 1)
	assert.Equal(t, 1, stub.calls)

	_, err = svc.Analyze(context.Background(), models.AnalysisRequest{Keyword: "golang", LookbackMonths: 36, MaxResults: 250})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 1, stub.calls)
}

func TestCollectAndScore_FailureIsNotCached(t *testing.T) {
	stub := &stubCollector{err: fmt.Errorf("search: %w", quota.ErrQuotaExceeded)}
	ledger := quota.NewLedger(quota.DefaultDailyLimit, nil)
	svc := NewAnalysisService(stub, scoring.NewScorer(nil), cache.New(nil, nil), ledger, Options{})
	ctx := context.Background()

	_, err := svc.CollectAndScore(ctx, "golang", 3, 50)
	assert.ErrorIs(t, err, quota.ErrQuotaExceeded)

	stub.err = nil
	stub.records = []models.VideoRecord{{ID: "v1", Views: 5000, Likes: 50}}
	scored, err := svc.CollectAndScore(ctx, "golang", 3, 50)
	require.NoError(t, err)
	assert.Len(t, scored, 1)
	assert.Equal(t, 2, stub.calls)
}

func TestAnalyze_BuildsReport(t *testing.T) {
	source := newFakeSource()
	ledger := quota.NewLedger(quota.DefaultDailyLimit, nil)
	store := new(mockStore)
	sink := new(mockSink)
	store.On("SaveReport", mock.Anything, mock.AnythingOfType("*models.AnalysisReport")).Return(nil).Once()
	sink.On("PublishReport", mock.Anything, mock.AnythingOfType("*models.AnalysisReport")).Return(nil).Once()

	svc := newPipeline(source, ledger, Options{Store: store, Sink: sink})

	report, err := svc.Analyze(context.Background(), models.AnalysisRequest{Keyword: " golang "})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.Equal(t, "golang", report.Keyword)
	assert.Equal(t, 12, report.LookbackMonths)
	assert.Equal(t, 50, report.MaxResults)
	assert.Equal(t, testNow, report.GeneratedAt)

	require.Len(t, report.Videos, 3)
	assert.Equal(t, "v1", report.Videos[0].ID)
	assert.True(t, report.Videos[0].IsRecent)

	assert.Equal(t, 3, report.Summary.TotalVideos)
	assert.Equal(t, int64(43000), report.Summary.TotalViews)

	assert.Equal(t, "Asia/Seoul", report.Temporal.Timezone)
	require.NotEmpty(t, report.TitleKeywords)
	assert.Equal(t, models.KeywordCount{Term: "golang", Count: 3}, report.TitleKeywords[0])

	require.Len(t, report.Sentiment.Videos, 3)
	assert.Equal(t, models.SentimentPositive, report.Sentiment.Label)

	assert.Equal(t, ledger.Info(), report.Quota)

	store.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestAnalyze_DeliveryFailuresAreLogged(t *testing.T) {
	store := new(mockStore)
	sink := new(mockSink)
	store.On("SaveReport", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	sink.On("PublishReport", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	svc := newPipeline(newFakeSource(), quota.NewLedger(quota.DefaultDailyLimit, nil), Options{Store: store, Sink: sink})

	report, err := svc.Analyze(context.Background(), models.AnalysisRequest{Keyword: "golang", LookbackMonths: 3, MaxResults: 10})
	require.NoError(t, err)
	assert.NotNil(t, report)
	store.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     models.AnalysisRequest
		err     error
		check   func(*testing.T, error)
		collect bool
	}{
		{
			name: "invalid request",
			req:  models.AnalysisRequest{Keyword: "golang", LookbackMonths: 99},
			check: func(t *testing.T, err error) {
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
			},
		},
		{
			name:    "quota exceeded passes through",
			req:     models.AnalysisRequest{Keyword: "golang"},
			err:     fmt.Errorf("search: %w", quota.ErrQuotaExceeded),
			collect: true,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, quota.ErrQuotaExceeded)
			},
		},
		{
			name:    "remote failure passes through",
			req:     models.AnalysisRequest{Keyword: "golang"},
			err:     &collector.RemoteCallError{Operation: "search", Err: errors.New("503")},
			collect: true,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, collector.ErrRemoteCall)
			},
		},
		{
			name:    "unexpected failure is wrapped",
			req:     models.AnalysisRequest{Keyword: "golang"},
			err:     errors.New("boom"),
			collect: true,
			check: func(t *testing.T, err error) {
				var processingErr *ProcessingError
				require.ErrorAs(t, err, &processingErr)
				assert.Equal(t, "failed to collect videos: boom", err.Error())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCollector{err: tt.err}
			svc := NewAnalysisService(stub, scoring.NewScorer(nil), cache.New(nil, nil), quota.NewLedger(quota.DefaultDailyLimit, nil), Options{})

			report, err := svc.Analyze(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, report)
			tt.check(t, err)
			if tt.collect {
				assert.Equal(t, 1, stub.calls)
			} else {
				assert.Equal(t, 0, stub.calls)
			}
		})
	}
}

func TestReports_StorageDisabled(t *testing.T) {
	svc := NewAnalysisService(&stubCollector{}, scoring.NewScorer(nil), cache.New(nil, nil), quota.NewLedger(100, nil), Options{})

	assert.False(t, svc.StorageEnabled())
	_, err := svc.GetReport(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, _, err = svc.ListReports(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestReports_DelegateToStore(t *testing.T) {
	store := new(mockStore)
	id := uuid.New()
	stored := &models.AnalysisReport{ID: id, Keyword: "golang"}
	filters := &repository.ReportFilters{Keyword: "golang"}
	store.On("GetReport", mock.Anything, id).Return(stored, nil).Once()
	store.On("ListReports", mock.Anything, filters).Return([]*models.ReportListItem{{ID: id}}, 1, nil).Once()

	svc := NewAnalysisService(&stubCollector{}, scoring.NewScorer(nil), cache.New(nil, nil), quota.NewLedger(100, nil), Options{Store: store})

	got, err := svc.GetReport(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	items, total, err := svc.ListReports(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)
	store.AssertExpectations(t)
}

func TestProcessingError(t *testing.T) {
	cause := &ValidationError{Message: "cause"}
	err := &ProcessingError{Message: "test error", Cause: cause}

	assert.Equal(t, "test error: cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "test error: <nil>", (&ProcessingError{Message: "test error"}).Error())
}
