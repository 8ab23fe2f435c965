// Package collector gathers keyword search results, statistics and comments from the
// YouTube Data API under a quota budget.
package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/metrics"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/service/quota"
)

const (
	// MinViews is the view count below which a video is discarded. Ratios computed
	// on smaller audiences are mostly noise.
	MinViews = 1000

	// PageSizeCap is the largest number of results requested per search page.
	PageSizeCap = 50

	// DefaultCommentsPerVideo caps the comment texts fetched per video.
	DefaultCommentsPerVideo = 20

	// DefaultCallDelay is the minimum spacing between search and statistics calls.
	DefaultCallDelay = 500 * time.Millisecond

	// daysPerMonth approximates a month as a fixed 30 days.
	daysPerMonth = 30
)

var (
	// ErrRemoteCall matches every *RemoteCallError.
	ErrRemoteCall = errors.New("remote call failed")

	// ErrInvalidInput is returned for empty keywords or non-positive limits.
	ErrInvalidInput = errors.New("invalid collection input")
)

// RemoteCallError reports a failed search or statistics call.
type RemoteCallError struct {
	Operation string
	Err       error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRemoteCall.
func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}

// Source is the remote video API.
type Source interface {
	Search(ctx context.Context, query models.SearchQuery) (models.SearchPage, error)
	Statistics(ctx context.Context, videoIDs []string) (map[string]models.VideoStatistics, error)
	Comments(ctx context.Context, videoID string, maxResults int) ([]string, error)
}

// Reserver debits quota before a remote call.
type Reserver interface {
	Reserve(cost int, operation string) error
}

// Options tunes a Collector. Zero values select the defaults.
type Options struct {
	CallDelay        time.Duration
	CommentsPerVideo int
	Now              func() time.Time
	Logger           *zap.Logger
	Metrics          *metrics.Metrics
}

// Collector runs the search → statistics → comments sequence for one keyword.
type Collector struct {
	source           Source
	quota            Reserver
	limiter          *rate.Limiter
	commentsPerVideo int
	now              func() time.Time
	logger           *zap.Logger
	metrics          *metrics.Metrics
}

// New creates a Collector.
func New(source Source, reserver Reserver, opts Options) *Collector {
	if opts.CommentsPerVideo <= 0 {
		opts.CommentsPerVideo = DefaultCommentsPerVideo
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	limit := rate.Inf
	if opts.CallDelay > 0 {
		limit = rate.Every(opts.CallDelay)
	}

	return &Collector{
		source:           source,
		quota:            reserver,
		limiter:          rate.NewLimiter(limit, 1),
		commentsPerVideo: opts.CommentsPerVideo,
		now:              opts.Now,
		logger:           opts.Logger,
		metrics:          opts.Metrics,
	}
}

// commentResult is the outcome of one per-video comment fetch.
type commentResult struct {
	texts []string
	err   error
}

// Collect gathers up to maxResults search hits published within the lookback window,
// joins statistics and comments, and drops videos under MinViews.
//
// Quota exhaustion returns quota.ErrQuotaExceeded and no records. A failed search or
// statistics call returns a *RemoteCallError together with whatever earlier pages
// produced.
func (c *Collector) Collect(ctx context.Context, keyword string, lookbackMonths, maxResults int) ([]models.VideoRecord, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrInvalidInput)
	}
	if lookbackMonths <= 0 {
		return nil, fmt.Errorf("%w: lookback months must be positive, got %d", ErrInvalidInput, lookbackMonths)
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: max results must be positive, got %d", ErrInvalidInput, maxResults)
	}

	publishedAfter := c.now().Add(-time.Duration(daysPerMonth*lookbackMonths) * 24 * time.Hour)

	records := make([]models.VideoRecord, 0, maxResults)
	seen := make(map[string]struct{}, maxResults)
	hits := 0
	pageToken := ""

	for hits < maxResults {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageSize := maxResults - hits
		if pageSize > PageSizeCap {
			pageSize = PageSizeCap
		}

		page, err := c.search(ctx, models.SearchQuery{
			Keyword:        keyword,
			PublishedAfter: publishedAfter,
			MaxResults:     pageSize,
			PageToken:      pageToken,
		})
		if err != nil {
			return c.partial(records, err)
		}

		batch := make([]models.VideoRecord, 0, len(page.Hits))
		for _, hit := range page.Hits {
			if _, dup := seen[hit.ID]; dup {
				continue
			}
			seen[hit.ID] = struct{}{}
			batch = append(batch, c.partialRecord(hit))
		}
		hits += len(page.Hits)

		if len(batch) > 0 {
			if err := c.joinStatistics(ctx, batch); err != nil {
				return c.partial(records, err)
			}
			if err := c.attachComments(ctx, batch); err != nil {
				return c.partial(records, err)
			}
			records = append(records, batch...)
		}

		if page.NextPageToken == "" || len(page.Hits) == 0 {
			break
		}
		pageToken = page.NextPageToken
	}

	filtered := FilterByViews(records, MinViews)

	c.logger.Info("Collection completed",
		zap.String("keyword", keyword),
		zap.Int("hits", hits),
		zap.Int("records", len(records)),
		zap.Int("kept", len(filtered)),
	)

	return filtered, nil
}

// partial decides what survives a mid-collection failure. Only remote call failures
// keep the records from earlier pages.
func (c *Collector) partial(records []models.VideoRecord, err error) ([]models.VideoRecord, error) {
	if errors.Is(err, ErrRemoteCall) {
		return FilterByViews(records, MinViews), err
	}
	return nil, err
}

func (c *Collector) search(ctx context.Context, query models.SearchQuery) (models.SearchPage, error) {
	if err := c.quota.Reserve(quota.SearchCost, "search"); err != nil {
		return models.SearchPage{}, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return models.SearchPage{}, err
	}

	page, err := c.source.Search(ctx, query)
	c.metrics.RemoteCall("search", err)
	if err != nil {
		c.logger.Error("Search call failed",
			zap.String("keyword", query.Keyword),
			zap.String("pageToken", query.PageToken),
			zap.Error(err),
		)
		return models.SearchPage{}, &RemoteCallError{Operation: "search", Err: err}
	}

	return page, nil
}

func (c *Collector) partialRecord(hit models.SearchHit) models.VideoRecord {
	publishedAt, err := time.Parse(time.RFC3339, hit.PublishedAt)
	if err != nil {
		c.logger.Warn("Unparseable publish timestamp",
			zap.String("videoId", hit.ID),
			zap.String("publishedAt", hit.PublishedAt),
			zap.Error(err),
		)
		publishedAt = time.Time{}
	}

	return models.VideoRecord{
		ID:           hit.ID,
		Title:        hit.Title,
		Description:  hit.Description,
		PublishedAt:  publishedAt.UTC(),
		CommentTexts: []string{},
		Tags:         []string{},
	}
}

// joinStatistics fills counts, duration and tags in place from one batch call.
func (c *Collector) joinStatistics(ctx context.Context, batch []models.VideoRecord) error {
	ids := make([]string, len(batch))
	for i, r := range batch {
		ids[i] = r.ID
	}

	if err := c.quota.Reserve(quota.StatisticsCostPerVideo*len(ids), "statistics"); err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	stats, err := c.source.Statistics(ctx, ids)
	c.metrics.RemoteCall("statistics", err)
	if err != nil {
		c.logger.Error("Statistics call failed",
			zap.Int("videos", len(ids)),
			zap.Error(err),
		)
		return &RemoteCallError{Operation: "statistics", Err: err}
	}

	for i := range batch {
		st, ok := stats[batch[i].ID]
		if !ok {
			continue
		}
		batch[i].Views = parseCount(st.ViewCount)
		batch[i].Likes = parseCount(st.LikeCount)
		batch[i].Comments = parseCount(st.CommentCount)
		batch[i].Duration = st.Duration
		if st.Tags != nil {
			batch[i].Tags = st.Tags
		}
	}

	return nil
}

// attachComments fetches comments for every record. Only quota and context errors
// abort; a failing video keeps an empty comment list.
func (c *Collector) attachComments(ctx context.Context, batch []models.VideoRecord) error {
	for i := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.quota.Reserve(quota.CommentsCost, "comments"); err != nil {
			return err
		}

		result := c.fetchComments(ctx, batch[i].ID)
		if result.err != nil {
			c.logger.Warn("Comment fetch failed, continuing without comments",
				zap.String("videoId", batch[i].ID),
				zap.Error(result.err),
			)
		}
		batch[i].CommentTexts = result.texts
	}

	return nil
}

func (c *Collector) fetchComments(ctx context.Context, videoID string) commentResult {
	texts, err := c.source.Comments(ctx, videoID, c.commentsPerVideo)
	c.metrics.RemoteCall("comments", err)
	if err != nil {
		return commentResult{texts: []string{}, err: err}
	}
	if texts == nil {
		texts = []string{}
	}
	if len(texts) > c.commentsPerVideo {
		texts = texts[:c.commentsPerVideo]
	}
	return commentResult{texts: texts}
}

// FilterByViews keeps records with at least minViews views, preserving order.
func FilterByViews(records []models.VideoRecord, minViews int64) []models.VideoRecord {
	filtered := make([]models.VideoRecord, 0, len(records))
	for _, r := range records {
		if r.Views >= minViews {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// parseCount reads an API count string. Absent, negative or non-numeric values are zero.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
