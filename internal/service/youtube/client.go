package youtube

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

const (
	// MaxPageSize is the largest page search.list and videos.list accept.
	MaxPageSize = 50

	// MaxCommentPageSize is the largest page commentThreads.list accepts.
	MaxCommentPageSize = 100
)

// Client wraps the YouTube Data API v3 client
type Client struct {
	service *youtube.Service
}

// NewClient creates a new YouTube API client. Extra options are appended after the
// API key, so an endpoint or HTTP client override takes precedence.
func NewClient(apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	service, err := youtube.NewService(context.Background(), clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// Search runs one search.list page restricted to videos.
func (c *Client) Search(ctx context.Context, query models.SearchQuery) (models.SearchPage, error) {
	maxResults := query.MaxResults
	if maxResults <= 0 || maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}

	call := c.service.Search.List([]string{"snippet"}).
		Q(query.Keyword).
		Type("video").
		MaxResults(int64(maxResults)).
		Context(ctx)

	if !query.PublishedAfter.IsZero() {
		call = call.PublishedAfter(query.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if query.PageToken != "" {
		call = call.PageToken(query.PageToken)
	}

	response, err := call.Do()
	if err != nil {
		return models.SearchPage{}, fmt.Errorf("failed to search videos: %w", err)
	}

	page := models.SearchPage{
		Hits:          make([]models.SearchHit, 0, len(response.Items)),
		NextPageToken: response.NextPageToken,
	}

	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}

		hit := models.SearchHit{ID: item.Id.VideoId}
		if item.Snippet != nil {
			hit.Title = item.Snippet.Title
			hit.Description = item.Snippet.Description
			hit.PublishedAt = item.Snippet.PublishedAt
		}
		page.Hits = append(page.Hits, hit)
	}

	return page, nil
}

// Statistics fetches statistics and content details for up to 50 videos per call.
// Larger id lists are split into batches.
func (c *Client) Statistics(ctx context.Context, videoIDs []string) (map[string]models.VideoStatistics, error) {
	result := make(map[string]models.VideoStatistics, len(videoIDs))
	if len(videoIDs) == 0 {
		return result, nil
	}

	for _, batch := range BatchVideoIDs(videoIDs, MaxPageSize) {
		response, err := c.service.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
			Id(batch...).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch videos from YouTube API: %w", err)
		}

		for _, item := range response.Items {
			result[item.Id] = mapVideoStatistics(item)
		}
	}

	return result, nil
}

// Comments returns up to maxResults top-level comment texts for a video.
func (c *Client) Comments(ctx context.Context, videoID string, maxResults int) ([]string, error) {
	if maxResults <= 0 || maxResults > MaxCommentPageSize {
		maxResults = MaxCommentPageSize
	}

	response, err := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(int64(maxResults)).
		Order("relevance").
		TextFormat("plainText").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments for %s: %w", videoID, err)
	}

	texts := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		texts = append(texts, item.Snippet.TopLevelComment.Snippet.TextDisplay)
	}

	return texts, nil
}

// mapVideoStatistics converts a videos.list item to our statistics model
func mapVideoStatistics(video *youtube.Video) models.VideoStatistics {
	stats := models.VideoStatistics{Tags: []string{}}

	if video.Statistics != nil {
		stats.ViewCount = strconv.FormatUint(video.Statistics.ViewCount, 10)
		stats.LikeCount = strconv.FormatUint(video.Statistics.LikeCount, 10)
		stats.CommentCount = strconv.FormatUint(video.Statistics.CommentCount, 10)
	}

	if video.ContentDetails != nil {
		stats.Duration = video.ContentDetails.Duration
	}

	if video.Snippet != nil && video.Snippet.Tags != nil {
		stats.Tags = video.Snippet.Tags
	}

	return stats
}

// BatchVideoIDs splits a large list of video IDs into batches of 50
func BatchVideoIDs(videoIDs []string, batchSize int) [][]string {
	if batchSize <= 0 || batchSize > MaxPageSize {
		batchSize = MaxPageSize
	}

	var batches [][]string
	for i := 0; i < len(videoIDs); i += batchSize {
		end := i + batchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		batches = append(batches, videoIDs[i:end])
	}

	return batches
}
