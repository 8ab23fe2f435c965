package models

import "time"

// SearchQuery describes one page of a keyword search.
type SearchQuery struct {
	Keyword        string
	PublishedAfter time.Time
	MaxResults     int
	PageToken      string
}

// SearchHit is the subset of a search result the collector needs.
type SearchHit struct {
	ID          string
	Title       string
	Description string
	PublishedAt string // RFC 3339, as returned by the API
}

// SearchPage is one page of search results.
type SearchPage struct {
	Hits          []SearchHit
	NextPageToken string
}

// VideoStatistics carries the raw statistics and content details of one video.
// Counts are kept as the API's decimal strings; empty means absent.
type VideoStatistics struct {
	ViewCount    string
	LikeCount    string
	CommentCount string
	Duration     string
	Tags         []string
}
