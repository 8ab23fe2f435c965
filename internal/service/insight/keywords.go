// Package insight derives presentation-level aggregates from ranked videos: headline
// summary figures, title keyword frequencies and comment sentiment.
package insight

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

// DefaultKeywordLimit is the number of title terms returned by TitleKeywords.
const DefaultKeywordLimit = 30

const minTermLength = 2

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "how": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "my": {}, "of": {}, "on": {}, "or": {}, "so": {}, "that": {},
	"the": {}, "this": {}, "to": {}, "was": {}, "we": {}, "what": {}, "when": {}, "why": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// Tokenize lower-cases text and splits it on anything that is not a letter or digit.
// Terms shorter than two runes, pure numbers and stop words are dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	terms := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTermLength {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if strings.IndexFunc(f, unicode.IsLetter) < 0 {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// TitleKeywords counts title terms across records and returns the limit most frequent.
// Equal counts keep the order in which terms first appeared.
func TitleKeywords(records []models.ScoredVideoRecord, limit int) []models.KeywordCount {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range records {
		for _, term := range Tokenize(r.Title) {
			if _, seen := counts[term]; !seen {
				order = append(order, term)
			}
			counts[term]++
		}
	}

	result := make([]models.KeywordCount, 0, len(order))
	for _, term := range order {
		result = append(result, models.KeywordCount{Term: term, Count: counts[term]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Summarize computes the headline figures of a ranked set.
func Summarize(records []models.ScoredVideoRecord) models.Summary {
	s := models.Summary{TotalVideos: len(records)}
	if len(records) == 0 {
		return s
	}

	var likes, comments int64
	for _, r := range records {
		s.TotalViews += r.Views
		likes += r.Likes
		comments += r.Comments
	}
	n := float64(len(records))
	s.MeanLikes = float64(likes) / n
	s.MeanComments = float64(comments) / n
	return s
}
