package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

func titled(titles ...string) []models.ScoredVideoRecord {
	out := make([]models.ScoredVideoRecord, len(titles))
	for i, title := range titles {
		out[i] = models.ScoredVideoRecord{VideoRecord: models.VideoRecord{Title: title}}
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "lowercases and drops stop words", input: "How to Learn Go in 2024", want: []string{"learn", "go"}},
		{name: "splits on punctuation", input: "Go vs. Rust | benchmark!!", want: []string{"go", "vs", "rust", "benchmark"}},
		{name: "drops single runes", input: "a b c de", want: []string{"de"}},
		{name: "keeps hangul", input: "캠핑 브이로그 #캠핑", want: []string{"캠핑", "브이로그", "캠핑"}},
		{name: "empty", input: "   ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleKeywords_CountsAndOrders(t *testing.T) {
	records := titled(
		"Golang tutorial for beginners",
		"Advanced golang concurrency",
		"Concurrency patterns in golang",
	)

	got := TitleKeywords(records, 3)
	require.Len(t, got, 3)
	assert.Equal(t, models.KeywordCount{Term: "golang", Count: 3}, got[0])
	assert.Equal(t, models.KeywordCount{Term: "concurrency", Count: 2}, got[1])
	assert.Equal(t, models.KeywordCount{Term: "tutorial", Count: 1}, got[2])
}

func TestTitleKeywords_Empty(t *testing.T) {
	got := TitleKeywords(nil, 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSummarize(t *testing.T) {
	records := []models.ScoredVideoRecord{
		{VideoRecord: models.VideoRecord{Views: 1000, Likes: 10, Comments: 2}},
		{VideoRecord: models.VideoRecord{Views: 3000, Likes: 30, Comments: 6}},
	}

	s := Summarize(records)
	assert.Equal(t, 2, s.TotalVideos)
	assert.Equal(t, int64(4000), s.TotalViews)
	assert.Equal(t, 20.0, s.MeanLikes)
	assert.Equal(t, 4.0, s.MeanComments)

	assert.Equal(t, models.Summary{}, Summarize(nil))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, models.SentimentPositive, Label(0.2))
	assert.Equal(t, models.SentimentPositive, Label(0.9))
	assert.Equal(t, models.SentimentNeutral, Label(0.19))
	assert.Equal(t, models.SentimentNeutral, Label(-0.19))
	assert.Equal(t, models.SentimentNegative, Label(-0.2))
}

func TestSentimentAnalyzer_Analyze(t *testing.T) {
	a := NewSentimentAnalyzer()

	records := []models.ScoredVideoRecord{
		{VideoRecord: models.VideoRecord{ID: "happy", CommentTexts: []string{
			"This is great, I love it!",
			"Amazing video, thank you so much",
		}}},
		{VideoRecord: models.VideoRecord{ID: "angry", CommentTexts: []string{
			"This is terrible and awful. I hate it.",
		}}},
		{VideoRecord: models.VideoRecord{ID: "silent", CommentTexts: []string{}}},
	}

	report := a.Analyze(records)
	require.Len(t, report.Videos, 3)

	assert.Equal(t, "happy", report.Videos[0].VideoID)
	assert.Equal(t, 2, report.Videos[0].CommentCount)
	assert.Equal(t, models.SentimentPositive, report.Videos[0].Label)
	assert.Greater(t, report.Videos[0].Compound, 0.2)

	assert.Equal(t, models.SentimentNegative, report.Videos[1].Label)
	assert.Less(t, report.Videos[1].Compound, -0.2)

	assert.Equal(t, models.SentimentNeutral, report.Videos[2].Label)
	assert.Equal(t, 0.0, report.Videos[2].Compound)

	expected := (report.Videos[0].Compound + report.Videos[1].Compound) / 2
	assert.InDelta(t, expected, report.MeanCompound, 1e-12)
}

func TestSentimentAnalyzer_NoComments(t *testing.T) {
	report := NewSentimentAnalyzer().Analyze(nil)
	assert.NotNil(t, report.Videos)
	assert.Equal(t, models.SentimentNeutral, report.Label)
	assert.Equal(t, 0.0, report.MeanCompound)
}

func TestSentimentAnalyzer_IgnoresLinks(t *testing.T) {
	a := NewSentimentAnalyzer()
	assert.Equal(t, 0.0, a.Compound("https://example.com/watch?v=abc"))
	assert.Equal(t, a.Compound("love it"), a.Compound("love it https://example.com"))
}
