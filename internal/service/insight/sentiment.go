package insight

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

// Compound scores at or beyond these bounds are labelled positive or negative.
const (
	PositiveThreshold = 0.20
	NegativeThreshold = -0.20
)

var urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

// SentimentAnalyzer scores comment texts with VADER.
type SentimentAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewSentimentAnalyzer loads the VADER lexicon.
func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns the VADER compound score of text with links removed.
func (a *SentimentAnalyzer) Compound(text string) float64 {
	clean := strings.Join(strings.Fields(urlPattern.ReplaceAllString(text, "")), " ")
	if clean == "" {
		return 0
	}
	return a.analyzer.PolarityScores(clean).Compound
}

// Analyze averages the comment sentiment of each video and of the whole set. Videos
// without comments are reported with a neutral zero score and excluded from the
// overall mean.
func (a *SentimentAnalyzer) Analyze(records []models.ScoredVideoRecord) models.SentimentReport {
	report := models.SentimentReport{
		Videos: make([]models.VideoSentiment, 0, len(records)),
		Label:  models.SentimentNeutral,
	}

	var sum float64
	scoredVideos := 0
	for _, r := range records {
		vs := models.VideoSentiment{
			VideoID:      r.ID,
			CommentCount: len(r.CommentTexts),
			Label:        models.SentimentNeutral,
		}
		if len(r.CommentTexts) > 0 {
			var total float64
			for _, text := range r.CommentTexts {
				total += a.Compound(text)
			}
			vs.Compound = total / float64(len(r.CommentTexts))
			vs.Label = Label(vs.Compound)
			sum += vs.Compound
			scoredVideos++
		}
		report.Videos = append(report.Videos, vs)
	}

	if scoredVideos > 0 {
		report.MeanCompound = sum / float64(scoredVideos)
		report.Label = Label(report.MeanCompound)
	}
	return report
}

// Label classifies a compound score.
func Label(compound float64) models.SentimentLabel {
	switch {
	case compound >= PositiveThreshold:
		return models.SentimentPositive
	case compound <= NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
