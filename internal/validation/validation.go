// Package validation checks and normalises analysis request parameters.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

// Request defaults and bounds.
const (
	DefaultLookbackMonths = 12
	MaxLookbackMonths     = 24
	DefaultMaxResults     = 50
	MaxResultsLimit       = 100
	MaxKeywordLength      = 100
)

type Validator struct {
	maxLookbackMonths int
	maxResults        int
}

func New(maxLookbackMonths, maxResults int) *Validator {
	if maxLookbackMonths <= 0 {
		maxLookbackMonths = MaxLookbackMonths
	}
	if maxResults <= 0 {
		maxResults = MaxResultsLimit
	}
	return &Validator{
		maxLookbackMonths: maxLookbackMonths,
		maxResults:        maxResults,
	}
}

// Normalize fills unset numeric fields with defaults, trims surrounding whitespace from
// the keyword and validates the result.
func (v *Validator) Normalize(req *models.AnalysisRequest) error {
	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.LookbackMonths == 0 {
		req.LookbackMonths = DefaultLookbackMonths
	}
	if req.MaxResults == 0 {
		req.MaxResults = DefaultMaxResults
	}
	return v.ValidateRequest(req)
}

func (v *Validator) ValidateRequest(req *models.AnalysisRequest) error {
	if req.Keyword == "" {
		return fmt.Errorf("keyword is required")
	}
	if utf8.RuneCountInString(req.Keyword) > MaxKeywordLength {
		return fmt.Errorf("keyword exceeds maximum length of %d characters", MaxKeywordLength)
	}

	if req.LookbackMonths < 1 || req.LookbackMonths > v.maxLookbackMonths {
		return fmt.Errorf("months must be between 1 and %d, got %d", v.maxLookbackMonths, req.LookbackMonths)
	}

	if req.MaxResults < 1 || req.MaxResults > v.maxResults {
		return fmt.Errorf("maxResults must be between 1 and %d, got %d", v.maxResults, req.MaxResults)
	}

	return nil
}

// ValidateCollection checks the pipeline inputs without the request bounds: a non-blank
// keyword and positive counts.
func ValidateCollection(keyword string, lookbackMonths, maxResults int) error {
	if strings.TrimSpace(keyword) == "" {
		return fmt.Errorf("keyword is required")
	}
	if lookbackMonths < 1 {
		return fmt.Errorf("months must be positive, got %d", lookbackMonths)
	}
	if maxResults < 1 {
		return fmt.Errorf("maxResults must be positive, got %d", maxResults)
	}
	return nil
}
