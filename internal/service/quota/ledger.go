// Package quota tracks the YouTube Data API cost units consumed by this process.
package quota

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

const (
	// DefaultDailyLimit is the YouTube Data API v3 default daily quota.
	DefaultDailyLimit = 10000

	// SearchCost is the cost of one search.list page.
	SearchCost = 100

	// StatisticsCostPerVideo is charged per id included in a videos.list batch.
	StatisticsCostPerVideo = 1

	// CommentsCost is the cost of one commentThreads.list call.
	CommentsCost = 1
)

var (
	// ErrQuotaExceeded is returned when a reservation would push usage past the limit.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrInvalidCost is returned for negative reservations.
	ErrInvalidCost = errors.New("invalid quota cost")
)

// Recorder observes ledger activity. Implemented by the metrics package.
type Recorder interface {
	QuotaReserved(cost, used int)
	QuotaRejected(cost int)
}

// Ledger is a process-scoped quota budget. It never resets itself; any daily
// reset policy belongs to whoever owns the ledger.
type Ledger struct {
	mu       sync.Mutex
	limit    int
	used     int
	logger   *zap.Logger
	recorder Recorder
}

// NewLedger creates a ledger with the given limit.
func NewLedger(limit int, logger *zap.Logger) *Ledger {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ledger{
		limit:  limit,
		logger: logger,
	}
}

// SetRecorder attaches a recorder notified on every reservation attempt.
func (l *Ledger) SetRecorder(r Recorder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorder = r
}

// Reserve debits cost units. The check and the debit happen under one lock, and a
// failed reservation leaves the ledger untouched.
func (l *Ledger) Reserve(cost int, operation string) error {
	if cost < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCost, cost)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.used+cost > l.limit {
		l.logger.Warn("Quota reservation rejected",
			zap.String("operation", operation),
			zap.Int("cost", cost),
			zap.Int("used", l.used),
			zap.Int("limit", l.limit),
		)
		if l.recorder != nil {
			l.recorder.QuotaRejected(cost)
		}
		return fmt.Errorf("%w: %s needs %d units, %d of %d remaining",
			ErrQuotaExceeded, operation, cost, l.limit-l.used, l.limit)
	}

	l.used += cost

	l.logger.Debug("Quota reserved",
		zap.String("operation", operation),
		zap.Int("cost", cost),
		zap.Int("used", l.used),
		zap.Int("limit", l.limit),
	)
	if l.recorder != nil {
		l.recorder.QuotaReserved(cost, l.used)
	}

	return nil
}

// Info returns a snapshot of the ledger.
func (l *Ledger) Info() models.QuotaInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	return models.QuotaInfo{
		Limit:     l.limit,
		Used:      l.used,
		Remaining: l.limit - l.used,
	}
}

// Used returns the units consumed so far.
func (l *Ledger) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Remaining returns how many units can still be reserved.
func (l *Ledger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit - l.used
}

// Limit returns the configured budget.
func (l *Ledger) Limit() int {
	return l.limit
}

// UsagePercentage returns the percentage of the budget used.
func (l *Ledger) UsagePercentage() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return float64(l.used) / float64(l.limit) * 100
}
