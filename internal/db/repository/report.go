package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/db"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/models"
)

// DefaultListLimit applies when ReportFilters.Limit is unset.
const DefaultListLimit = 20

// ReportRepository defines operations for stored analysis reports.
type ReportRepository interface {
	// SaveReport inserts a report. Reports are immutable once stored.
	SaveReport(ctx context.Context, report *models.AnalysisReport) error

	// GetReport retrieves a full report by ID.
	GetReport(ctx context.Context, id uuid.UUID) (*models.AnalysisReport, error)

	// ListReports retrieves report summaries, newest first, with the total match count.
	ListReports(ctx context.Context, filters *ReportFilters) ([]*models.ReportListItem, int, error)
}

// ReportFilters contains filter options for listing reports.
type ReportFilters struct {
	Keyword string
	Limit   int
	Offset  int
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) SaveReport(ctx context.Context, report *models.AnalysisReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	query := `
		INSERT INTO analysis_reports (id, keyword, lookback_months, max_results, video_count, quota_used, report, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		report.ID,
		report.Keyword,
		report.LookbackMonths,
		report.MaxResults,
		len(report.Videos),
		report.Quota.Used,
		body,
		report.GeneratedAt,
	)
	if err != nil {
		return db.WrapError(err, "save report")
	}

	return nil
}

func (r *reportRepository) GetReport(ctx context.Context, id uuid.UUID) (*models.AnalysisReport, error) {
	query := `
		SELECT report
		FROM analysis_reports
		WHERE id = $1
	`

	var body []byte
	if err := r.pool.QueryRow(ctx, query, id).Scan(&body); err != nil {
		return nil, db.WrapError(err, "get report")
	}

	report := &models.AnalysisReport{}
	if err := json.Unmarshal(body, report); err != nil {
		return nil, fmt.Errorf("get report: %w: %v", db.ErrInvalidData, err)
	}

	return report, nil
}

func (r *reportRepository) ListReports(ctx context.Context, filters *ReportFilters) ([]*models.ReportListItem, int, error) {
	if filters == nil {
		filters = &ReportFilters{}
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	args := []interface{}{}
	argPos := 1

	whereClause := ""
	if filters.Keyword != "" {
		whereClause = fmt.Sprintf("WHERE keyword = $%d", argPos)
		args = append(args, filters.Keyword)
		argPos++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM analysis_reports %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, db.WrapError(err, "count reports")
	}

	query := fmt.Sprintf(`
		SELECT id, keyword, lookback_months, video_count, generated_at
		FROM analysis_reports
		%s
		ORDER BY generated_at DESC, id
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	args = append(args, limit, filters.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.WrapError(err, "list reports")
	}
	defer rows.Close()

	items, err := scanReportListItems(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func scanReportListItems(rows pgx.Rows) ([]*models.ReportListItem, error) {
	items := []*models.ReportListItem{}

	for rows.Next() {
		item := &models.ReportListItem{}
		err := rows.Scan(
			&item.ID,
			&item.Keyword,
			&item.LookbackMonths,
			&item.VideoCount,
			&item.GeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, db.WrapError(err, "iterate reports")
	}

	return items, nil
}
