package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jmerrifield20/threadboard/internal/board/model"
)

const reportColumns = `id, reporter_id, content_type, target_post_id, target_comment_id,
	reason, resolution_note, status, created_at, resolved_at, resolved_by`

var reportSortColumns = map[string]string{
	"created_at": "created_at",
	"status":     "status",
}

// ReportRepository provides CRUD operations for reports.
type ReportRepository struct {
	db Querier
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db Querier) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new pending report. A second pending report by the same
// reporter on the same target violates reports_pending_unique and yields
// model.ErrConflict.
func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	report.ID = uuid.New()
	report.CreatedAt = time.Now().UTC()
	report.Status = model.ReportPending

	query := `
		INSERT INTO reports (id, reporter_id, content_type, target_post_id, target_comment_id,
		                     reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		report.ID, report.ReporterID, report.ContentType,
		report.TargetPostID, report.TargetCommentID,
		report.Reason, report.Status, report.CreatedAt,
	)
	if isUniqueViolation(err) {
		return model.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get retrieves a report by ID.
func (r *ReportRepository) Get(ctx context.Context, id uuid.UUID, lock Lock) (*model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1` + lock.clause()
	rpt, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "get report")
	}
	return rpt, nil
}

// Resolve writes the resolution fields of a pending report.
func (r *ReportRepository) Resolve(ctx context.Context, report *model.Report) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE reports
		SET status = $2, resolution_note = $3, resolved_at = $4, resolved_by = $5
		WHERE id = $1 AND status = 'pending'`,
		report.ID, report.Status, report.ResolutionNote, report.ResolvedAt, report.ResolvedBy,
	)
	if err != nil {
		return fmt.Errorf("resolve report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrInvalidStateTransition
	}
	return nil
}

// List returns paginated reports, optionally filtered by status and reporter.
func (r *ReportRepository) List(ctx context.Context, f model.ReportFilter, p model.PageRequest) ([]*model.Report, int64, error) {
	var w whereBuilder
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.ReporterID != nil {
		w.add("reporter_id = $%d", *f.ReporterID)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	limit, args := paginate(&w, p)
	rows, err := r.db.Query(ctx,
		`SELECT `+reportColumns+` FROM reports`+w.String()+orderBy(p, reportSortColumns)+limit,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.Report
	for rows.Next() {
		rpt, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rpt)
	}
	return reports, total, rows.Err()
}

func scanReport(row pgx.Row) (*model.Report, error) {
	var rpt model.Report
	err := row.Scan(
		&rpt.ID, &rpt.ReporterID, &rpt.ContentType,
		&rpt.TargetPostID, &rpt.TargetCommentID,
		&rpt.Reason, &rpt.ResolutionNote, &rpt.Status,
		&rpt.CreatedAt, &rpt.ResolvedAt, &rpt.ResolvedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rpt, nil
}
