package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"khidmat-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrIssueNotFound = errors.New("issue not found")

type IssueRepository struct {
	pool *pgxpool.Pool
}

func NewIssueRepository(pool *pgxpool.Pool) *IssueRepository {
	return &IssueRepository{pool: pool}
}

const issueColumns = `
	id, title, description, reporter_id, assigned_staff_id, zone_id,
	status, issue_type_id, category, created_at, updated_at
`

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var i domain.Issue
	err := row.Scan(
		&i.ID, &i.Title, &i.Description, &i.ReporterID, &i.AssignedStaffID,
		&i.ZoneID, &i.Status, &i.IssueTypeID, &i.Category,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("query issue: %w", err)
	}
	return &i, nil
}

// List retrieves issues with optional filters and cursor pagination.
// Ordering is newest first; the cursor carries the created_at of the last
// row of the previous page.
func (r *IssueRepository) List(ctx context.Context, params domain.ListIssuesParams) ([]domain.Issue, string, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if params.ZoneID != nil {
		query += fmt.Sprintf(" AND zone_id = $%d", argIdx)
		args = append(args, *params.ZoneID)
		argIdx++
	}

	if params.ReporterID != nil {
		query += fmt.Sprintf(" AND reporter_id = $%d", argIdx)
		args = append(args, *params.ReporterID)
		argIdx++
	}

	if params.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *params.Status)
		argIdx++
	}

	if params.Cursor != nil && *params.Cursor != "" {
		cursorTime, err := time.Parse(time.RFC3339Nano, *params.Cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor format: %w", err)
		}
		query += fmt.Sprintf(" AND created_at < $%d", argIdx)
		args = append(args, cursorTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, params.Limit+1) // +1 to check if there's next page

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	issues := make([]domain.Issue, 0, params.Limit)
	for rows.Next() {
		var i domain.Issue
		err := rows.Scan(
			&i.ID, &i.Title, &i.Description, &i.ReporterID, &i.AssignedStaffID,
			&i.ZoneID, &i.Status, &i.IssueTypeID, &i.Category,
			&i.CreatedAt, &i.UpdatedAt,
		)
		if err != nil {
			return nil, "", fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, i)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate issues: %w", err)
	}

	var nextCursor string
	if len(issues) > params.Limit {
		nextCursor = issues[params.Limit-1].CreatedAt.Format(time.RFC3339Nano)
		issues = issues[:params.Limit]
	}

	return issues, nextCursor, nil
}

// Get retrieves a single issue by id
func (r *IssueRepository) Get(ctx context.Context, issueID string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`
	return scanIssue(r.pool.QueryRow(ctx, query, issueID))
}

// Create inserts a new issue
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	query := `
		INSERT INTO issues (id, title, description, reporter_id, assigned_staff_id,
		                    zone_id, status, issue_type_id, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		issue.ID, issue.Title, issue.Description, issue.ReporterID,
		issue.AssignedStaffID, issue.ZoneID, issue.Status,
		issue.IssueTypeID, issue.Category,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23503" { // foreign key violation
				return fmt.Errorf("invalid relationship: %s", pgErr.ConstraintName)
			}
		}
		return fmt.Errorf("insert issue: %w", err)
	}

	return nil
}

// UpdateStatus moves an issue to a new status
func (r *IssueRepository) UpdateStatus(ctx context.Context, issueID string, status domain.IssueStatus) error {
	query := `
		UPDATE issues
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, status, issueID)
	if err != nil {
		return fmt.Errorf("update issue status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIssueNotFound
	}

	return nil
}

// AssignStaff sets or clears the staff member responsible for an issue
func (r *IssueRepository) AssignStaff(ctx context.Context, issueID string, staffID *string) error {
	query := `
		UPDATE issues
		SET assigned_staff_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, staffID, issueID)
	if err != nil {
		return fmt.Errorf("assign issue staff: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIssueNotFound
	}

	return nil
}

// Delete removes an issue permanently. The deletion-eligibility rule
// (community-authored issues are protected) is enforced in the service
// layer before this is called; the guard here is a backstop.
func (r *IssueRepository) Delete(ctx context.Context, issueID string) error {
	query := `DELETE FROM issues WHERE id = $1 AND reporter_id IS NULL`

	result, err := r.pool.Exec(ctx, query, issueID)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrIssueNotFound
	}

	return nil
}
