package repo

import (
	"context"
	"errors"
	"fmt"

	"khidmat-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

const announcementColumns = `
	id, title, body, audience, published, created_by, published_at,
	created_at, updated_at
`

// Get retrieves a single announcement by id
func (r *AnnouncementRepository) Get(ctx context.Context, announcementID string) (*domain.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1`

	var a domain.Announcement
	err := r.pool.QueryRow(ctx, query, announcementID).Scan(
		&a.ID, &a.Title, &a.Body, &a.Audience, &a.Published, &a.CreatedBy,
		&a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("query announcement: %w", err)
	}

	return &a, nil
}

// ListPublished retrieves published announcements for the given audiences,
// newest first
func (r *AnnouncementRepository) ListPublished(ctx context.Context, audiences []domain.AnnouncementAudience) ([]domain.Announcement, error) {
	query := `
		SELECT ` + announcementColumns + `
		FROM announcements
		WHERE published = TRUE AND audience = ANY($1)
		ORDER BY published_at DESC
	`

	values := make([]string, 0, len(audiences))
	for _, a := range audiences {
		values = append(values, string(a))
	}

	rows, err := r.pool.Query(ctx, query, values)
	if err != nil {
		return nil, fmt.Errorf("query announcements: %w", err)
	}
	defer rows.Close()

	return collectAnnouncements(rows)
}

// ListAll retrieves every announcement including drafts, for the admin
// workspace
func (r *AnnouncementRepository) ListAll(ctx context.Context) ([]domain.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query announcements: %w", err)
	}
	defer rows.Close()

	return collectAnnouncements(rows)
}

func collectAnnouncements(rows pgx.Rows) ([]domain.Announcement, error) {
	announcements := []domain.Announcement{}
	for rows.Next() {
		var a domain.Announcement
		err := rows.Scan(
			&a.ID, &a.Title, &a.Body, &a.Audience, &a.Published, &a.CreatedBy,
			&a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate announcements: %w", err)
	}

	return announcements, nil
}

// Create inserts a new announcement as an unpublished draft
func (r *AnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	query := `
		INSERT INTO announcements (id, title, body, audience, published, created_by)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`

	_, err := r.pool.Exec(ctx, query, a.ID, a.Title, a.Body, a.Audience, a.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}

	return nil
}

// Update patches an announcement. Publishing stamps published_at once;
// republishing keeps the original timestamp.
func (r *AnnouncementRepository) Update(ctx context.Context, announcementID string, req *domain.UpdateAnnouncementRequest) error {
	query := `UPDATE announcements SET updated_at = NOW()`
	args := []interface{}{}
	argIdx := 1

	if req.Title != nil {
		query += fmt.Sprintf(", title = $%d", argIdx)
		args = append(args, *req.Title)
		argIdx++
	}

	if req.Body != nil {
		query += fmt.Sprintf(", body = $%d", argIdx)
		args = append(args, *req.Body)
		argIdx++
	}

	if req.Audience != nil {
		query += fmt.Sprintf(", audience = $%d", argIdx)
		args = append(args, *req.Audience)
		argIdx++
	}

	if req.Published != nil {
		query += fmt.Sprintf(", published = $%d", argIdx)
		args = append(args, *req.Published)
		argIdx++
		if *req.Published {
			query += ", published_at = COALESCE(published_at, NOW())"
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argIdx)
	args = append(args, announcementID)

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAnnouncementNotFound
	}

	return nil
}

// Delete removes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, announcementID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, announcementID)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAnnouncementNotFound
	}

	return nil
}
