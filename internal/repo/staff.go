package repo

import (
	"context"
	"errors"
	"fmt"

	"khidmat-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrStaffNotFound indicates no staff record exists for the id
	ErrStaffNotFound = errors.New("staff not found")

	// ErrInvalidStaffRole indicates a stored role outside the closed enum.
	// This is data corruption, not a denial.
	ErrInvalidStaffRole = errors.New("invalid staff role")
)

// StaffRepository handles database operations for staff records.
// Concrete struct, no interface; consumers that need substitution accept
// their own small interfaces.
type StaffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository creates a new StaffRepository instance
func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

// GetStaff retrieves a staff record by id. The stored role is validated
// against the closed enum to protect guards from corrupt data.
func (r *StaffRepository) GetStaff(ctx context.Context, staffID string) (*domain.Staff, error) {
	query := `
		SELECT id, name, role, position, zone_id, status, created_at, updated_at
		FROM staff
		WHERE id = $1
	`

	var s domain.Staff
	err := r.pool.QueryRow(ctx, query, staffID).Scan(
		&s.ID, &s.Name, &s.Role, &s.Position, &s.ZoneID, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("query staff: %w", err)
	}

	if !s.Role.IsValid() {
		return nil, fmt.Errorf("staff %s has role %q: %w", s.ID, s.Role, ErrInvalidStaffRole)
	}

	return &s, nil
}

// GetActiveStaff retrieves a staff record only if its status is active
func (r *StaffRepository) GetActiveStaff(ctx context.Context, staffID string) (*domain.Staff, error) {
	staff, err := r.GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.Status != domain.StaffStatusActive {
		return nil, ErrStaffNotFound
	}
	return staff, nil
}

// StaffExists checks whether an active staff record exists; used when
// validating assignment targets.
func (r *StaffRepository) StaffExists(ctx context.Context, staffID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM staff WHERE id = $1 AND status = 'active')`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, staffID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check staff existence: %w", err)
	}
	return exists, nil
}
