package repo

import (
	"context"
	"errors"
	"fmt"

	"khidmat-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProfileNotFound indicates no community profile exists for the lookup key
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository handles database operations for community profiles
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository instance
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `
	id, full_name, email, ic_number, village_id, zone_id,
	household_member_id, verification_status, created_at, updated_at
`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.FullName, &p.Email, &p.ICNumber, &p.VillageID, &p.ZoneID,
		&p.HouseholdMemberID, &p.VerificationStatus, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

// GetProfile retrieves a community profile by id
func (r *ProfileRepository) GetProfile(ctx context.Context, profileID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, profileID))
}

// GetProfileByIC retrieves a community profile by IC number. Used by the
// community login flow; the IC number itself is never logged.
func (r *ProfileRepository) GetProfileByIC(ctx context.Context, icNumber string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE ic_number = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, icNumber))
}
