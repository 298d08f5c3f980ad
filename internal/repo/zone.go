package repo

import (
	"context"
	"errors"
	"fmt"

	"khidmat-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrZoneNotFound = errors.New("zone not found")

// ZoneRepository reads zones and villages. Zone administration lives
// outside this service; only lookups and listings are exposed.
type ZoneRepository struct {
	pool *pgxpool.Pool
}

func NewZoneRepository(pool *pgxpool.Pool) *ZoneRepository {
	return &ZoneRepository{pool: pool}
}

// GetZone retrieves a zone by id
func (r *ZoneRepository) GetZone(ctx context.Context, zoneID string) (*domain.Zone, error) {
	query := `SELECT id, name, created_at FROM zones WHERE id = $1`

	var z domain.Zone
	err := r.pool.QueryRow(ctx, query, zoneID).Scan(&z.ID, &z.Name, &z.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("query zone: %w", err)
	}

	return &z, nil
}

// ListZones retrieves all zones ordered by name
func (r *ZoneRepository) ListZones(ctx context.Context) ([]domain.Zone, error) {
	query := `SELECT id, name, created_at FROM zones ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query zones: %w", err)
	}
	defer rows.Close()

	zones := []domain.Zone{}
	for rows.Next() {
		var z domain.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		zones = append(zones, z)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zones: %w", err)
	}

	return zones, nil
}

// ListVillages retrieves the villages of a zone ordered by name
func (r *ZoneRepository) ListVillages(ctx context.Context, zoneID string) ([]domain.Village, error) {
	query := `SELECT id, name, zone_id, created_at FROM villages WHERE zone_id = $1 ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, zoneID)
	if err != nil {
		return nil, fmt.Errorf("query villages: %w", err)
	}
	defer rows.Close()

	villages := []domain.Village{}
	for rows.Next() {
		var v domain.Village
		if err := rows.Scan(&v.ID, &v.Name, &v.ZoneID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan village: %w", err)
		}
		villages = append(villages, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate villages: %w", err)
	}

	return villages, nil
}
