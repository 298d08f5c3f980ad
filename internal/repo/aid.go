package repo

import (
	"context"
	"errors"
	"fmt"

	"khidmat-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProgramNotFound     = errors.New("aid program not found")
	ErrHouseholdNotFound   = errors.New("household not found")
	ErrAssignmentNotFound  = errors.New("program assignment not found")
	ErrDuplicateAssignment = errors.New("assignment already exists for staff and zone")
)

type AidRepository struct {
	pool *pgxpool.Pool
}

func NewAidRepository(pool *pgxpool.Pool) *AidRepository {
	return &AidRepository{pool: pool}
}

// =====================================================
// Programs
// =====================================================

const programColumns = `
	id, name, aid_type, total_households, distributed_households,
	created_at, updated_at
`

// GetProgram retrieves an aid program by id
func (r *AidRepository) GetProgram(ctx context.Context, programID string) (*domain.AidsProgram, error) {
	query := `SELECT ` + programColumns + ` FROM aids_programs WHERE id = $1`

	var p domain.AidsProgram
	err := r.pool.QueryRow(ctx, query, programID).Scan(
		&p.ID, &p.Name, &p.AidType, &p.TotalHouseholds,
		&p.DistributedHouseholds, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("query program: %w", err)
	}

	return &p, nil
}

// ListPrograms retrieves all aid programs, newest first
func (r *AidRepository) ListPrograms(ctx context.Context) ([]domain.AidsProgram, error) {
	query := `SELECT ` + programColumns + ` FROM aids_programs ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer rows.Close()

	programs := []domain.AidsProgram{}
	for rows.Next() {
		var p domain.AidsProgram
		err := rows.Scan(
			&p.ID, &p.Name, &p.AidType, &p.TotalHouseholds,
			&p.DistributedHouseholds, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}

	return programs, nil
}

// CreateProgram inserts a new aid program
func (r *AidRepository) CreateProgram(ctx context.Context, program *domain.AidsProgram) error {
	query := `
		INSERT INTO aids_programs (id, name, aid_type, total_households, distributed_households)
		VALUES ($1, $2, $3, $4, 0)
	`

	_, err := r.pool.Exec(ctx, query,
		program.ID, program.Name, program.AidType, program.TotalHouseholds,
	)
	if err != nil {
		return fmt.Errorf("insert program: %w", err)
	}

	return nil
}

// =====================================================
// Assignments
// =====================================================

// CreateAssignment grants a staff member zone scope on a program
func (r *AidRepository) CreateAssignment(ctx context.Context, a *domain.ProgramAssignment) error {
	query := `
		INSERT INTO program_assignments (id, program_id, assigned_to, assignment_type, zone_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.ProgramID, a.AssignedTo, a.AssignmentType, a.ZoneID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique violation
				return ErrDuplicateAssignment
			case "23503": // foreign key violation
				return fmt.Errorf("invalid relationship: %s", pgErr.ConstraintName)
			}
		}
		return fmt.Errorf("insert assignment: %w", err)
	}

	return nil
}

// ListAssignments retrieves all assignments of a program
func (r *AidRepository) ListAssignments(ctx context.Context, programID string) ([]domain.ProgramAssignment, error) {
	query := `
		SELECT id, program_id, assigned_to, assignment_type, zone_id, created_at
		FROM program_assignments
		WHERE program_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	assignments := []domain.ProgramAssignment{}
	for rows.Next() {
		var a domain.ProgramAssignment
		err := rows.Scan(&a.ID, &a.ProgramID, &a.AssignedTo, &a.AssignmentType, &a.ZoneID, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return assignments, nil
}

// DeleteAssignment revokes a grant
func (r *AidRepository) DeleteAssignment(ctx context.Context, assignmentID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM program_assignments WHERE id = $1`, assignmentID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

// AssignedZoneIDs returns the zones a staff member is assigned to within a
// program. An empty slice means no grant at all.
func (r *AidRepository) AssignedZoneIDs(ctx context.Context, programID, staffID string) ([]string, error) {
	query := `
		SELECT zone_id
		FROM program_assignments
		WHERE program_id = $1 AND assigned_to = $2
	`

	rows, err := r.pool.Query(ctx, query, programID, staffID)
	if err != nil {
		return nil, fmt.Errorf("query assigned zones: %w", err)
	}
	defer rows.Close()

	zoneIDs := []string{}
	for rows.Next() {
		var zoneID string
		if err := rows.Scan(&zoneID); err != nil {
			return nil, fmt.Errorf("scan assigned zone: %w", err)
		}
		zoneIDs = append(zoneIDs, zoneID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assigned zones: %w", err)
	}

	return zoneIDs, nil
}

// =====================================================
// Households & checklist
// =====================================================

// GetHousehold retrieves a household with its derived zone
func (r *AidRepository) GetHousehold(ctx context.Context, householdID string) (*domain.Household, error) {
	query := `
		SELECT id, head_name, address, village_id, zone_id, created_at
		FROM households
		WHERE id = $1
	`

	var h domain.Household
	err := r.pool.QueryRow(ctx, query, householdID).Scan(
		&h.ID, &h.HeadName, &h.Address, &h.VillageID, &h.ZoneID, &h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHouseholdNotFound
		}
		return nil, fmt.Errorf("query household: %w", err)
	}

	return &h, nil
}

// ListChecklist returns the distribution checklist for a program restricted
// to the given zones. Pass nil zoneIDs for an unrestricted listing.
func (r *AidRepository) ListChecklist(ctx context.Context, programID string, zoneIDs []string) ([]domain.HouseholdChecklistItem, error) {
	query := `
		SELECT h.id, h.head_name, h.address, h.village_id, h.zone_id, h.created_at,
		       COALESCE(m.received, FALSE), m.marked_at, m.marked_by
		FROM households h
		LEFT JOIN household_distribution_marks m
		       ON m.household_id = h.id AND m.program_id = $1
	`
	args := []interface{}{programID}

	if zoneIDs != nil {
		query += ` WHERE h.zone_id = ANY($2)`
		args = append(args, zoneIDs)
	}

	query += ` ORDER BY h.zone_id, h.head_name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query checklist: %w", err)
	}
	defer rows.Close()

	items := []domain.HouseholdChecklistItem{}
	for rows.Next() {
		var item domain.HouseholdChecklistItem
		err := rows.Scan(
			&item.ID, &item.HeadName, &item.Address, &item.VillageID,
			&item.ZoneID, &item.CreatedAt,
			&item.Received, &item.MarkedAt, &item.MarkedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist: %w", err)
	}

	return items, nil
}

// =====================================================
// Distribution marks
// =====================================================

// SetMark upserts a distribution mark and recomputes the program's
// distributed counter in the same transaction. The counter is always a
// fresh COUNT over received marks, never an in-place increment, so
// re-marking an already marked household cannot drift the total.
func (r *AidRepository) SetMark(ctx context.Context, mark *domain.HouseholdDistributionMark) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin mark tx: %w", err)
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO household_distribution_marks (program_id, household_id, received, marked_at, marked_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (program_id, household_id)
		DO UPDATE SET received = EXCLUDED.received,
		              marked_at = EXCLUDED.marked_at,
		              marked_by = EXCLUDED.marked_by
	`
	_, err = tx.Exec(ctx, upsert,
		mark.ProgramID, mark.HouseholdID, mark.Received, mark.MarkedAt, mark.MarkedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, ErrProgramNotFound
		}
		return 0, fmt.Errorf("upsert mark: %w", err)
	}

	recompute := `
		UPDATE aids_programs
		SET distributed_households = (
			SELECT COUNT(*)
			FROM household_distribution_marks
			WHERE program_id = $1 AND received = TRUE
		), updated_at = NOW()
		WHERE id = $1
		RETURNING distributed_households
	`
	var distributed int
	if err := tx.QueryRow(ctx, recompute, mark.ProgramID).Scan(&distributed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProgramNotFound
		}
		return 0, fmt.Errorf("recompute distributed count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit mark tx: %w", err)
	}

	return distributed, nil
}

// GetMark retrieves the current mark state of a household within a program.
// A missing row reads as an unmarked household.
func (r *AidRepository) GetMark(ctx context.Context, programID, householdID string) (*domain.HouseholdDistributionMark, error) {
	query := `
		SELECT program_id, household_id, received, marked_at, marked_by
		FROM household_distribution_marks
		WHERE program_id = $1 AND household_id = $2
	`

	var m domain.HouseholdDistributionMark
	err := r.pool.QueryRow(ctx, query, programID, householdID).Scan(
		&m.ProgramID, &m.HouseholdID, &m.Received, &m.MarkedAt, &m.MarkedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.HouseholdDistributionMark{
				ProgramID:   programID,
				HouseholdID: householdID,
				Received:    false,
			}, nil
		}
		return nil, fmt.Errorf("query mark: %w", err)
	}

	return &m, nil
}
