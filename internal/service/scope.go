package service

import (
	"context"
	"fmt"

	"khidmat-api/internal/domain"
)

// AssignmentReader is the slice of the aid repository the scope resolver
// needs: the zones a staff member is assigned to within a program.
type AssignmentReader interface {
	AssignedZoneIDs(ctx context.Context, programID, staffID string) ([]string, error)
}

// ScopeResolver computes the zone scope a staff identity holds over a
// program. Scope is derived per role: admin-capable roles are
// unrestricted, zone leaders carry the zone bound to their staff record,
// ketua cawangan carry their per-program assignments, and plain staff
// carry nothing.
type ScopeResolver struct {
	assignments AssignmentReader
}

func NewScopeResolver(assignments AssignmentReader) *ScopeResolver {
	return &ScopeResolver{assignments: assignments}
}

// ScopedZoneIDs resolves the zone scope of a staff identity for a program.
// An empty scope is a normal result, not an error; callers decide whether
// empty means denial.
func (r *ScopeResolver) ScopedZoneIDs(ctx context.Context, staff *domain.StaffIdentity, programID string) (domain.ZoneScope, error) {
	if staff == nil {
		return domain.NewZoneScope(), nil
	}

	if staff.Role.IsAdminCapable() {
		return domain.UnrestrictedScope(), nil
	}

	switch staff.Role {
	case domain.RoleZoneLeader:
		// Zone comes from the staff record; a zone leader without a bound
		// zone has an empty scope.
		if staff.ZoneID == nil || *staff.ZoneID == "" {
			return domain.NewZoneScope(), nil
		}
		return domain.NewZoneScope(*staff.ZoneID), nil

	case domain.RoleKetuaCawangan:
		zoneIDs, err := r.assignments.AssignedZoneIDs(ctx, programID, staff.StaffID)
		if err != nil {
			return domain.ZoneScope{}, fmt.Errorf("resolve assigned zones: %w", err)
		}
		return domain.NewZoneScope(zoneIDs...), nil

	default:
		return domain.NewZoneScope(), nil
	}
}
