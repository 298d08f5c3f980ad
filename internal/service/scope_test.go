package service

import (
	"context"
	"testing"

	"khidmat-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedZoneIDs_AdminCapableUnrestricted(t *testing.T) {
	resolver := NewScopeResolver(newFakeAidStore())

	for _, role := range []domain.StaffRole{domain.RoleSuperAdmin, domain.RoleAdun} {
		scope, err := resolver.ScopedZoneIDs(context.Background(), &domain.StaffIdentity{
			StaffID: "s1", Role: role, Status: domain.StaffStatusActive,
		}, "prog-1")

		require.NoError(t, err)
		assert.True(t, scope.Unrestricted)
		assert.True(t, scope.Contains("any-zone"))
		assert.False(t, scope.Empty())
	}
}

func TestScopedZoneIDs_ZoneLeaderBoundZone(t *testing.T) {
	resolver := NewScopeResolver(newFakeAidStore())

	scope, err := resolver.ScopedZoneIDs(context.Background(), &domain.StaffIdentity{
		StaffID: "s1", Role: domain.RoleZoneLeader, ZoneID: strPtr("zone-7"), Status: domain.StaffStatusActive,
	}, "prog-1")

	require.NoError(t, err)
	assert.True(t, scope.Contains("zone-7"))
	assert.False(t, scope.Contains("zone-8"))
}

func TestScopedZoneIDs_ZoneLeaderWithoutZone(t *testing.T) {
	resolver := NewScopeResolver(newFakeAidStore())

	scope, err := resolver.ScopedZoneIDs(context.Background(), &domain.StaffIdentity{
		StaffID: "s1", Role: domain.RoleZoneLeader, Status: domain.StaffStatusActive,
	}, "prog-1")

	require.NoError(t, err)
	assert.True(t, scope.Empty())
}

func TestScopedZoneIDs_KetuaCawanganFromAssignments(t *testing.T) {
	store := newFakeAidStore()
	store.assignments = append(store.assignments,
		domain.ProgramAssignment{ID: "a1", ProgramID: "prog-1", AssignedTo: "s1", AssignmentType: domain.AssignmentKetuaCawangan, ZoneID: "zone-1"},
		domain.ProgramAssignment{ID: "a2", ProgramID: "prog-1", AssignedTo: "s1", AssignmentType: domain.AssignmentKetuaCawangan, ZoneID: "zone-2"},
		domain.ProgramAssignment{ID: "a3", ProgramID: "prog-2", AssignedTo: "s1", AssignmentType: domain.AssignmentKetuaCawangan, ZoneID: "zone-9"},
	)
	resolver := NewScopeResolver(store)

	scope, err := resolver.ScopedZoneIDs(context.Background(), &domain.StaffIdentity{
		StaffID: "s1", Role: domain.RoleKetuaCawangan, Status: domain.StaffStatusActive,
	}, "prog-1")

	require.NoError(t, err)
	assert.True(t, scope.Contains("zone-1"))
	assert.True(t, scope.Contains("zone-2"))
	// Assignments are per program: prog-2 grants never leak into prog-1
	assert.False(t, scope.Contains("zone-9"))
}

func TestScopedZoneIDs_PlainStaffEmpty(t *testing.T) {
	resolver := NewScopeResolver(newFakeAidStore())

	scope, err := resolver.ScopedZoneIDs(context.Background(), &domain.StaffIdentity{
		StaffID: "s1", Role: domain.RoleStaff, ZoneID: strPtr("zone-1"), Status: domain.StaffStatusActive,
	}, "prog-1")

	require.NoError(t, err)
	assert.True(t, scope.Empty())
}

func TestScopedZoneIDs_NilStaff(t *testing.T) {
	resolver := NewScopeResolver(newFakeAidStore())

	scope, err := resolver.ScopedZoneIDs(context.Background(), nil, "prog-1")

	require.NoError(t, err)
	assert.True(t, scope.Empty())
}
