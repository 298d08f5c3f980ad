package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"khidmat-api/internal/authz"
	"khidmat-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAidFixture(t *testing.T) (*AidService, *fakeAidStore, *fakeAudit) {
	t.Helper()
	store := newFakeAidStore()
	audit := &fakeAudit{}
	staff := &fakeStaffChecker{existing: map[string]bool{"staff-kc": true}}
	svc := NewAidService(store, staff, NewScopeResolver(store), audit, testLogger(t))

	store.programs["prog-1"] = &domain.AidsProgram{ID: "prog-1", Name: "Bantuan Raya", AidType: "cash", TotalHouseholds: 3}
	store.households["hh-a"] = &domain.Household{ID: "hh-a", HeadName: "A", VillageID: "v1", ZoneID: "zone-1"}
	store.households["hh-b"] = &domain.Household{ID: "hh-b", HeadName: "B", VillageID: "v1", ZoneID: "zone-1"}
	store.households["hh-x"] = &domain.Household{ID: "hh-x", HeadName: "X", VillageID: "v2", ZoneID: "zone-2"}
	store.assignments = append(store.assignments, domain.ProgramAssignment{
		ID: "as-1", ProgramID: "prog-1", AssignedTo: "staff-kc",
		AssignmentType: domain.AssignmentKetuaCawangan, ZoneID: "zone-1",
	})

	return svc, store, audit
}

func TestMarkReceived_AssignedZone(t *testing.T) {
	svc, store, audit := newAidFixture(t)
	identity := staffIdentity("staff-kc", domain.RoleKetuaCawangan, nil)

	result, err := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-a", true)

	require.NoError(t, err)
	assert.True(t, result.Mark.Received)
	require.NotNil(t, result.Mark.MarkedAt)
	require.NotNil(t, result.Mark.MarkedBy)
	assert.Equal(t, "staff-kc", *result.Mark.MarkedBy)
	assert.True(t, result.Mark.Consistent())
	assert.Equal(t, 1, result.Distributed)
	assert.Equal(t, 1, store.programs["prog-1"].DistributedHouseholds)
	assert.Contains(t, audit.recorded(), "mark_received")
}

func TestMarkReceived_IdempotentRemark(t *testing.T) {
	svc, store, _ := newAidFixture(t)
	identity := staffIdentity("staff-kc", domain.RoleKetuaCawangan, nil)

	_, err := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-a", true)
	require.NoError(t, err)

	// Re-marking the same household must not drift the counter
	result, err := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-a", true)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Distributed)
	assert.Equal(t, 1, store.programs["prog-1"].DistributedHouseholds)
}

func TestMarkReceived_Unmark(t *testing.T) {
	svc, store, audit := newAidFixture(t)
	identity := staffIdentity("staff-kc", domain.RoleKetuaCawangan, nil)

	_, err := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-a", true)
	require.NoError(t, err)

	result, err := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-a", false)

	require.NoError(t, err)
	assert.False(t, result.Mark.Received)
	assert.Nil(t, result.Mark.MarkedAt)
	assert.Nil(t, result.Mark.MarkedBy)
	assert.True(t, result.Mark.Consistent())
	assert.Equal(t, 0, result.Distributed)
	assert.Equal(t, 0, store.programs["prog-1"].DistributedHouseholds)
	assert.Contains(t, audit.recorded(), "unmark_received")
}

func TestMarkReceived_Unauthenticated(t *testing.T) {
	svc, store, _ := newAidFixture(t)

	_, err := svc.MarkReceived(context.Background(), domain.Unauthenticated(), "prog-1", "hh-a", true)

	require.ErrorIs(t, err, authz.ErrUnauthenticated)
	assert.Empty(t, store.marks["prog-1"])
}

func TestMarkReceived_CommunityForbidden(t *testing.T) {
	svc, _, _ := newAidFixture(t)

	_, err := svc.MarkReceived(context.Background(), communityIdentity("profile-1"), "prog-1", "hh-a", true)

	require.ErrorIs(t, err, authz.ErrForbidden)
}

func TestMarkReceived_NoAssignment(t *testing.T) {
	svc, store, _ := newAidFixture(t)
	// ketua cawangan without any assignment rows for this program
	identity := staffIdentity("staff-other", domain.RoleKetuaCawangan, nil)

	_, err := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-a", true)

	require.ErrorIs(t, err, authz.ErrForbidden)
	authzErr, ok := authz.AsAuthzError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_ASSIGNED", authzErr.Code)
	assert.Empty(t, store.marks["prog-1"])
}

func TestMarkReceived_CrossZoneForbidden(t *testing.T) {
	svc, store, _ := newAidFixture(t)
	identity := staffIdentity("staff-kc", domain.RoleKetuaCawangan, nil)

	// hh-x sits in zone-2; staff-kc only holds zone-1
	_, err := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-x", true)

	require.ErrorIs(t, err, authz.ErrForbidden)
	assert.Empty(t, store.marks["prog-1"])
	assert.Equal(t, 0, store.programs["prog-1"].DistributedHouseholds)
}

func TestMarkReceived_AdminUnrestricted(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	identity := staffIdentity("staff-admin", domain.RoleSuperAdmin, nil)

	result, err := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-x", true)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Distributed)
}

func TestMarkReceived_ZoneLeaderOwnZone(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	identity := staffIdentity("staff-zl", domain.RoleZoneLeader, strPtr("zone-2"))

	_, errOwn := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-x", true)
	_, errOther := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-a", true)

	require.NoError(t, errOwn)
	require.ErrorIs(t, errOther, authz.ErrForbidden)
}

func TestMarkReceived_ProgramNotFound(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	identity := staffIdentity("staff-kc", domain.RoleKetuaCawangan, nil)

	_, err := svc.MarkReceived(context.Background(), identity, "prog-missing", "hh-a", true)

	require.ErrorIs(t, err, ErrProgramNotFound)
}

func TestMarkReceived_ConcurrentMarksCountTrue(t *testing.T) {
	svc, store, _ := newAidFixture(t)
	identity := staffIdentity("staff-kc", domain.RoleKetuaCawangan, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, hh := range []string{"hh-a", "hh-b"} {
			wg.Add(1)
			go func(householdID string) {
				defer wg.Done()
				_, err := svc.MarkReceived(context.Background(), identity, "prog-1", householdID, true)
				assert.NoError(t, err)
			}(hh)
		}
	}
	wg.Wait()

	// Two distinct marked households, regardless of interleaving
	assert.Equal(t, 2, store.programs["prog-1"].DistributedHouseholds)
}

func TestChecklist_ScopedToAssignment(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	identity := staffIdentity("staff-kc", domain.RoleKetuaCawangan, nil)

	items, err := svc.Checklist(context.Background(), identity, "prog-1")

	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "zone-1", item.ZoneID)
	}
}

func TestChecklist_AdminSeesAllZones(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	identity := staffIdentity("staff-admin", domain.RoleAdun, nil)

	items, err := svc.Checklist(context.Background(), identity, "prog-1")

	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestChecklist_NotAssigned(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	identity := staffIdentity("staff-plain", domain.RoleStaff, nil)

	_, err := svc.Checklist(context.Background(), identity, "prog-1")

	authzErr, ok := authz.AsAuthzError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_ASSIGNED", authzErr.Code)
}

func TestCreateProgram_RequiresAdminRole(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	req := &domain.CreateProgramRequest{Name: "Bantuan Sekolah", AidType: "goods", TotalHouseholds: 10}

	_, err := svc.CreateProgram(context.Background(), staffIdentity("staff-zl", domain.RoleZoneLeader, strPtr("zone-1")), req)
	require.ErrorIs(t, err, authz.ErrForbidden)

	program, err := svc.CreateProgram(context.Background(), staffIdentity("staff-admin", domain.RoleSuperAdmin, nil), req)
	require.NoError(t, err)
	assert.NotEmpty(t, program.ID)
	assert.Equal(t, 0, program.DistributedHouseholds)
}

func TestCreateAssignment_ValidatesTarget(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	admin := staffIdentity("staff-admin", domain.RoleSuperAdmin, nil)

	_, err := svc.CreateAssignment(context.Background(), admin, "prog-1", &domain.CreateAssignmentRequest{
		AssignedTo:     "staff-unknown",
		AssignmentType: domain.AssignmentKetuaCawangan,
		ZoneID:         "zone-2",
	})
	require.Error(t, err)

	assignment, err := svc.CreateAssignment(context.Background(), admin, "prog-1", &domain.CreateAssignmentRequest{
		AssignedTo:     "staff-kc",
		AssignmentType: domain.AssignmentKetuaCawangan,
		ZoneID:         "zone-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "zone-2", assignment.ZoneID)
}

func TestCreateAssignment_InvalidType(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	admin := staffIdentity("staff-admin", domain.RoleSuperAdmin, nil)

	_, err := svc.CreateAssignment(context.Background(), admin, "prog-1", &domain.CreateAssignmentRequest{
		AssignedTo:     "staff-kc",
		AssignmentType: "village_head",
		ZoneID:         "zone-1",
	})

	require.ErrorIs(t, err, ErrInvalidAssignmentType)
}

func TestMarkReceived_InactiveStaff(t *testing.T) {
	svc, _, _ := newAidFixture(t)
	identity := staffIdentity("staff-kc", domain.RoleKetuaCawangan, nil)
	identity.Staff.Status = domain.StaffStatusInactive

	_, err := svc.MarkReceived(context.Background(), identity, "prog-1", "hh-a", true)

	require.ErrorIs(t, err, authz.ErrForbidden)
	assert.False(t, errors.Is(err, authz.ErrUnauthenticated))
}
