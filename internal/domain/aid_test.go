package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestZoneScope_Contains(t *testing.T) {
	scope := NewZoneScope("zone-1", "zone-2")

	assert.True(t, scope.Contains("zone-1"))
	assert.True(t, scope.Contains("zone-2"))
	assert.False(t, scope.Contains("zone-3"))
	assert.False(t, scope.Empty())
}

func TestZoneScope_Unrestricted(t *testing.T) {
	scope := UnrestrictedScope()

	assert.True(t, scope.Contains("zone-1"))
	assert.True(t, scope.Contains("anything"))
	assert.False(t, scope.Empty())
}

func TestZoneScope_Empty(t *testing.T) {
	scope := NewZoneScope()

	assert.True(t, scope.Empty())
	assert.False(t, scope.Contains("zone-1"))
}

func TestHouseholdDistributionMark_Consistent(t *testing.T) {
	now := time.Now()
	staffID := "staff-1"

	tests := []struct {
		name string
		mark HouseholdDistributionMark
		want bool
	}{
		{
			name: "received with both fields set",
			mark: HouseholdDistributionMark{Received: true, MarkedAt: &now, MarkedBy: &staffID},
			want: true,
		},
		{
			name: "unmarked with both fields nil",
			mark: HouseholdDistributionMark{Received: false},
			want: true,
		},
		{
			name: "received missing marked_by",
			mark: HouseholdDistributionMark{Received: true, MarkedAt: &now},
			want: false,
		},
		{
			name: "received missing marked_at",
			mark: HouseholdDistributionMark{Received: true, MarkedBy: &staffID},
			want: false,
		},
		{
			name: "unmarked with leftover marked_at",
			mark: HouseholdDistributionMark{Received: false, MarkedAt: &now},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mark.Consistent())
		})
	}
}

func TestAssignmentType_IsValid(t *testing.T) {
	assert.True(t, AssignmentKetuaCawangan.IsValid())
	assert.False(t, AssignmentType("zone_leader").IsValid())
	assert.False(t, AssignmentType("").IsValid())
}

func TestCreateProgramRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CreateProgramRequest{Name: "Bantuan Raya 2026", AidType: "cash", TotalHouseholds: 120}).Validate())
	assert.Error(t, (&CreateProgramRequest{Name: "ab", AidType: "cash"}).Validate())
	assert.Error(t, (&CreateProgramRequest{Name: "Bantuan Raya", AidType: "cash", TotalHouseholds: -1}).Validate())
}

func TestCreateAssignmentRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CreateAssignmentRequest{AssignedTo: "staff-1", AssignmentType: AssignmentKetuaCawangan, ZoneID: "zone-1"}).Validate())
	assert.Error(t, (&CreateAssignmentRequest{AssignmentType: AssignmentKetuaCawangan, ZoneID: "zone-1"}).Validate())
}
