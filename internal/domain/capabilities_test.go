package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func staffIdentity(role StaffRole, status StaffStatus, zoneID *string) Identity {
	return Identity{
		Kind: IdentityStaff,
		Staff: &StaffIdentity{
			StaffID: "staff-1",
			Role:    role,
			ZoneID:  zoneID,
			Status:  status,
		},
	}
}

func TestClassify_StaffRoles(t *testing.T) {
	zone := "zone-1"

	tests := []struct {
		name     string
		identity Identity
		want     Capabilities
	}{
		{
			name:     "active super admin",
			identity: staffIdentity(RoleSuperAdmin, StaffStatusActive, nil),
			want: Capabilities{
				Authenticated:  true,
				IsSuperAdmin:   true,
				CanAccessAdmin: true,
				CanAccessStaff: true,
				StaffID:        "staff-1",
			},
		},
		{
			name:     "active adun",
			identity: staffIdentity(RoleAdun, StaffStatusActive, nil),
			want: Capabilities{
				Authenticated:  true,
				IsAdun:         true,
				CanAccessAdmin: true,
				CanAccessStaff: true,
				StaffID:        "staff-1",
			},
		},
		{
			name:     "active zone leader carries zone",
			identity: staffIdentity(RoleZoneLeader, StaffStatusActive, &zone),
			want: Capabilities{
				Authenticated:  true,
				IsZoneLeader:   true,
				CanAccessStaff: true,
				StaffID:        "staff-1",
				ZoneID:         &zone,
			},
		},
		{
			name:     "active ketua cawangan",
			identity: staffIdentity(RoleKetuaCawangan, StaffStatusActive, nil),
			want: Capabilities{
				Authenticated:   true,
				IsKetuaCawangan: true,
				CanAccessStaff:  true,
				StaffID:         "staff-1",
			},
		},
		{
			name:     "active plain staff gets staff access only",
			identity: staffIdentity(RoleStaff, StaffStatusActive, nil),
			want: Capabilities{
				Authenticated:  true,
				CanAccessStaff: true,
				StaffID:        "staff-1",
			},
		},
		{
			name:     "inactive super admin keeps admin flag but loses staff access",
			identity: staffIdentity(RoleSuperAdmin, StaffStatusInactive, nil),
			want: Capabilities{
				Authenticated:  true,
				IsSuperAdmin:   true,
				CanAccessAdmin: true,
				StaffID:        "staff-1",
			},
		},
		{
			name:     "inactive zone leader loses staff access",
			identity: staffIdentity(RoleZoneLeader, StaffStatusInactive, &zone),
			want: Capabilities{
				Authenticated: true,
				IsZoneLeader:  true,
				StaffID:       "staff-1",
				ZoneID:        &zone,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.identity))
		})
	}
}

func TestClassify_Community(t *testing.T) {
	identity := Identity{
		Kind: IdentityCommunity,
		Community: &CommunityIdentity{
			ProfileID:          "profile-1",
			VerificationStatus: VerificationPending,
		},
	}

	caps := Classify(identity)

	assert.True(t, caps.Authenticated)
	assert.True(t, caps.CanAccessCommunity)
	assert.False(t, caps.CanAccessAdmin)
	assert.False(t, caps.CanAccessStaff)
}

func TestClassify_Unauthenticated(t *testing.T) {
	caps := Classify(Unauthenticated())

	assert.Equal(t, Capabilities{}, caps)
}

func TestClassify_StaffKindWithoutPayload(t *testing.T) {
	// Corrupt identity: staff kind but no payload. Only the
	// authenticated flag survives, no workspace access.
	caps := Classify(Identity{Kind: IdentityStaff})

	assert.True(t, caps.Authenticated)
	assert.False(t, caps.CanAccessAdmin)
	assert.False(t, caps.CanAccessStaff)
	assert.False(t, caps.CanAccessCommunity)
}

func TestStaffRole_IsAdminCapable(t *testing.T) {
	assert.True(t, RoleSuperAdmin.IsAdminCapable())
	assert.True(t, RoleAdun.IsAdminCapable())
	assert.False(t, RoleZoneLeader.IsAdminCapable())
	assert.False(t, RoleKetuaCawangan.IsAdminCapable())
	assert.False(t, RoleStaff.IsAdminCapable())
}
