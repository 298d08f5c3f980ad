package domain

import "time"

// =====================================================
// Staff Role Constants (Type Safety)
// =====================================================

// StaffRole is a closed enumeration of staff roles. The source of truth is
// the staff.role column; anything outside this set is treated as data
// corruption, not as a new role.
type StaffRole string

const (
	// RoleSuperAdmin has unrestricted access to every workspace and zone
	RoleSuperAdmin StaffRole = "super_admin"

	// RoleAdun is the elected representative; admin-capable like super_admin
	RoleAdun StaffRole = "adun"

	// RoleZoneLeader manages a single zone bound to the staff record
	RoleZoneLeader StaffRole = "zone_leader"

	// RoleKetuaCawangan is the branch chief; zone scope comes from
	// per-program assignments, not from the staff record
	RoleKetuaCawangan StaffRole = "ketua_cawangan"

	// RoleStaff is a field staff member with no elevated capabilities
	RoleStaff StaffRole = "staff"
)

// String returns the string representation of the StaffRole
func (r StaffRole) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants
func (r StaffRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdun, RoleZoneLeader, RoleKetuaCawangan, RoleStaff:
		return true
	default:
		return false
	}
}

// IsAdminCapable reports whether the role grants admin workspace access
func (r StaffRole) IsAdminCapable() bool {
	return r == RoleSuperAdmin || r == RoleAdun
}

// StaffStatus is the lifecycle status of a staff record. Staff are never
// hard-deleted; deactivation is a status transition.
type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusInactive StaffStatus = "inactive"
)

// IsValid checks if the status is one of the defined constants
func (s StaffStatus) IsValid() bool {
	return s == StaffStatusActive || s == StaffStatusInactive
}

// VerificationStatus is the review state of a community profile
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// IsValid checks if the status is one of the defined constants
func (v VerificationStatus) IsValid() bool {
	switch v {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	default:
		return false
	}
}

// =====================================================
// Identity (resolved principal)
// =====================================================

// IdentityKind discriminates the principal bound to a session
type IdentityKind string

const (
	IdentityStaff           IdentityKind = "staff"
	IdentityCommunity       IdentityKind = "community"
	IdentityUnauthenticated IdentityKind = "unauthenticated"
)

// StaffIdentity is the staff payload of a resolved identity.
// Role/status/zone are read fresh from the store on every resolution,
// never trusted from the session token.
type StaffIdentity struct {
	StaffID string      `json:"staffId"`
	Role    StaffRole   `json:"role"`
	ZoneID  *string     `json:"zoneId,omitempty"`
	Status  StaffStatus `json:"status"`
}

// CommunityIdentity is the community-profile payload of a resolved identity
type CommunityIdentity struct {
	ProfileID          string             `json:"profileId"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	HouseholdMemberID  *string            `json:"householdMemberId,omitempty"`
}

// Identity is the principal resolved for the current request. Exactly one
// of Staff/Community is non-nil when Kind matches; both are nil for
// IdentityUnauthenticated. Identity values are passed explicitly through
// every guard call; there is no ambient session state.
type Identity struct {
	Kind      IdentityKind       `json:"kind"`
	Staff     *StaffIdentity     `json:"staff,omitempty"`
	Community *CommunityIdentity `json:"community,omitempty"`
}

// Unauthenticated returns the identity value used when no valid session
// could be resolved. Callers treat this as a normal value, not an error.
func Unauthenticated() Identity {
	return Identity{Kind: IdentityUnauthenticated}
}

// IsAuthenticated reports whether the identity is bound to a principal
func (i Identity) IsAuthenticated() bool {
	return i.Kind == IdentityStaff || i.Kind == IdentityCommunity
}

// PrincipalID returns the staff or profile id, or "" when unauthenticated.
// Used for audit logging and rate-limit keying.
func (i Identity) PrincipalID() string {
	switch i.Kind {
	case IdentityStaff:
		if i.Staff != nil {
			return i.Staff.StaffID
		}
	case IdentityCommunity:
		if i.Community != nil {
			return i.Community.ProfileID
		}
	}
	return ""
}

// =====================================================
// Stored records
// =====================================================

// Staff maps to the staff table
type Staff struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Role      StaffRole   `json:"role" db:"role"`
	Position  *string     `json:"position,omitempty" db:"position"`
	ZoneID    *string     `json:"zoneId,omitempty" db:"zone_id"`
	Status    StaffStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// Identity derives the request-scoped identity payload from the record
func (s *Staff) Identity() Identity {
	return Identity{
		Kind: IdentityStaff,
		Staff: &StaffIdentity{
			StaffID: s.ID,
			Role:    s.Role,
			ZoneID:  s.ZoneID,
			Status:  s.Status,
		},
	}
}

// Profile maps to the profiles table (community residents)
type Profile struct {
	ID                 string             `json:"id" db:"id"`
	FullName           string             `json:"fullName" db:"full_name"`
	Email              *string            `json:"email,omitempty" db:"email"`
	ICNumber           string             `json:"icNumber" db:"ic_number"`
	VillageID          *string            `json:"villageId,omitempty" db:"village_id"`
	ZoneID             *string            `json:"zoneId,omitempty" db:"zone_id"`
	HouseholdMemberID  *string            `json:"householdMemberId,omitempty" db:"household_member_id"`
	VerificationStatus VerificationStatus `json:"verificationStatus" db:"verification_status"`
	CreatedAt          time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" db:"updated_at"`
}

// Identity derives the request-scoped identity payload from the record
func (p *Profile) Identity() Identity {
	return Identity{
		Kind: IdentityCommunity,
		Community: &CommunityIdentity{
			ProfileID:          p.ID,
			VerificationStatus: p.VerificationStatus,
			HouseholdMemberID:  p.HouseholdMemberID,
		},
	}
}
