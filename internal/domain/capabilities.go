package domain

// Capabilities is the request-scoped value object derived from an Identity.
// It is recomputed on every request and never persisted. Flags are
// independent: an active super_admin has both canAccessAdmin and
// canAccessStaff set.
type Capabilities struct {
	Authenticated bool `json:"authenticated"`

	IsSuperAdmin    bool `json:"isSuperAdmin"`
	IsAdun          bool `json:"isAdun"`
	IsZoneLeader    bool `json:"isZoneLeader"`
	IsKetuaCawangan bool `json:"isKetuaCawangan"`

	CanAccessAdmin     bool `json:"canAccessAdmin"`
	CanAccessStaff     bool `json:"canAccessStaff"`
	CanAccessCommunity bool `json:"canAccessCommunity"`

	// StaffID/ZoneID pass through from the identity when Kind==staff
	StaffID string  `json:"staffId,omitempty"`
	ZoneID  *string `json:"zoneId,omitempty"`
}

// Classify maps a resolved identity to its capability flags. Pure function:
// no I/O beyond what the identity already carries.
func Classify(identity Identity) Capabilities {
	caps := Capabilities{Authenticated: identity.IsAuthenticated()}

	switch identity.Kind {
	case IdentityStaff:
		if identity.Staff == nil {
			return caps
		}
		s := identity.Staff
		caps.IsSuperAdmin = s.Role == RoleSuperAdmin
		caps.IsAdun = s.Role == RoleAdun
		caps.IsZoneLeader = s.Role == RoleZoneLeader
		caps.IsKetuaCawangan = s.Role == RoleKetuaCawangan

		caps.CanAccessAdmin = caps.IsSuperAdmin || caps.IsAdun
		caps.CanAccessStaff = s.Status == StaffStatusActive

		caps.StaffID = s.StaffID
		caps.ZoneID = s.ZoneID

	case IdentityCommunity:
		caps.CanAccessCommunity = true
	}

	return caps
}
