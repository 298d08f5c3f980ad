package domain

// Workspace is one of the three top-level application areas
type Workspace string

const (
	WorkspaceAdmin     Workspace = "admin"
	WorkspaceStaff     Workspace = "staff"
	WorkspaceCommunity Workspace = "community"
)

// IsValid checks if the workspace is one of the defined constants
func (w Workspace) IsValid() bool {
	switch w {
	case WorkspaceAdmin, WorkspaceStaff, WorkspaceCommunity:
		return true
	default:
		return false
	}
}

// Frontend paths the gate redirects to. These are navigation targets for
// the consuming web layer, not routes served by this API.
const (
	PathAdminDashboard     = "/admin/dashboard"
	PathAdminLogin         = "/admin/login"
	PathStaffDashboard     = "/staff/dashboard"
	PathStaffLogin         = "/staff/login"
	PathCommunityDashboard = "/community/dashboard"
	PathCommunityLogin     = "/community/login"
)

// Decision is the outcome of a workspace gate check: either Allow or a
// redirect target. Absence of access always resolves to a redirect, never
// an error.
type Decision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirect,omitempty"`
}

// Allowed is the gate decision that admits the request
func Allowed() Decision {
	return Decision{Allow: true}
}

// RedirectTo is the gate decision that sends the caller elsewhere
func RedirectTo(path string) Decision {
	return Decision{RedirectTo: path}
}

// Gate decides whether capabilities admit entry to the requested workspace.
// Rules are evaluated top to bottom; the first applicable rule wins.
// The gate never errors for a valid Capabilities value.
func Gate(caps Capabilities, workspace Workspace) Decision {
	switch workspace {
	case WorkspaceAdmin:
		if !caps.CanAccessAdmin {
			switch {
			case caps.CanAccessStaff:
				return RedirectTo(PathStaffDashboard)
			case caps.CanAccessCommunity:
				return RedirectTo(PathCommunityDashboard)
			default:
				return RedirectTo(PathAdminLogin)
			}
		}
		// Admin-capable but no bound staff record: provisioning is
		// incomplete, send back to login.
		if caps.StaffID == "" {
			return RedirectTo(PathAdminLogin)
		}
		return Allowed()

	case WorkspaceStaff:
		if !caps.CanAccessStaff && !caps.CanAccessAdmin {
			if caps.CanAccessCommunity {
				return RedirectTo(PathCommunityDashboard)
			}
			if !caps.Authenticated {
				return RedirectTo(PathStaffLogin)
			}
			// Authenticated but no resolvable access: admit and let the
			// client-side check decide, avoiding redirect loops on the
			// login page itself.
			return Allowed()
		}
		return Allowed()

	case WorkspaceCommunity:
		if !caps.CanAccessCommunity {
			switch {
			case caps.CanAccessAdmin:
				return RedirectTo(PathAdminDashboard)
			case caps.CanAccessStaff:
				return RedirectTo(PathStaffDashboard)
			default:
				return RedirectTo(PathCommunityLogin)
			}
		}
		return Allowed()
	}

	// Unknown workspace: treat like an unauthenticated community request
	return RedirectTo(PathCommunityLogin)
}
