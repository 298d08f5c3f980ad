package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// =====================================================
// Issue Status Constants (Type Safety)
// =====================================================

// IssueStatus is the lifecycle status of a reported issue
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "pending"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// String returns the string representation of the IssueStatus
func (s IssueStatus) String() string {
	return string(s)
}

// IsValid checks if the status is one of the defined constants
func (s IssueStatus) IsValid() bool {
	switch s {
	case IssueStatusPending, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	default:
		return false
	}
}

// =====================================================
// Issue Entity
// =====================================================

// Issue maps to the issues table. ReporterID is the community profile that
// reported the issue; nil means the issue was entered by staff or an admin.
type Issue struct {
	ID              string      `json:"id" db:"id"`
	Title           string      `json:"title" db:"title"`
	Description     *string     `json:"description,omitempty" db:"description"`
	ReporterID      *string     `json:"reporterId,omitempty" db:"reporter_id"`
	AssignedStaffID *string     `json:"assignedStaffId,omitempty" db:"assigned_staff_id"`
	ZoneID          *string     `json:"zoneId,omitempty" db:"zone_id"`
	Status          IssueStatus `json:"status" db:"status"`
	IssueTypeID     *string     `json:"issueTypeId,omitempty" db:"issue_type_id"`
	Category        *string     `json:"category,omitempty" db:"category"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt" db:"updated_at"`
}

// CanDeleteIssue is the deletion-eligibility rule: community-authored
// issues (reporter_id set) are part of the permanent record and may never
// be deleted by admins. Only staff/admin-entered issues are deletable.
func CanDeleteIssue(issue *Issue) bool {
	return issue.ReporterID == nil
}

// =====================================================
// Request DTOs
// =====================================================

// CreateIssueRequest is the payload for reporting or entering an issue.
// The reporter is never taken from the body: community reports bind the
// session profile, staff entries leave reporter_id null.
type CreateIssueRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=4000"`
	IssueTypeID *string `json:"issueTypeId,omitempty" validate:"omitempty,max=64"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	ZoneID      *string `json:"zoneId,omitempty" validate:"omitempty,max=64"`
}

// UpdateIssueStatusRequest moves an issue to a new status. Transitions are
// permissive across the defined statuses; only undefined values are
// rejected.
type UpdateIssueStatusRequest struct {
	Status IssueStatus `json:"status" validate:"required"`
}

// Validate checks the CreateIssueRequest. Title is trimmed before
// validation.
func (r *CreateIssueRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Description != nil {
		trimmed := strings.TrimSpace(*r.Description)
		r.Description = &trimmed
	}

	validate := validator.New()
	return validate.Struct(r)
}

// Validate checks the UpdateIssueStatusRequest. Undefined status values
// are caught by the service, which owns the transition rules.
func (r *UpdateIssueStatusRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ListIssuesParams filters an issue listing
type ListIssuesParams struct {
	ZoneID     *string
	ReporterID *string
	Status     *IssueStatus
	Limit      int
	Cursor     *string
}

// IssueListResponse is the paginated listing envelope
type IssueListResponse struct {
	Data []Issue `json:"data"`
	Meta struct {
		HasNextPage bool    `json:"hasNextPage"`
		NextCursor  *string `json:"nextCursor,omitempty"`
	} `json:"meta"`
}
