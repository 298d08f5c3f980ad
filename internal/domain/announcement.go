package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var errInvalidAudience = errors.New("invalid announcement audience")

// AnnouncementAudience selects which workspaces see an announcement
type AnnouncementAudience string

const (
	AudienceAll       AnnouncementAudience = "all"
	AudienceStaff     AnnouncementAudience = "staff"
	AudienceCommunity AnnouncementAudience = "community"
)

// IsValid checks if the audience is one of the defined constants
func (a AnnouncementAudience) IsValid() bool {
	switch a {
	case AudienceAll, AudienceStaff, AudienceCommunity:
		return true
	default:
		return false
	}
}

// Announcement maps to the announcements table. Admin-authored, visible to
// the selected audience.
type Announcement struct {
	ID          string               `json:"id" db:"id"`
	Title       string               `json:"title" db:"title"`
	Body        string               `json:"body" db:"body"`
	Audience    AnnouncementAudience `json:"audience" db:"audience"`
	Published   bool                 `json:"published" db:"published"`
	CreatedBy   string               `json:"createdBy" db:"created_by"`
	PublishedAt *time.Time           `json:"publishedAt,omitempty" db:"published_at"`
	CreatedAt   time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" db:"updated_at"`
}

// VisibleTo reports whether the announcement targets the given workspace
func (a *Announcement) VisibleTo(workspace Workspace) bool {
	if !a.Published {
		return false
	}
	switch a.Audience {
	case AudienceAll:
		return true
	case AudienceStaff:
		return workspace == WorkspaceStaff || workspace == WorkspaceAdmin
	case AudienceCommunity:
		return workspace == WorkspaceCommunity
	}
	return false
}

// CreateAnnouncementRequest is the admin payload for a new announcement
type CreateAnnouncementRequest struct {
	Title    string               `json:"title" validate:"required,min=3,max=255"`
	Body     string               `json:"body" validate:"required,max=8000"`
	Audience AnnouncementAudience `json:"audience" validate:"required"`
}

// UpdateAnnouncementRequest patches an announcement. Nil means "leave as
// is"; pointers follow the PATCH semantics used across request DTOs.
type UpdateAnnouncementRequest struct {
	Title     *string               `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Body      *string               `json:"body,omitempty" validate:"omitempty,max=8000"`
	Audience  *AnnouncementAudience `json:"audience,omitempty"`
	Published *bool                 `json:"published,omitempty"`
}

// Validate checks the CreateAnnouncementRequest. Title is trimmed before
// validation; the audience must be one of the defined constants.
func (r *CreateAnnouncementRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)

	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if !r.Audience.IsValid() {
		return errInvalidAudience
	}
	return nil
}

// Validate checks the UpdateAnnouncementRequest
func (r *UpdateAnnouncementRequest) Validate() error {
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
	}

	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Audience != nil && !r.Audience.IsValid() {
		return errInvalidAudience
	}
	return nil
}
