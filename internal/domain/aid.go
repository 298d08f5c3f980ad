package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// =====================================================
// Aid Program Entities
// =====================================================

// AidsProgram maps to the aids_programs table. DistributedHouseholds is a
// cached projection of the count of received=true marks; it is recomputed
// transactionally with every mark write and never incremented in place.
type AidsProgram struct {
	ID                    string    `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	AidType               string    `json:"aidType" db:"aid_type"`
	TotalHouseholds       int       `json:"totalHouseholds" db:"total_households"`
	DistributedHouseholds int       `json:"distributedHouseholds" db:"distributed_households"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time `json:"updatedAt" db:"updated_at"`
}

// AssignmentType discriminates how a program assignment grants scope
type AssignmentType string

const (
	// AssignmentKetuaCawangan grants mark rights over one zone of one program
	AssignmentKetuaCawangan AssignmentType = "ketua_cawangan"
)

// IsValid checks if the assignment type is one of the defined constants
func (t AssignmentType) IsValid() bool {
	return t == AssignmentKetuaCawangan
}

// ProgramAssignment maps to the program_assignments table: it grants a
// staff member write scope over households of one zone within one program.
type ProgramAssignment struct {
	ID             string         `json:"id" db:"id"`
	ProgramID      string         `json:"programId" db:"program_id"`
	AssignedTo     string         `json:"assignedTo" db:"assigned_to"`
	AssignmentType AssignmentType `json:"assignmentType" db:"assignment_type"`
	ZoneID         string         `json:"zoneId" db:"zone_id"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
}

// HouseholdDistributionMark maps to the household_distribution_marks table.
// Invariant: received=true requires MarkedAt and MarkedBy to be set
// together; received=false requires both to be nil. Partial states are a
// data corruption.
type HouseholdDistributionMark struct {
	ProgramID   string     `json:"programId" db:"program_id"`
	HouseholdID string     `json:"householdId" db:"household_id"`
	Received    bool       `json:"received" db:"received"`
	MarkedAt    *time.Time `json:"markedAt,omitempty" db:"marked_at"`
	MarkedBy    *string    `json:"markedBy,omitempty" db:"marked_by"`
}

// Consistent reports whether the received/marked_at/marked_by invariant holds
func (m *HouseholdDistributionMark) Consistent() bool {
	if m.Received {
		return m.MarkedAt != nil && m.MarkedBy != nil
	}
	return m.MarkedAt == nil && m.MarkedBy == nil
}

// Household maps to the households table; zone membership is derived
// through the village.
type Household struct {
	ID        string    `json:"id" db:"id"`
	HeadName  string    `json:"headName" db:"head_name"`
	Address   *string   `json:"address,omitempty" db:"address"`
	VillageID string    `json:"villageId" db:"village_id"`
	ZoneID    string    `json:"zoneId" db:"zone_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// HouseholdChecklistItem is one row of the distribution checklist a staff
// member sees for a program: the household joined with its mark state.
type HouseholdChecklistItem struct {
	Household
	Received bool       `json:"received"`
	MarkedAt *time.Time `json:"markedAt,omitempty"`
	MarkedBy *string    `json:"markedBy,omitempty"`
}

// =====================================================
// Zone Scope
// =====================================================

// ZoneScope is the set of zones a staff identity may act upon for a
// program. Admin-capable identities get the explicit unrestricted marker
// instead of an enumerated set, so "everything" never requires a full zone
// listing.
type ZoneScope struct {
	Unrestricted bool
	ZoneIDs      map[string]struct{}
}

// NewZoneScope builds an enumerated scope from zone ids
func NewZoneScope(zoneIDs ...string) ZoneScope {
	set := make(map[string]struct{}, len(zoneIDs))
	for _, id := range zoneIDs {
		set[id] = struct{}{}
	}
	return ZoneScope{ZoneIDs: set}
}

// UnrestrictedScope is the all-zones marker for admin-capable identities
func UnrestrictedScope() ZoneScope {
	return ZoneScope{Unrestricted: true}
}

// Contains reports whether the scope admits the given zone
func (s ZoneScope) Contains(zoneID string) bool {
	if s.Unrestricted {
		return true
	}
	_, ok := s.ZoneIDs[zoneID]
	return ok
}

// Empty reports whether the scope admits no zone at all
func (s ZoneScope) Empty() bool {
	return !s.Unrestricted && len(s.ZoneIDs) == 0
}

// =====================================================
// Request DTOs
// =====================================================

// CreateProgramRequest is the admin payload for creating an aid program
type CreateProgramRequest struct {
	Name            string `json:"name" validate:"required,min=3,max=255"`
	AidType         string `json:"aidType" validate:"required,max=100"`
	TotalHouseholds int    `json:"totalHouseholds" validate:"gte=0"`
}

// CreateAssignmentRequest grants a staff member zone scope on a program
type CreateAssignmentRequest struct {
	AssignedTo     string         `json:"assignedTo" validate:"required,max=64"`
	AssignmentType AssignmentType `json:"assignmentType" validate:"required"`
	ZoneID         string         `json:"zoneId" validate:"required,max=64"`
}

// Validate checks the CreateProgramRequest. Name is trimmed before
// validation.
func (r *CreateProgramRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.AidType = strings.TrimSpace(r.AidType)

	validate := validator.New()
	return validate.Struct(r)
}

// Validate checks the CreateAssignmentRequest. The assignment type is
// validated by the service against the defined constants.
func (r *CreateAssignmentRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
