package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"khidmat-api/internal/authz"
	"khidmat-api/internal/domain"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/repo"

	"go.uber.org/zap"
)

var (
	ErrProgramNotFound       = repo.ErrProgramNotFound
	ErrHouseholdNotFound     = repo.ErrHouseholdNotFound
	ErrAssignmentNotFound    = repo.ErrAssignmentNotFound
	ErrInvalidAssignmentType = errors.New("invalid assignment type")
)

// AidStore is the persistence surface the aid service depends on,
// satisfied by *repo.AidRepository.
type AidStore interface {
	AssignmentReader
	GetProgram(ctx context.Context, programID string) (*domain.AidsProgram, error)
	ListPrograms(ctx context.Context) ([]domain.AidsProgram, error)
	CreateProgram(ctx context.Context, program *domain.AidsProgram) error
	CreateAssignment(ctx context.Context, a *domain.ProgramAssignment) error
	ListAssignments(ctx context.Context, programID string) ([]domain.ProgramAssignment, error)
	DeleteAssignment(ctx context.Context, assignmentID string) error
	GetHousehold(ctx context.Context, householdID string) (*domain.Household, error)
	ListChecklist(ctx context.Context, programID string, zoneIDs []string) ([]domain.HouseholdChecklistItem, error)
	SetMark(ctx context.Context, mark *domain.HouseholdDistributionMark) (int, error)
	GetMark(ctx context.Context, programID, householdID string) (*domain.HouseholdDistributionMark, error)
}

// AuditLogger records guarded actions, satisfied by *repo.AuditRepo
type AuditLogger interface {
	LogAction(ctx context.Context, actorID, actorKind, action, resourceType string, resourceID *string, metadata map[string]interface{}, ipAddress, userAgent string) error
}

// StaffChecker validates assignment targets, satisfied by *repo.StaffRepository
type StaffChecker interface {
	StaffExists(ctx context.Context, staffID string) (bool, error)
}

// MarkResult is the outcome of a mark mutation: the stored mark plus the
// recomputed program counter.
type MarkResult struct {
	Mark        *domain.HouseholdDistributionMark `json:"mark"`
	Distributed int                               `json:"distributedHouseholds"`
}

type AidService struct {
	store AidStore
	staff StaffChecker
	scope *ScopeResolver
	audit AuditLogger
	log   *logger.Logger
	now   func() time.Time
}

func NewAidService(store AidStore, staff StaffChecker, scope *ScopeResolver, audit AuditLogger, log *logger.Logger) *AidService {
	return &AidService{
		store: store,
		staff: staff,
		scope: scope,
		audit: audit,
		log:   log,
		now:   time.Now,
	}
}

// requireStaff is the shared precondition of every aid operation: a
// resolved, active staff identity. Community principals never reach aid
// data.
func requireStaff(identity domain.Identity) (*domain.StaffIdentity, error) {
	if !identity.IsAuthenticated() {
		return nil, authz.ErrUnauthenticated
	}
	if identity.Kind != domain.IdentityStaff || identity.Staff == nil {
		return nil, authz.Denied("FORBIDDEN", "aid programs are restricted to staff")
	}
	if identity.Staff.Status != domain.StaffStatusActive {
		return nil, authz.Denied("FORBIDDEN", "staff account is inactive")
	}
	return identity.Staff, nil
}

// requireAdminCapable gates program administration to super_admin and adun
func requireAdminCapable(identity domain.Identity) (*domain.StaffIdentity, error) {
	staff, err := requireStaff(identity)
	if err != nil {
		return nil, err
	}
	if !staff.Role.IsAdminCapable() {
		return nil, authz.Denied("FORBIDDEN", "program administration requires an admin role")
	}
	return staff, nil
}

// MarkReceived sets or clears the received mark of a household within a
// program. Preconditions run in order: the caller must be active staff,
// must hold a non-empty scope for the program, and the household's zone
// must fall inside that scope. Any failed precondition leaves the mark
// and the counter untouched.
func (s *AidService) MarkReceived(ctx context.Context, identity domain.Identity, programID, householdID string, received bool) (*MarkResult, error) {
	staff, err := requireStaff(identity)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetProgram(ctx, programID); err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}

	scope, err := s.scope.ScopedZoneIDs(ctx, staff, programID)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}
	if scope.Empty() {
		return nil, authz.Denied("NOT_ASSIGNED", "no zone assignment for this program")
	}

	household, err := s.store.GetHousehold(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	if !scope.Contains(household.ZoneID) {
		return nil, authz.Denied("FORBIDDEN", "household is outside your assigned zones")
	}

	mark := &domain.HouseholdDistributionMark{
		ProgramID:   programID,
		HouseholdID: householdID,
		Received:    received,
	}
	if received {
		now := s.now().UTC()
		mark.MarkedAt = &now
		mark.MarkedBy = &staff.StaffID
	}

	distributed, err := s.store.SetMark(ctx, mark)
	if err != nil {
		return nil, fmt.Errorf("set mark: %w", err)
	}

	s.log.Info(ctx, "distribution mark updated",
		logger.Module("aid"),
		logger.Action("mark"),
		zap.String("program_id", programID),
		zap.String("household_id", householdID),
		zap.Bool("received", received),
		zap.Int("distributed", distributed),
	)

	action := "mark_received"
	if !received {
		action = "unmark_received"
	}
	auditErr := s.audit.LogAction(ctx, staff.StaffID, string(domain.IdentityStaff),
		action, "household_distribution_mark", &householdID,
		map[string]interface{}{"programId": programID, "distributed": distributed},
		"", "",
	)
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("aid"),
			logger.Action("mark"),
			zap.Error(auditErr),
		)
	}

	return &MarkResult{Mark: mark, Distributed: distributed}, nil
}

// Checklist returns the distribution checklist a staff member may see for
// a program, restricted to their zone scope. Admin-capable roles see every
// zone.
func (s *AidService) Checklist(ctx context.Context, identity domain.Identity, programID string) ([]domain.HouseholdChecklistItem, error) {
	staff, err := requireStaff(identity)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetProgram(ctx, programID); err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}

	scope, err := s.scope.ScopedZoneIDs(ctx, staff, programID)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}
	if scope.Empty() {
		return nil, authz.Denied("NOT_ASSIGNED", "no zone assignment for this program")
	}

	var zoneIDs []string
	if !scope.Unrestricted {
		zoneIDs = make([]string, 0, len(scope.ZoneIDs))
		for id := range scope.ZoneIDs {
			zoneIDs = append(zoneIDs, id)
		}
	}

	items, err := s.store.ListChecklist(ctx, programID, zoneIDs)
	if err != nil {
		return nil, fmt.Errorf("list checklist: %w", err)
	}

	return items, nil
}

// GetProgram retrieves one program for any active staff member
func (s *AidService) GetProgram(ctx context.Context, identity domain.Identity, programID string) (*domain.AidsProgram, error) {
	if _, err := requireStaff(identity); err != nil {
		return nil, err
	}

	program, err := s.store.GetProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}

	return program, nil
}

// ListPrograms retrieves all programs for any active staff member
func (s *AidService) ListPrograms(ctx context.Context, identity domain.Identity) ([]domain.AidsProgram, error) {
	if _, err := requireStaff(identity); err != nil {
		return nil, err
	}

	programs, err := s.store.ListPrograms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}

	return programs, nil
}

// CreateProgram creates an aid program. Admin-capable roles only.
func (s *AidService) CreateProgram(ctx context.Context, identity domain.Identity, req *domain.CreateProgramRequest) (*domain.AidsProgram, error) {
	staff, err := requireAdminCapable(identity)
	if err != nil {
		return nil, err
	}

	program := &domain.AidsProgram{
		ID:              generateID(),
		Name:            req.Name,
		AidType:         req.AidType,
		TotalHouseholds: req.TotalHouseholds,
	}

	if err := s.store.CreateProgram(ctx, program); err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	s.log.Info(ctx, "aid program created",
		logger.Module("aid"),
		logger.Action("create_program"),
		zap.String("program_id", program.ID),
	)

	auditErr := s.audit.LogAction(ctx, staff.StaffID, string(domain.IdentityStaff),
		"create", "aids_program", &program.ID, nil, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("aid"),
			logger.Action("create_program"),
			zap.Error(auditErr),
		)
	}

	return program, nil
}

// CreateAssignment grants a staff member mark rights over one zone of one
// program. Admin-capable roles only; the target must be an active staff
// member.
func (s *AidService) CreateAssignment(ctx context.Context, identity domain.Identity, programID string, req *domain.CreateAssignmentRequest) (*domain.ProgramAssignment, error) {
	staff, err := requireAdminCapable(identity)
	if err != nil {
		return nil, err
	}

	if !req.AssignmentType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAssignmentType, req.AssignmentType)
	}

	if _, err := s.store.GetProgram(ctx, programID); err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}

	exists, err := s.staff.StaffExists(ctx, req.AssignedTo)
	if err != nil {
		return nil, fmt.Errorf("check assignee: %w", err)
	}
	if !exists {
		return nil, repo.ErrStaffNotFound
	}

	assignment := &domain.ProgramAssignment{
		ID:             generateID(),
		ProgramID:      programID,
		AssignedTo:     req.AssignedTo,
		AssignmentType: req.AssignmentType,
		ZoneID:         req.ZoneID,
	}

	if err := s.store.CreateAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	auditErr := s.audit.LogAction(ctx, staff.StaffID, string(domain.IdentityStaff),
		"assign", "program_assignment", &assignment.ID,
		map[string]interface{}{"programId": programID, "assignedTo": req.AssignedTo, "zoneId": req.ZoneID},
		"", "",
	)
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("aid"),
			logger.Action("assign"),
			zap.Error(auditErr),
		)
	}

	return assignment, nil
}

// ListAssignments retrieves the assignments of a program. Admin-capable
// roles only.
func (s *AidService) ListAssignments(ctx context.Context, identity domain.Identity, programID string) ([]domain.ProgramAssignment, error) {
	if _, err := requireAdminCapable(identity); err != nil {
		return nil, err
	}

	assignments, err := s.store.ListAssignments(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	return assignments, nil
}

// DeleteAssignment revokes a grant. Admin-capable roles only.
func (s *AidService) DeleteAssignment(ctx context.Context, identity domain.Identity, assignmentID string) error {
	staff, err := requireAdminCapable(identity)
	if err != nil {
		return err
	}

	if err := s.store.DeleteAssignment(ctx, assignmentID); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}

	auditErr := s.audit.LogAction(ctx, staff.StaffID, string(domain.IdentityStaff),
		"revoke", "program_assignment", &assignmentID, nil, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("aid"),
			logger.Action("revoke"),
			zap.Error(auditErr),
		)
	}

	return nil
}
