package service

import (
	"context"
	"errors"
	"fmt"

	"khidmat-api/internal/authz"
	"khidmat-api/internal/domain"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/repo"

	"go.uber.org/zap"
)

var (
	ErrIssueNotFound      = repo.ErrIssueNotFound
	ErrInvalidIssueStatus = errors.New("invalid issue status")
)

const (
	defaultIssueLimit = 20
	maxIssueLimit     = 100
)

// IssueStore is the persistence surface the issue service depends on,
// satisfied by *repo.IssueRepository
type IssueStore interface {
	List(ctx context.Context, params domain.ListIssuesParams) ([]domain.Issue, string, error)
	Get(ctx context.Context, issueID string) (*domain.Issue, error)
	Create(ctx context.Context, issue *domain.Issue) error
	UpdateStatus(ctx context.Context, issueID string, status domain.IssueStatus) error
	AssignStaff(ctx context.Context, issueID string, staffID *string) error
	Delete(ctx context.Context, issueID string) error
}

// ProfileReader resolves the reporting profile when a community member
// files an issue, satisfied by *repo.ProfileRepository
type ProfileReader interface {
	GetProfile(ctx context.Context, profileID string) (*domain.Profile, error)
}

type IssueService struct {
	issues   IssueStore
	profiles ProfileReader
	audit    AuditLogger
	log      *logger.Logger
}

func NewIssueService(issues IssueStore, profiles ProfileReader, audit AuditLogger, log *logger.Logger) *IssueService {
	return &IssueService{
		issues:   issues,
		profiles: profiles,
		audit:    audit,
		log:      log,
	}
}

// CreateIssue files an issue. Community callers become the bound reporter;
// their zone defaults from the profile. Staff-entered issues have no
// reporter and are the only issues that can ever be deleted.
func (s *IssueService) CreateIssue(ctx context.Context, identity domain.Identity, req *domain.CreateIssueRequest) (*domain.Issue, error) {
	if !identity.IsAuthenticated() {
		return nil, authz.ErrUnauthenticated
	}

	issue := &domain.Issue{
		ID:          generateID(),
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.IssueStatusPending,
		IssueTypeID: req.IssueTypeID,
		Category:    req.Category,
		ZoneID:      req.ZoneID,
	}

	switch identity.Kind {
	case domain.IdentityCommunity:
		profileID := identity.Community.ProfileID
		issue.ReporterID = &profileID
		if issue.ZoneID == nil {
			profile, err := s.profiles.GetProfile(ctx, profileID)
			if err != nil {
				return nil, fmt.Errorf("get reporter profile: %w", err)
			}
			issue.ZoneID = profile.ZoneID
		}
	case domain.IdentityStaff:
		if identity.Staff.Status != domain.StaffStatusActive {
			return nil, authz.Denied("FORBIDDEN", "staff account is inactive")
		}
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	s.log.Info(ctx, "issue created",
		logger.Module("issue"),
		logger.Action("create"),
		zap.String("issue_id", issue.ID),
		zap.Bool("community_reported", issue.ReporterID != nil),
	)

	auditErr := s.audit.LogAction(ctx, identity.PrincipalID(), string(identity.Kind),
		"create", "issue", &issue.ID, nil, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("issue"),
			logger.Action("create"),
			zap.Error(auditErr),
		)
	}

	return issue, nil
}

// ListIssues retrieves issues visible to the caller. Community members see
// only their own reports; zone leaders are pinned to their zone; other
// staff roles see everything.
func (s *IssueService) ListIssues(ctx context.Context, identity domain.Identity, params domain.ListIssuesParams) (*domain.IssueListResponse, error) {
	if !identity.IsAuthenticated() {
		return nil, authz.ErrUnauthenticated
	}

	switch identity.Kind {
	case domain.IdentityCommunity:
		profileID := identity.Community.ProfileID
		params.ReporterID = &profileID
	case domain.IdentityStaff:
		staff := identity.Staff
		if staff.Status != domain.StaffStatusActive {
			return nil, authz.Denied("FORBIDDEN", "staff account is inactive")
		}
		if staff.Role == domain.RoleZoneLeader && staff.ZoneID != nil {
			params.ZoneID = staff.ZoneID
		}
	}

	if params.Limit <= 0 {
		params.Limit = defaultIssueLimit
	}
	if params.Limit > maxIssueLimit {
		params.Limit = maxIssueLimit
	}

	issues, nextCursor, err := s.issues.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	response := &domain.IssueListResponse{Data: issues}
	response.Meta.HasNextPage = nextCursor != ""
	if nextCursor != "" {
		response.Meta.NextCursor = &nextCursor
	}
	return response, nil
}

// GetIssue retrieves one issue. Community members may only read their own
// reports; cross-reporter reads come back as not found to avoid leaking
// issue existence.
func (s *IssueService) GetIssue(ctx context.Context, identity domain.Identity, issueID string) (*domain.Issue, error) {
	if !identity.IsAuthenticated() {
		return nil, authz.ErrUnauthenticated
	}

	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("get issue: %w", err)
	}

	if identity.Kind == domain.IdentityCommunity {
		if issue.ReporterID == nil || *issue.ReporterID != identity.Community.ProfileID {
			return nil, ErrIssueNotFound
		}
	}

	return issue, nil
}

// UpdateStatus moves an issue to a new status. Active staff only; any
// defined status can follow any other.
func (s *IssueService) UpdateStatus(ctx context.Context, identity domain.Identity, issueID string, req *domain.UpdateIssueStatusRequest) (*domain.Issue, error) {
	staff, err := requireStaff(identity)
	if err != nil {
		return nil, err
	}

	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIssueStatus, req.Status)
	}

	if err := s.issues.UpdateStatus(ctx, issueID, req.Status); err != nil {
		return nil, fmt.Errorf("update issue status: %w", err)
	}

	auditErr := s.audit.LogAction(ctx, staff.StaffID, string(domain.IdentityStaff),
		"update_status", "issue", &issueID,
		map[string]interface{}{"status": req.Status}, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("issue"),
			logger.Action("update_status"),
			zap.Error(auditErr),
		)
	}

	return s.issues.Get(ctx, issueID)
}

// AssignStaff sets or clears the staff member responsible for an issue.
// Admin-capable roles only.
func (s *IssueService) AssignStaff(ctx context.Context, identity domain.Identity, issueID string, staffID *string) (*domain.Issue, error) {
	actor, err := requireAdminCapable(identity)
	if err != nil {
		return nil, err
	}

	if err := s.issues.AssignStaff(ctx, issueID, staffID); err != nil {
		return nil, fmt.Errorf("assign issue: %w", err)
	}

	auditErr := s.audit.LogAction(ctx, actor.StaffID, string(domain.IdentityStaff),
		"assign", "issue", &issueID, nil, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("issue"),
			logger.Action("assign"),
			zap.Error(auditErr),
		)
	}

	return s.issues.Get(ctx, issueID)
}

// DeleteIssue removes a staff-entered issue. Admin-capable roles only, and
// never for community-reported issues: those are part of the permanent
// record regardless of who asks.
func (s *IssueService) DeleteIssue(ctx context.Context, identity domain.Identity, issueID string) error {
	actor, err := requireAdminCapable(identity)
	if err != nil {
		return err
	}

	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return fmt.Errorf("get issue: %w", err)
	}

	if !domain.CanDeleteIssue(issue) {
		return authz.Denied("COMMUNITY_ISSUE_PROTECTED", "community-reported issues cannot be deleted")
	}

	if err := s.issues.Delete(ctx, issueID); err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}

	s.log.Info(ctx, "issue deleted",
		logger.Module("issue"),
		logger.Action("delete"),
		zap.String("issue_id", issueID),
	)

	auditErr := s.audit.LogAction(ctx, actor.StaffID, string(domain.IdentityStaff),
		"delete", "issue", &issueID, nil, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("issue"),
			logger.Action("delete"),
			zap.Error(auditErr),
		)
	}

	return nil
}
