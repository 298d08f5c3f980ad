package service

import (
	"context"
	"fmt"

	"khidmat-api/internal/authz"
	"khidmat-api/internal/domain"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/repo"

	"go.uber.org/zap"
)

var ErrAnnouncementNotFound = repo.ErrAnnouncementNotFound

// AnnouncementStore is the persistence surface for announcements,
// satisfied by *repo.AnnouncementRepository
type AnnouncementStore interface {
	Get(ctx context.Context, announcementID string) (*domain.Announcement, error)
	ListPublished(ctx context.Context, audiences []domain.AnnouncementAudience) ([]domain.Announcement, error)
	ListAll(ctx context.Context) ([]domain.Announcement, error)
	Create(ctx context.Context, a *domain.Announcement) error
	Update(ctx context.Context, announcementID string, req *domain.UpdateAnnouncementRequest) error
	Delete(ctx context.Context, announcementID string) error
}

type AnnouncementService struct {
	store AnnouncementStore
	audit AuditLogger
	log   *logger.Logger
}

func NewAnnouncementService(store AnnouncementStore, audit AuditLogger, log *logger.Logger) *AnnouncementService {
	return &AnnouncementService{store: store, audit: audit, log: log}
}

// ListFor returns published announcements visible from the caller's
// workspace. Admin-capable staff get the full list including drafts.
func (s *AnnouncementService) ListFor(ctx context.Context, identity domain.Identity, workspace domain.Workspace) ([]domain.Announcement, error) {
	if !identity.IsAuthenticated() {
		return nil, authz.ErrUnauthenticated
	}

	if identity.Kind == domain.IdentityStaff && identity.Staff.Role.IsAdminCapable() && workspace == domain.WorkspaceAdmin {
		return s.store.ListAll(ctx)
	}

	audiences := []domain.AnnouncementAudience{domain.AudienceAll}
	switch workspace {
	case domain.WorkspaceAdmin, domain.WorkspaceStaff:
		audiences = append(audiences, domain.AudienceStaff)
	case domain.WorkspaceCommunity:
		audiences = append(audiences, domain.AudienceCommunity)
	}

	announcements, err := s.store.ListPublished(ctx, audiences)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}

	return announcements, nil
}

// Create drafts a new announcement. Admin-capable roles only.
func (s *AnnouncementService) Create(ctx context.Context, identity domain.Identity, req *domain.CreateAnnouncementRequest) (*domain.Announcement, error) {
	staff, err := requireAdminCapable(identity)
	if err != nil {
		return nil, err
	}

	if !req.Audience.IsValid() {
		return nil, fmt.Errorf("invalid audience: %q", req.Audience)
	}

	announcement := &domain.Announcement{
		ID:        generateID(),
		Title:     req.Title,
		Body:      req.Body,
		Audience:  req.Audience,
		CreatedBy: staff.StaffID,
	}

	if err := s.store.Create(ctx, announcement); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}

	auditErr := s.audit.LogAction(ctx, staff.StaffID, string(domain.IdentityStaff),
		"create", "announcement", &announcement.ID, nil, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("announcement"),
			logger.Action("create"),
			zap.Error(auditErr),
		)
	}

	return announcement, nil
}

// Update patches an announcement, including publish/unpublish. Admin-capable
// roles only.
func (s *AnnouncementService) Update(ctx context.Context, identity domain.Identity, announcementID string, req *domain.UpdateAnnouncementRequest) (*domain.Announcement, error) {
	staff, err := requireAdminCapable(identity)
	if err != nil {
		return nil, err
	}

	if req.Audience != nil && !req.Audience.IsValid() {
		return nil, fmt.Errorf("invalid audience: %q", *req.Audience)
	}

	if err := s.store.Update(ctx, announcementID, req); err != nil {
		return nil, fmt.Errorf("update announcement: %w", err)
	}

	auditErr := s.audit.LogAction(ctx, staff.StaffID, string(domain.IdentityStaff),
		"update", "announcement", &announcementID, nil, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("announcement"),
			logger.Action("update"),
			zap.Error(auditErr),
		)
	}

	return s.store.Get(ctx, announcementID)
}

// Delete removes an announcement. Admin-capable roles only.
func (s *AnnouncementService) Delete(ctx context.Context, identity domain.Identity, announcementID string) error {
	staff, err := requireAdminCapable(identity)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, announcementID); err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}

	auditErr := s.audit.LogAction(ctx, staff.StaffID, string(domain.IdentityStaff),
		"delete", "announcement", &announcementID, nil, "", "")
	if auditErr != nil {
		s.log.Warn(ctx, "audit log failed",
			logger.Module("announcement"),
			logger.Action("delete"),
			zap.Error(auditErr),
		)
	}

	return nil
}
