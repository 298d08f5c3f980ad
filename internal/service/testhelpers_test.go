package service

import (
	"context"
	"sync"
	"testing"

	"khidmat-api/internal/domain"
	"khidmat-api/internal/observability/logger"
	"khidmat-api/internal/repo"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("khidmat-api-test", "error")
	if err != nil {
		t.Fatalf("build test logger: %v", err)
	}
	return log
}

// fakeAidStore is an in-memory AidStore with the same counter semantics as
// the Postgres implementation: the distributed counter is recomputed from
// the marks on every write.
type fakeAidStore struct {
	mu          sync.Mutex
	programs    map[string]*domain.AidsProgram
	assignments []domain.ProgramAssignment
	households  map[string]*domain.Household
	marks       map[string]map[string]*domain.HouseholdDistributionMark // programID -> householdID
	setMarkErr  error
}

func newFakeAidStore() *fakeAidStore {
	return &fakeAidStore{
		programs:   map[string]*domain.AidsProgram{},
		households: map[string]*domain.Household{},
		marks:      map[string]map[string]*domain.HouseholdDistributionMark{},
	}
}

func (f *fakeAidStore) AssignedZoneIDs(_ context.Context, programID, staffID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	zones := []string{}
	for _, a := range f.assignments {
		if a.ProgramID == programID && a.AssignedTo == staffID {
			zones = append(zones, a.ZoneID)
		}
	}
	return zones, nil
}

func (f *fakeAidStore) GetProgram(_ context.Context, programID string) (*domain.AidsProgram, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.programs[programID]
	if !ok {
		return nil, ErrProgramNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeAidStore) ListPrograms(_ context.Context) ([]domain.AidsProgram, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.AidsProgram{}
	for _, p := range f.programs {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeAidStore) CreateProgram(_ context.Context, program *domain.AidsProgram) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *program
	f.programs[program.ID] = &cp
	return nil
}

func (f *fakeAidStore) CreateAssignment(_ context.Context, a *domain.ProgramAssignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.assignments {
		if existing.ProgramID == a.ProgramID && existing.AssignedTo == a.AssignedTo && existing.ZoneID == a.ZoneID {
			return repo.ErrDuplicateAssignment
		}
	}
	f.assignments = append(f.assignments, *a)
	return nil
}

func (f *fakeAidStore) ListAssignments(_ context.Context, programID string) ([]domain.ProgramAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.ProgramAssignment{}
	for _, a := range f.assignments {
		if a.ProgramID == programID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAidStore) DeleteAssignment(_ context.Context, assignmentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.assignments {
		if a.ID == assignmentID {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return nil
		}
	}
	return ErrAssignmentNotFound
}

func (f *fakeAidStore) GetHousehold(_ context.Context, householdID string) (*domain.Household, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.households[householdID]
	if !ok {
		return nil, ErrHouseholdNotFound
	}
	cp := *h
	return &cp, nil
}

func (f *fakeAidStore) ListChecklist(_ context.Context, programID string, zoneIDs []string) ([]domain.HouseholdChecklistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	allowed := func(zoneID string) bool {
		if zoneIDs == nil {
			return true
		}
		for _, z := range zoneIDs {
			if z == zoneID {
				return true
			}
		}
		return false
	}

	items := []domain.HouseholdChecklistItem{}
	for _, h := range f.households {
		if !allowed(h.ZoneID) {
			continue
		}
		item := domain.HouseholdChecklistItem{Household: *h}
		if m, ok := f.marks[programID][h.ID]; ok {
			item.Received = m.Received
			item.MarkedAt = m.MarkedAt
			item.MarkedBy = m.MarkedBy
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeAidStore) SetMark(_ context.Context, mark *domain.HouseholdDistributionMark) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setMarkErr != nil {
		return 0, f.setMarkErr
	}
	if _, ok := f.programs[mark.ProgramID]; !ok {
		return 0, ErrProgramNotFound
	}

	if f.marks[mark.ProgramID] == nil {
		f.marks[mark.ProgramID] = map[string]*domain.HouseholdDistributionMark{}
	}
	cp := *mark
	f.marks[mark.ProgramID][mark.HouseholdID] = &cp

	distributed := 0
	for _, m := range f.marks[mark.ProgramID] {
		if m.Received {
			distributed++
		}
	}
	f.programs[mark.ProgramID].DistributedHouseholds = distributed
	return distributed, nil
}

func (f *fakeAidStore) GetMark(_ context.Context, programID, householdID string) (*domain.HouseholdDistributionMark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.marks[programID][householdID]; ok {
		cp := *m
		return &cp, nil
	}
	return &domain.HouseholdDistributionMark{ProgramID: programID, HouseholdID: householdID}, nil
}

// fakeAudit records audit entries in memory
type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAudit) LogAction(_ context.Context, _, _, action, _ string, _ *string, _ map[string]interface{}, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAudit) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.actions...)
}

type fakeStaffChecker struct {
	existing map[string]bool
}

func (f *fakeStaffChecker) StaffExists(_ context.Context, staffID string) (bool, error) {
	return f.existing[staffID], nil
}

// fakeIssueStore is an in-memory IssueStore
type fakeIssueStore struct {
	mu     sync.Mutex
	issues map[string]*domain.Issue
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{issues: map[string]*domain.Issue{}}
}

func (f *fakeIssueStore) List(_ context.Context, params domain.ListIssuesParams) ([]domain.Issue, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Issue{}
	for _, i := range f.issues {
		if params.ReporterID != nil && (i.ReporterID == nil || *i.ReporterID != *params.ReporterID) {
			continue
		}
		if params.ZoneID != nil && (i.ZoneID == nil || *i.ZoneID != *params.ZoneID) {
			continue
		}
		if params.Status != nil && i.Status != *params.Status {
			continue
		}
		out = append(out, *i)
	}
	return out, "", nil
}

func (f *fakeIssueStore) Get(_ context.Context, issueID string) (*domain.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.issues[issueID]
	if !ok {
		return nil, ErrIssueNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIssueStore) Create(_ context.Context, issue *domain.Issue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *issue
	f.issues[issue.ID] = &cp
	return nil
}

func (f *fakeIssueStore) UpdateStatus(_ context.Context, issueID string, status domain.IssueStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.issues[issueID]
	if !ok {
		return ErrIssueNotFound
	}
	i.Status = status
	return nil
}

func (f *fakeIssueStore) AssignStaff(_ context.Context, issueID string, staffID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.issues[issueID]
	if !ok {
		return ErrIssueNotFound
	}
	i.AssignedStaffID = staffID
	return nil
}

func (f *fakeIssueStore) Delete(_ context.Context, issueID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.issues[issueID]
	if !ok {
		return ErrIssueNotFound
	}
	if i.ReporterID != nil {
		return ErrIssueNotFound
	}
	delete(f.issues, issueID)
	return nil
}

type fakeProfileReader struct {
	profiles map[string]*domain.Profile
}

func (f *fakeProfileReader) GetProfile(_ context.Context, profileID string) (*domain.Profile, error) {
	p, ok := f.profiles[profileID]
	if !ok {
		return nil, repo.ErrProfileNotFound
	}
	return p, nil
}

// Identity fixtures

func staffIdentity(id string, role domain.StaffRole, zoneID *string) domain.Identity {
	return domain.Identity{
		Kind: domain.IdentityStaff,
		Staff: &domain.StaffIdentity{
			StaffID: id,
			Role:    role,
			ZoneID:  zoneID,
			Status:  domain.StaffStatusActive,
		},
	}
}

func communityIdentity(profileID string) domain.Identity {
	return domain.Identity{
		Kind: domain.IdentityCommunity,
		Community: &domain.CommunityIdentity{
			ProfileID:          profileID,
			VerificationStatus: domain.VerificationVerified,
		},
	}
}

func strPtr(s string) *string { return &s }
