package registration

import (
	"context"
	"fmt"
	"testing"

	"pitchinvest/models"
	"pitchinvest/services/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users   map[string]models.User
	failing bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]models.User{}}
}

func (r *fakeUserRepo) Upsert(_ context.Context, user *models.User) error {
	if r.failing {
		return fmt.Errorf("user store unavailable")
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByStatus(_ context.Context, status string) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.ProfileStatus == status {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id, status string) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.ProfileStatus = status
	r.users[id] = u
	return nil
}

type fakeProfileRepo struct {
	profiles map[string]models.RoleProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]models.RoleProfile{}}
}

func (r *fakeProfileRepo) Upsert(_ context.Context, profile *models.RoleProfile) error {
	r.profiles[profile.UserID] = *profile
	return nil
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*models.RoleProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type fakeProposalRepo struct {
	proposals map[string]models.CommercialProposal
	failing   bool
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{proposals: map[string]models.CommercialProposal{}}
}

func (r *fakeProposalRepo) Upsert(_ context.Context, proposal *models.CommercialProposal) error {
	if r.failing {
		return fmt.Errorf("proposal store unavailable")
	}
	r.proposals[proposal.UserID] = *proposal
	return nil
}

func (r *fakeProposalRepo) GetByUserID(_ context.Context, userID string) (*models.CommercialProposal, error) {
	p, ok := r.proposals[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type fakeMaterialsRepo struct {
	materials map[string]models.PitchMaterials
	failing   bool
}

func newFakeMaterialsRepo() *fakeMaterialsRepo {
	return &fakeMaterialsRepo{materials: map[string]models.PitchMaterials{}}
}

func (r *fakeMaterialsRepo) Upsert(_ context.Context, m *models.PitchMaterials) error {
	if r.failing {
		return fmt.Errorf("materials store unavailable")
	}
	r.materials[m.UserID] = *m
	return nil
}

func (r *fakeMaterialsRepo) GetByUserID(_ context.Context, userID string) (*models.PitchMaterials, error) {
	m, ok := r.materials[userID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

type fakeProjectRepo struct {
	projects []models.Project
	failing  bool
}

func (r *fakeProjectRepo) ExistsByOwnerAndTitle(_ context.Context, userID, title string) (bool, error) {
	for _, p := range r.projects {
		if p.UserID == userID && p.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProjectRepo) Create(_ context.Context, project *models.Project) error {
	if r.failing {
		return fmt.Errorf("project store unavailable")
	}
	r.projects = append(r.projects, *project)
	return nil
}

func (r *fakeProjectRepo) GetByOwner(_ context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range r.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeStorage returns predictable URLs and can be told to fail per category.
type fakeStorage struct {
	failCategories map[storage.Category]bool
	uploaded       int
}

func (s *fakeStorage) Upload(_ context.Context, category storage.Category, fileName string, _ []byte) (string, error) {
	if s.failCategories[category] {
		return "", fmt.Errorf("bucket %s unavailable", category)
	}
	s.uploaded++
	return fmt.Sprintf("https://cdn.test/%s/%s", category, fileName), nil
}

func (s *fakeStorage) Delete(_ context.Context, _ string) error {
	return nil
}

type pipelineFixture struct {
	pipeline  *Pipeline
	users     *fakeUserRepo
	profiles  *fakeProfileRepo
	proposals *fakeProposalRepo
	materials *fakeMaterialsRepo
	projects  *fakeProjectRepo
	storage   *fakeStorage
}

func newPipelineFixture() *pipelineFixture {
	f := &pipelineFixture{
		users:     newFakeUserRepo(),
		profiles:  newFakeProfileRepo(),
		proposals: newFakeProposalRepo(),
		materials: newFakeMaterialsRepo(),
		projects:  &fakeProjectRepo{},
		storage:   &fakeStorage{failCategories: map[storage.Category]bool{}},
	}
	f.pipeline = &Pipeline{
		Users:     f.users,
		Profiles:  f.profiles,
		Proposals: f.proposals,
		Materials: f.materials,
		Projects:  f.projects,
		Storage:   f.storage,
		Logger:    zap.NewNop(),
	}
	return f
}

func verifiedStartupSession() *models.RegistrationSession {
	return &models.RegistrationSession{
		TempID:   "sess-1",
		UserType: models.UserTypeStartUp,
		Business: models.BusinessInfo{
			CompanyName:     "Acme Robotics",
			ProjectName:     "Warehouse drones",
			ProjectCategory: "Technology",
			Proposal:        models.ProposalFields{CapitalPercentage: "25", CapitalTotalValue: "100000"},
		},
		Personal: models.PersonalInfo{
			FullName:      "Dana Reyes",
			PersonalEmail: "dana@example.com",
			Password:      "secret1",
			Country:       "United States",
			City:          "Austin",
		},
		OTPStatus: otpStatusVerified,
	}
}

func TestPipelineFullStartupSubmission(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	session := verifiedStartupSession()
	files := models.FileSet{
		CoverImage: []byte("cover-bytes"),
		Photos:     [][]byte{[]byte("p1"), []byte("p2")},
	}

	result, err := f.pipeline.Run(ctx, session, files, NewProgressTracker())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.UserID)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "/subscription?mandatory=true", result.RedirectURL)
	assert.Empty(t, result.Warnings)
	for _, entry := range result.Progress {
		assert.Equal(t, PhaseCompleted, entry.Status)
	}

	user := f.users.users[result.UserID]
	assert.Equal(t, "pending", user.ProfileStatus)
	assert.Equal(t, "Dana Reyes", user.FullName)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NotEmpty(t, user.CoverImageURL)

	profile, ok := f.profiles.profiles[result.UserID]
	require.True(t, ok)
	require.NotNil(t, profile.CompanyName)
	assert.Equal(t, "Acme Robotics", *profile.CompanyName)
	assert.Nil(t, profile.ExploitationLicenseRoyalty)

	proposal, ok := f.proposals.proposals[result.UserID]
	require.True(t, ok)
	require.NotNil(t, proposal.CapitalPercentage)
	assert.Equal(t, "25", *proposal.CapitalPercentage)
	assert.Nil(t, proposal.LicenseFee)

	materials, ok := f.materials.materials[result.UserID]
	require.True(t, ok)
	require.NotNil(t, materials.CoverImageURL)
	assert.Len(t, materials.PhotosURLs, 2)

	require.Len(t, f.projects.projects, 1)
	project := f.projects.projects[0]
	assert.Equal(t, "Warehouse drones", project.Title)
	assert.Equal(t, "Austin, United States", project.Location)
	require.NotNil(t, project.InvestmentPercent)
	assert.Equal(t, 25.0, *project.InvestmentPercent)
	assert.Equal(t, "pending", project.Status)
}

func TestPipelineRequiresVerifiedEmail(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	session := verifiedStartupSession()
	session.OTPStatus = otpStatusPending

	tracker := NewProgressTracker()
	_, err := f.pipeline.Run(ctx, session, models.FileSet{}, tracker)
	require.Error(t, err)
	assert.Empty(t, tracker.Entries(), "tracker resets on fatal failure")
	assert.Empty(t, f.users.users)
}

func TestPipelineProjectCreationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()

	// OAuth keeps the user id stable across retries.
	session := verifiedStartupSession()
	session.IsOAuthUser = true
	session.OAuthUserID = "oauth-123"
	session.OTPStatus = ""

	_, err := f.pipeline.Run(ctx, session, models.FileSet{}, NewProgressTracker())
	require.NoError(t, err)
	_, err = f.pipeline.Run(ctx, session, models.FileSet{}, NewProgressTracker())
	require.NoError(t, err)

	assert.Len(t, f.projects.projects, 1, "retry must not duplicate the project")
	assert.Len(t, f.users.users, 1)
}

func TestPipelineInvestorKeepsNoGalleryMedia(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	session := &models.RegistrationSession{
		TempID:   "sess-2",
		UserType: models.UserTypeInvestor,
		Business: models.BusinessInfo{ProjectCategory: "Energy"},
		Personal: models.PersonalInfo{
			FullName:      "Iris Vogel",
			PersonalEmail: "iris@example.com",
		},
		OTPStatus: otpStatusVerified,
	}
	files := models.FileSet{
		Photo:  []byte("headshot"),
		Photos: [][]byte{[]byte("p1")},
	}

	result, err := f.pipeline.Run(ctx, session, files, NewProgressTracker())
	require.NoError(t, err)

	materials, ok := f.materials.materials[result.UserID]
	require.True(t, ok)
	require.NotNil(t, materials.PhotoURL)
	assert.Empty(t, materials.PhotosURLs)
	assert.Empty(t, materials.PitchVideosURLs)
	assert.Nil(t, materials.FactSheetURL)
	assert.Nil(t, materials.TechnicalSheetURL)

	// Investors never produce a proposal record or a project listing.
	assert.Empty(t, f.proposals.proposals)
	assert.Empty(t, f.projects.projects)
}

func TestPipelineUploadFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	f.storage.failCategories[storage.CategoryCoverImage] = true
	session := verifiedStartupSession()
	files := models.FileSet{
		CoverImage: []byte("cover-bytes"),
		Photo:      []byte("headshot"),
	}

	result, err := f.pipeline.Run(ctx, session, files, NewProgressTracker())
	require.NoError(t, err, "a failed upload must not abort the submission")
	assert.Contains(t, result.Warnings, "upload of cover failed")

	user := f.users.users[result.UserID]
	assert.Empty(t, user.CoverImageURL)
	assert.NotEmpty(t, user.PhotoURL)

	materials := f.materials.materials[result.UserID]
	assert.Nil(t, materials.CoverImageURL)
	require.NotNil(t, materials.PhotoURL)
}

func TestPipelineProposalFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	f.proposals.failing = true
	session := verifiedStartupSession()

	result, err := f.pipeline.Run(ctx, session, models.FileSet{}, NewProgressTracker())
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, "commercial proposal could not be saved")
	assert.Len(t, f.users.users, 1)
	assert.Len(t, f.projects.projects, 1)
}

func TestPipelineProjectFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	f.projects.failing = true
	session := verifiedStartupSession()

	result, err := f.pipeline.Run(ctx, session, models.FileSet{}, NewProgressTracker())
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, "project listing could not be created")
	assert.Len(t, f.users.users, 1)
}

func TestPipelineMaterialsFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	f.materials.failing = true
	session := verifiedStartupSession()

	tracker := NewProgressTracker()
	_, err := f.pipeline.Run(ctx, session, models.FileSet{}, tracker)
	require.Error(t, err)
	assert.Empty(t, tracker.Entries())
}

func TestPipelineUserUpsertFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	f.users.failing = true
	session := verifiedStartupSession()

	tracker := NewProgressTracker()
	_, err := f.pipeline.Run(ctx, session, models.FileSet{}, tracker)
	require.Error(t, err)
	assert.Empty(t, tracker.Entries())
}

func TestPipelineInventorExploitationRoyalty(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture()
	session := verifiedStartupSession()
	session.UserType = models.UserTypeInventor
	session.Business.CompanyName = ""
	session.Business.Proposal = models.ProposalFields{
		PatentSale:                 "75000",
		ExploitationLicenseRoyalty: "8",
	}

	result, err := f.pipeline.Run(ctx, session, models.FileSet{}, NewProgressTracker())
	require.NoError(t, err)

	profile := f.profiles.profiles[result.UserID]
	require.NotNil(t, profile.ExploitationLicenseRoyalty)
	assert.Equal(t, "8", *profile.ExploitationLicenseRoyalty)
	assert.Nil(t, profile.CompanyName)
}

func TestExtractPercent(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{"25", floatPtr(25)},
		{"25% of equity", floatPtr(25)},
		{" 12.5%", floatPtr(12.5)},
		{"12,5", floatPtr(12.5)},
		{"tbd", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := extractPercent(tc.raw)
		if tc.want == nil {
			assert.Nil(t, got, "raw %q", tc.raw)
		} else {
			require.NotNil(t, got, "raw %q", tc.raw)
			assert.Equal(t, *tc.want, *got)
		}
	}
}

func floatPtr(v float64) *float64 { return &v }
