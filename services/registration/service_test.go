package registration

import (
	"context"
	"testing"

	"pitchinvest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSessionStore struct {
	sessions map[string]models.RegistrationSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]models.RegistrationSession{}}
}

func (s *fakeSessionStore) Save(_ context.Context, sessionID string, session models.RegistrationSession) error {
	s.sessions[sessionID] = session
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, sessionID string) (*models.RegistrationSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

type serviceFixture struct {
	service  *DefaultRegistrationService
	sessions *fakeSessionStore
	guard    *fakeKV
	notifier *capturingNotifier
	pipeline *pipelineFixture
}

func newServiceFixture() *serviceFixture {
	sessions := newFakeSessionStore()
	guard := newFakeKV()
	notifier := &capturingNotifier{}
	pf := newPipelineFixture()
	return &serviceFixture{
		service: &DefaultRegistrationService{
			Sessions: sessions,
			OTP:      NewOTPManager(newFakeKV(), notifier, zap.NewNop()),
			Guard:    guard,
			Pipeline: pf.pipeline,
			Logger:   zap.NewNop(),
		},
		sessions: sessions,
		guard:    guard,
		notifier: notifier,
		pipeline: pf,
	}
}

func TestServiceStart(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	resp, err := f.service.Start(ctx, StartRequest{UserType: models.UserTypeStartUp})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Len(t, resp.Steps, 4)
	assert.Equal(t, StepCompany, resp.NextStep)

	_, err = f.service.Start(ctx, StartRequest{UserType: "pirate"})
	assert.Error(t, err)

	_, err = f.service.Start(ctx, StartRequest{UserType: models.UserTypeStartUp, IsOAuthUser: true})
	assert.Error(t, err, "OAuth start requires the provider user id")

	resp, err = f.service.Start(ctx, StartRequest{
		UserType:    models.UserTypeStartUp,
		IsOAuthUser: true,
		OAuthUserID: "oauth-123",
		OAuthEmail:  "dana@example.com",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Steps, 3, "OAuth flow has no personal step")
}

func TestServiceSaveStepKeepsDraftOnValidationFailure(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	resp, err := f.service.Start(ctx, StartRequest{UserType: models.UserTypeStartUp})
	require.NoError(t, err)

	// Company name missing: validation fails but the entered data survives.
	_, err = f.service.SaveStep(ctx, resp.SessionID, StepCompany, StepUpdate{
		Business: &models.BusinessInfo{
			ProjectName:     "Warehouse drones",
			ProjectCategory: "Technology",
			Proposal:        models.ProposalFields{TotalSaleOfProject: "500000"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "Please enter your company name", err.Error())

	saved, err := f.sessions.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Warehouse drones", saved.Business.ProjectName)

	// Fixing the problem passes and reports the next step.
	saved.Business.CompanyName = "Acme Robotics"
	stepResp, err := f.service.SaveStep(ctx, resp.SessionID, StepCompany, StepUpdate{Business: &saved.Business})
	require.NoError(t, err)
	assert.Equal(t, StepPersonal, stepResp.NextStep)
}

func TestServiceSaveStepRoleChangeRecomputesSteps(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	resp, err := f.service.Start(ctx, StartRequest{UserType: models.UserTypeStartUp})
	require.NoError(t, err)

	investor := models.UserTypeInvestor
	stepResp, err := f.service.SaveStep(ctx, resp.SessionID, StepUserType, StepUpdate{UserType: &investor})
	require.NoError(t, err)
	assert.Equal(t, "Investment profile", stepResp.Steps[1].Title)

	saved, err := f.sessions.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeInvestor, saved.UserType)
}

func TestServiceSaveStepCapsPitchMedia(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	resp, err := f.service.Start(ctx, StartRequest{UserType: models.UserTypeInventor})
	require.NoError(t, err)

	photos := make([]string, 12)
	for i := range photos {
		photos[i] = "photo.jpg"
	}
	_, err = f.service.SaveStep(ctx, resp.SessionID, StepPitch, StepUpdate{
		Pitch: &models.PitchInfo{Photos: photos, PitchVideos: []string{"a", "b", "c"}},
	})
	require.NoError(t, err)

	saved, err := f.sessions.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Len(t, saved.Pitch.Photos, 9)
	assert.Len(t, saved.Pitch.PitchVideos, 2)
}

func TestServiceOTPFlow(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	resp, err := f.service.Start(ctx, StartRequest{UserType: models.UserTypeStartUp})
	require.NoError(t, err)

	// No email entered yet.
	assert.Error(t, f.service.RequestOTP(ctx, resp.SessionID))

	_, err = f.service.SaveStep(ctx, resp.SessionID, StepPersonal, StepUpdate{
		Personal: &models.PersonalInfo{FullName: "Dana Reyes", PersonalEmail: "dana@example.com"},
	})
	require.NoError(t, err)

	require.NoError(t, f.service.RequestOTP(ctx, resp.SessionID))
	saved, _ := f.sessions.Get(ctx, resp.SessionID)
	assert.Equal(t, otpStatusPending, saved.OTPStatus)

	require.NoError(t, f.service.VerifyOTP(ctx, resp.SessionID, f.notifier.lastCode()))
	saved, _ = f.sessions.Get(ctx, resp.SessionID)
	assert.Equal(t, otpStatusVerified, saved.OTPStatus)
}

func TestServiceOTPNotForOAuth(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	resp, err := f.service.Start(ctx, StartRequest{
		UserType:    models.UserTypeStartUp,
		IsOAuthUser: true,
		OAuthUserID: "oauth-123",
		OAuthEmail:  "dana@example.com",
	})
	require.NoError(t, err)
	assert.Error(t, f.service.RequestOTP(ctx, resp.SessionID))
}

func TestServiceDismissOTPKeepsDraft(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	resp, err := f.service.Start(ctx, StartRequest{UserType: models.UserTypeStartUp})
	require.NoError(t, err)
	_, err = f.service.SaveStep(ctx, resp.SessionID, StepPersonal, StepUpdate{
		Personal: &models.PersonalInfo{FullName: "Dana Reyes", PersonalEmail: "dana@example.com"},
	})
	require.NoError(t, err)
	require.NoError(t, f.service.RequestOTP(ctx, resp.SessionID))

	require.NoError(t, f.service.DismissOTP(ctx, resp.SessionID))
	saved, err := f.sessions.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Empty(t, saved.OTPStatus)
	assert.Equal(t, "Dana Reyes", saved.Personal.FullName, "dismissal keeps the draft")

	// The dismissed code no longer verifies.
	assert.ErrorIs(t, f.service.VerifyOTP(ctx, resp.SessionID, f.notifier.lastCode()), ErrOTPNotFound)
}

func TestServiceBackClearsOTPState(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	resp, err := f.service.Start(ctx, StartRequest{UserType: models.UserTypeStartUp})
	require.NoError(t, err)
	_, err = f.service.SaveStep(ctx, resp.SessionID, StepPersonal, StepUpdate{
		Personal: &models.PersonalInfo{FullName: "Dana Reyes", PersonalEmail: "dana@example.com"},
	})
	require.NoError(t, err)
	require.NoError(t, f.service.RequestOTP(ctx, resp.SessionID))

	back, err := f.service.Back(ctx, resp.SessionID, StepPersonal)
	require.NoError(t, err)
	assert.Equal(t, StepCompany, back.NextStep)

	saved, _ := f.sessions.Get(ctx, resp.SessionID)
	assert.Empty(t, saved.OTPStatus)
	assert.Equal(t, "Dana Reyes", saved.Personal.FullName)
}

func submitReadySession(f *serviceFixture, ctx context.Context, t *testing.T) string {
	t.Helper()
	resp, err := f.service.Start(ctx, StartRequest{UserType: models.UserTypeStartUp})
	require.NoError(t, err)

	session, err := f.sessions.Get(ctx, resp.SessionID)
	require.NoError(t, err)
	session.Business = models.BusinessInfo{
		CompanyName:     "Acme Robotics",
		ProjectName:     "Warehouse drones",
		ProjectCategory: "Technology",
		Proposal:        models.ProposalFields{TotalSaleOfProject: "500000"},
	}
	session.Personal = models.PersonalInfo{FullName: "Dana Reyes", PersonalEmail: "dana@example.com"}
	session.OTPStatus = otpStatusVerified
	require.NoError(t, f.sessions.Save(ctx, resp.SessionID, *session))
	return resp.SessionID
}

func TestServiceSubmitDeletesSessionOnSuccess(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sessionID := submitReadySession(f, ctx, t)

	result, err := f.service.Submit(ctx, sessionID, models.FileSet{})
	require.NoError(t, err)
	assert.Equal(t, "/subscription?mandatory=true", result.RedirectURL)

	_, err = f.sessions.Get(ctx, sessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestServiceSubmitKeepsSessionOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sessionID := submitReadySession(f, ctx, t)
	f.pipeline.users.failing = true

	_, err := f.service.Submit(ctx, sessionID, models.FileSet{})
	require.Error(t, err)

	_, err = f.sessions.Get(ctx, sessionID)
	assert.NoError(t, err, "the draft survives a failed submission")

	// Retry works once the store recovers; the guard was released.
	f.pipeline.users.failing = false
	_, err = f.service.Submit(ctx, sessionID, models.FileSet{})
	assert.NoError(t, err)
}

func TestServiceSubmitRevalidatesSteps(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sessionID := submitReadySession(f, ctx, t)

	session, err := f.sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	session.Business.CompanyName = ""
	require.NoError(t, f.sessions.Save(ctx, sessionID, *session))

	_, err = f.service.Submit(ctx, sessionID, models.FileSet{})
	require.Error(t, err)
	assert.Equal(t, "Please enter your company name", err.Error())
	assert.Empty(t, f.pipeline.users.users, "pipeline must not run for an invalid draft")
}

func TestServiceEmailChangeResetsVerification(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sessionID := submitReadySession(f, ctx, t)

	// Re-saving the personal step with the same address keeps the proof.
	_, err := f.service.SaveStep(ctx, sessionID, StepPersonal, StepUpdate{
		Personal: &models.PersonalInfo{FullName: "Dana Reyes", PersonalEmail: "dana@example.com"},
	})
	require.NoError(t, err)
	saved, _ := f.sessions.Get(ctx, sessionID)
	assert.Equal(t, otpStatusVerified, saved.OTPStatus)

	// Swapping in a different address drops the verified status.
	_, err = f.service.SaveStep(ctx, sessionID, StepPersonal, StepUpdate{
		Personal: &models.PersonalInfo{FullName: "Dana Reyes", PersonalEmail: "other@example.com"},
	})
	require.NoError(t, err)
	saved, _ = f.sessions.Get(ctx, sessionID)
	assert.Empty(t, saved.OTPStatus)

	// Submission is blocked until the new address is verified.
	_, err = f.service.Submit(ctx, sessionID, models.FileSet{})
	require.Error(t, err)
	assert.Empty(t, f.pipeline.users.users, "no record may be created for an unverified email")
}

func TestServiceSubmitGuard(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	sessionID := submitReadySession(f, ctx, t)

	// Another submission holds the guard.
	_, err := f.guard.SetNX(ctx, submitGuardPrefix+sessionID, "1", submitGuardTTL)
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, sessionID, models.FileSet{})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
}
