package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pitchinvest/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OTP status values carried on the registration session.
const (
	otpStatusPending  = "pending"
	otpStatusVerified = "verified"
)

const (
	submitGuardPrefix = "regSubmit:"
	submitGuardTTL    = 2 * time.Minute
)

// ErrSubmissionInFlight is returned when a submission for the session is
// already running; the client-side overlay makes this rare but the gate is
// enforced server-side too.
var ErrSubmissionInFlight = errors.New("submission already in progress")

// StartRequest opens a new registration attempt.
type StartRequest struct {
	UserType    models.UserType `json:"userType"`
	IsOAuthUser bool            `json:"isOAuthUser"`
	OAuthUserID string          `json:"oauthUserId,omitempty"`
	OAuthEmail  string          `json:"oauthEmail,omitempty"`
	OAuthName   string          `json:"oauthName,omitempty"`
}

// StepUpdate carries the data entered on one wizard step. Nil sections leave
// the session untouched.
type StepUpdate struct {
	UserType *models.UserType     `json:"userType,omitempty"`
	Business *models.BusinessInfo `json:"business,omitempty"`
	Personal *models.PersonalInfo `json:"personal,omitempty"`
	Pitch    *models.PitchInfo    `json:"pitch,omitempty"`
}

// StepResponse reports the wizard position after a step operation.
type StepResponse struct {
	SessionID string     `json:"sessionId"`
	Steps     []StepInfo `json:"steps"`
	// NextStep is the step the client should render next. After forward
	// navigation it is the following step; after back-navigation it is the
	// preceding one.
	NextStep WizardStep `json:"nextStep,omitempty"`
	Progress float64    `json:"progress"`
}

// Service is the registration workflow entry point.
type Service interface {
	Start(ctx context.Context, req StartRequest) (*StepResponse, error)
	SaveStep(ctx context.Context, sessionID string, step WizardStep, update StepUpdate) (*StepResponse, error)
	Back(ctx context.Context, sessionID string, from WizardStep) (*StepResponse, error)
	RequestOTP(ctx context.Context, sessionID string) error
	VerifyOTP(ctx context.Context, sessionID, code string) error
	DismissOTP(ctx context.Context, sessionID string) error
	Submit(ctx context.Context, sessionID string, files models.FileSet) (*SubmissionResult, error)
}

// DefaultRegistrationService implements Service over a session store, the
// OTP manager, and the submission pipeline.
type DefaultRegistrationService struct {
	Sessions SessionStore
	OTP      *OTPManager
	Guard    KVStore
	Pipeline *Pipeline
	Logger   *zap.Logger
}

// Start validates the chosen role and opens a session.
func (s *DefaultRegistrationService) Start(ctx context.Context, req StartRequest) (*StepResponse, error) {
	if !req.UserType.Valid() {
		return nil, fmt.Errorf("please select an account type")
	}
	if req.IsOAuthUser && req.OAuthUserID == "" {
		return nil, fmt.Errorf("OAuth registration requires the provider user id")
	}

	session := models.RegistrationSession{
		TempID:      uuid.New().String(),
		UserType:    req.UserType,
		IsOAuthUser: req.IsOAuthUser,
		OAuthUserID: req.OAuthUserID,
		OAuthEmail:  req.OAuthEmail,
		OAuthName:   req.OAuthName,
		CreatedAt:   time.Now(),
	}
	if err := s.Sessions.Save(ctx, session.TempID, session); err != nil {
		return nil, err
	}
	return s.stepResponse(&session, StepUserType), nil
}

// SaveStep applies the step's data to the session and gates advancement.
// Entered data is saved even when validation fails, so nothing is lost while
// the registrant fixes the reported problem.
func (s *DefaultRegistrationService) SaveStep(ctx context.Context, sessionID string, step WizardStep, update StepUpdate) (*StepResponse, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if update.UserType != nil && *update.UserType != session.UserType {
		if !update.UserType.Valid() {
			return nil, fmt.Errorf("please select an account type")
		}
		// Role changes keep already-entered fields in the draft; they are
		// simply excluded from payload construction for the new role.
		session.UserType = *update.UserType
	}
	if update.Business != nil {
		session.Business = *update.Business
	}
	if update.Personal != nil {
		previousEmail := session.Email()
		session.Personal = *update.Personal
		// Changing the address invalidates any proof of control over the old
		// one; the new address must be verified from scratch.
		if !session.IsOAuthUser && session.OTPStatus != "" && session.Email() != previousEmail {
			if err := s.OTP.Clear(ctx, previousEmail); err != nil {
				s.Logger.Warn("Failed to clear OTP after email change", zap.Error(err))
			}
			session.OTPStatus = ""
		}
	}
	if update.Pitch != nil {
		pitch := *update.Pitch
		if len(pitch.Photos) > 9 {
			pitch.Photos = pitch.Photos[:9]
		}
		if len(pitch.PitchVideos) > 2 {
			pitch.PitchVideos = pitch.PitchVideos[:2]
		}
		session.Pitch = pitch
	}

	if err := s.Sessions.Save(ctx, sessionID, *session); err != nil {
		return nil, err
	}

	if err := ValidateStep(step, session); err != nil {
		return nil, err
	}
	return s.stepResponse(session, step), nil
}

// Back moves the wizard one step backwards from the given step. Transient OTP
// state is cleared; entered field values are kept. The response's NextStep
// names the step to return to.
func (s *DefaultRegistrationService) Back(ctx context.Context, sessionID string, from WizardStep) (*StepResponse, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.OTPStatus != "" {
		if err := s.OTP.Clear(ctx, session.Email()); err != nil {
			s.Logger.Warn("Failed to clear OTP on back-navigation", zap.Error(err))
		}
		session.OTPStatus = ""
	}
	if err := s.Sessions.Save(ctx, sessionID, *session); err != nil {
		return nil, err
	}

	steps := Steps(session.UserType, session.IsOAuthUser)
	idx := StepIndex(steps, from)
	resp := s.stepResponse(session, from)
	if idx > 0 {
		resp.NextStep = steps[idx-1].Step
		resp.Progress = Progress(steps, steps[idx-1].Step)
	}
	return resp, nil
}

// RequestOTP issues a verification code for the session's email. Only
// non-OAuth registrations go through the OTP sub-flow.
func (s *DefaultRegistrationService) RequestOTP(ctx context.Context, sessionID string) error {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.IsOAuthUser {
		return fmt.Errorf("email verification is not required for this registration")
	}
	email := session.Email()
	if !ValidEmail(email) {
		return fmt.Errorf("please enter a valid email address before verification")
	}

	if err := s.OTP.Request(ctx, email); err != nil {
		return err
	}
	session.OTPStatus = otpStatusPending
	return s.Sessions.Save(ctx, sessionID, *session)
}

// VerifyOTP checks the submitted code and marks the session verified.
func (s *DefaultRegistrationService) VerifyOTP(ctx context.Context, sessionID, code string) error {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.OTP.Verify(ctx, session.Email(), code); err != nil {
		return err
	}
	session.OTPStatus = otpStatusVerified
	return s.Sessions.Save(ctx, sessionID, *session)
}

// DismissOTP aborts the verification attempt. The draft survives so the
// registrant can resume later.
func (s *DefaultRegistrationService) DismissOTP(ctx context.Context, sessionID string) error {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.OTP.Clear(ctx, session.Email()); err != nil {
		s.Logger.Warn("Failed to clear OTP on dismissal", zap.Error(err))
	}
	session.OTPStatus = ""
	return s.Sessions.Save(ctx, sessionID, *session)
}

// Submit re-validates every step and runs the submission pipeline. A
// per-session guard prevents re-entrant submission while one is in flight.
// On success the session is discarded; on failure it is kept so the
// registrant can retry without re-entering data.
func (s *DefaultRegistrationService) Submit(ctx context.Context, sessionID string, files models.FileSet) (*SubmissionResult, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, info := range Steps(session.UserType, session.IsOAuthUser) {
		if err := ValidateStep(info.Step, session); err != nil {
			return nil, err
		}
	}

	acquired, err := s.Guard.SetNX(ctx, submitGuardPrefix+sessionID, "1", submitGuardTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire submission guard: %w", err)
	}
	if !acquired {
		return nil, ErrSubmissionInFlight
	}
	defer func() {
		if err := s.Guard.Del(ctx, submitGuardPrefix+sessionID); err != nil {
			s.Logger.Warn("Failed to release submission guard", zap.Error(err))
		}
	}()

	tracker := NewProgressTracker()
	result, err := s.Pipeline.Run(ctx, session, files, tracker)
	if err != nil {
		return nil, err
	}

	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		s.Logger.Warn("Failed to delete registration session after submission", zap.Error(err))
	}
	return result, nil
}

func (s *DefaultRegistrationService) stepResponse(session *models.RegistrationSession, step WizardStep) *StepResponse {
	steps := Steps(session.UserType, session.IsOAuthUser)
	return &StepResponse{
		SessionID: session.TempID,
		Steps:     steps,
		NextStep:  NextStep(steps, step),
		Progress:  Progress(steps, step),
	}
}
