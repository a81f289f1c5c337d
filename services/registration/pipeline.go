package registration

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pitchinvest/database/repository"
	"pitchinvest/models"
	"pitchinvest/services/storage"
	"pitchinvest/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// BillingRedirectURL is where the client is sent after a completed
// registration. The platform requires payment before the pending-approval
// account gains access; the route guard enforces that, not this pipeline.
const BillingRedirectURL = "/subscription?mandatory=true"

// leadingNumber extracts the leading numeric token from a free-text value
// such as "25% equity".
var leadingNumber = regexp.MustCompile(`^\s*([0-9]+(?:[.,][0-9]+)?)`)

// Pipeline persists a fully validated, verified registration across the
// record types. Phases run strictly in order; there is no cross-phase
// transaction. Upserts are idempotent by user id so a browser retry after a
// transient failure cannot create duplicate rows.
type Pipeline struct {
	Users     repository.UserRepository
	Profiles  repository.ProfileRepository
	Proposals repository.ProposalRepository
	Materials repository.MaterialsRepository
	Projects  repository.ProjectRepository
	Storage   storage.Service
	Logger    *zap.Logger
}

// SubmissionResult is returned to the client on pipeline completion.
type SubmissionResult struct {
	UserID      string          `json:"userId"`
	Token       string          `json:"token"`
	RedirectURL string          `json:"redirectUrl"`
	Progress    []ProgressEntry `json:"progress"`
	// Warnings carries non-fatal notices (failed uploads, skipped records).
	// The registration still counts as succeeded when these are present.
	Warnings []string `json:"warnings,omitempty"`
}

// uploadResult collects the URLs produced by the upload phase. Failed
// categories simply leave their slot empty.
type uploadResult struct {
	CoverImageURL  string
	PhotoURL       string
	PitchVideoURL  string
	PhotoURLs      []string
	PitchVideoURLs []string
}

// Run executes phases 1-8 sequentially. A fatal phase error resets the
// tracker and aborts; the session is left intact so the registrant can retry
// without re-entering data.
func (p *Pipeline) Run(ctx context.Context, session *models.RegistrationSession, files models.FileSet, tracker *ProgressTracker) (*SubmissionResult, error) {
	result := &SubmissionResult{RedirectURL: BillingRedirectURL}

	// Phase 1: identity confirmation.
	tracker.Begin(ProgressVerify)
	userID, token, passwordHash, err := p.confirmIdentity(session)
	if err != nil {
		tracker.Reset()
		return nil, err
	}
	result.UserID = userID
	result.Token = token
	tracker.Complete(ProgressVerify)

	// Phase 2: file uploads. Per-category failures are logged and tolerated;
	// a partially uploaded set is an accepted terminal state.
	tracker.Begin(ProgressUpload)
	uploads := p.uploadFiles(ctx, session, files, result)
	tracker.Complete(ProgressUpload)

	tracker.Begin(ProgressPersist)

	// Phase 3: identity record upsert.
	if err := p.upsertUser(ctx, session, userID, passwordHash, token, uploads); err != nil {
		tracker.Reset()
		return nil, err
	}

	// Phase 4: role-profile upsert.
	if err := p.upsertProfile(ctx, session, userID); err != nil {
		tracker.Reset()
		return nil, err
	}

	// Phase 5: commercial-proposal upsert. Failure is deliberately swallowed;
	// a missing proposal record does not block completion.
	if err := p.upsertProposal(ctx, session, userID); err != nil {
		p.Logger.Error("Commercial-proposal upsert failed", zap.String("userId", userID), zap.Error(err))
		result.Warnings = append(result.Warnings, "commercial proposal could not be saved")
	}

	// Phase 6: pitch-materials upsert. Fatal on failure, unlike phase 5.
	if err := p.upsertMaterials(ctx, session, userID, uploads); err != nil {
		tracker.Reset()
		return nil, err
	}

	// Phase 7: project-listing creation. Non-fatal; already-created records
	// are not rolled back.
	if err := p.createProject(ctx, session, userID, uploads); err != nil {
		p.Logger.Error("Project listing creation failed", zap.String("userId", userID), zap.Error(err))
		result.Warnings = append(result.Warnings, "project listing could not be created")
	}

	// Phase 8: completion.
	tracker.Complete(ProgressPersist)
	tracker.CompleteAll()
	result.Progress = tracker.Entries()

	p.Logger.Info("Registration submitted",
		zap.String("userId", userID),
		zap.String("userType", string(session.UserType)),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// confirmIdentity resolves the user id, issues a session token, and hashes
// the optional password. Non-OAuth registrations must have passed OTP
// verification first.
func (p *Pipeline) confirmIdentity(session *models.RegistrationSession) (userID, token, passwordHash string, err error) {
	if session.IsOAuthUser {
		userID = session.OAuthUserID
		if userID == "" {
			return "", "", "", fmt.Errorf("OAuth registration is missing the provider user id")
		}
	} else {
		if session.OTPStatus != otpStatusVerified {
			return "", "", "", fmt.Errorf("email not verified; please complete the verification code step")
		}
		userID = uuid.New().String()
	}

	if pw := session.Personal.Password; pw != "" {
		if len(pw) < 6 {
			return "", "", "", fmt.Errorf("password must be at least 6 characters long")
		}
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if hashErr != nil {
			return "", "", "", fmt.Errorf("failed to hash password: %w", hashErr)
		}
		passwordHash = string(hashed)
	}

	token, err = utils.GenerateToken(userID, session.Email(), 24*time.Hour)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate auth token: %w", err)
	}
	return userID, token, passwordHash, nil
}

// uploadFiles pushes every supplied binary to its bucket. Cover image and
// profile photo fall back to decoding the base64 preview string when no
// binary handle was supplied.
func (p *Pipeline) uploadFiles(ctx context.Context, session *models.RegistrationSession, files models.FileSet, result *SubmissionResult) uploadResult {
	var uploads uploadResult

	cover := files.CoverImage
	if cover == nil && strings.HasPrefix(session.Pitch.CoverImage, "data:") {
		decoded, err := storage.DecodeDataURI(session.Pitch.CoverImage)
		if err != nil {
			p.Logger.Warn("Failed to decode cover image preview", zap.Error(err))
		} else {
			cover = decoded
		}
	}
	uploads.CoverImageURL = p.uploadOne(ctx, storage.CategoryCoverImage, "cover", cover, result)

	photo := files.Photo
	if photo == nil && strings.HasPrefix(session.Pitch.Photo, "data:") {
		decoded, err := storage.DecodeDataURI(session.Pitch.Photo)
		if err != nil {
			p.Logger.Warn("Failed to decode profile photo preview", zap.Error(err))
		} else {
			photo = decoded
		}
	}
	uploads.PhotoURL = p.uploadOne(ctx, storage.CategoryUserPhoto, "photo", photo, result)

	uploads.PitchVideoURL = p.uploadOne(ctx, storage.CategoryPitchVideo, "pitch-video", files.PitchVideo, result)

	for i, data := range files.Photos {
		if i >= 9 {
			break
		}
		if url := p.uploadOne(ctx, storage.CategoryPitchPhoto, fmt.Sprintf("photo-%d", i+1), data, result); url != "" {
			uploads.PhotoURLs = append(uploads.PhotoURLs, url)
		}
	}
	for i, data := range files.PitchVideos {
		if i >= 2 {
			break
		}
		if url := p.uploadOne(ctx, storage.CategoryPitchVideo, fmt.Sprintf("pitch-video-%d", i+1), data, result); url != "" {
			uploads.PitchVideoURLs = append(uploads.PitchVideoURLs, url)
		}
	}
	return uploads
}

// uploadOne uploads a single payload, converting failure into an absent URL.
func (p *Pipeline) uploadOne(ctx context.Context, category storage.Category, name string, data []byte, result *SubmissionResult) string {
	if len(data) == 0 {
		return ""
	}
	url, err := p.Storage.Upload(ctx, category, name, data)
	if err != nil {
		p.Logger.Error("Upload failed", zap.String("category", string(category)), zap.String("name", name), zap.Error(err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("upload of %s failed", name))
		return ""
	}
	return url
}

func (p *Pipeline) upsertUser(ctx context.Context, session *models.RegistrationSession, userID, passwordHash, token string, uploads uploadResult) error {
	fullName := session.FullName()
	email := session.Email()
	if fullName == "" || email == "" {
		return fmt.Errorf("registration is missing a name or email address")
	}

	user := models.User{
		ID:               userID,
		FullName:         fullName,
		Email:            email,
		PasswordHash:     passwordHash,
		UserType:         session.UserType,
		Telephone:        session.Personal.Telephone,
		PhoneCountryCode: session.Personal.PhoneCountryCode,
		Country:          session.Personal.Country,
		City:             session.Personal.City,
		CoverImageURL:    uploads.CoverImageURL,
		PhotoURL:         uploads.PhotoURL,
		// Every new registration requires admin approval before access,
		// OAuth included.
		ProfileStatus: models.ProfileStatusPending,
		IsOAuthUser:   session.IsOAuthUser,
		TokenHash:     utils.HashToken(token),
	}
	if err := p.Users.Upsert(ctx, &user); err != nil {
		return fmt.Errorf("failed to save user record: %w", err)
	}
	return nil
}

func (p *Pipeline) upsertProfile(ctx context.Context, session *models.RegistrationSession, userID string) error {
	b := session.Business
	profile := models.RoleProfile{
		UserID:                userID,
		UserType:              session.UserType,
		CompanyName:           nullable(b.CompanyName),
		ProjectName:           nullable(b.ProjectName),
		ProjectCategory:       nullable(b.ProjectCategory),
		ProjectDescription:    nullable(b.ProjectDescription),
		CompanyTelephone:      nullable(b.CompanyTelephone),
		InvestmentPreferences: nullable(b.InvestmentPreferences),
	}
	// exploitation_license_royalty is only ever populated for inventors.
	if session.UserType == models.UserTypeInventor {
		profile.ExploitationLicenseRoyalty = nullable(b.Proposal.ExploitationLicenseRoyalty)
	}
	if err := p.Profiles.Upsert(ctx, &profile); err != nil {
		return fmt.Errorf("failed to save role profile: %w", err)
	}
	return nil
}

func (p *Pipeline) upsertProposal(ctx context.Context, session *models.RegistrationSession, userID string) error {
	if session.UserType == models.UserTypeInvestor {
		return nil
	}
	fields := session.Business.Proposal
	if fields.Empty() {
		return nil
	}
	proposal := models.CommercialProposal{
		UserID:                       userID,
		CapitalPercentage:            nullable(fields.CapitalPercentage),
		CapitalTotalValue:            nullable(fields.CapitalTotalValue),
		LicenseFee:                   nullable(fields.LicenseFee),
		LicensingRoyaltiesPercentage: nullable(fields.LicensingRoyaltiesPercentage),
		FranchiseeInvestment:         nullable(fields.FranchiseeInvestment),
		MonthlyRoyalties:             nullable(fields.MonthlyRoyalties),
		TotalSaleOfProject:           nullable(fields.TotalSaleOfProject),
		InitialLicenseValue:          nullable(fields.InitialLicenseValue),
		PatentSale:                   nullable(fields.PatentSale),
	}
	return p.Proposals.Upsert(ctx, &proposal)
}

func (p *Pipeline) upsertMaterials(ctx context.Context, session *models.RegistrationSession, userID string, uploads uploadResult) error {
	materials := models.PitchMaterials{
		UserID:          userID,
		CoverImageURL:   nullable(uploads.CoverImageURL),
		PhotoURL:        nullable(uploads.PhotoURL),
		PitchVideoURL:   nullable(uploads.PitchVideoURL),
		PhotosURLs:      uploads.PhotoURLs,
		PitchVideosURLs: uploads.PitchVideoURLs,
	}
	if materials.PhotosURLs == nil {
		materials.PhotosURLs = []string{}
	}
	if materials.PitchVideosURLs == nil {
		materials.PitchVideosURLs = []string{}
	}
	// Investors keep no gallery media or data sheets regardless of what was
	// entered in the wizard.
	if session.UserType == models.UserTypeInvestor {
		materials.PhotosURLs = []string{}
		materials.PitchVideosURLs = []string{}
		materials.FactSheetURL = nil
		materials.TechnicalSheetURL = nil
	}
	if err := p.Materials.Upsert(ctx, &materials); err != nil {
		return fmt.Errorf("failed to save pitch materials: %w", err)
	}
	return nil
}

func (p *Pipeline) createProject(ctx context.Context, session *models.RegistrationSession, userID string, uploads uploadResult) error {
	if session.UserType == models.UserTypeInvestor {
		return nil
	}
	title := session.Business.ProjectName
	if title == "" {
		return nil
	}

	// Existence pre-check keeps this phase idempotent under retry.
	exists, err := p.Projects.ExistsByOwnerAndTitle(ctx, userID, title)
	if err != nil {
		return fmt.Errorf("failed to check for existing project: %w", err)
	}
	if exists {
		return nil
	}

	var imageURLs []string
	if uploads.CoverImageURL != "" {
		imageURLs = append(imageURLs, uploads.CoverImageURL)
	}
	imageURLs = append(imageURLs, uploads.PhotoURLs...)

	var videoURLs []string
	if uploads.PitchVideoURL != "" {
		videoURLs = append(videoURLs, uploads.PitchVideoURL)
	}
	videoURLs = append(videoURLs, uploads.PitchVideoURLs...)

	project := models.Project{
		ID:                uuid.New().String(),
		UserID:            userID,
		Title:             title,
		Category:          session.Business.ProjectCategory,
		Description:       session.Business.ProjectDescription,
		Location:          joinLocation(session.Personal.City, session.Personal.Country),
		InvestmentPercent: extractPercent(session.Business.Proposal.CapitalPercentage),
		ImageURLs:         imageURLs,
		VideoURLs:         videoURLs,
		Status:            models.ProfileStatusPending,
	}
	return p.Projects.Create(ctx, &project)
}

// nullable maps an empty string to a null field; absent values are persisted
// as null rather than omitted.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func joinLocation(city, country string) string {
	switch {
	case city == "":
		return country
	case country == "":
		return city
	}
	return city + ", " + country
}

// extractPercent pulls the leading numeric token out of a free-text
// percentage such as "25% of equity"; nil when none is present.
func extractPercent(raw string) *float64 {
	match := leadingNumber.FindStringSubmatch(raw)
	if match == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return nil
	}
	return &value
}
