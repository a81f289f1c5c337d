package models

import "time"

// UserType identifies which of the four account roles a registration is for.
type UserType string

const (
	UserTypeInventor UserType = "inventor"
	UserTypeStartUp  UserType = "startup"
	UserTypeCompany  UserType = "company"
	UserTypeInvestor UserType = "investor"
)

// Valid reports whether t is one of the four supported roles.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeInventor, UserTypeStartUp, UserTypeCompany, UserTypeInvestor:
		return true
	}
	return false
}

// SeeksInvestment reports whether the role publishes a project looking for capital.
func (t UserType) SeeksInvestment() bool {
	return t != UserTypeInvestor
}

// ProposalFields groups every commercial-proposal value collected on the
// business-info step. All values are kept as entered (numeric-as-string);
// parsing happens at submission time.
type ProposalFields struct {
	CapitalPercentage            string `json:"capitalPercentage,omitempty"`
	CapitalTotalValue            string `json:"capitalTotalValue,omitempty"`
	LicenseFee                   string `json:"licenseFee,omitempty"`
	LicensingRoyaltiesPercentage string `json:"licensingRoyaltiesPercentage,omitempty"`
	FranchiseeInvestment         string `json:"franchiseeInvestment,omitempty"`
	MonthlyRoyalties             string `json:"monthlyRoyalties,omitempty"`
	TotalSaleOfProject           string `json:"totalSaleOfProject,omitempty"`
	InitialLicenseValue          string `json:"initialLicenseValue,omitempty"`
	PatentSale                   string `json:"patentSale,omitempty"`
	ExploitationLicenseRoyalty   string `json:"exploitationLicenseRoyalty,omitempty"`
}

// Empty reports whether no proposal-related field was ever populated.
func (p ProposalFields) Empty() bool {
	return p == ProposalFields{}
}

// BusinessInfo is the data collected on the company step of the wizard.
type BusinessInfo struct {
	CompanyName           string         `json:"companyName,omitempty"`
	ProjectName           string         `json:"projectName,omitempty"`
	ProjectCategory       string         `json:"projectCategory,omitempty"`
	ProjectDescription    string         `json:"projectDescription,omitempty"`
	CompanyTelephone      string         `json:"companyTelephone,omitempty"`
	CompanyPhoneCountry   string         `json:"companyPhoneCountry,omitempty"`
	InvestmentPreferences string         `json:"investmentPreferences,omitempty"`
	Proposal              ProposalFields `json:"proposal,omitempty"`
}

// PersonalInfo is the data collected on the personal step. The step is elided
// entirely for OAuth registrations because the identity provider pre-fills it.
type PersonalInfo struct {
	FullName         string `json:"fullName,omitempty"`
	PersonalEmail    string `json:"personalEmail,omitempty"`
	Password         string `json:"password,omitempty"`
	Telephone        string `json:"telephone,omitempty"`
	PhoneCountryCode string `json:"phoneCountryCode,omitempty"`
	Country          string `json:"country,omitempty"`
	City             string `json:"city,omitempty"`
}

// PitchInfo holds filenames or base64 preview strings for uploaded media.
// Binary payloads never enter the session; they travel in a FileSet on submit.
type PitchInfo struct {
	CoverImage  string   `json:"coverImage,omitempty"`
	Photo       string   `json:"photo,omitempty"`
	PitchVideo  string   `json:"pitchVideo,omitempty"`
	Photos      []string `json:"photos,omitempty"`      // up to 9
	PitchVideos []string `json:"pitchVideos,omitempty"` // up to 2 additional
}

// FileSet carries the binary payloads for a submission, keyed by media slot.
// It is ownership-isolated from the session so blobs are never serialized
// into Redis alongside the form state.
type FileSet struct {
	CoverImage  []byte
	Photo       []byte
	PitchVideo  []byte
	Photos      [][]byte
	PitchVideos [][]byte
}

// RegistrationSession holds all transient data during the multi-step
// registration wizard. It lives in Redis for the lifetime of one attempt and
// is discarded on success or abandonment.
type RegistrationSession struct {
	TempID        string       `json:"tempId"`
	UserType      UserType     `json:"userType"`
	IsOAuthUser   bool         `json:"isOAuthUser"`
	OAuthUserID   string       `json:"oauthUserId,omitempty"`
	OAuthEmail    string       `json:"oauthEmail,omitempty"`
	OAuthName     string       `json:"oauthName,omitempty"`
	Business      BusinessInfo `json:"business,omitempty"`
	Personal      PersonalInfo `json:"personal,omitempty"`
	Pitch         PitchInfo    `json:"pitch,omitempty"`
	OTPStatus     string       `json:"otpStatus"` // "", "pending", "verified"
	CreatedAt     time.Time    `json:"createdAt"`
	LastUpdatedAt time.Time    `json:"lastUpdatedAt"`
}

// FullName resolves the registrant's display name, falling back to the
// OAuth-provided name for OAuth registrations.
func (s *RegistrationSession) FullName() string {
	if s.Personal.FullName != "" {
		return s.Personal.FullName
	}
	return s.OAuthName
}

// Email resolves the registrant's email, falling back to the OAuth-provided
// address for OAuth registrations.
func (s *RegistrationSession) Email() string {
	if s.Personal.PersonalEmail != "" {
		return s.Personal.PersonalEmail
	}
	return s.OAuthEmail
}
