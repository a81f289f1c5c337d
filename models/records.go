package models

import "time"

// Fields persisted as pointers deliberately round-trip as null when absent,
// matching the route-guard collaborator's expectations.

// RoleProfile is the role-specific profile record, keyed uniquely by user id.
type RoleProfile struct {
	UserID                string    `bson:"userId" json:"userId"`
	UserType              UserType  `bson:"userType" json:"userType"`
	CompanyName           *string   `bson:"companyName" json:"companyName"`
	ProjectName           *string   `bson:"projectName" json:"projectName"`
	ProjectCategory       *string   `bson:"projectCategory" json:"projectCategory"`
	ProjectDescription    *string   `bson:"projectDescription" json:"projectDescription"`
	CompanyTelephone      *string   `bson:"companyTelephone" json:"companyTelephone"`
	InvestmentPreferences *string   `bson:"investmentPreferences" json:"investmentPreferences"`
	// Populated only for inventors; always null for other roles.
	ExploitationLicenseRoyalty *string `bson:"exploitationLicenseRoyalty" json:"exploitationLicenseRoyalty"`
	CreatedAt                  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt                  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CommercialProposal is the optional proposal record, keyed uniquely by user id.
type CommercialProposal struct {
	UserID                       string    `bson:"userId" json:"userId"`
	CapitalPercentage            *string   `bson:"capitalPercentage" json:"capitalPercentage"`
	CapitalTotalValue            *string   `bson:"capitalTotalValue" json:"capitalTotalValue"`
	LicenseFee                   *string   `bson:"licenseFee" json:"licenseFee"`
	LicensingRoyaltiesPercentage *string   `bson:"licensingRoyaltiesPercentage" json:"licensingRoyaltiesPercentage"`
	FranchiseeInvestment         *string   `bson:"franchiseeInvestment" json:"franchiseeInvestment"`
	MonthlyRoyalties             *string   `bson:"monthlyRoyalties" json:"monthlyRoyalties"`
	TotalSaleOfProject           *string   `bson:"totalSaleOfProject" json:"totalSaleOfProject"`
	InitialLicenseValue          *string   `bson:"initialLicenseValue" json:"initialLicenseValue"`
	PatentSale                   *string   `bson:"patentSale" json:"patentSale"`
	CreatedAt                    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt                    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PitchMaterials is the media record, keyed uniquely by user id.
type PitchMaterials struct {
	UserID            string    `bson:"userId" json:"userId"`
	CoverImageURL     *string   `bson:"coverImageUrl" json:"coverImageUrl"`
	PhotoURL          *string   `bson:"photoUrl" json:"photoUrl"`
	PitchVideoURL     *string   `bson:"pitchVideoUrl" json:"pitchVideoUrl"`
	PhotosURLs        []string  `bson:"photosUrls" json:"photosUrls"`
	PitchVideosURLs   []string  `bson:"pitchVideosUrls" json:"pitchVideosUrls"`
	FactSheetURL      *string   `bson:"factSheetUrl" json:"factSheetUrl"`
	TechnicalSheetURL *string   `bson:"technicalSheetUrl" json:"technicalSheetUrl"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Project is the public listing created for investment-seeking roles.
// Uniqueness of (userId, title) is enforced by a pre-insert existence check.
type Project struct {
	ID                string    `bson:"id" json:"id"`
	UserID            string    `bson:"userId" json:"userId"`
	Title             string    `bson:"title" json:"title"`
	Category          string    `bson:"category" json:"category"`
	Description       string    `bson:"description" json:"description"`
	Location          string    `bson:"location" json:"location"`
	InvestmentPercent *float64  `bson:"investmentPercent" json:"investmentPercent"`
	ImageURLs         []string  `bson:"imageUrls" json:"imageUrls"`
	VideoURLs         []string  `bson:"videoUrls" json:"videoUrls"`
	Status            string    `bson:"status" json:"status"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}
