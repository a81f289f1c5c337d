package registration

import (
	"testing"

	"pitchinvest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startupSession(proposal models.ProposalFields) *models.RegistrationSession {
	return &models.RegistrationSession{
		UserType: models.UserTypeStartUp,
		Business: models.BusinessInfo{
			CompanyName:     "Acme Robotics",
			ProjectName:     "Warehouse drones",
			ProjectCategory: "Technology",
			Proposal:        proposal,
		},
	}
}

func TestValidateCompanyStepProposalGroups(t *testing.T) {
	cases := []struct {
		name     string
		proposal models.ProposalFields
		wantOK   bool
	}{
		{"total sale alone", models.ProposalFields{TotalSaleOfProject: "500000"}, true},
		{"equity complete", models.ProposalFields{CapitalPercentage: "25", CapitalTotalValue: "100000"}, true},
		{"equity half filled", models.ProposalFields{CapitalPercentage: "25"}, false},
		{"licensing complete", models.ProposalFields{LicenseFee: "1000", LicensingRoyaltiesPercentage: "5"}, true},
		{"franchising complete", models.ProposalFields{FranchiseeInvestment: "20000", MonthlyRoyalties: "3"}, true},
		{"franchising half filled", models.ProposalFields{MonthlyRoyalties: "3"}, false},
		{"nothing filled", models.ProposalFields{}, false},
		{"patent sale is inventor-only", models.ProposalFields{PatentSale: "75000"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStep(StepCompany, startupSession(tc.proposal))
			if tc.wantOK {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateCompanyStepInventorPatentGroup(t *testing.T) {
	session := &models.RegistrationSession{
		UserType: models.UserTypeInventor,
		Business: models.BusinessInfo{
			ProjectName:     "Self-sealing valve",
			ProjectCategory: "Industrial",
			Proposal:        models.ProposalFields{PatentSale: "75000"},
		},
	}
	assert.NoError(t, ValidateStep(StepCompany, session))

	session.Business.Proposal = models.ProposalFields{InitialLicenseValue: "5000"}
	assert.NoError(t, ValidateStep(StepCompany, session))

	session.Business.Proposal = models.ProposalFields{}
	assert.Error(t, ValidateStep(StepCompany, session))
}

func TestValidateCompanyStepRequiresCompanyName(t *testing.T) {
	session := startupSession(models.ProposalFields{TotalSaleOfProject: "500000"})
	session.Business.CompanyName = ""

	err := ValidateStep(StepCompany, session)
	require.Error(t, err)
	assert.Equal(t, "Please enter your company name", err.Error())

	// Inventors have no company-name requirement.
	session.UserType = models.UserTypeInventor
	assert.NoError(t, ValidateStep(StepCompany, session))
}

func TestValidateCompanyStepInvestor(t *testing.T) {
	session := &models.RegistrationSession{
		UserType: models.UserTypeInvestor,
		Personal: models.PersonalInfo{FullName: "Dana Reyes"},
		Business: models.BusinessInfo{ProjectCategory: "Energy"},
	}
	assert.NoError(t, ValidateStep(StepCompany, session))

	session.Business.ProjectCategory = ""
	assert.Error(t, ValidateStep(StepCompany, session))

	session.Business.ProjectCategory = "Energy"
	session.Personal.FullName = ""
	assert.Error(t, ValidateStep(StepCompany, session))

	// OAuth name satisfies the requirement.
	session.IsOAuthUser = true
	session.OAuthName = "Dana Reyes"
	assert.NoError(t, ValidateStep(StepCompany, session))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("5551234567", "+1"))
	assert.NoError(t, ValidatePhone("(555) 123-4567", "+1"))
	assert.Error(t, ValidatePhone("555123", "+1"), "too short for +1")
	assert.Error(t, ValidatePhone("55512345678", "+1"), "too long for +1")

	assert.NoError(t, ValidatePhone("612345678", "+33"))
	assert.Error(t, ValidatePhone("61234567", "+33"))

	// Unknown dialing codes fall back to the default bounds.
	assert.NoError(t, ValidatePhone("1234567", "+999"))
	assert.Error(t, ValidatePhone("123456", "+999"))
	assert.Error(t, ValidatePhone("12345678901234567", "+999"))

	assert.Error(t, ValidatePhone("", "+1"))
	assert.Error(t, ValidatePhone("555-ACME", "+1"))

	// Only spaces, dashes, and parentheses count as separators.
	assert.Error(t, ValidatePhone("555.123.4567", "+1"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("dana@example.com"))
	assert.True(t, ValidEmail("a.b+c@sub.domain.io"))
	assert.False(t, ValidEmail("dana@example"))
	assert.False(t, ValidEmail("dana example@test.com"))
	assert.False(t, ValidEmail(""))
}

func TestValidatePersonalStep(t *testing.T) {
	session := &models.RegistrationSession{
		UserType: models.UserTypeStartUp,
		Personal: models.PersonalInfo{FullName: "Dana Reyes"},
	}
	// Non-investor roles only require the name here.
	assert.NoError(t, ValidateStep(StepPersonal, session))

	session.Personal.FullName = ""
	assert.Error(t, ValidateStep(StepPersonal, session))

	// Investors must supply the full contact set.
	investor := &models.RegistrationSession{
		UserType: models.UserTypeInvestor,
		Personal: models.PersonalInfo{
			FullName:         "Dana Reyes",
			PersonalEmail:    "dana@example.com",
			Password:         "secret1",
			Telephone:        "5551234567",
			PhoneCountryCode: "+1",
			Country:          "United States",
			City:             "Austin",
		},
	}
	assert.NoError(t, ValidateStep(StepPersonal, investor))

	investor.Personal.Password = "short"
	assert.Error(t, ValidateStep(StepPersonal, investor))
	investor.Personal.Password = ""
	assert.NoError(t, ValidateStep(StepPersonal, investor), "password is optional")

	investor.Personal.City = ""
	assert.Error(t, ValidateStep(StepPersonal, investor))

	// Elided entirely for OAuth registrations.
	oauth := &models.RegistrationSession{UserType: models.UserTypeInvestor, IsOAuthUser: true}
	assert.NoError(t, ValidateStep(StepPersonal, oauth))
}

func TestValidatePitchStepAlwaysPasses(t *testing.T) {
	session := &models.RegistrationSession{UserType: models.UserTypeInventor}
	assert.NoError(t, ValidateStep(StepPitch, session))
}
