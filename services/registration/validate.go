package registration

import (
	"fmt"
	"regexp"
	"strings"

	"pitchinvest/models"
)

// emailPattern is intentionally permissive; it is a sanity check, not a full
// RFC 5322 validation.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// phoneDigitBounds maps a dialing code to the accepted national number
// length. Coarse heuristic, not E.164 validation; codes without an explicit
// entry fall back to the default bounds.
var phoneDigitBounds = map[string]struct{ Min, Max int }{
	"+1":   {10, 10}, // US / Canada
	"+33":  {9, 9},   // France
	"+34":  {9, 9},   // Spain
	"+39":  {9, 11},  // Italy
	"+44":  {10, 10}, // United Kingdom
	"+49":  {10, 11}, // Germany
	"+55":  {10, 11}, // Brazil
	"+351": {9, 9},   // Portugal
}

const (
	defaultPhoneMin = 7
	defaultPhoneMax = 15
)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// ValidEmail reports whether the address looks like an email.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone checks a phone number against the per-country digit-length
// table. Separators are stripped first; any remaining non-digit fails.
func ValidatePhone(number, countryCode string) error {
	cleaned := phoneSeparators.Replace(strings.TrimSpace(number))
	if cleaned == "" {
		return fmt.Errorf("phone number is required")
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return fmt.Errorf("phone number may only contain digits")
		}
	}
	bounds, ok := phoneDigitBounds[countryCode]
	if !ok {
		bounds = struct{ Min, Max int }{defaultPhoneMin, defaultPhoneMax}
	}
	if len(cleaned) < bounds.Min || len(cleaned) > bounds.Max {
		return fmt.Errorf("phone number must be between %d and %d digits for %s", bounds.Min, bounds.Max, countryCode)
	}
	return nil
}

// proposalGroupSatisfied reports whether at least one commercial-proposal
// field group is fully populated. Exactly one satisfied group is sufficient.
func proposalGroupSatisfied(p models.ProposalFields, userType models.UserType) bool {
	switch {
	case p.CapitalPercentage != "" && p.CapitalTotalValue != "": // equity participation
		return true
	case p.LicenseFee != "" && p.LicensingRoyaltiesPercentage != "": // brand licensing
		return true
	case p.FranchiseeInvestment != "" && p.MonthlyRoyalties != "": // franchising
		return true
	case p.TotalSaleOfProject != "": // total sale
		return true
	}
	if userType == models.UserTypeInventor {
		// Patent licensing fee or full assignment of the patent.
		return p.InitialLicenseValue != "" || p.PatentSale != ""
	}
	return false
}

// ValidateStep gates forward navigation for one wizard step. It returns nil
// on pass, or an error carrying the user-facing reason.
func ValidateStep(step WizardStep, session *models.RegistrationSession) error {
	switch step {
	case StepUserType:
		return validateUserTypeStep(session)
	case StepCompany:
		return validateCompanyStep(session)
	case StepPersonal:
		return validatePersonalStep(session)
	case StepPitch:
		// All uploads are optional regardless of role.
		return nil
	default:
		return fmt.Errorf("unknown wizard step %q", step)
	}
}

func validateUserTypeStep(session *models.RegistrationSession) error {
	if !session.UserType.Valid() {
		return fmt.Errorf("please select an account type")
	}
	return nil
}

func validateCompanyStep(session *models.RegistrationSession) error {
	b := session.Business

	if session.UserType == models.UserTypeInvestor {
		if session.FullName() == "" {
			return fmt.Errorf("please enter your full name")
		}
		if b.ProjectCategory == "" {
			return fmt.Errorf("please select a category of interest")
		}
		return nil
	}

	if b.ProjectName == "" {
		return fmt.Errorf("please enter your project name")
	}
	if b.ProjectCategory == "" {
		return fmt.Errorf("please select a project category")
	}
	switch session.UserType {
	case models.UserTypeStartUp, models.UserTypeCompany:
		if b.CompanyName == "" {
			return fmt.Errorf("Please enter your company name")
		}
	}
	if b.CompanyTelephone != "" {
		if err := ValidatePhone(b.CompanyTelephone, b.CompanyPhoneCountry); err != nil {
			return err
		}
	}
	if !proposalGroupSatisfied(b.Proposal, session.UserType) {
		return proposalGateError(session.UserType)
	}
	return nil
}

func proposalGateError(userType models.UserType) error {
	if userType == models.UserTypeInventor {
		return fmt.Errorf("please complete at least one commercial proposal: equity, licensing, franchising, total sale, or a patent fee or assignment")
	}
	return fmt.Errorf("please complete at least one commercial proposal: equity, licensing, franchising, or total sale")
}

func validatePersonalStep(session *models.RegistrationSession) error {
	// Skipped entirely for OAuth registrations; defensive here since the
	// sequencer never emits the step for them.
	if session.IsOAuthUser {
		return nil
	}
	p := session.Personal

	if p.FullName == "" {
		return fmt.Errorf("please enter your full name")
	}

	if session.UserType != models.UserTypeInvestor {
		return nil
	}

	if !ValidEmail(p.PersonalEmail) {
		return fmt.Errorf("please enter a valid email address")
	}
	if p.Password != "" && len(p.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if p.Telephone == "" {
		return fmt.Errorf("please enter your telephone number")
	}
	if err := ValidatePhone(p.Telephone, p.PhoneCountryCode); err != nil {
		return err
	}
	if p.Country == "" {
		return fmt.Errorf("please select your country")
	}
	if p.City == "" {
		return fmt.Errorf("please enter your city")
	}
	return nil
}
