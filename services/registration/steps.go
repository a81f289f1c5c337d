package registration

import "pitchinvest/models"

// WizardStep identifies one step of the registration wizard.
type WizardStep string

const (
	StepUserType WizardStep = "usertype"
	StepCompany  WizardStep = "company"
	StepPersonal WizardStep = "personal"
	StepPitch    WizardStep = "pitch"
)

// StepInfo carries the user-facing metadata for a wizard step.
type StepInfo struct {
	Step        WizardStep `json:"step"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// Steps computes the ordered wizard step list for a role. The personal step
// is elided entirely for OAuth registrations because identity fields are
// pre-filled by the external provider. The list is recomputed from scratch on
// every call rather than filtered, so role changes always yield a fresh
// sequence.
func Steps(userType models.UserType, isOAuthUser bool) []StepInfo {
	steps := []StepInfo{
		{Step: StepUserType, Title: "Account type", Description: "Choose how you will use Pitch Invest"},
		{Step: StepCompany, Title: companyStepTitle(userType), Description: "Tell investors about your business"},
	}
	if !isOAuthUser {
		steps = append(steps, StepInfo{Step: StepPersonal, Title: "Personal details", Description: "How we can reach you"})
	}
	steps = append(steps, StepInfo{Step: StepPitch, Title: "Pitch materials", Description: "Upload photos and videos of your pitch"})
	return steps
}

func companyStepTitle(userType models.UserType) string {
	if userType == models.UserTypeInvestor {
		return "Investment profile"
	}
	return "Business information"
}

// StepIndex returns the position of step within the computed list, or -1.
func StepIndex(steps []StepInfo, step WizardStep) int {
	for i, s := range steps {
		if s.Step == step {
			return i
		}
	}
	return -1
}

// Progress returns the completion percentage for the given step position.
func Progress(steps []StepInfo, step WizardStep) float64 {
	idx := StepIndex(steps, step)
	if idx < 0 || len(steps) == 0 {
		return 0
	}
	return float64(idx+1) / float64(len(steps)) * 100
}

// NextStep returns the step after the given one, or "" when step is last.
func NextStep(steps []StepInfo, step WizardStep) WizardStep {
	idx := StepIndex(steps, step)
	if idx < 0 || idx+1 >= len(steps) {
		return ""
	}
	return steps[idx+1].Step
}
