package registration

// PhaseStatus is the UI-facing state of one submission phase.
type PhaseStatus string

const (
	PhasePending   PhaseStatus = "pending"
	PhaseLoading   PhaseStatus = "loading"
	PhaseCompleted PhaseStatus = "completed"
)

// Progress-tracker labels, in pipeline order.
const (
	ProgressVerify  = "Verifying identity"
	ProgressUpload  = "Uploading files"
	ProgressPersist = "Saving registration"
)

// ProgressEntry is one row of the submission progress tracker.
type ProgressEntry struct {
	Label  string      `json:"label"`
	Status PhaseStatus `json:"status"`
}

// ProgressTracker mirrors the submission pipeline's current phase for the
// client. Entries are mutated in place as phases advance and reset wholesale
// on failure so a stale "completed" state is never shown.
type ProgressTracker struct {
	entries []ProgressEntry
}

// NewProgressTracker creates a tracker with the standard three phases pending.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		entries: []ProgressEntry{
			{Label: ProgressVerify, Status: PhasePending},
			{Label: ProgressUpload, Status: PhasePending},
			{Label: ProgressPersist, Status: PhasePending},
		},
	}
}

// Begin marks the labelled phase as loading.
func (t *ProgressTracker) Begin(label string) {
	t.set(label, PhaseLoading)
}

// Complete marks the labelled phase as completed.
func (t *ProgressTracker) Complete(label string) {
	t.set(label, PhaseCompleted)
}

// CompleteAll marks every phase completed.
func (t *ProgressTracker) CompleteAll() {
	for i := range t.entries {
		t.entries[i].Status = PhaseCompleted
	}
}

// Reset clears all entries so the client does not render stale progress
// after a failed submission.
func (t *ProgressTracker) Reset() {
	t.entries = nil
}

// Entries returns a copy of the tracker rows.
func (t *ProgressTracker) Entries() []ProgressEntry {
	out := make([]ProgressEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *ProgressTracker) set(label string, status PhaseStatus) {
	for i := range t.entries {
		if t.entries[i].Label == label {
			t.entries[i].Status = status
			return
		}
	}
}
