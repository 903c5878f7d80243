package tracking

import "time"

type StepStatus string

const (
	StepPending    StepStatus = "PENDING"
	StepInProgress StepStatus = "IN_PROGRESS"
	StepCompleted  StepStatus = "COMPLETED"
	StepSkipped    StepStatus = "SKIPPED"
)

// StepName is one of the fixed ledger labels.
type StepName string

const (
	StepApplicationSubmitted StepName = "Application Submitted"
	StepResumeReview         StepName = "Resume Review"
	StepDocumentVerification StepName = "Document Verification"
	StepMentorReview         StepName = "Mentor Review"
	StepEmployerReview       StepName = "Employer Review"
	StepInterviewScheduling  StepName = "Interview Scheduling"
	StepInterviewProcess     StepName = "Interview Process"
	StepFeedbackCollection   StepName = "Feedback Collection"
	StepFinalDecision        StepName = "Final Decision"
	StepOfferProcessing      StepName = "Offer Processing"
)

// Ledger is the fixed order in which steps are seeded for every application.
var Ledger = []StepName{
	StepApplicationSubmitted,
	StepResumeReview,
	StepDocumentVerification,
	StepMentorReview,
	StepEmployerReview,
	StepInterviewScheduling,
	StepInterviewProcess,
	StepFeedbackCollection,
	StepFinalDecision,
	StepOfferProcessing,
}

// Step is one row of an application's tracking ledger.
type Step struct {
	ID            int64      `json:"id"`
	ApplicationID int64      `json:"application_id"`
	Name          StepName   `json:"step_name"`
	Position      int        `json:"position"`
	Status        StepStatus `json:"status"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CompletedBy   *int64     `json:"completed_by,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewLedger builds the unsaved initial rows for an application: the first
// step is completed at submission time, the rest are pending.
func NewLedger(applicationID int64, now time.Time) []*Step {
	steps := make([]*Step, 0, len(Ledger))
	for i, name := range Ledger {
		s := &Step{
			ApplicationID: applicationID,
			Name:          name,
			Position:      i,
			Status:        StepPending,
			UpdatedAt:     now,
		}
		if i == 0 {
			completedAt := now
			s.Status = StepCompleted
			s.CompletedAt = &completedAt
		}
		steps = append(steps, s)
	}
	return steps
}

// Complete marks the step completed. The first completion timestamp is kept
// when the step is completed again; notes are replaced when given.
func (s *Step) Complete(notes string, actorID int64, now time.Time) {
	if s.Status != StepCompleted || s.CompletedAt == nil {
		completedAt := now
		s.CompletedAt = &completedAt
		by := actorID
		s.CompletedBy = &by
	}
	s.Status = StepCompleted
	if notes != "" {
		s.Notes = notes
	}
	s.UpdatedAt = now
}
