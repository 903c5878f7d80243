package application

import "time"

// Status is the lifecycle state of an application.
type Status string

const (
	StatusApplied        Status = "APPLIED"
	StatusMentorApproved Status = "MENTOR_APPROVED"
	StatusMentorRejected Status = "MENTOR_REJECTED"
	StatusInterviewed    Status = "INTERVIEWED"
	StatusOffered        Status = "OFFERED"
	StatusNotOffered     Status = "NOT_OFFERED"
	StatusOfferAccepted  Status = "OFFER_ACCEPTED"
	StatusCompleted      Status = "COMPLETED"
)

var allStatuses = []Status{
	StatusApplied, StatusMentorApproved, StatusMentorRejected, StatusInterviewed,
	StatusOffered, StatusNotOffered, StatusOfferAccepted, StatusCompleted,
}

func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusMentorRejected || s == StatusNotOffered || s == StatusCompleted
}

// Application is a student's application to one internship.
type Application struct {
	ID               int64      `json:"id"`
	StudentID        int64      `json:"student_id"`
	InternshipID     int64      `json:"internship_id"`
	Status           Status     `json:"status"`
	AppliedAt        time.Time  `json:"applied_at"`
	MentorID         *int64     `json:"mentor_id,omitempty"`
	MentorApprovedAt *time.Time `json:"mentor_approved_at,omitempty"`
	ResumeViewedAt   *time.Time `json:"resume_viewed_at,omitempty"`
	ResumeViewedBy   *int64     `json:"resume_viewed_by,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
