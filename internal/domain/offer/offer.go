package offer

import (
	"context"
	"time"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusExtended Status = "EXTENDED"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusExtended, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Offer is the employer's offer attached to an application. Status moves
// freely between values; the application status machine is the source of truth.
type Offer struct {
	ID               int64      `json:"id"`
	ApplicationID    int64      `json:"application_id"`
	StudentID        int64      `json:"student_id"`
	CompanyID        int64      `json:"company_id"`
	Status           Status     `json:"offer_status"`
	Stipend          *float64   `json:"stipend,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	ResponseDeadline time.Time  `json:"response_deadline"`
	ContractSigned   bool       `json:"contract_signed"`
	RemindedAt       *time.Time `json:"reminded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id int64) (*Offer, error)
	Update(ctx context.Context, o *Offer) error
	ListByApplication(ctx context.Context, applicationID int64) ([]*Offer, error) // newest first
	// ListDueReminders returns EXTENDED offers whose deadline falls in [from, to) and that were not reminded yet.
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*Offer, error)
}
