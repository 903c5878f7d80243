package internship

import (
	"context"
	"time"
)

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Internship is a position posted by an employer.
type Internship struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	PostedBy    int64     `json:"posted_by"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Department  string    `json:"department,omitempty"`
	Location    string    `json:"location,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Filter struct {
	CompanyID *int64
	Status    Status
}

type Repository interface {
	Create(ctx context.Context, in *Internship) error
	GetByID(ctx context.Context, id int64) (*Internship, error)
	Update(ctx context.Context, in *Internship) error
	List(ctx context.Context, filter Filter) ([]*Internship, error)
}
