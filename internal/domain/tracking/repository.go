package tracking

import "context"

// Repository defines operations for tracking ledger rows. Steps are never deleted.
type Repository interface {
	// BulkCreate inserts a whole ledger for one application.
	BulkCreate(ctx context.Context, steps []*Step) error
	GetByID(ctx context.Context, id int64) (*Step, error)
	GetByName(ctx context.Context, applicationID int64, name StepName) (*Step, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*Step, error) // ordered by position
	Update(ctx context.Context, s *Step) error
}
