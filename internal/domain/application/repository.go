package application

import "context"

// Filter narrows List results. Zero values are ignored.
type Filter struct {
	StudentID         *int64
	StudentDepartment string
	CompanyID         *int64
	InternshipID      *int64
	Status            Status
}

// Repository defines operations for Application records. Applications are
// never deleted.
type Repository interface {
	Create(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	Update(ctx context.Context, a *Application) error
	List(ctx context.Context, filter Filter) ([]*Application, error)
}
