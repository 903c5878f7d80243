package app

import (
	"context"

	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/internship"
	"internship_tracker/internal/domain/user"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

type CreateInternshipInput struct {
	CompanyID   int64  `json:"company_id" validate:"omitempty,min=1"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Department  string `json:"department" validate:"max=100"`
	Location    string `json:"location" validate:"max=200"`
}

// InternshipService manages employer postings.
type InternshipService struct {
	store Store
	clock clockwork.Clock
	log   *logrus.Entry
}

func NewInternshipService(store Store, clock clockwork.Clock, log *logrus.Entry) *InternshipService {
	return &InternshipService{store: store, clock: clock, log: log}
}

// Create posts an internship. Employers post for their own company; staff
// must name the company.
func (s *InternshipService) Create(ctx context.Context, actor Actor, in CreateInternshipInput) (*internship.Internship, error) {
	if !actor.HasRole(user.RoleEmployer, user.RoleStaff) {
		return nil, errForbidden("only employers and staff can post internships")
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}

	companyID := in.CompanyID
	if actor.Role == user.RoleEmployer {
		if actor.CompanyID == nil {
			return nil, errForbidden("employer account is not linked to a company")
		}
		if companyID != 0 && companyID != *actor.CompanyID {
			return nil, errForbidden("cannot post for another company")
		}
		companyID = *actor.CompanyID
	}
	if companyID == 0 {
		return nil, common.NewValidationError("company_id is required", map[string]string{"company_id": "required"})
	}

	now := s.clock.Now().UTC()
	posting := &internship.Internship{
		CompanyID:   companyID,
		PostedBy:    actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Department:  in.Department,
		Location:    in.Location,
		Status:      internship.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Internships().Create(ctx, posting); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"internship_id": posting.ID, "company_id": companyID}).Info("Internship posted")
	return posting, nil
}

func (s *InternshipService) Get(ctx context.Context, id int64) (*internship.Internship, error) {
	return s.store.Internships().GetByID(ctx, id)
}

// List shows employers every posting of their company and everyone else the
// open postings; staff see all.
func (s *InternshipService) List(ctx context.Context, actor Actor) ([]*internship.Internship, error) {
	switch actor.Role {
	case user.RoleStaff:
		return s.store.Internships().List(ctx, internship.Filter{})
	case user.RoleEmployer:
		if actor.CompanyID == nil {
			return []*internship.Internship{}, nil
		}
		return s.store.Internships().List(ctx, internship.Filter{CompanyID: actor.CompanyID})
	default:
		return s.store.Internships().List(ctx, internship.Filter{Status: internship.StatusOpen})
	}
}

// Close stops a posting from accepting new applications.
func (s *InternshipService) Close(ctx context.Context, actor Actor, id int64) (*internship.Internship, error) {
	posting, err := s.store.Internships().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Role == user.RoleStaff:
	case actor.Role == user.RoleEmployer && actor.ownsCompany(posting.CompanyID):
	default:
		return nil, errForbidden("you cannot close this internship")
	}
	posting.Status = internship.StatusClosed
	posting.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.Internships().Update(ctx, posting); err != nil {
		return nil, err
	}
	return posting, nil
}
