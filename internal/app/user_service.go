package app

import (
	"context"

	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/user"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// RegisterUserInput is what staff submit to add a person to the placement office.
type RegisterUserInput struct {
	ID         int64     `json:"id" validate:"omitempty,min=1"`
	Name       string    `json:"name" validate:"required,max=200"`
	Email      string    `json:"email" validate:"required,email"`
	Role       user.Role `json:"role" validate:"required,oneof=STUDENT MENTOR EMPLOYER STAFF"`
	Department string    `json:"department" validate:"max=100"`
	CompanyID  *int64    `json:"company_id" validate:"omitempty,min=1"`
}

// UserService manages the people known to the system.
type UserService struct {
	store Store
	clock clockwork.Clock
	log   *logrus.Entry
}

func NewUserService(store Store, clock clockwork.Clock, log *logrus.Entry) *UserService {
	return &UserService{store: store, clock: clock, log: log}
}

// Register adds a user. Only staff may register users.
func (s *UserService) Register(ctx context.Context, actor Actor, in RegisterUserInput) (*user.User, error) {
	if actor.Role != user.RoleStaff {
		return nil, errForbidden("only staff can register users")
	}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	switch {
	case (in.Role == user.RoleStudent || in.Role == user.RoleMentor) && in.Department == "":
		return nil, common.NewValidationError("department is required for students and mentors", map[string]string{"department": "required"})
	case in.Role == user.RoleEmployer && in.CompanyID == nil:
		return nil, common.NewValidationError("company_id is required for employers", map[string]string{"company_id": "required"})
	}

	u := &user.User{
		ID:         in.ID,
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		Department: in.Department,
		CompanyID:  in.CompanyID,
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role, "registered_by": actor.ID}).Info("User registered")
	return u, nil
}

// Get returns a user profile. Users see themselves; staff see everyone.
func (s *UserService) Get(ctx context.Context, actor Actor, id int64) (*user.User, error) {
	if actor.ID != id && actor.Role != user.RoleStaff {
		return nil, errForbidden("you cannot view this user")
	}
	return s.store.Users().GetByID(ctx, id)
}

// List returns users, optionally narrowed to one role. Staff only.
func (s *UserService) List(ctx context.Context, actor Actor, role user.Role) ([]*user.User, error) {
	if actor.Role != user.RoleStaff {
		return nil, errForbidden("only staff can list users")
	}
	if role != "" && !role.Valid() {
		return nil, common.NewValidationError("unknown role", map[string]string{"role": "oneof"})
	}
	return s.store.Users().List(ctx, role)
}

// LinkTelegram attaches (or with nil detaches) the caller's Telegram chat.
func (s *UserService) LinkTelegram(ctx context.Context, actor Actor, chatID *int64) (*user.User, error) {
	if chatID != nil && *chatID == 0 {
		return nil, common.NewValidationError("chat_id must not be zero", map[string]string{"chat_id": "required"})
	}
	if err := s.store.Users().SetTelegramChatID(ctx, actor.ID, chatID); err != nil {
		return nil, err
	}
	return s.store.Users().GetByID(ctx, actor.ID)
}

// ResolveTelegramActor maps a Telegram chat to the linked user.
func (s *UserService) ResolveTelegramActor(ctx context.Context, chatID int64) (Actor, *user.User, error) {
	u, err := s.store.Users().GetByTelegramChatID(ctx, chatID)
	if err != nil {
		return Actor{}, nil, err
	}
	return ActorFromUser(u), u, nil
}
