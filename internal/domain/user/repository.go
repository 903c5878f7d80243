package user

import "context"

// Repository defines the operations for persisting and retrieving users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*User, error)
	SetTelegramChatID(ctx context.Context, id int64, chatID *int64) error
	List(ctx context.Context, role Role) ([]*User, error) // empty role lists everyone
}
