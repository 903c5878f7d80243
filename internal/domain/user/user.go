package user

import "time"

// Role is the access role carried by every authenticated actor.
type Role string

const (
	RoleStudent  Role = "STUDENT"
	RoleMentor   Role = "MENTOR"
	RoleEmployer Role = "EMPLOYER"
	RoleStaff    Role = "STAFF"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleEmployer, RoleStaff:
		return true
	}
	return false
}

// User is a student, mentor, employer representative or placement office staff member.
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	Department     string    `json:"department,omitempty"`
	CompanyID      *int64    `json:"company_id,omitempty"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
