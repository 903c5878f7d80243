package app

import (
	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/internship"
	"internship_tracker/internal/domain/user"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID         int64
	Role       user.Role
	Department string
	CompanyID  *int64
}

func ActorFromUser(u *user.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Department: u.Department, CompanyID: u.CompanyID}
}

func (a Actor) HasRole(roles ...user.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func (a Actor) ownsCompany(companyID int64) bool {
	return a.CompanyID != nil && *a.CompanyID == companyID
}

// applicationContext is an application together with the records needed to
// decide who may act on it.
type applicationContext struct {
	app        *application.Application
	student    *user.User
	internship *internship.Internship
}

func errForbidden(msg string) error {
	return common.NewError(common.CodeForbidden, msg, nil)
}

// canView reports whether the actor may read the application.
func (a Actor) canView(ac *applicationContext) bool {
	switch a.Role {
	case user.RoleStaff:
		return true
	case user.RoleStudent:
		return ac.app.StudentID == a.ID
	case user.RoleMentor:
		return a.Department != "" && ac.student.Department == a.Department
	case user.RoleEmployer:
		return a.ownsCompany(ac.internship.CompanyID)
	}
	return false
}

// authorize checks the role allow-list first and then ownership of the application.
func (a Actor) authorize(allowed []user.Role, ac *applicationContext) error {
	if !a.HasRole(allowed...) {
		return errForbidden("your role is not allowed to perform this action")
	}
	switch a.Role {
	case user.RoleStudent:
		if ac.app.StudentID != a.ID {
			return errForbidden("application belongs to another student")
		}
	case user.RoleMentor:
		if a.Department == "" || ac.student.Department != a.Department {
			return errForbidden("student is outside your department")
		}
	case user.RoleEmployer:
		if !a.ownsCompany(ac.internship.CompanyID) {
			return errForbidden("internship belongs to another company")
		}
	}
	return nil
}
