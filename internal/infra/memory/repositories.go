package memory

import (
	"context"
	"sort"
	"time"

	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/internship"
	"internship_tracker/internal/domain/interview"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/tracking"
	"internship_tracker/internal/domain/user"
)

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *user.User) error {
	defer r.s.lock()()
	d := r.s.data
	if u.ID != 0 {
		if _, ok := d.users[u.ID]; ok {
			return common.NewError(common.CodeConflict, "user id already exists", nil)
		}
	}
	for _, existing := range d.users {
		if existing.Email == u.Email {
			return common.NewError(common.CodeConflict, "email already registered", nil)
		}
	}
	if u.ID == 0 {
		u.ID = d.nextID("users", func(id int64) bool { _, ok := d.users[id]; return ok })
	}
	d.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	defer r.s.rlock()()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, common.NotFound("user")
	}
	return &u, nil
}

func (r userRepo) GetByTelegramChatID(_ context.Context, chatID int64) (*user.User, error) {
	defer r.s.rlock()()
	for _, u := range r.s.data.users {
		if u.TelegramChatID != nil && *u.TelegramChatID == chatID {
			return &u, nil
		}
	}
	return nil, common.NotFound("user")
}

func (r userRepo) SetTelegramChatID(_ context.Context, id int64, chatID *int64) error {
	defer r.s.lock()()
	d := r.s.data
	u, ok := d.users[id]
	if !ok {
		return common.NotFound("user")
	}
	if chatID != nil {
		for otherID, other := range d.users {
			if otherID != id && other.TelegramChatID != nil && *other.TelegramChatID == *chatID {
				return common.NewError(common.CodeConflict, "telegram chat is linked to another user", nil)
			}
		}
		linked := *chatID
		chatID = &linked
	}
	u.TelegramChatID = chatID
	d.users[id] = u
	return nil
}

func (r userRepo) List(_ context.Context, role user.Role) ([]*user.User, error) {
	defer r.s.rlock()()
	out := make([]*user.User, 0)
	for _, u := range r.s.data.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type internshipRepo struct{ s *Store }

func (r internshipRepo) Create(_ context.Context, in *internship.Internship) error {
	defer r.s.lock()()
	d := r.s.data
	if in.ID != 0 {
		if _, ok := d.internships[in.ID]; ok {
			return common.NewError(common.CodeConflict, "internship id already exists", nil)
		}
	} else {
		in.ID = d.nextID("internships", func(id int64) bool { _, ok := d.internships[id]; return ok })
	}
	d.internships[in.ID] = *in
	return nil
}

func (r internshipRepo) GetByID(_ context.Context, id int64) (*internship.Internship, error) {
	defer r.s.rlock()()
	in, ok := r.s.data.internships[id]
	if !ok {
		return nil, common.NotFound("internship")
	}
	return &in, nil
}

func (r internshipRepo) Update(_ context.Context, in *internship.Internship) error {
	defer r.s.lock()()
	if _, ok := r.s.data.internships[in.ID]; !ok {
		return common.NotFound("internship")
	}
	r.s.data.internships[in.ID] = *in
	return nil
}

func (r internshipRepo) List(_ context.Context, f internship.Filter) ([]*internship.Internship, error) {
	defer r.s.rlock()()
	out := make([]*internship.Internship, 0)
	for _, in := range r.s.data.internships {
		if f.CompanyID != nil && in.CompanyID != *f.CompanyID {
			continue
		}
		if f.Status != "" && in.Status != f.Status {
			continue
		}
		out = append(out, &in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type applicationRepo struct{ s *Store }

func (r applicationRepo) Create(_ context.Context, a *application.Application) error {
	defer r.s.lock()()
	d := r.s.data
	for _, existing := range d.applications {
		if existing.StudentID == a.StudentID && existing.InternshipID == a.InternshipID {
			return common.NewError(common.CodeConflict, "student has already applied to this internship", nil)
		}
	}
	a.ID = d.nextID("applications", func(id int64) bool { _, ok := d.applications[id]; return ok })
	d.applications[a.ID] = *a
	return nil
}

func (r applicationRepo) GetByID(_ context.Context, id int64) (*application.Application, error) {
	defer r.s.rlock()()
	a, ok := r.s.data.applications[id]
	if !ok {
		return nil, common.NotFound("application")
	}
	return &a, nil
}

func (r applicationRepo) Update(_ context.Context, a *application.Application) error {
	defer r.s.lock()()
	if _, ok := r.s.data.applications[a.ID]; !ok {
		return common.NotFound("application")
	}
	r.s.data.applications[a.ID] = *a
	return nil
}

func (r applicationRepo) List(_ context.Context, f application.Filter) ([]*application.Application, error) {
	defer r.s.rlock()()
	d := r.s.data
	out := make([]*application.Application, 0)
	for _, a := range d.applications {
		if f.StudentID != nil && a.StudentID != *f.StudentID {
			continue
		}
		if f.InternshipID != nil && a.InternshipID != *f.InternshipID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.StudentDepartment != "" {
			if student, ok := d.users[a.StudentID]; !ok || student.Department != f.StudentDepartment {
				continue
			}
		}
		if f.CompanyID != nil {
			if in, ok := d.internships[a.InternshipID]; !ok || in.CompanyID != *f.CompanyID {
				continue
			}
		}
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stepRepo struct{ s *Store }

func (r stepRepo) BulkCreate(_ context.Context, steps []*tracking.Step) error {
	defer r.s.lock()()
	d := r.s.data
	for _, st := range steps {
		for _, existing := range d.steps {
			if existing.ApplicationID == st.ApplicationID && existing.Name == st.Name {
				return common.NewError(common.CodeConflict, "tracking step already exists", nil)
			}
		}
	}
	for _, st := range steps {
		st.ID = d.nextID("steps", func(id int64) bool { _, ok := d.steps[id]; return ok })
		d.steps[st.ID] = *st
	}
	return nil
}

func (r stepRepo) GetByID(_ context.Context, id int64) (*tracking.Step, error) {
	defer r.s.rlock()()
	st, ok := r.s.data.steps[id]
	if !ok {
		return nil, common.NotFound("tracking step")
	}
	return &st, nil
}

func (r stepRepo) GetByName(_ context.Context, applicationID int64, name tracking.StepName) (*tracking.Step, error) {
	defer r.s.rlock()()
	for _, st := range r.s.data.steps {
		if st.ApplicationID == applicationID && st.Name == name {
			return &st, nil
		}
	}
	return nil, common.NotFound("tracking step")
}

func (r stepRepo) ListByApplication(_ context.Context, applicationID int64) ([]*tracking.Step, error) {
	defer r.s.rlock()()
	out := make([]*tracking.Step, 0, len(tracking.Ledger))
	for _, st := range r.s.data.steps {
		if st.ApplicationID == applicationID {
			out = append(out, &st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r stepRepo) Update(_ context.Context, st *tracking.Step) error {
	defer r.s.lock()()
	if _, ok := r.s.data.steps[st.ID]; !ok {
		return common.NotFound("tracking step")
	}
	r.s.data.steps[st.ID] = *st
	return nil
}

type interviewRepo struct{ s *Store }

func (r interviewRepo) Create(_ context.Context, iv *interview.Interview) error {
	defer r.s.lock()()
	d := r.s.data
	iv.ID = d.nextID("interviews", func(id int64) bool { _, ok := d.interviews[id]; return ok })
	d.interviews[iv.ID] = *iv
	return nil
}

func (r interviewRepo) GetByID(_ context.Context, id int64) (*interview.Interview, error) {
	defer r.s.rlock()()
	iv, ok := r.s.data.interviews[id]
	if !ok {
		return nil, common.NotFound("interview")
	}
	return &iv, nil
}

func (r interviewRepo) Update(_ context.Context, iv *interview.Interview) error {
	defer r.s.lock()()
	if _, ok := r.s.data.interviews[iv.ID]; !ok {
		return common.NotFound("interview")
	}
	r.s.data.interviews[iv.ID] = *iv
	return nil
}

func (r interviewRepo) ListByApplication(_ context.Context, applicationID int64) ([]*interview.Interview, error) {
	defer r.s.rlock()()
	out := make([]*interview.Interview, 0)
	for _, iv := range r.s.data.interviews {
		if iv.ApplicationID == applicationID {
			out = append(out, &iv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

func (r interviewRepo) ListDueReminders(_ context.Context, from, to time.Time) ([]*interview.Interview, error) {
	defer r.s.rlock()()
	out := make([]*interview.Interview, 0)
	for _, iv := range r.s.data.interviews {
		if iv.RemindedAt != nil {
			continue
		}
		if iv.Status != interview.StatusScheduled && iv.Status != interview.StatusRescheduled {
			continue
		}
		if iv.ScheduledAt.Before(from) || !iv.ScheduledAt.Before(to) {
			continue
		}
		out = append(out, &iv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

type offerRepo struct{ s *Store }

func (r offerRepo) Create(_ context.Context, o *offer.Offer) error {
	defer r.s.lock()()
	d := r.s.data
	o.ID = d.nextID("offers", func(id int64) bool { _, ok := d.offers[id]; return ok })
	d.offers[o.ID] = *o
	return nil
}

func (r offerRepo) GetByID(_ context.Context, id int64) (*offer.Offer, error) {
	defer r.s.rlock()()
	o, ok := r.s.data.offers[id]
	if !ok {
		return nil, common.NotFound("offer")
	}
	return &o, nil
}

func (r offerRepo) Update(_ context.Context, o *offer.Offer) error {
	defer r.s.lock()()
	if _, ok := r.s.data.offers[o.ID]; !ok {
		return common.NotFound("offer")
	}
	r.s.data.offers[o.ID] = *o
	return nil
}

func (r offerRepo) ListByApplication(_ context.Context, applicationID int64) ([]*offer.Offer, error) {
	defer r.s.rlock()()
	out := make([]*offer.Offer, 0)
	for _, o := range r.s.data.offers {
		if o.ApplicationID == applicationID {
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r offerRepo) ListDueReminders(_ context.Context, from, to time.Time) ([]*offer.Offer, error) {
	defer r.s.rlock()()
	out := make([]*offer.Offer, 0)
	for _, o := range r.s.data.offers {
		if o.RemindedAt != nil || o.Status != offer.StatusExtended {
			continue
		}
		if o.ResponseDeadline.Before(from) || !o.ResponseDeadline.Before(to) {
			continue
		}
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResponseDeadline.Before(out[j].ResponseDeadline) })
	return out, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *notification.Notification) error {
	defer r.s.lock()()
	d := r.s.data
	n.ID = d.nextID("notifications", func(id int64) bool { _, ok := d.notifications[id]; return ok })
	d.notifications[n.ID] = *n
	return nil
}

func (r notificationRepo) ListByRecipient(_ context.Context, recipientID int64, unreadOnly bool) ([]*notification.Notification, error) {
	defer r.s.rlock()()
	out := make([]*notification.Notification, 0)
	for _, n := range r.s.data.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		out = append(out, &n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r notificationRepo) MarkRead(_ context.Context, id, recipientID int64, at time.Time) error {
	defer r.s.lock()()
	n, ok := r.s.data.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return common.NotFound("notification")
	}
	if n.ReadAt == nil {
		readAt := at
		n.ReadAt = &readAt
		r.s.data.notifications[id] = n
	}
	return nil
}
