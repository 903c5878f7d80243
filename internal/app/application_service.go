package app

import (
	"context"
	"fmt"
	"time"

	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/internship"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/tracking"
	"internship_tracker/internal/domain/user"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// ApplicationService owns the application lifecycle: creation with its
// tracking ledger and every status transition.
type ApplicationService struct {
	store       Store
	events      eventSink
	limiter     Limiter
	rec         Recorder
	clock       clockwork.Clock
	offerWindow time.Duration
	log         *logrus.Entry
}

func NewApplicationService(
	store Store,
	notifier notification.Notifier,
	limiter Limiter, // optional
	rec Recorder, // optional
	clock clockwork.Clock,
	offerWindow time.Duration, // response window of offers created on OFFERED
	log *logrus.Entry,
) *ApplicationService {
	return &ApplicationService{
		store:       store,
		events:      newEventSink(notifier, rec, log),
		limiter:     limiter,
		rec:         recorderOrNop(rec),
		clock:       clock,
		offerWindow: offerWindow,
		log:         log,
	}
}

// ApplicationWithSteps is an application returned together with its ledger.
type ApplicationWithSteps struct {
	*application.Application
	TrackingSteps []*tracking.Step `json:"tracking_steps"`
}

// Create submits a new application for the calling student and seeds its
// tracking ledger in the same transaction.
func (s *ApplicationService) Create(ctx context.Context, actor Actor, internshipID int64) (*ApplicationWithSteps, error) {
	if actor.Role != user.RoleStudent {
		return nil, errForbidden("only students can apply to internships")
	}
	if internshipID <= 0 {
		return nil, common.NewValidationError("internship_id is required", map[string]string{"internship_id": "required"})
	}
	if err := s.checkRate(ctx, actor); err != nil {
		return nil, err
	}

	logCtx := s.log.WithFields(logrus.Fields{"student_id": actor.ID, "internship_id": internshipID})

	var created *ApplicationWithSteps
	var posting *internship.Internship
	err := s.store.WithinTx(ctx, func(tx Store) error {
		var err error
		posting, err = tx.Internships().GetByID(ctx, internshipID)
		if err != nil {
			return err
		}
		if posting.Status != internship.StatusOpen {
			return common.NewValidationError("internship is not accepting applications", map[string]string{"internship_id": "closed"})
		}
		if _, err := tx.Users().GetByID(ctx, actor.ID); err != nil {
			if common.Is(err, common.CodeNotFound) {
				return common.NewError(common.CodeForbidden, "student profile not found", err)
			}
			return err
		}

		now := s.clock.Now().UTC()
		a := &application.Application{
			StudentID:    actor.ID,
			InternshipID: internshipID,
			Status:       application.StatusApplied,
			AppliedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Applications().Create(ctx, a); err != nil {
			return err
		}
		steps, err := initializeLedger(ctx, tx, a.ID, now)
		if err != nil {
			return err
		}
		created = &ApplicationWithSteps{Application: a, TrackingSteps: steps}
		return nil
	})
	if err != nil {
		logCtx.WithError(err).Info("Application was not created")
		return nil, err
	}

	logCtx.WithField("application_id", created.ID).Info("Application created")
	payload := notification.Payload{
		"application_id": created.ID,
		"internship_id":  internshipID,
		"status":         created.Status,
	}
	s.events.emit(ctx, actor.ID, notification.EventApplicationCreated, payload)
	s.events.emit(ctx, posting.PostedBy, notification.EventApplicationCreated, payload)
	return created, nil
}

func (s *ApplicationService) checkRate(ctx context.Context, actor Actor) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.Allow(ctx, fmt.Sprintf("apply:%d", actor.ID))
	if err != nil {
		// A broken limiter must not block students from applying.
		s.log.WithError(err).Warn("Apply rate limiter unavailable, allowing request")
		return nil
	}
	if !allowed {
		return common.NewError(common.CodeRateLimited, "too many applications, try again later", nil)
	}
	return nil
}

// Get returns an application the actor is allowed to see.
func (s *ApplicationService) Get(ctx context.Context, actor Actor, id int64) (*application.Application, error) {
	ac, err := loadApplicationContext(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(ac) {
		return nil, errForbidden("you cannot view this application")
	}
	return ac.app, nil
}

// List returns the applications visible to the actor: their own for students,
// their department's for mentors, their company's for employers, all for staff.
func (s *ApplicationService) List(ctx context.Context, actor Actor) ([]*application.Application, error) {
	filter, ok := scopeFilter(actor)
	if !ok {
		return []*application.Application{}, nil
	}
	return s.store.Applications().List(ctx, filter)
}

func scopeFilter(actor Actor) (application.Filter, bool) {
	switch actor.Role {
	case user.RoleStaff:
		return application.Filter{}, true
	case user.RoleStudent:
		id := actor.ID
		return application.Filter{StudentID: &id}, true
	case user.RoleMentor:
		return application.Filter{StudentDepartment: actor.Department}, actor.Department != ""
	case user.RoleEmployer:
		return application.Filter{CompanyID: actor.CompanyID}, actor.CompanyID != nil
	}
	return application.Filter{}, false
}

func (s *ApplicationService) Approve(ctx context.Context, actor Actor, id int64) (*application.Application, error) {
	return s.Transition(ctx, actor, id, application.StatusMentorApproved)
}

func (s *ApplicationService) Reject(ctx context.Context, actor Actor, id int64) (*application.Application, error) {
	return s.Transition(ctx, actor, id, application.StatusMentorRejected)
}

// Transition moves an application to target. The status update, the ledger
// step and any offer side effect are committed together; on failure the
// application keeps its previous status.
func (s *ApplicationService) Transition(ctx context.Context, actor Actor, id int64, target application.Status) (*application.Application, error) {
	if !target.Valid() {
		return nil, common.NewValidationError(fmt.Sprintf("unknown status %q", target), map[string]string{"status": "oneof"})
	}

	logCtx := s.log.WithFields(logrus.Fields{
		"application_id": id,
		"actor_id":       actor.ID,
		"actor_role":     actor.Role,
		"target":         target,
	})

	var (
		ac       *applicationContext
		from     application.Status
		newOffer *offer.Offer
	)
	err := s.store.WithinTx(ctx, func(tx Store) error {
		var err error
		ac, err = loadApplicationContext(ctx, tx, id)
		if err != nil {
			return err
		}
		from = ac.app.Status
		rule, ok := lookupTransition(from, target)
		if !ok {
			return common.NewError(common.CodeIllegalTransition,
				fmt.Sprintf("cannot move application from %s to %s", from, target), nil)
		}
		if err := actor.authorize(rule.roles, ac); err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		a := ac.app
		a.Status = target
		a.UpdatedAt = now
		switch target {
		case application.StatusMentorApproved, application.StatusMentorRejected:
			mentorID := actor.ID
			a.MentorID = &mentorID
			a.MentorApprovedAt = &now
		case application.StatusCompleted:
			a.CompletedAt = &now
		}
		if err := tx.Applications().Update(ctx, a); err != nil {
			return err
		}
		note := fmt.Sprintf("%s -> %s", from, target)
		if _, err := completeNamedStep(ctx, tx, a.ID, rule.step, note, actor.ID, now); err != nil {
			return err
		}

		switch target {
		case application.StatusOffered:
			newOffer, err = s.ensureOffer(ctx, tx, ac, now)
		case application.StatusOfferAccepted:
			err = acceptLatestOffer(ctx, tx, a.ID, now)
		}
		return err
	})
	if err != nil {
		logCtx.WithError(err).Info("Transition refused")
		return nil, err
	}

	s.rec.RecordTransition(string(from), string(target))
	logCtx.WithField("from", from).Info("Application status changed")

	payload := notification.Payload{
		"application_id": ac.app.ID,
		"internship_id":  ac.app.InternshipID,
		"from":           from,
		"to":             target,
	}
	s.events.emit(ctx, ac.app.StudentID, notification.EventStatusChanged, payload)
	if ac.internship.PostedBy != actor.ID && target == application.StatusOfferAccepted {
		s.events.emit(ctx, ac.internship.PostedBy, notification.EventStatusChanged, payload)
	}
	if newOffer != nil {
		s.events.emit(ctx, newOffer.StudentID, notification.EventOfferCreated, offerPayload(newOffer))
	}
	return ac.app, nil
}

// ensureOffer creates the EXTENDED offer of an application that reached
// OFFERED, unless one was already recorded.
func (s *ApplicationService) ensureOffer(ctx context.Context, tx Store, ac *applicationContext, now time.Time) (*offer.Offer, error) {
	existing, err := tx.Offers().ListByApplication(ctx, ac.app.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, nil
	}
	o := &offer.Offer{
		ApplicationID:    ac.app.ID,
		StudentID:        ac.app.StudentID,
		CompanyID:        ac.internship.CompanyID,
		Status:           offer.StatusExtended,
		ResponseDeadline: now.Add(s.offerWindow),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.Offers().Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// acceptLatestOffer marks the offer the student is answering as ACCEPTED: the
// newest EXTENDED offer, or else the newest offer not already REJECTED.
func acceptLatestOffer(ctx context.Context, tx Store, applicationID int64, now time.Time) error {
	offers, err := tx.Offers().ListByApplication(ctx, applicationID)
	if err != nil {
		return err
	}

	var target *offer.Offer
	for _, o := range offers {
		if o.Status == offer.StatusExtended {
			target = o
			break
		}
		if target == nil && o.Status != offer.StatusRejected {
			target = o
		}
	}
	if target == nil {
		return nil
	}
	target.Status = offer.StatusAccepted
	target.UpdatedAt = now
	return tx.Offers().Update(ctx, target)
}

func offerPayload(o *offer.Offer) notification.Payload {
	return notification.Payload{
		"offer_id":          o.ID,
		"application_id":    o.ApplicationID,
		"offer_status":      o.Status,
		"response_deadline": o.ResponseDeadline.Format(time.RFC3339),
	}
}
