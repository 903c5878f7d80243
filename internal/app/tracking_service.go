package app

import (
	"context"
	"time"

	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/interview"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/tracking"
	"internship_tracker/internal/domain/user"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// TrackingService maintains the per-application tracking ledger and the
// interview and offer records attached to it.
type TrackingService struct {
	store       Store
	events      eventSink
	rec         Recorder
	clock       clockwork.Clock
	offerWindow time.Duration
	log         *logrus.Entry
}

func NewTrackingService(store Store, notifier notification.Notifier, rec Recorder, clock clockwork.Clock, offerWindow time.Duration, log *logrus.Entry) *TrackingService {
	return &TrackingService{
		store:       store,
		events:      newEventSink(notifier, rec, log),
		rec:         recorderOrNop(rec),
		clock:       clock,
		offerWindow: offerWindow,
		log:         log,
	}
}

// Initialize seeds the ledger of an existing application. It is a no-op when
// the application already has steps.
func (s *TrackingService) Initialize(ctx context.Context, applicationID int64) ([]*tracking.Step, error) {
	if _, err := s.store.Applications().GetByID(ctx, applicationID); err != nil {
		return nil, err
	}
	var steps []*tracking.Step
	err := s.store.WithinTx(ctx, func(tx Store) error {
		var err error
		steps, err = initializeLedger(ctx, tx, applicationID, s.clock.Now().UTC())
		return err
	})
	return steps, err
}

func initializeLedger(ctx context.Context, st Store, applicationID int64, now time.Time) ([]*tracking.Step, error) {
	existing, err := st.Steps().ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}
	steps := tracking.NewLedger(applicationID, now)
	if err := st.Steps().BulkCreate(ctx, steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func completeNamedStep(ctx context.Context, st Store, applicationID int64, name tracking.StepName, notes string, actorID int64, now time.Time) (*tracking.Step, error) {
	step, err := st.Steps().GetByName(ctx, applicationID, name)
	if err != nil {
		return nil, err
	}
	step.Complete(notes, actorID, now)
	if err := st.Steps().Update(ctx, step); err != nil {
		return nil, err
	}
	return step, nil
}

var completeStepRoles = []user.Role{user.RoleMentor, user.RoleEmployer, user.RoleStaff}

// CompleteStep marks a ledger step completed. Completing a step twice keeps
// its original completion time.
func (s *TrackingService) CompleteStep(ctx context.Context, actor Actor, stepID int64, notes string) (*tracking.Step, error) {
	step, err := s.store.Steps().GetByID(ctx, stepID)
	if err != nil {
		return nil, err
	}
	ac, err := loadApplicationContext(ctx, s.store, step.ApplicationID)
	if err != nil {
		return nil, err
	}
	if err := actor.authorize(completeStepRoles, ac); err != nil {
		return nil, err
	}

	step.Complete(notes, actor.ID, s.clock.Now().UTC())
	if err := s.store.Steps().Update(ctx, step); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"application_id": step.ApplicationID,
		"step":           step.Name,
		"actor_id":       actor.ID,
	}).Info("Tracking step completed")
	s.events.emit(ctx, ac.app.StudentID, notification.EventStepCompleted, notification.Payload{
		"application_id": step.ApplicationID,
		"step_id":        step.ID,
		"step_name":      step.Name,
	})
	return step, nil
}

type ResumeStatus struct {
	Viewed   bool       `json:"viewed"`
	ViewedAt *time.Time `json:"viewed_at,omitempty"`
	ViewedBy *int64     `json:"viewed_by,omitempty"`
}

// TrackingView is the full tracking picture of one application.
type TrackingView struct {
	Application   *application.Application `json:"application"`
	TrackingSteps []*tracking.Step         `json:"tracking_steps"`
	Interviews    []*interview.Interview   `json:"interviews"`
	Offers        []*offer.Offer           `json:"offers"`
	ResumeStatus  ResumeStatus             `json:"resume_status"`
	NextStatuses  []application.Status     `json:"next_statuses"`
}

func (s *TrackingService) GetTracking(ctx context.Context, actor Actor, applicationID int64) (*TrackingView, error) {
	ac, err := loadApplicationContext(ctx, s.store, applicationID)
	if err != nil {
		return nil, err
	}
	if !actor.canView(ac) {
		return nil, errForbidden("you cannot view this application")
	}

	steps, err := s.store.Steps().ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	interviews, err := s.store.Interviews().ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	offers, err := s.store.Offers().ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	a := ac.app
	return &TrackingView{
		Application:   a,
		TrackingSteps: steps,
		Interviews:    interviews,
		Offers:        offers,
		ResumeStatus: ResumeStatus{
			Viewed:   a.ResumeViewedAt != nil,
			ViewedAt: a.ResumeViewedAt,
			ViewedBy: a.ResumeViewedBy,
		},
		NextStatuses: NextStatuses(a.Status),
	}, nil
}

// ApplicationProgress is one entry of the realtime overview.
type ApplicationProgress struct {
	Application    *application.Application `json:"application"`
	TrackingSteps  []*tracking.Step         `json:"tracking_steps"`
	CompletedSteps int                      `json:"completed_steps"`
	TotalSteps     int                      `json:"total_steps"`
}

// Realtime returns every application visible to the actor with its ledger embedded.
func (s *TrackingService) Realtime(ctx context.Context, actor Actor) ([]*ApplicationProgress, error) {
	filter, ok := scopeFilter(actor)
	if !ok {
		return []*ApplicationProgress{}, nil
	}
	apps, err := s.store.Applications().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]*ApplicationProgress, 0, len(apps))
	for _, a := range apps {
		steps, err := s.store.Steps().ListByApplication(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		completed := 0
		for _, st := range steps {
			if st.Status == tracking.StepCompleted {
				completed++
			}
		}
		out = append(out, &ApplicationProgress{
			Application:    a,
			TrackingSteps:  steps,
			CompletedSteps: completed,
			TotalSteps:     len(steps),
		})
	}
	return out, nil
}
