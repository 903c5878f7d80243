package app_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"internship_tracker/internal/app"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/internship"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/tracking"
	"internship_tracker/internal/domain/user"
	"internship_tracker/internal/infra/memory"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

const offerWindow = 7 * 24 * time.Hour

type sentEvent struct {
	recipientID int64
	event       notification.EventType
	payload     notification.Payload
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, recipientID int64, event notification.EventType, payload notification.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{recipientID: recipientID, event: event, payload: payload})
	return n.err
}

func (n *recordingNotifier) to(recipientID int64, event notification.EventType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.recipientID == recipientID && e.event == event {
			count++
		}
	}
	return count
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

// fixture seeds the people of the examples used throughout the tests: student
// 42 (CS), mentors in CS and IT, the employer of company 3 who posted
// internship 7, and a staff member.
type fixture struct {
	store        *memory.Store
	clock        *clockwork.FakeClock
	notifier     *recordingNotifier
	log          *logrus.Entry
	applications *app.ApplicationService
	tracking     *app.TrackingService
	users        *app.UserService
	internships  *app.InternshipService
	reminders    *app.ReminderService

	student    app.Actor
	other      app.Actor
	mentorCS   app.Actor
	mentorIT   app.Actor
	employer   app.Actor
	rival      app.Actor
	staff      app.Actor
	companyID  int64
	internship int64
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithStore(t, nil)
}

// newFixtureWithStore builds the services on wrap(store) when wrap is given.
func newFixtureWithStore(t *testing.T, wrap func(app.Store) app.Store) *fixture {
	t.Helper()
	ctx := context.Background()
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	store := memory.NewStore()
	companyID, rivalCompany := int64(3), int64(4)
	people := []*user.User{
		{ID: 42, Name: "Ada", Email: "ada@uni.test", Role: user.RoleStudent, Department: "CS"},
		{ID: 43, Name: "Bo", Email: "bo@uni.test", Role: user.RoleStudent, Department: "IT"},
		{ID: 5, Name: "Grace", Email: "grace@uni.test", Role: user.RoleMentor, Department: "CS"},
		{ID: 6, Name: "Ken", Email: "ken@uni.test", Role: user.RoleMentor, Department: "IT"},
		{ID: 9, Name: "Linus", Email: "linus@corp.test", Role: user.RoleEmployer, CompanyID: &companyID},
		{ID: 10, Name: "Rob", Email: "rob@rival.test", Role: user.RoleEmployer, CompanyID: &rivalCompany},
		{ID: 1, Name: "Office", Email: "office@uni.test", Role: user.RoleStaff},
	}
	for _, u := range people {
		require.NoError(t, store.Users().Create(ctx, u))
	}
	require.NoError(t, store.Internships().Create(ctx, &internship.Internship{
		ID: 7, CompanyID: companyID, PostedBy: 9, Title: "Backend intern", Status: internship.StatusOpen,
	}))

	var services app.Store = store
	if wrap != nil {
		services = wrap(store)
	}

	clock := clockwork.NewFakeClockAt(t0)
	notifier := &recordingNotifier{}
	return &fixture{
		store:        store,
		clock:        clock,
		notifier:     notifier,
		log:          log,
		applications: app.NewApplicationService(services, notifier, nil, nil, clock, offerWindow, log),
		tracking:     app.NewTrackingService(services, notifier, nil, clock, offerWindow, log),
		users:        app.NewUserService(services, clock, log),
		internships:  app.NewInternshipService(services, clock, log),
		reminders:    app.NewReminderService(services, notifier, nil, clock, 24*time.Hour, 48*time.Hour, log),
		student:      app.ActorFromUser(people[0]),
		other:        app.ActorFromUser(people[1]),
		mentorCS:     app.ActorFromUser(people[2]),
		mentorIT:     app.ActorFromUser(people[3]),
		employer:     app.ActorFromUser(people[4]),
		rival:        app.ActorFromUser(people[5]),
		staff:        app.ActorFromUser(people[6]),
		companyID:    companyID,
		internship:   7,
	}
}

func (f *fixture) apply(t *testing.T) *app.ApplicationWithSteps {
	t.Helper()
	created, err := f.applications.Create(context.Background(), f.student, f.internship)
	require.NoError(t, err)
	return created
}

// advance walks an application through the given statuses, each taken by
// the role its edge requires.
func (f *fixture) advance(t *testing.T, id int64, statuses ...application.Status) {
	t.Helper()
	for _, s := range statuses {
		actor := f.staff
		switch s {
		case application.StatusMentorApproved, application.StatusMentorRejected:
			actor = f.mentorCS
		case application.StatusInterviewed, application.StatusOffered, application.StatusNotOffered:
			actor = f.employer
		case application.StatusOfferAccepted:
			actor = f.student
		}
		_, err := f.applications.Transition(context.Background(), actor, id, s)
		require.NoError(t, err, "transition to %s", s)
	}
}

func (f *fixture) step(t *testing.T, applicationID int64, name tracking.StepName) *tracking.Step {
	t.Helper()
	st, err := f.store.Steps().GetByName(context.Background(), applicationID, name)
	require.NoError(t, err)
	return st
}

var errDiskFull = errors.New("disk full")

// faultyStore fails selected tracking step writes so the tests can observe
// transaction rollback.
type faultyStore struct {
	app.Store
	failUpdate     bool
	failBulkCreate bool
}

func (s *faultyStore) Steps() tracking.Repository {
	return failingSteps{Repository: s.Store.Steps(), store: s}
}

func (s *faultyStore) WithinTx(ctx context.Context, fn func(tx app.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx app.Store) error {
		return fn(&faultyStore{Store: tx, failUpdate: s.failUpdate, failBulkCreate: s.failBulkCreate})
	})
}

type failingSteps struct {
	tracking.Repository
	store *faultyStore
}

func (r failingSteps) Update(ctx context.Context, st *tracking.Step) error {
	if r.store.failUpdate {
		return errDiskFull
	}
	return r.Repository.Update(ctx, st)
}

func (r failingSteps) BulkCreate(ctx context.Context, steps []*tracking.Step) error {
	if r.store.failBulkCreate {
		return errDiskFull
	}
	return r.Repository.BulkCreate(ctx, steps)
}
