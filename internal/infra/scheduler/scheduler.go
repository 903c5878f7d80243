package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderRunner is the part of the reminder service the scheduler drives.
type ReminderRunner interface {
	SendInterviewReminders(ctx context.Context) (int, error)
	SendOfferDeadlineReminders(ctx context.Context) (int, error)
}

type job struct {
	name string
	spec string
	run  func()
}

// ReminderScheduler runs the reminder jobs and any housekeeping on cron specs.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	reminders  ReminderRunner
	logger     *logrus.Entry
	jobs       []job
	jobTimeout time.Duration
}

func NewReminderScheduler(
	reminders ReminderRunner,
	logger *logrus.Entry,
	cronSpecInterviewCheck string, // e.g. "*/15 * * * *"
	cronSpecOfferCheck string, // e.g. "0 9 * * *"
) *ReminderScheduler {
	s := &ReminderScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // server's local time
		reminders:  reminders,
		logger:     logger,
		jobTimeout: 2 * time.Minute,
	}
	s.jobs = []job{
		{name: "interview_reminders", spec: cronSpecInterviewCheck, run: s.runInterviewReminders},
		{name: "offer_deadline_reminders", spec: cronSpecOfferCheck, run: s.runOfferReminders},
	}
	return s
}

// AddHousekeeping registers an extra job. It must be called before Start.
func (s *ReminderScheduler) AddHousekeeping(name, spec string, fn func()) {
	s.jobs = append(s.jobs, job{name: name, spec: spec, run: fn})
}

// Start registers every job and starts the cron engine. No job runs when a
// spec is invalid.
func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler...")
	for _, j := range s.jobs {
		j := j
		_, err := s.cronEngine.AddFunc(j.spec, func() {
			s.logger.WithField("job", j.name).Debug("Cron job triggered")
			j.run()
		})
		if err != nil {
			return fmt.Errorf("could not add cron job %s (%q): %w", j.name, j.spec, err)
		}
	}
	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.jobs)).Info("Reminder scheduler started")
	return nil
}

func (s *ReminderScheduler) runInterviewReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()
	sent, err := s.reminders.SendInterviewReminders(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error during interview reminder processing")
		return
	}
	s.logger.WithField("sent", sent).Info("Interview reminders processed")
}

func (s *ReminderScheduler) runOfferReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()
	sent, err := s.reminders.SendOfferDeadlineReminders(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Error during offer deadline reminder processing")
		return
	}
	s.logger.WithField("sent", sent).Info("Offer deadline reminders processed")
}

// Stop stops scheduling new runs and waits for running jobs to finish.
func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
