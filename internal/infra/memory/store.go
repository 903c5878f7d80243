// Package memory is the in-process storage backend used when no database is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"internship_tracker/internal/app"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/internship"
	"internship_tracker/internal/domain/interview"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/tracking"
	"internship_tracker/internal/domain/user"
)

type state struct {
	users         map[int64]user.User
	internships   map[int64]internship.Internship
	applications  map[int64]application.Application
	steps         map[int64]tracking.Step
	interviews    map[int64]interview.Interview
	offers        map[int64]offer.Offer
	notifications map[int64]notification.Notification
	seq           map[string]int64
}

func newState() *state {
	return &state{
		users:         make(map[int64]user.User),
		internships:   make(map[int64]internship.Internship),
		applications:  make(map[int64]application.Application),
		steps:         make(map[int64]tracking.Step),
		interviews:    make(map[int64]interview.Interview),
		offers:        make(map[int64]offer.Offer),
		notifications: make(map[int64]notification.Notification),
		seq:           make(map[string]int64),
	}
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies the maps; records are stored by value so the copy is
// independent of later writes.
func (st *state) clone() *state {
	seq := make(map[string]int64, len(st.seq))
	for k, v := range st.seq {
		seq[k] = v
	}
	return &state{
		users:         cloneMap(st.users),
		internships:   cloneMap(st.internships),
		applications:  cloneMap(st.applications),
		steps:         cloneMap(st.steps),
		interviews:    cloneMap(st.interviews),
		offers:        cloneMap(st.offers),
		notifications: cloneMap(st.notifications),
		seq:           seq,
	}
}

// nextID returns the next identifier of a table, skipping ids that were
// assigned explicitly.
func (st *state) nextID(table string, taken func(int64) bool) int64 {
	for {
		st.seq[table]++
		if !taken(st.seq[table]) {
			return st.seq[table]
		}
	}
}

// Store implements app.Store on maps guarded by a mutex.
type Store struct {
	mu   *sync.RWMutex
	data *state
	inTx bool
}

var _ app.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{mu: &sync.RWMutex{}, data: newState()}
}

func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx holds the write lock for the whole of fn and restores the previous
// state when fn fails or panics. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx app.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			*s.data = *snapshot
		}
	}()

	tx := &Store{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) Users() user.Repository { return userRepo{s} }
func (s *Store) Internships() internship.Repository { return internshipRepo{s} }
func (s *Store) Applications() application.Repository { return applicationRepo{s} }
func (s *Store) Steps() tracking.Repository { return stepRepo{s} }
func (s *Store) Interviews() interview.Repository { return interviewRepo{s} }
func (s *Store) Offers() offer.Repository { return offerRepo{s} }
func (s *Store) Notifications() notification.Repository { return notificationRepo{s} }
