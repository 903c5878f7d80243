package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"internship_tracker/internal/app"
	"internship_tracker/internal/common"
	"internship_tracker/internal/domain/application"
	"internship_tracker/internal/domain/internship"
	"internship_tracker/internal/domain/interview"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/domain/offer"
	"internship_tracker/internal/domain/tracking"
	"internship_tracker/internal/domain/user"

	"github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so repositories run the
// same statements inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// PostgresStore implements app.Store on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	q  querier
}

var _ app.Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx app.Store) error) error {
	if s.db == nil {
		// already bound to a transaction
		return fn(s)
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer txn.Rollback() // no-op after Commit

	if err := fn(&PostgresStore{q: txn}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Users() user.Repository { return &PostgresUserRepository{q: s.q} }
func (s *PostgresStore) Internships() internship.Repository {
	return &PostgresInternshipRepository{q: s.q}
}
func (s *PostgresStore) Applications() application.Repository {
	return &PostgresApplicationRepository{q: s.q}
}
func (s *PostgresStore) Steps() tracking.Repository { return &PostgresTrackingRepository{q: s.q} }
func (s *PostgresStore) Interviews() interview.Repository {
	return &PostgresInterviewRepository{q: s.q}
}
func (s *PostgresStore) Offers() offer.Repository { return &PostgresOfferRepository{q: s.q} }
func (s *PostgresStore) Notifications() notification.Repository {
	return &PostgresNotificationRepository{q: s.q}
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// conflictMessages maps unique constraints to client-facing messages.
var conflictMessages = map[string]string{
	"users_email_key":                     "email already registered",
	"users_telegram_chat_id_key":          "telegram chat is linked to another user",
	"users_pkey":                          "user id already exists",
	"applications_student_internship_key": "student has already applied to this internship",
	"tracking_steps_application_step_key": "tracking step already exists",
}

// mapError converts driver errors into common errors. what names the entity
// for not-found messages; op describes the failed operation for logs.
func mapError(err error, what, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.NotFound(what)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			msg, ok := conflictMessages[pqErr.Constraint]
			if !ok {
				msg = what + " already exists"
			}
			return common.NewError(common.CodeConflict, msg, err)
		case pqForeignKeyViolation:
			return common.NewError(common.CodeValidation, "referenced record does not exist", err)
		case pqCheckViolation:
			return common.NewError(common.CodeValidation, "value out of range for "+what, err)
		}
	}
	return fmt.Errorf("error %s: %w", op, err)
}
