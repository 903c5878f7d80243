package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"internship_tracker/internal/domain/interview"
)

type PostgresInterviewRepository struct {
	q querier
}

const interviewColumns = `id, application_id, interviewer_id, student_id, scheduled_at, duration_minutes, mode, location,
               status, feedback, rating, reminded_at, created_at, updated_at`

func scanInterview(row interface{ Scan(...any) error }) (*interview.Interview, error) {
	iv := &interview.Interview{}
	err := row.Scan(&iv.ID, &iv.ApplicationID, &iv.InterviewerID, &iv.StudentID, &iv.ScheduledAt, &iv.DurationMinutes,
		&iv.Mode, &iv.Location, &iv.Status, &iv.Feedback, &iv.Rating, &iv.RemindedAt, &iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return iv, nil
}

func scanInterviews(rows *sql.Rows) ([]*interview.Interview, error) {
	out := make([]*interview.Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning interview row: %w", err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interview rows: %w", err)
	}
	return out, nil
}

func (r *PostgresInterviewRepository) Create(ctx context.Context, iv *interview.Interview) error {
	query := `INSERT INTO interviews (application_id, interviewer_id, student_id, scheduled_at, duration_minutes, mode,
                                     location, status, feedback, rating, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
               RETURNING id`
	err := r.q.QueryRowContext(ctx, query, iv.ApplicationID, iv.InterviewerID, iv.StudentID, iv.ScheduledAt,
		iv.DurationMinutes, iv.Mode, iv.Location, iv.Status, iv.Feedback, iv.Rating, iv.CreatedAt, iv.UpdatedAt).Scan(&iv.ID)
	return mapError(err, "interview", "creating interview")
}

func (r *PostgresInterviewRepository) GetByID(ctx context.Context, id int64) (*interview.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`
	iv, err := scanInterview(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "interview", "getting interview by ID")
	}
	return iv, nil
}

func (r *PostgresInterviewRepository) Update(ctx context.Context, iv *interview.Interview) error {
	query := `UPDATE interviews
               SET scheduled_at = $1, duration_minutes = $2, mode = $3, location = $4, status = $5,
                   feedback = $6, rating = $7, reminded_at = $8, updated_at = $9
               WHERE id = $10
               RETURNING id`
	var id int64
	err := r.q.QueryRowContext(ctx, query, iv.ScheduledAt, iv.DurationMinutes, iv.Mode, iv.Location, iv.Status,
		iv.Feedback, iv.Rating, iv.RemindedAt, iv.UpdatedAt, iv.ID).Scan(&id)
	return mapError(err, "interview", "updating interview")
}

func (r *PostgresInterviewRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*interview.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE application_id = $1 ORDER BY scheduled_at, id`
	rows, err := r.q.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error querying interviews by application: %w", err)
	}
	defer rows.Close()
	return scanInterviews(rows)
}

func (r *PostgresInterviewRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*interview.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews
               WHERE reminded_at IS NULL
                 AND status IN ('SCHEDULED', 'RESCHEDULED')
                 AND scheduled_at >= $1 AND scheduled_at < $2
               ORDER BY scheduled_at`
	rows, err := r.q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying interviews for reminders: %w", err)
	}
	defer rows.Close()
	return scanInterviews(rows)
}
