package database

import (
	"context"
	"fmt"

	"internship_tracker/internal/domain/application"
)

type PostgresApplicationRepository struct {
	q querier
}

const applicationColumns = `a.id, a.student_id, a.internship_id, a.status, a.applied_at, a.mentor_id, a.mentor_approved_at,
               a.resume_viewed_at, a.resume_viewed_by, a.completed_at, a.updated_at`

func scanApplication(row interface{ Scan(...any) error }) (*application.Application, error) {
	a := &application.Application{}
	err := row.Scan(&a.ID, &a.StudentID, &a.InternshipID, &a.Status, &a.AppliedAt, &a.MentorID, &a.MentorApprovedAt,
		&a.ResumeViewedAt, &a.ResumeViewedBy, &a.CompletedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, a *application.Application) error {
	query := `INSERT INTO applications (student_id, internship_id, status, applied_at, updated_at)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id`
	err := r.q.QueryRowContext(ctx, query, a.StudentID, a.InternshipID, a.Status, a.AppliedAt, a.UpdatedAt).Scan(&a.ID)
	return mapError(err, "application", "creating application")
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id int64) (*application.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications a WHERE a.id = $1`
	a, err := scanApplication(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "application", "getting application by ID")
	}
	return a, nil
}

func (r *PostgresApplicationRepository) Update(ctx context.Context, a *application.Application) error {
	query := `UPDATE applications
               SET status = $1, mentor_id = $2, mentor_approved_at = $3, resume_viewed_at = $4,
                   resume_viewed_by = $5, completed_at = $6, updated_at = $7
               WHERE id = $8
               RETURNING id`
	var id int64
	err := r.q.QueryRowContext(ctx, query, a.Status, a.MentorID, a.MentorApprovedAt, a.ResumeViewedAt,
		a.ResumeViewedBy, a.CompletedAt, a.UpdatedAt, a.ID).Scan(&id)
	return mapError(err, "application", "updating application")
}

func (r *PostgresApplicationRepository) List(ctx context.Context, f application.Filter) ([]*application.Application, error) {
	query := `SELECT ` + applicationColumns + `
               FROM applications a
               JOIN users s ON s.id = a.student_id
               JOIN internships i ON i.id = a.internship_id
               WHERE ($1::BIGINT IS NULL OR a.student_id = $1)
                 AND ($2 = '' OR s.department = $2)
                 AND ($3::BIGINT IS NULL OR i.company_id = $3)
                 AND ($4::BIGINT IS NULL OR a.internship_id = $4)
                 AND ($5 = '' OR a.status = $5)
               ORDER BY a.id`
	rows, err := r.q.QueryContext(ctx, query, f.StudentID, f.StudentDepartment, f.CompanyID, f.InternshipID, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("error querying applications: %w", err)
	}
	defer rows.Close()

	out := make([]*application.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return out, nil
}
