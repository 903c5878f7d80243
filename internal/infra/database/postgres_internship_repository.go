package database

import (
	"context"
	"fmt"

	"internship_tracker/internal/domain/internship"
)

type PostgresInternshipRepository struct {
	q querier
}

const internshipColumns = `id, company_id, posted_by, title, description, department, location, status, created_at, updated_at`

func scanInternship(row interface{ Scan(...any) error }) (*internship.Internship, error) {
	in := &internship.Internship{}
	err := row.Scan(&in.ID, &in.CompanyID, &in.PostedBy, &in.Title, &in.Description, &in.Department,
		&in.Location, &in.Status, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (r *PostgresInternshipRepository) Create(ctx context.Context, in *internship.Internship) error {
	query := `INSERT INTO internships (company_id, posted_by, title, description, department, location, status, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
               RETURNING id`
	err := r.q.QueryRowContext(ctx, query, in.CompanyID, in.PostedBy, in.Title, in.Description, in.Department,
		in.Location, in.Status, in.CreatedAt, in.UpdatedAt).Scan(&in.ID)
	return mapError(err, "internship", "creating internship")
}

func (r *PostgresInternshipRepository) GetByID(ctx context.Context, id int64) (*internship.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships WHERE id = $1`
	in, err := scanInternship(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "internship", "getting internship by ID")
	}
	return in, nil
}

func (r *PostgresInternshipRepository) Update(ctx context.Context, in *internship.Internship) error {
	query := `UPDATE internships
               SET title = $1, description = $2, department = $3, location = $4, status = $5, updated_at = $6
               WHERE id = $7
               RETURNING id`
	var id int64
	err := r.q.QueryRowContext(ctx, query, in.Title, in.Description, in.Department, in.Location, in.Status,
		in.UpdatedAt, in.ID).Scan(&id)
	return mapError(err, "internship", "updating internship")
}

func (r *PostgresInternshipRepository) List(ctx context.Context, f internship.Filter) ([]*internship.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships
               WHERE ($1::BIGINT IS NULL OR company_id = $1) AND ($2 = '' OR status = $2)
               ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, f.CompanyID, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("error querying internships: %w", err)
	}
	defer rows.Close()

	out := make([]*internship.Internship, 0)
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning internship row: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating internship rows: %w", err)
	}
	return out, nil
}
