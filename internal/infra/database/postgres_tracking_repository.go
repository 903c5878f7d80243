package database

import (
	"context"
	"fmt"

	"internship_tracker/internal/domain/tracking"
)

// PostgresTrackingRepository stores the tracking_steps ledger.
type PostgresTrackingRepository struct {
	q querier
}

const stepColumns = `id, application_id, step_name, position, status, completed_at, completed_by, notes, updated_at`

func scanStep(row interface{ Scan(...any) error }) (*tracking.Step, error) {
	s := &tracking.Step{}
	err := row.Scan(&s.ID, &s.ApplicationID, &s.Name, &s.Position, &s.Status, &s.CompletedAt, &s.CompletedBy, &s.Notes, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// BulkCreate inserts all rows with one prepared statement. Callers run it
// inside Store.WithinTx so a partial ledger is never visible.
func (r *PostgresTrackingRepository) BulkCreate(ctx context.Context, steps []*tracking.Step) error {
	if len(steps) == 0 {
		return nil
	}

	stmt, err := r.q.PrepareContext(ctx, `INSERT INTO tracking_steps (application_id, step_name, position, status, completed_at, completed_by, notes, updated_at)
                                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                                         RETURNING id`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range steps {
		err := stmt.QueryRowContext(ctx, s.ApplicationID, s.Name, s.Position, s.Status, s.CompletedAt, s.CompletedBy, s.Notes, s.UpdatedAt).Scan(&s.ID)
		if err != nil {
			return mapError(err, "tracking step", fmt.Sprintf("inserting step %q for application %d", s.Name, s.ApplicationID))
		}
	}
	return nil
}

func (r *PostgresTrackingRepository) GetByID(ctx context.Context, id int64) (*tracking.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM tracking_steps WHERE id = $1`
	s, err := scanStep(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "tracking step", "getting tracking step by ID")
	}
	return s, nil
}

func (r *PostgresTrackingRepository) GetByName(ctx context.Context, applicationID int64, name tracking.StepName) (*tracking.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM tracking_steps WHERE application_id = $1 AND step_name = $2`
	s, err := scanStep(r.q.QueryRowContext(ctx, query, applicationID, name))
	if err != nil {
		return nil, mapError(err, "tracking step", "getting tracking step by name")
	}
	return s, nil
}

func (r *PostgresTrackingRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*tracking.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM tracking_steps WHERE application_id = $1 ORDER BY position`
	rows, err := r.q.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error querying tracking steps: %w", err)
	}
	defer rows.Close()

	steps := make([]*tracking.Step, 0, len(tracking.Ledger))
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning tracking step row: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracking step rows: %w", err)
	}
	return steps, nil
}

func (r *PostgresTrackingRepository) Update(ctx context.Context, s *tracking.Step) error {
	query := `UPDATE tracking_steps
               SET status = $1, completed_at = $2, completed_by = $3, notes = $4, updated_at = $5
               WHERE id = $6
               RETURNING id`
	var id int64
	err := r.q.QueryRowContext(ctx, query, s.Status, s.CompletedAt, s.CompletedBy, s.Notes, s.UpdatedAt, s.ID).Scan(&id)
	return mapError(err, "tracking step", "updating tracking step")
}
