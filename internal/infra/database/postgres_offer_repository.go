package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"internship_tracker/internal/domain/offer"
)

type PostgresOfferRepository struct {
	q querier
}

const offerColumns = `id, application_id, student_id, company_id, offer_status, stipend, start_date, response_deadline,
               contract_signed, reminded_at, created_at, updated_at`

func scanOffer(row interface{ Scan(...any) error }) (*offer.Offer, error) {
	o := &offer.Offer{}
	err := row.Scan(&o.ID, &o.ApplicationID, &o.StudentID, &o.CompanyID, &o.Status, &o.Stipend, &o.StartDate,
		&o.ResponseDeadline, &o.ContractSigned, &o.RemindedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func scanOffers(rows *sql.Rows) ([]*offer.Offer, error) {
	out := make([]*offer.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning offer row: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer rows: %w", err)
	}
	return out, nil
}

func (r *PostgresOfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	query := `INSERT INTO offers (application_id, student_id, company_id, offer_status, stipend, start_date,
                                 response_deadline, contract_signed, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
               RETURNING id`
	err := r.q.QueryRowContext(ctx, query, o.ApplicationID, o.StudentID, o.CompanyID, o.Status, o.Stipend, o.StartDate,
		o.ResponseDeadline, o.ContractSigned, o.CreatedAt, o.UpdatedAt).Scan(&o.ID)
	return mapError(err, "offer", "creating offer")
}

func (r *PostgresOfferRepository) GetByID(ctx context.Context, id int64) (*offer.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	o, err := scanOffer(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "offer", "getting offer by ID")
	}
	return o, nil
}

func (r *PostgresOfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	query := `UPDATE offers
               SET offer_status = $1, stipend = $2, start_date = $3, response_deadline = $4,
                   contract_signed = $5, reminded_at = $6, updated_at = $7
               WHERE id = $8
               RETURNING id`
	var id int64
	err := r.q.QueryRowContext(ctx, query, o.Status, o.Stipend, o.StartDate, o.ResponseDeadline,
		o.ContractSigned, o.RemindedAt, o.UpdatedAt, o.ID).Scan(&id)
	return mapError(err, "offer", "updating offer")
}

func (r *PostgresOfferRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*offer.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE application_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.q.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error querying offers by application: %w", err)
	}
	defer rows.Close()
	return scanOffers(rows)
}

func (r *PostgresOfferRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*offer.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers
               WHERE reminded_at IS NULL
                 AND offer_status = 'EXTENDED'
                 AND response_deadline >= $1 AND response_deadline < $2
               ORDER BY response_deadline`
	rows, err := r.q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying offers for reminders: %w", err)
	}
	defer rows.Close()
	return scanOffers(rows)
}
