package database

import (
	"context"
	"fmt"

	"internship_tracker/internal/domain/user"
)

type PostgresUserRepository struct {
	q querier
}

const userColumns = `id, name, email, role, department, company_id, telegram_chat_id, created_at`

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Department, &u.CompanyID, &u.TelegramChatID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a user. A preset ID is kept (imported accounts) and the id
// sequence is moved past it.
func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID == 0 {
		query := `INSERT INTO users (name, email, role, department, company_id, created_at)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at`
		err := r.q.QueryRowContext(ctx, query, u.Name, u.Email, u.Role, u.Department, u.CompanyID, u.CreatedAt).Scan(&u.ID, &u.CreatedAt)
		return mapError(err, "user", "creating user")
	}

	query := `INSERT INTO users (id, name, email, role, department, company_id, created_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING created_at`
	if err := r.q.QueryRowContext(ctx, query, u.ID, u.Name, u.Email, u.Role, u.Department, u.CompanyID, u.CreatedAt).Scan(&u.CreatedAt); err != nil {
		return mapError(err, "user", "creating user with preset id")
	}
	_, err := r.q.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('users', 'id'), GREATEST((SELECT MAX(id) FROM users), 1))`)
	if err != nil {
		return fmt.Errorf("error advancing users id sequence: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "user", "getting user by ID")
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_chat_id = $1`
	u, err := scanUser(r.q.QueryRowContext(ctx, query, chatID))
	if err != nil {
		return nil, mapError(err, "user", "getting user by telegram chat")
	}
	return u, nil
}

func (r *PostgresUserRepository) SetTelegramChatID(ctx context.Context, id int64, chatID *int64) error {
	query := `UPDATE users SET telegram_chat_id = $1 WHERE id = $2 RETURNING id`
	var updated int64
	err := r.q.QueryRowContext(ctx, query, chatID, id).Scan(&updated)
	return mapError(err, "user", "linking telegram chat")
}

func (r *PostgresUserRepository) List(ctx context.Context, role user.Role) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ($1 = '' OR role = $1) ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
