package repositories

import (
	"database/sql"
	"fmt"

	"verimail/internal/models"
)

type UserRepository interface {
	// GetFirstByEmail — email в users не уникален; побеждает самая
	// ранняя запись (минимальный id).
	GetFirstByEmail(email string) (*models.User, error)
	List() ([]*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetFirstByEmail(email string) (*models.User, error) {
	const q = `
		SELECT id, email, created_at
		FROM users
		WHERE email = $1
		ORDER BY id
		LIMIT 1
	`
	u := &models.User{}
	if err := r.DB.QueryRow(q, email).Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) List() ([]*models.User, error) {
	const q = `SELECT id, email, created_at FROM users ORDER BY id`
	rows, err := r.DB.Query(q)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("user list scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
