package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"verimail/internal/models"
)

type VerificationRepository interface {
	// EnsureRegistered — атомарная регистрация: находит или создаёт
	// пользователя, привязывает его к проекту и заводит запись
	// верификации, если её ещё нет. Всё в одной транзакции; повторный
	// вызов возвращает существующую запись.
	EnsureRegistered(email string, projectID int64) (*models.User, *models.VerificationStatus, error)
	GetByUserAndProject(userID, projectID int64) (*models.VerificationStatus, error)
	MarkVerified(id int64, at time.Time) error
}

type verificationRepository struct {
	DB *sql.DB
}

func NewVerificationRepository(db *sql.DB) VerificationRepository {
	return &verificationRepository{DB: db}
}

func (r *verificationRepository) EnsureRegistered(email string, projectID int64) (*models.User, *models.VerificationStatus, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("register begin: %w", err)
	}
	defer tx.Rollback()

	// при дублях email побеждает самая ранняя запись
	u := &models.User{}
	err = tx.QueryRow(
		`SELECT id, email, created_at FROM users WHERE email = $1 ORDER BY id LIMIT 1`,
		email,
	).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err == sql.ErrNoRows {
		err = tx.QueryRow(
			`INSERT INTO users (email) VALUES ($1) RETURNING id, email, created_at`,
			email,
		).Scan(&u.ID, &u.Email, &u.CreatedAt)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("register user: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO user_projects (user_id, project_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		u.ID, projectID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("register association: %w", err)
	}

	// гонка двух register на одной паре упирается в unique
	// (user_id, project_id): проигравший просто перечитывает запись
	_, err = tx.Exec(
		`INSERT INTO verification_statuses (user_id, project_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, project_id) DO NOTHING`,
		u.ID, projectID,
	)
	if err != nil && !IsUniqueViolation(err) {
		return nil, nil, fmt.Errorf("register verification: %w", err)
	}

	v, err := scanVerification(tx.QueryRow(
		`SELECT id, user_id, project_id, verified, verified_at
		 FROM verification_statuses WHERE user_id = $1 AND project_id = $2`,
		u.ID, projectID,
	))
	if err != nil {
		return nil, nil, fmt.Errorf("register verification read: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("register commit: %w", err)
	}
	return u, v, nil
}

func (r *verificationRepository) GetByUserAndProject(userID, projectID int64) (*models.VerificationStatus, error) {
	v, err := scanVerification(r.DB.QueryRow(
		`SELECT id, user_id, project_id, verified, verified_at
		 FROM verification_statuses WHERE user_id = $1 AND project_id = $2`,
		userID, projectID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verification get: %w", err)
	}
	return v, nil
}

func (r *verificationRepository) MarkVerified(id int64, at time.Time) error {
	// обратного перехода нет: уже подтверждённую запись не трогаем
	_, err := r.DB.Exec(
		`UPDATE verification_statuses SET verified = TRUE, verified_at = $2
		 WHERE id = $1 AND NOT verified`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("verification mark: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVerification(row rowScanner) (*models.VerificationStatus, error) {
	v := &models.VerificationStatus{}
	var verifiedAt sql.NullTime
	if err := row.Scan(&v.ID, &v.UserID, &v.ProjectID, &v.Verified, &verifiedAt); err != nil {
		return nil, err
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		v.VerifiedAt = &t
	}
	return v, nil
}
