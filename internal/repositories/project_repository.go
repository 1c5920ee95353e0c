package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"verimail/internal/models"
)

type ProjectRepository interface {
	Create(project *models.Project) error
	GetByAPIKey(apiKey string) (*models.Project, error)
	GetByID(id int64) (*models.Project, error)
	List() ([]*models.Project, error)
}

type projectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{DB: db}
}

func (r *projectRepository) Create(project *models.Project) error {
	const q = `
		INSERT INTO projects (api_key, name, description, mail_username, mail_password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(q,
		project.APIKey,
		project.Name,
		project.Description,
		nullIfEmpty(project.MailUsername),
		nullIfEmpty(project.MailPassword),
	).Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		return fmt.Errorf("project create: %w", err)
	}
	return nil
}

func (r *projectRepository) GetByAPIKey(apiKey string) (*models.Project, error) {
	return r.getOne(`WHERE api_key = $1`, apiKey)
}

func (r *projectRepository) GetByID(id int64) (*models.Project, error) {
	return r.getOne(`WHERE id = $1`, id)
}

func (r *projectRepository) getOne(where string, arg interface{}) (*models.Project, error) {
	q := `
		SELECT id, api_key, name, COALESCE(description,''), mail_username, mail_password, created_at
		FROM projects ` + where
	p := &models.Project{}
	var mailUser, mailPass sql.NullString
	err := r.DB.QueryRow(q, arg).Scan(
		&p.ID, &p.APIKey, &p.Name, &p.Description, &mailUser, &mailPass, &p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("project get: %w", err)
	}
	p.MailUsername = mailUser.String
	p.MailPassword = mailPass.String
	return p, nil
}

func (r *projectRepository) List() ([]*models.Project, error) {
	const q = `
		SELECT id, api_key, name, COALESCE(description,''), mail_username, mail_password, created_at
		FROM projects
		ORDER BY id
	`
	rows, err := r.DB.Query(q)
	if err != nil {
		return nil, fmt.Errorf("project list: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p := &models.Project{}
		var mailUser, mailPass sql.NullString
		if err := rows.Scan(&p.ID, &p.APIKey, &p.Name, &p.Description, &mailUser, &mailPass, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("project list scan: %w", err)
		}
		p.MailUsername = mailUser.String
		p.MailPassword = mailPass.String
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// IsUniqueViolation — нарушение unique-констрейнта постгреса (23505).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
