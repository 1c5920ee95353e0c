package services

import (
	"fmt"
	"strings"

	"verimail/internal/models"
	"verimail/internal/repositories"
	"verimail/internal/utils"
)

const apiKeyLength = 32

type ProjectService interface {
	CreateProject(name, description, mailUsername, mailPassword string) (*models.Project, error)
	GetByAPIKey(apiKey string) (*models.Project, error)
	ListProjects() ([]*models.Project, error)
}

type projectService struct {
	repo repositories.ProjectRepository
}

func NewProjectService(repo repositories.ProjectRepository) ProjectService {
	return &projectService{repo: repo}
}

func (s *projectService) CreateProject(name, description, mailUsername, mailPassword string) (*models.Project, error) {
	project := &models.Project{
		Name:        name,
		Description: description,
		// app-пароли часто копируют с пробелами
		MailUsername: strings.TrimSpace(mailUsername),
		MailPassword: strings.ReplaceAll(mailPassword, " ", ""),
	}

	// коллизия ключа крайне маловероятна, но unique по api_key её
	// поймает — перегенерируем один раз
	for attempt := 0; attempt < 2; attempt++ {
		key, err := utils.GenerateAPIKey(apiKeyLength)
		if err != nil {
			return nil, fmt.Errorf("project create: %w", err)
		}
		project.APIKey = key

		err = s.repo.Create(project)
		if err == nil {
			return project, nil
		}
		if !repositories.IsUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("project create: api key collision")
}

func (s *projectService) GetByAPIKey(apiKey string) (*models.Project, error) {
	return s.repo.GetByAPIKey(apiKey)
}

func (s *projectService) ListProjects() ([]*models.Project, error) {
	return s.repo.List()
}
