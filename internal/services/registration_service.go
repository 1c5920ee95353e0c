package services

import (
	"errors"
	"fmt"
	"time"

	"verimail/internal/models"
	"verimail/internal/repositories"
	"verimail/internal/utils"
)

var (
	ErrInvalidEmail         = errors.New("invalid email")
	ErrProjectNotFound      = errors.New("project not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrVerificationNotFound = errors.New("verification not found")
	ErrAlreadyVerified      = errors.New("email already verified")
)

// Окно действия верификационного токена.
const verificationTokenMaxAge = time.Hour

// RegistrationResult — итог успешной регистрации.
type RegistrationResult struct {
	User         *models.User
	Project      *models.Project
	Verification *models.VerificationStatus
}

// ConfirmResult — итог подтверждения. AlreadyVerified различает
// первый переход и идемпотентный повтор.
type ConfirmResult struct {
	Project         *models.Project
	AlreadyVerified bool
}

type RegistrationService interface {
	Register(email, apiKey, baseURL string) (*RegistrationResult, error)
	Confirm(token string) (*ConfirmResult, error)
	Status(email, apiKey string) (*models.VerificationStatus, error)
}

type registrationService struct {
	users         repositories.UserRepository
	projects      repositories.ProjectRepository
	verifications repositories.VerificationRepository
	tokens        TokenService
	mailer        EmailService
	now           func() time.Time
}

func NewRegistrationService(
	users repositories.UserRepository,
	projects repositories.ProjectRepository,
	verifications repositories.VerificationRepository,
	tokens TokenService,
	mailer EmailService,
) RegistrationService {
	return &registrationService{
		users:         users,
		projects:      projects,
		verifications: verifications,
		tokens:        tokens,
		mailer:        mailer,
		now:           time.Now,
	}
}

func (s *registrationService) Register(email, apiKey, baseURL string) (*RegistrationResult, error) {
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	project, err := s.projects.GetByAPIKey(apiKey)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	// уже подтверждён — короткое замыкание, токен не выпускаем
	if user, err := s.users.GetFirstByEmail(email); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	} else if user != nil {
		v, err := s.verifications.GetByUserAndProject(user.ID, project.ID)
		if err != nil {
			return nil, fmt.Errorf("register: %w", err)
		}
		if v != nil && v.Verified {
			return nil, ErrAlreadyVerified
		}
	}

	user, verification, err := s.verifications.EnsureRegistered(email, project.ID)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(email, apiKey)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	// регистрация уже закоммичена; провал отправки отдаём наверх —
	// повторный register для той же пары останется идемпотентным
	if err := s.mailer.SendVerificationEmail(email, project.Name, token, baseURL, project); err != nil {
		return nil, err
	}

	return &RegistrationResult{User: user, Project: project, Verification: verification}, nil
}

func (s *registrationService) Confirm(token string) (*ConfirmResult, error) {
	payload, err := s.tokens.Verify(token, verificationTokenMaxAge)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetFirstByEmail(payload.Email)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	project, err := s.projects.GetByAPIKey(payload.APIKey)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	v, err := s.verifications.GetByUserAndProject(user.ID, project.ID)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	if v == nil {
		return nil, ErrVerificationNotFound
	}
	if v.Verified {
		return &ConfirmResult{Project: project, AlreadyVerified: true}, nil
	}

	if err := s.verifications.MarkVerified(v.ID, s.now()); err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}
	return &ConfirmResult{Project: project}, nil
}

func (s *registrationService) Status(email, apiKey string) (*models.VerificationStatus, error) {
	user, err := s.users.GetFirstByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	project, err := s.projects.GetByAPIKey(apiKey)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	v, err := s.verifications.GetByUserAndProject(user.ID, project.ID)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if v == nil {
		return nil, ErrVerificationNotFound
	}
	return v, nil
}
