package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verimail/internal/models"
	"verimail/internal/repositories"
)

type fakeUserRepo struct {
	GetFirstByEmailFn func(email string) (*models.User, error)
	ListFn            func() ([]*models.User, error)
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) GetFirstByEmail(email string) (*models.User, error) {
	if f.GetFirstByEmailFn != nil {
		return f.GetFirstByEmailFn(email)
	}
	return nil, nil
}

func (f *fakeUserRepo) List() ([]*models.User, error) {
	if f.ListFn != nil {
		return f.ListFn()
	}
	return nil, nil
}

type fakeProjectRepo struct {
	GetByAPIKeyFn func(apiKey string) (*models.Project, error)
}

var _ repositories.ProjectRepository = (*fakeProjectRepo)(nil)

func (f *fakeProjectRepo) Create(*models.Project) error { return nil }
func (f *fakeProjectRepo) GetByID(int64) (*models.Project, error) {
	return nil, nil
}
func (f *fakeProjectRepo) List() ([]*models.Project, error) { return nil, nil }
func (f *fakeProjectRepo) GetByAPIKey(apiKey string) (*models.Project, error) {
	if f.GetByAPIKeyFn != nil {
		return f.GetByAPIKeyFn(apiKey)
	}
	return nil, nil
}

type fakeVerificationRepo struct {
	EnsureRegisteredFn    func(email string, projectID int64) (*models.User, *models.VerificationStatus, error)
	GetByUserAndProjectFn func(userID, projectID int64) (*models.VerificationStatus, error)
	MarkVerifiedFn        func(id int64, at time.Time) error

	markedID int64
	markedAt time.Time
	marks    int
}

var _ repositories.VerificationRepository = (*fakeVerificationRepo)(nil)

func (f *fakeVerificationRepo) EnsureRegistered(email string, projectID int64) (*models.User, *models.VerificationStatus, error) {
	if f.EnsureRegisteredFn != nil {
		return f.EnsureRegisteredFn(email, projectID)
	}
	return nil, nil, errors.New("unexpected EnsureRegistered call")
}

func (f *fakeVerificationRepo) GetByUserAndProject(userID, projectID int64) (*models.VerificationStatus, error) {
	if f.GetByUserAndProjectFn != nil {
		return f.GetByUserAndProjectFn(userID, projectID)
	}
	return nil, nil
}

func (f *fakeVerificationRepo) MarkVerified(id int64, at time.Time) error {
	f.marks++
	f.markedID = id
	f.markedAt = at
	if f.MarkVerifiedFn != nil {
		return f.MarkVerifiedFn(id, at)
	}
	return nil
}

type fakeMailer struct {
	SendVerificationEmailFn func(email, projectName, token, baseURL string, project *models.Project) error

	verificationTokens []string
	customMessages     []*models.OutboundMessage
}

var _ EmailService = (*fakeMailer)(nil)

func (f *fakeMailer) SendVerificationEmail(email, projectName, token, baseURL string, project *models.Project) error {
	f.verificationTokens = append(f.verificationTokens, token)
	if f.SendVerificationEmailFn != nil {
		return f.SendVerificationEmailFn(email, projectName, token, baseURL, project)
	}
	return nil
}

func (f *fakeMailer) SendCustomEmail(msg *models.OutboundMessage, project *models.Project) error {
	f.customMessages = append(f.customMessages, msg)
	return nil
}

func acmeProject() *models.Project {
	return &models.Project{ID: 7, APIKey: "ACMEKEY", Name: "Acme"}
}

func newRegistrationFixture() (*registrationService, *fakeVerificationRepo, *fakeMailer) {
	verifications := &fakeVerificationRepo{}
	mailer := &fakeMailer{}
	svc := &registrationService{
		users: &fakeUserRepo{},
		projects: &fakeProjectRepo{
			GetByAPIKeyFn: func(apiKey string) (*models.Project, error) {
				if apiKey == "ACMEKEY" {
					return acmeProject(), nil
				}
				return nil, nil
			},
		},
		verifications: verifications,
		tokens:        &tokenService{secret: []byte("secret"), now: time.Now},
		mailer:        mailer,
		now:           time.Now,
	}
	return svc, verifications, mailer
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc, _, mailer := newRegistrationFixture()

	_, err := svc.Register("not-an-email", "ACMEKEY", "http://localhost")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Empty(t, mailer.verificationTokens)
}

func TestRegisterUnknownProject(t *testing.T) {
	svc, _, _ := newRegistrationFixture()

	_, err := svc.Register("u@x.com", "NOPE", "http://localhost")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestRegisterAlreadyVerifiedShortCircuits(t *testing.T) {
	svc, verifications, mailer := newRegistrationFixture()
	at := time.Now()
	svc.users = &fakeUserRepo{
		GetFirstByEmailFn: func(string) (*models.User, error) {
			return &models.User{ID: 3, Email: "u@x.com"}, nil
		},
	}
	verifications.GetByUserAndProjectFn = func(userID, projectID int64) (*models.VerificationStatus, error) {
		return &models.VerificationStatus{ID: 9, UserID: userID, ProjectID: projectID, Verified: true, VerifiedAt: &at}, nil
	}

	_, err := svc.Register("u@x.com", "ACMEKEY", "http://localhost")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
	// токен не выпускается, письмо не уходит
	assert.Empty(t, mailer.verificationTokens)
}

func TestRegisterHappyPath(t *testing.T) {
	svc, verifications, mailer := newRegistrationFixture()
	verifications.EnsureRegisteredFn = func(email string, projectID int64) (*models.User, *models.VerificationStatus, error) {
		assert.Equal(t, int64(7), projectID)
		return &models.User{ID: 3, Email: email},
			&models.VerificationStatus{ID: 9, UserID: 3, ProjectID: projectID}, nil
	}

	result, err := svc.Register("u@x.com", "ACMEKEY", "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", result.User.Email)
	assert.Equal(t, "Acme", result.Project.Name)
	assert.False(t, result.Verification.Verified)

	// выпущенный токен расшифровывается обратно в ту же пару
	require.Len(t, mailer.verificationTokens, 1)
	payload, err := svc.tokens.Verify(mailer.verificationTokens[0], time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", payload.Email)
	assert.Equal(t, "ACMEKEY", payload.APIKey)
}

func TestRegisterDispatchFailureSurfaces(t *testing.T) {
	svc, verifications, mailer := newRegistrationFixture()
	verifications.EnsureRegisteredFn = func(email string, projectID int64) (*models.User, *models.VerificationStatus, error) {
		return &models.User{ID: 3, Email: email}, &models.VerificationStatus{ID: 9}, nil
	}
	mailer.SendVerificationEmailFn = func(string, string, string, string, *models.Project) error {
		return fmt.Errorf("%w: connection refused", ErrMailDispatch)
	}

	_, err := svc.Register("u@x.com", "ACMEKEY", "http://localhost")
	assert.ErrorIs(t, err, ErrMailDispatch)
}

func newConfirmFixture(verified bool, verifiedAt *time.Time) (*registrationService, *fakeVerificationRepo) {
	svc, verifications, _ := newRegistrationFixture()
	svc.users = &fakeUserRepo{
		GetFirstByEmailFn: func(string) (*models.User, error) {
			return &models.User{ID: 3, Email: "u@x.com"}, nil
		},
	}
	verifications.GetByUserAndProjectFn = func(userID, projectID int64) (*models.VerificationStatus, error) {
		return &models.VerificationStatus{
			ID: 9, UserID: userID, ProjectID: projectID,
			Verified: verified, VerifiedAt: verifiedAt,
		}, nil
	}
	return svc, verifications
}

func TestConfirmHappyPath(t *testing.T) {
	svc, verifications := newConfirmFixture(false, nil)
	stamp := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return stamp }

	token, err := svc.tokens.Issue("u@x.com", "ACMEKEY")
	require.NoError(t, err)

	result, err := svc.Confirm(token)
	require.NoError(t, err)
	assert.False(t, result.AlreadyVerified)
	assert.Equal(t, "Acme", result.Project.Name)
	assert.Equal(t, 1, verifications.marks)
	assert.Equal(t, int64(9), verifications.markedID)
	assert.Equal(t, stamp, verifications.markedAt)
}

func TestConfirmIdempotent(t *testing.T) {
	at := time.Now()
	svc, verifications := newConfirmFixture(true, &at)

	token, err := svc.tokens.Issue("u@x.com", "ACMEKEY")
	require.NoError(t, err)

	result, err := svc.Confirm(token)
	require.NoError(t, err)
	assert.True(t, result.AlreadyVerified)
	// повторное подтверждение ничего не мутирует
	assert.Equal(t, 0, verifications.marks)
}

func TestConfirmExpiredToken(t *testing.T) {
	svc, _ := newConfirmFixture(false, nil)
	issued := time.Now().Add(-2 * time.Hour)
	issuer := &tokenService{secret: []byte("secret"), now: func() time.Time { return issued }}

	token, err := issuer.Issue("u@x.com", "ACMEKEY")
	require.NoError(t, err)

	_, err = svc.Confirm(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestConfirmMissingRecord(t *testing.T) {
	svc, verifications, _ := newRegistrationFixture()
	svc.users = &fakeUserRepo{
		GetFirstByEmailFn: func(string) (*models.User, error) {
			return &models.User{ID: 3, Email: "u@x.com"}, nil
		},
	}
	verifications.GetByUserAndProjectFn = func(int64, int64) (*models.VerificationStatus, error) {
		return nil, nil
	}

	token, err := svc.tokens.Issue("u@x.com", "ACMEKEY")
	require.NoError(t, err)

	_, err = svc.Confirm(token)
	assert.ErrorIs(t, err, ErrVerificationNotFound)
}

func TestConfirmVanishedUser(t *testing.T) {
	svc, _, _ := newRegistrationFixture()

	token, err := svc.tokens.Issue("u@x.com", "ACMEKEY")
	require.NoError(t, err)

	_, err = svc.Confirm(token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStatus(t *testing.T) {
	at := time.Now()
	svc, _ := newConfirmFixture(true, &at)

	v, err := svc.Status("u@x.com", "ACMEKEY")
	require.NoError(t, err)
	assert.True(t, v.Verified)
	require.NotNil(t, v.VerifiedAt)
	assert.Equal(t, at, *v.VerifiedAt)
}

func TestStatusNotFound(t *testing.T) {
	svc, _, _ := newRegistrationFixture()

	_, err := svc.Status("u@x.com", "ACMEKEY")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Status("u@x.com", "NOPE")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
