package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verimail/internal/models"
	"verimail/internal/services"
)

type fakeRegistrationService struct {
	RegisterFn func(email, apiKey, baseURL string) (*services.RegistrationResult, error)
	ConfirmFn  func(token string) (*services.ConfirmResult, error)
	StatusFn   func(email, apiKey string) (*models.VerificationStatus, error)
}

var _ services.RegistrationService = (*fakeRegistrationService)(nil)

func (f *fakeRegistrationService) Register(email, apiKey, baseURL string) (*services.RegistrationResult, error) {
	return f.RegisterFn(email, apiKey, baseURL)
}

func (f *fakeRegistrationService) Confirm(token string) (*services.ConfirmResult, error) {
	return f.ConfirmFn(token)
}

func (f *fakeRegistrationService) Status(email, apiKey string) (*models.VerificationStatus, error) {
	return f.StatusFn(email, apiKey)
}

func newRegistrationRouter(svc services.RegistrationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewRegistrationHandler(svc, "")
	r.POST("/api/register", h.Register)
	r.GET("/api/verify/:token", h.Verify)
	r.POST("/api/check-verification", h.CheckVerification)
	return r
}

func TestRegisterEndpoint(t *testing.T) {
	var gotBaseURL string
	svc := &fakeRegistrationService{
		RegisterFn: func(email, apiKey, baseURL string) (*services.RegistrationResult, error) {
			gotBaseURL = baseURL
			return &services.RegistrationResult{
				User:         &models.User{ID: 3, Email: email},
				Project:      &models.Project{ID: 7, Name: "Acme"},
				Verification: &models.VerificationStatus{ID: 9},
			}, nil
		},
	}
	r := newRegistrationRouter(svc)

	w := postJSON(t, r, "/api/register", gin.H{"email": "u@x.com", "api_key": "ACMEKEY"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Message string `json:"message"`
		User    struct {
			Email    string `json:"email"`
			Project  string `json:"project"`
			Verified bool   `json:"verified"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Registro realizado com sucesso. Verifique seu email.", resp.Message)
	assert.Equal(t, "u@x.com", resp.User.Email)
	assert.Equal(t, "Acme", resp.User.Project)
	assert.False(t, resp.User.Verified)
	// ссылка в письме строится от Host запроса
	assert.Equal(t, "http://example.com", gotBaseURL)
}

func TestRegisterEndpointMissingFields(t *testing.T) {
	r := newRegistrationRouter(&fakeRegistrationService{})

	w := postJSON(t, r, "/api/register", gin.H{"email": "u@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "obrigatórios")
}

func TestRegisterEndpointErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid email", services.ErrInvalidEmail, http.StatusBadRequest},
		{"unknown project", services.ErrProjectNotFound, http.StatusNotFound},
		{"already verified", services.ErrAlreadyVerified, http.StatusBadRequest},
		{"dispatch failure", services.ErrMailDispatch, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeRegistrationService{
				RegisterFn: func(string, string, string) (*services.RegistrationResult, error) {
					return nil, tc.err
				},
			}
			r := newRegistrationRouter(svc)
			w := postJSON(t, r, "/api/register", gin.H{"email": "u@x.com", "api_key": "K"})
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestVerifyEndpoint(t *testing.T) {
	svc := &fakeRegistrationService{
		ConfirmFn: func(token string) (*services.ConfirmResult, error) {
			assert.Equal(t, "TOKEN123", token)
			return &services.ConfirmResult{Project: &models.Project{Name: "Acme"}}, nil
		},
	}
	r := newRegistrationRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/verify/TOKEN123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Email verificado com sucesso")
	assert.Contains(t, w.Body.String(), "Acme")
}

func TestVerifyEndpointAlreadyVerified(t *testing.T) {
	svc := &fakeRegistrationService{
		ConfirmFn: func(string) (*services.ConfirmResult, error) {
			return &services.ConfirmResult{Project: &models.Project{Name: "Acme"}, AlreadyVerified: true}, nil
		},
	}
	r := newRegistrationRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/verify/TOKEN123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "já está verificado")
}

func TestVerifyEndpointBadToken(t *testing.T) {
	svc := &fakeRegistrationService{
		ConfirmFn: func(string) (*services.ConfirmResult, error) {
			return nil, services.ErrTokenExpired
		},
	}
	r := newRegistrationRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/verify/stale", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Token inválido ou expirado")
}

func TestCheckVerificationMissingParams(t *testing.T) {
	r := newRegistrationRouter(&fakeRegistrationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/check-verification?email=u@x.com", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckVerification(t *testing.T) {
	at := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeRegistrationService{
		StatusFn: func(email, apiKey string) (*models.VerificationStatus, error) {
			return &models.VerificationStatus{Verified: true, VerifiedAt: &at}, nil
		},
	}
	r := newRegistrationRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/check-verification?email=u@x.com&api_key=K", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Verified   bool    `json:"verified"`
		VerifiedAt *string `json:"verified_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
	require.NotNil(t, resp.VerifiedAt)
	assert.Equal(t, "2026-09-01T12:00:00Z", *resp.VerifiedAt)
}

func TestCheckVerificationNotFound(t *testing.T) {
	svc := &fakeRegistrationService{
		StatusFn: func(string, string) (*models.VerificationStatus, error) {
			return nil, services.ErrVerificationNotFound
		},
	}
	r := newRegistrationRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/check-verification?email=u@x.com&api_key=K", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Verificação não encontrada")
}
