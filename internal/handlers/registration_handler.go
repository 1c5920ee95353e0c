package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"verimail/internal/services"
)

type RegistrationHandler struct {
	service services.RegistrationService
	// переопределение адреса сервиса для ссылок в письмах; пусто —
	// берём Host запроса
	baseURL string
}

func NewRegistrationHandler(service services.RegistrationService, baseURL string) *RegistrationHandler {
	return &RegistrationHandler{service: service, baseURL: baseURL}
}

// @Summary      Register an email for verification
// @Description  Creates the user/project verification record and sends the verification email
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        request  body      object{email=string,api_key=string}  true  "Email and project API key"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req struct {
		Email  string `json:"email"`
		APIKey string `json:"api_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.APIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email e api_key são obrigatórios"})
		return
	}

	result, err := h.service.Register(req.Email, req.APIKey, h.requestBaseURL(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email inválido"})
		case errors.Is(err, services.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Projeto não encontrado"})
		case errors.Is(err, services.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Este email já está verificado para este projeto"})
		case errors.Is(err, services.ErrMailDispatch):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao enviar email"})
		default:
			log.Printf("[registration][register] email=%q: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao registrar usuário"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registro realizado com sucesso. Verifique seu email.",
		"user": gin.H{
			"id":       result.User.ID,
			"email":    result.User.Email,
			"project":  result.Project.Name,
			"verified": result.Verification.Verified,
		},
	})
}

// @Summary      Confirm an email via verification token
// @Tags         Verification
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      200    {object}  map[string]string
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /verify/{token} [get]
func (h *RegistrationHandler) Verify(c *gin.Context) {
	result, err := h.service.Confirm(c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenInvalid), errors.Is(err, services.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token inválido ou expirado"})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		case errors.Is(err, services.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Projeto não encontrado"})
		case errors.Is(err, services.ErrVerificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Verificação não encontrada"})
		default:
			log.Printf("[registration][verify] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao verificar email"})
		}
		return
	}

	if result.AlreadyVerified {
		c.JSON(http.StatusOK, gin.H{"message": "Email já está verificado para este projeto"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Email verificado com sucesso",
		"project": result.Project.Name,
	})
}

// @Summary      Check verification status
// @Tags         Verification
// @Produce      json
// @Param        email    query     string  true  "Email"
// @Param        api_key  query     string  true  "Project API key"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /check-verification [post]
func (h *RegistrationHandler) CheckVerification(c *gin.Context) {
	email := c.Query("email")
	apiKey := c.Query("api_key")
	if email == "" || apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email e api_key são obrigatórios"})
		return
	}

	v, err := h.service.Status(email, apiKey)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"verified": false, "message": "Email não encontrado"})
		case errors.Is(err, services.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"verified": false, "message": "Projeto não encontrado"})
		case errors.Is(err, services.ErrVerificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"verified": false, "message": "Verificação não encontrada"})
		default:
			log.Printf("[registration][check] email=%q: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao consultar verificação"})
		}
		return
	}

	var verifiedAt interface{}
	if v.VerifiedAt != nil {
		verifiedAt = v.VerifiedAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, gin.H{
		"verified":    v.Verified,
		"verified_at": verifiedAt,
	})
}

func (h *RegistrationHandler) requestBaseURL(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
