package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"verimail/internal/middleware"
	"verimail/internal/services"
)

type AuthHandler struct {
	projects  services.ProjectService
	jwtSecret []byte
	bearerTTL time.Duration

	adminEmail        string
	adminPasswordHash string
}

func NewAuthHandler(projects services.ProjectService, jwtSecret []byte, bearerTTL time.Duration, adminEmail, adminPasswordHash string) *AuthHandler {
	return &AuthHandler{
		projects:          projects,
		jwtSecret:         jwtSecret,
		bearerTTL:         bearerTTL,
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
	}
}

// @Summary      Project login
// @Description  Exchanges a project API key for a short-lived bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      object{api_key=string}  true  "Project API key"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.APIKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "API key do projeto é obrigatória"})
		return
	}

	project, err := h.projects.GetByAPIKey(req.APIKey)
	if err != nil {
		log.Printf("[auth][login] project lookup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao realizar login"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Projeto não encontrado"})
		return
	}

	token, err := h.issueBearer(&middleware.Claims{
		ProjectID: project.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.bearerTTL)),
		},
	})
	if err != nil {
		log.Printf("[auth][login] sign token for project=%d: %v", project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login realizado com sucesso",
		"project": gin.H{
			"id":          project.ID,
			"api_key":     project.APIKey,
			"name":        project.Name,
			"description": project.Description,
		},
		"access_token": token,
	})
}

// @Summary      Administrator login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      object{email=string,password=string}  true  "Admin credentials"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /admin-login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email e senha são obrigatórios"})
		return
	}

	if h.adminEmail == "" || h.adminPasswordHash == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Credenciais de administrador não configuradas"})
		return
	}
	if req.Email != h.adminEmail ||
		bcrypt.CompareHashAndPassword([]byte(h.adminPasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciais inválidas"})
		return
	}

	token, err := h.issueBearer(&middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   h.adminEmail,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.bearerTTL)),
		},
	})
	if err != nil {
		log.Printf("[auth][admin-login] sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (h *AuthHandler) issueBearer(claims *middleware.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
