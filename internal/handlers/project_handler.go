package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"verimail/internal/services"
)

type ProjectHandler struct {
	service services.ProjectService
}

func NewProjectHandler(service services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// @Summary      Create a project
// @Description  Registers a tenant and returns its generated API key
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        request  body      object{name=string,description=string,mail_username=string,mail_password=string}  true  "Project"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		MailUsername string `json:"mail_username"`
		MailPassword string `json:"mail_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome do projeto é obrigatório"})
		return
	}

	project, err := h.service.CreateProject(req.Name, req.Description, req.MailUsername, req.MailPassword)
	if err != nil {
		log.Printf("[project][create] name=%q: %v", req.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar projeto"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Projeto criado com sucesso",
		"project": gin.H{
			"id":            project.ID,
			"api_key":       project.APIKey,
			"name":          project.Name,
			"description":   project.Description,
			"mail_username": project.MailUsername,
		},
	})
}

// @Summary      List projects
// @Tags         Projects
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.service.ListProjects()
	if err != nil {
		log.Printf("[project][list] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar projetos"})
		return
	}

	out := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		out = append(out, gin.H{
			"id":            p.ID,
			"name":          p.Name,
			"description":   p.Description,
			"api_key":       p.APIKey,
			"mail_username": p.MailUsername,
			"created_at":    p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}
