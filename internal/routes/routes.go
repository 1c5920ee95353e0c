package routes

import (
	"github.com/gin-gonic/gin"

	"verimail/internal/handlers"
	"verimail/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	registrationHandler *handlers.RegistrationHandler,
	projectHandler *handlers.ProjectHandler,
	userHandler *handlers.UserHandler,
	authHandler *handlers.AuthHandler,
	emailHandler *handlers.EmailHandler,
) *gin.Engine {
	api := r.Group("/api")

	// ---- public
	api.POST("/register", registrationHandler.Register)
	api.GET("/verify/:token", registrationHandler.Verify)
	api.POST("/projects", projectHandler.CreateProject)
	api.POST("/login", authHandler.Login)
	api.POST("/admin-login", authHandler.AdminLogin)
	api.POST("/send-custom-email", emailHandler.SendCustomEmail)

	// ---- protected (bearer)
	protected := api.Group("", middleware.AuthMiddleware(jwtSecret))
	protected.POST("/check-verification", registrationHandler.CheckVerification)
	protected.GET("/users", userHandler.ListUsers)
	protected.GET("/projects", projectHandler.ListProjects)

	return r
}
