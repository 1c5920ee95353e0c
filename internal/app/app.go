package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"verimail/internal/config"
	"verimail/internal/handlers"
	"verimail/internal/repositories"
	"verimail/internal/routes"
	"verimail/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "verimail/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	// === Repos ===
	projectRepo := repositories.NewProjectRepository(db)
	userRepo := repositories.NewUserRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)

	// === Services ===
	tokenService := services.NewTokenService(cfg.Auth.TokenSecret)
	emailService := services.NewEmailService(cfg.Mail)
	projectService := services.NewProjectService(projectRepo)
	userService := services.NewUserService(userRepo)
	registrationService := services.NewRegistrationService(
		userRepo,
		projectRepo,
		verificationRepo,
		tokenService,
		emailService,
	)

	// === Handlers ===
	jwtSecret := []byte(cfg.Auth.JWTSecret)
	bearerTTL := time.Duration(cfg.Auth.BearerTTLMinutes) * time.Minute

	registrationHandler := handlers.NewRegistrationHandler(registrationService, cfg.Server.BaseURL)
	projectHandler := handlers.NewProjectHandler(projectService)
	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(projectService, jwtSecret, bearerTTL, cfg.Admin.Email, cfg.Admin.PasswordHash)
	emailHandler := handlers.NewEmailHandler(projectService, emailService)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		jwtSecret,
		registrationHandler,
		projectHandler,
		userHandler,
		authHandler,
		emailHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
