package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/quollhaven/wildlife-rehab-api/internal/config"
	"github.com/quollhaven/wildlife-rehab-api/internal/constants"
	"github.com/quollhaven/wildlife-rehab-api/internal/database"
	"github.com/quollhaven/wildlife-rehab-api/internal/handlers"
	"github.com/quollhaven/wildlife-rehab-api/internal/identity"
	"github.com/quollhaven/wildlife-rehab-api/internal/middleware"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"github.com/quollhaven/wildlife-rehab-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// External directory client
	directory := identity.NewHTTPClient(cfg.DirectoryBaseURL, cfg.DirectoryAPIKey)

	// Repositories
	db := database.GetDB()
	memberRepo := repository.NewOrgMemberRepository(db)
	groupRepo := repository.NewSpeciesGroupRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	animalRepo := repository.NewAnimalRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	// Services
	auditService := services.NewAuditService(auditRepo)
	memberService := services.NewMemberService(memberRepo, directory, auditService)
	accessService := services.NewAccessService(memberRepo, groupRepo)
	groupService := services.NewSpeciesGroupService(groupRepo, memberRepo, auditService)
	animalService := services.NewAnimalService(animalRepo, memberRepo, memberService, accessService, auditService)
	reminderService := services.NewReminderService(reminderRepo, memberService, animalService, auditService)

	var triageService *services.TriageService
	if cfg.OpenAIAPIKey != "" {
		triageService = services.NewTriageService(cfg.OpenAIAPIKey)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(directory, memberService, auditService)
	memberHandler := handlers.NewMemberHandler(memberService)
	groupHandler := handlers.NewSpeciesGroupHandler(groupService)
	auditHandler := handlers.NewAuditHandler(auditService)
	animalHandler := handlers.NewAnimalHandler(animalService, triageService)
	reminderHandler := handlers.NewReminderHandler(reminderService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Wildlife Rehab API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
		}

		// Membership routes (authenticated, not yet org-scoped)
		api.GET("/memberships", middleware.RequireAuth(), memberHandler.ListMemberships)

		orgs := api.Group("/orgs")
		orgs.Use(middleware.RequireAuth())
		{
			// Self-provisioning runs before any member record exists.
			orgs.POST("/:org_id/provision", memberHandler.Provision)

			// Everything below requires a member record for the org.
			org := orgs.Group("/:org_id")
			org.Use(middleware.RequireOrgMember(memberService))
			{
				members := org.Group("/members")
				members.Use(middleware.RequirePermission(rbac.ActionUserManage))
				{
					members.GET("", memberHandler.ListMembers)
					members.PUT("/:user_id/role", memberHandler.AssignRole)
				}

				groups := org.Group("/species-groups")
				{
					groups.GET("", groupHandler.ListGroups)
					groups.POST("", middleware.RequirePermission(rbac.ActionSpeciesGroupManage), groupHandler.CreateGroup)
					groups.PATCH("/:group_id", middleware.RequirePermission(rbac.ActionSpeciesGroupManage), groupHandler.UpdateGroup)
					groups.DELETE("/:group_id", middleware.RequirePermission(rbac.ActionSpeciesGroupManage), groupHandler.DeleteGroup)
					groups.POST("/:group_id/coordinators/:user_id", middleware.RequirePermission(rbac.ActionCoordinatorAssign), groupHandler.AssignCoordinator)
					groups.DELETE("/:group_id/coordinators/:user_id", middleware.RequirePermission(rbac.ActionCoordinatorAssign), groupHandler.UnassignCoordinator)
				}

				org.GET("/audit-logs", middleware.RequirePermission(rbac.ActionAuditView), auditHandler.ListAuditLogs)

				animals := org.Group("/animals")
				{
					animals.GET("", animalHandler.ListAnimals)
					animals.POST("", animalHandler.CreateAnimal)
					animals.POST("/suggest-intake", animalHandler.SuggestIntake)
					animals.GET("/:id", animalHandler.GetAnimal)
					animals.PATCH("/:id", animalHandler.UpdateAnimal)
					animals.DELETE("/:id", animalHandler.DeleteAnimal)
					animals.POST("/:id/reminders", reminderHandler.CreateReminder)
					animals.GET("/:id/reminders", reminderHandler.ListReminders)
					animals.POST("/:id/reminders/:reminder_id/complete", reminderHandler.CompleteReminder)
					animals.DELETE("/:id/reminders/:reminder_id", reminderHandler.DeleteReminder)
				}
			}
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
