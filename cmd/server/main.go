package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/studytrack/studytrack-backend/internal/ai"
	"github.com/studytrack/studytrack-backend/internal/config"
	"github.com/studytrack/studytrack-backend/internal/database"
	"github.com/studytrack/studytrack-backend/internal/handlers"
	"github.com/studytrack/studytrack-backend/internal/jobs"
	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/internal/repository"
	scheduler "github.com/studytrack/studytrack-backend/internal/scheduler"
	"github.com/studytrack/studytrack-backend/internal/services"
	"github.com/studytrack/studytrack-backend/pkg/logger"
	"github.com/studytrack/studytrack-backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("Index creation error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	aiRepo := repository.NewAIResponseRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// --- Services ---
	goalService := services.NewGoalService(goalRepo)
	userService := services.NewUserService(userRepo, goalService)
	taskService := services.NewTaskService(taskRepo)
	aiClient := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	aiService := services.NewAIService(aiRepo, aiClient)
	notificationService := services.NewNotificationService(notificationRepo)
	activityService := services.NewActivityService(activityRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	goalHandler := handlers.NewGoalHandler(goalService, activityService)
	taskHandler := handlers.NewTaskHandler(taskService, activityService)
	aiHandler := handlers.NewAIHandler(aiService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, activityService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Goal routes
	protectedGoalRoutes := router.PathPrefix("/goals").Subrouter()
	protectedGoalRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedGoalRoutes.Use(middleware.UpdateLastActiveMiddleware(userService))
	protectedGoalRoutes.HandleFunc("", goalHandler.GetGoalsHandler).Methods("GET")
	protectedGoalRoutes.HandleFunc("/{id}", goalHandler.UpdateGoalHandler).Methods("PATCH")
	protectedGoalRoutes.HandleFunc("/{id}/add_progress", goalHandler.AddProgressHandler).Methods("POST")
	protectedGoalRoutes.HandleFunc("/{id}/subtract_progress", goalHandler.SubtractProgressHandler).Methods("POST")
	protectedGoalRoutes.HandleFunc("/{id}/mark_day_completed", goalHandler.MarkDayCompletedHandler).Methods("POST")
	protectedGoalRoutes.HandleFunc("/{id}/remove_day_completed", goalHandler.RemoveDayCompletedHandler).Methods("POST")

	// Task routes
	protectedTaskRoutes := router.PathPrefix("/tasks").Subrouter()
	protectedTaskRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedTaskRoutes.Use(middleware.UpdateLastActiveMiddleware(userService))
	protectedTaskRoutes.HandleFunc("", taskHandler.CreateTaskHandler).Methods("POST")
	protectedTaskRoutes.HandleFunc("", taskHandler.GetTasksHandler).Methods("GET")
	protectedTaskRoutes.HandleFunc("/{id}", taskHandler.GetTaskHandler).Methods("GET")
	protectedTaskRoutes.HandleFunc("/{id}", taskHandler.UpdateTaskHandler).Methods("PUT")
	protectedTaskRoutes.HandleFunc("/{id}", taskHandler.DeleteTaskHandler).Methods("DELETE")

	// AI assistant routes. Generation is throttled per user; regeneration more strictly.
	generationThrottle := middleware.NewThrottle(10, 3)
	regenerationThrottle := middleware.NewThrottle(3, 1)

	protectedAIRoutes := router.PathPrefix("/ai").Subrouter()
	protectedAIRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	aiCollections := map[string]string{
		"dsa-responses":           models.AIKindDSA,
		"dev-responses":           models.AIKindDevelopment,
		"system-design-responses": models.AIKindSystemDesign,
		"job-search-responses":    models.AIKindJobSearch,
	}
	for path, kind := range aiCollections {
		protectedAIRoutes.Handle("/"+path, generationThrottle.Middleware(aiHandler.GenerateHandler(kind))).Methods("POST")
		protectedAIRoutes.HandleFunc("/"+path, aiHandler.ListHandler(kind)).Methods("GET")
	}
	protectedAIRoutes.Handle("/summarize", generationThrottle.Middleware(aiHandler.GenerateHandler(models.AIKindSummary))).Methods("POST")
	protectedAIRoutes.Handle("/responses/{id}/regenerate", regenerationThrottle.Middleware(http.HandlerFunc(aiHandler.RegenerateHandler))).Methods("POST")
	protectedAIRoutes.HandleFunc("/responses/{id}", aiHandler.DeleteResponseHandler).Methods("DELETE")

	// Register User routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/verify", userHandler.VerifyEmailHandler).Methods("GET")

	// Protected user routes (only authenticated users can access)
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.MeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Notification and activity routes
	protectedNotifRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotifRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotifRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	protectedNotifRoutes.HandleFunc("/{id}/read", notificationHandler.MarkReadHandler).Methods("POST")

	protectedActivityRoutes := router.PathPrefix("/activities").Subrouter()
	protectedActivityRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedActivityRoutes.HandleFunc("", notificationHandler.GetActivitiesHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Daily streak reminders
	streakReminder := jobs.NewStreakReminder(goalRepo, userRepo, notificationService)
	scheduler.StartReminderCronJobs(streakReminder)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
