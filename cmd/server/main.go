package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/campusshare/backend/internal/config"
	"github.com/campusshare/backend/internal/database"
	"github.com/campusshare/backend/internal/handlers"
	"github.com/campusshare/backend/internal/jobs"
	"github.com/campusshare/backend/internal/repository"
	"github.com/campusshare/backend/internal/scheduler"
	"github.com/campusshare/backend/internal/services"
	"github.com/campusshare/backend/pkg/logger"
	"github.com/campusshare/backend/pkg/media"
	"github.com/campusshare/backend/pkg/middleware"
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

	mediaStore, err := media.NewStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("Media store initialization error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	groupRepo := repository.NewStudyGroupRepository(db)
	requestRepo := repository.NewResourceRequestRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	userAchievementRepo := repository.NewUserAchievementRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo)
	achievementService := services.NewAchievementService(achievementRepo, userAchievementRepo, userRepo, notificationService)
	userService := services.NewUserService(userRepo, courseRepo, mediaStore, cfg.BaseURL)
	courseService := services.NewCourseService(courseRepo)
	resourceService := services.NewResourceService(resourceRepo, userRepo, courseRepo, notificationService, achievementService, mediaStore)
	groupService := services.NewStudyGroupService(groupRepo, courseRepo, notificationService, achievementService)
	requestService := services.NewResourceRequestService(requestRepo, resourceRepo, courseRepo, notificationService, achievementService)
	dashboardService := services.NewDashboardService(userRepo, courseRepo, resourceRepo, groupRepo, requestRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	courseHandler := handlers.NewCourseHandler(courseService)
	resourceHandler := handlers.NewResourceHandler(resourceService)
	groupHandler := handlers.NewStudyGroupHandler(groupService)
	requestHandler := handlers.NewResourceRequestHandler(requestService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Background jobs
	deadlineNotifier := jobs.NewDeadlineNotifier(requestRepo, notificationService)
	scheduler.StartNotificationCronJobs(notificationService, deadlineNotifier)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public auth routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/verify", userHandler.VerifyEmailHandler).Methods("GET")
	router.HandleFunc("/users/request-password-reset", userHandler.RequestPasswordResetHandler).Methods("POST")
	router.HandleFunc("/users/reset-password", userHandler.ResetPasswordHandler).Methods("POST")

	// Protected user routes
	userRoutes := router.PathPrefix("/users").Subrouter()
	userRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	userRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	userRoutes.HandleFunc("/me", userHandler.UpdateProfileHandler).Methods("PATCH")
	userRoutes.HandleFunc("/me/picture", userHandler.UploadProfilePictureHandler).Methods("POST")
	userRoutes.HandleFunc("/me/bookmarks", userHandler.AddBookmarkHandler).Methods("POST")
	userRoutes.HandleFunc("/me/bookmarks", userHandler.RemoveBookmarkHandler).Methods("DELETE")
	userRoutes.HandleFunc("/me/courses/{courseId}", userHandler.EnrollCourseHandler).Methods("POST")
	userRoutes.HandleFunc("/me/courses/{courseId}", userHandler.UnenrollCourseHandler).Methods("DELETE")
	userRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/achievements", achievementHandler.GetUserAchievementsHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}/activity", dashboardHandler.UserActivityHandler).Methods("GET")

	// Course routes
	courseRoutes := router.PathPrefix("/courses").Subrouter()
	courseRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	courseRoutes.HandleFunc("", courseHandler.GetCoursesHandler).Methods("GET")
	courseRoutes.HandleFunc("/{id}", courseHandler.GetCourseHandler).Methods("GET")

	// Resource routes
	resourceRoutes := router.PathPrefix("/resources").Subrouter()
	resourceRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	resourceRoutes.HandleFunc("", resourceHandler.CreateResourceHandler).Methods("POST")
	resourceRoutes.HandleFunc("", resourceHandler.GetResourcesHandler).Methods("GET")
	resourceRoutes.HandleFunc("/recent", resourceHandler.GetRecentResourcesHandler).Methods("GET")
	resourceRoutes.HandleFunc("/pinned", resourceHandler.GetPinnedResourcesHandler).Methods("GET")
	resourceRoutes.HandleFunc("/{id}", resourceHandler.GetResourceHandler).Methods("GET")
	resourceRoutes.HandleFunc("/{id}", resourceHandler.UpdateResourceHandler).Methods("PUT", "PATCH")
	resourceRoutes.HandleFunc("/{id}", resourceHandler.DeleteResourceHandler).Methods("DELETE")
	resourceRoutes.HandleFunc("/{id}/like", resourceHandler.ToggleLikeHandler).Methods("POST")
	resourceRoutes.HandleFunc("/{id}/comments", resourceHandler.AddCommentHandler).Methods("POST")
	resourceRoutes.HandleFunc("/{id}/download", resourceHandler.DownloadResourceHandler).Methods("GET")

	// Study group routes
	groupRoutes := router.PathPrefix("/study-groups").Subrouter()
	groupRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	groupRoutes.HandleFunc("", groupHandler.CreateStudyGroupHandler).Methods("POST")
	groupRoutes.HandleFunc("", groupHandler.GetStudyGroupsHandler).Methods("GET")
	groupRoutes.HandleFunc("/search", groupHandler.SearchStudyGroupsHandler).Methods("GET")
	groupRoutes.HandleFunc("/my-groups", groupHandler.GetMyGroupsHandler).Methods("GET")
	groupRoutes.HandleFunc("/mine", groupHandler.GetMyGroupsHandler).Methods("GET")
	groupRoutes.HandleFunc("/{id}", groupHandler.GetStudyGroupHandler).Methods("GET")
	groupRoutes.HandleFunc("/{id}", groupHandler.UpdateStudyGroupHandler).Methods("PUT")
	groupRoutes.HandleFunc("/{id}", groupHandler.DeleteStudyGroupHandler).Methods("DELETE")
	groupRoutes.HandleFunc("/{id}/join", groupHandler.JoinStudyGroupHandler).Methods("POST")
	groupRoutes.HandleFunc("/{id}/leave", groupHandler.LeaveStudyGroupHandler).Methods("DELETE", "POST")

	// Resource request routes
	requestRoutes := router.PathPrefix("/resource-requests").Subrouter()
	requestRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	requestRoutes.HandleFunc("", requestHandler.CreateRequestHandler).Methods("POST")
	requestRoutes.HandleFunc("", requestHandler.GetRequestsHandler).Methods("GET")
	requestRoutes.HandleFunc("/{id}", requestHandler.GetRequestHandler).Methods("GET")
	requestRoutes.HandleFunc("/{id}", requestHandler.UpdateRequestHandler).Methods("PUT")
	requestRoutes.HandleFunc("/{id}", requestHandler.DeleteRequestHandler).Methods("DELETE")
	requestRoutes.HandleFunc("/{id}/comments", requestHandler.AddCommentHandler).Methods("POST")
	requestRoutes.HandleFunc("/{id}/upvote", requestHandler.ToggleUpvoteHandler).Methods("POST")
	requestRoutes.HandleFunc("/{id}/fulfill", requestHandler.FulfillRequestHandler).Methods("POST")
	requestRoutes.HandleFunc("/{id}/status", requestHandler.UpdateStatusHandler).Methods("PATCH")

	// Achievement routes
	achievementRoutes := router.PathPrefix("/achievements").Subrouter()
	achievementRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	achievementRoutes.HandleFunc("", achievementHandler.GetAchievementsHandler).Methods("GET")
	achievementRoutes.HandleFunc("/my-achievements", achievementHandler.GetMyAchievementsHandler).Methods("GET")
	achievementRoutes.HandleFunc("/mine", achievementHandler.GetMyAchievementsHandler).Methods("GET")
	achievementRoutes.HandleFunc("/leaderboard", achievementHandler.LeaderboardHandler).Methods("GET")

	// Notification routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/unread-count", notificationHandler.GetUnreadCountHandler).Methods("GET")
	notificationRoutes.HandleFunc("/mark-all-read", notificationHandler.MarkAllAsReadHandler).Methods("PATCH")
	notificationRoutes.HandleFunc("/read-all", notificationHandler.MarkAllAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("PATCH", "POST")
	notificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Dashboard routes
	dashboardRoutes := router.PathPrefix("/dashboard").Subrouter()
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	dashboardRoutes.HandleFunc("/me", dashboardHandler.StudentStatsHandler).Methods("GET")
	dashboardRoutes.Handle("/stats", middleware.RequireRole("admin")(http.HandlerFunc(dashboardHandler.AdminStatsHandler))).Methods("GET")
	dashboardRoutes.HandleFunc("/resource-stats", dashboardHandler.ResourceStatsHandler).Methods("GET")
	dashboardRoutes.HandleFunc("/resources", dashboardHandler.ResourceStatsHandler).Methods("GET")
	dashboardRoutes.HandleFunc("/user-activity/{id}", dashboardHandler.UserActivityHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users", userHandler.GetAllUsersHandler).Methods("GET")
	adminRoutes.HandleFunc("/stats", dashboardHandler.AdminStatsHandler).Methods("GET")
	adminRoutes.HandleFunc("/courses", courseHandler.CreateCourseHandler).Methods("POST")
	adminRoutes.HandleFunc("/courses/{id}", courseHandler.UpdateCourseHandler).Methods("PUT")
	adminRoutes.HandleFunc("/courses/{id}", courseHandler.DeleteCourseHandler).Methods("DELETE")
	adminRoutes.HandleFunc("/resources/{id}/approve", resourceHandler.ApproveResourceHandler).Methods("POST")
	adminRoutes.HandleFunc("/resources/{id}/pin", resourceHandler.PinResourceHandler).Methods("PATCH")
	adminRoutes.HandleFunc("/achievements", achievementHandler.CreateAchievementHandler).Methods("POST")
	adminRoutes.HandleFunc("/achievements/{id}", achievementHandler.UpdateAchievementHandler).Methods("PUT")
	adminRoutes.HandleFunc("/achievements/{id}", achievementHandler.DeleteAchievementHandler).Methods("DELETE")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

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
