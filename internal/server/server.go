package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoshare/internal/auth"
	"todoshare/internal/config"
	"todoshare/internal/database"
	"todoshare/internal/handler"
	"todoshare/internal/middleware"
	"todoshare/internal/platform"
	"todoshare/internal/repository"
	"todoshare/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine     *gin.Engine
	DB         *gorm.DB
	Config     *config.Config
	Dispatcher *platform.Dispatcher
}

func Init(cfg *config.Config) (*Server, error) {
	if cfg.MigrateOnStart {
		if err := database.MigrateUp(cfg.MigrateURL()); err != nil {
			return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
		}
	}

	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}
	log.Println("✅ Connected to database")

	return New(db, cfg), nil
}

// New wires repositories, services and routes over an open database
func New(db *gorm.DB, cfg *config.Config) *Server {
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	sharedTaskRepo := repository.NewSharedTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// Initialize services
	notifier := platform.NewService(userRepo, alertRepo)
	userService := service.NewUserService(userRepo, friendRepo, sharedTaskRepo)
	friendService := service.NewFriendService(userRepo, friendRepo, notificationRepo)
	groupService := service.NewGroupService(groupRepo, userRepo)
	taskService := service.NewTaskService(taskRepo)
	sharingService := service.NewSharingService(taskRepo, sharedTaskRepo, userRepo, groupRepo, notificationRepo)
	scheduler := service.NewNotificationScheduler(notifier, notificationRepo, cfg.Location)
	activityService := service.NewActivityService(notificationRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService, auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry))
	friendHandler := handler.NewFriendHandler(friendService)
	groupHandler := handler.NewGroupHandler(groupService)
	taskHandler := handler.NewTaskHandler(taskService, scheduler, sharingService)
	sharedTaskHandler := handler.NewSharedTaskHandler(sharingService)
	notificationHandler := handler.NewNotificationHandler(activityService)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Profile routes
		authorized.GET("/me", userHandler.Me)
		authorized.PUT("/me", userHandler.UpdateMe)
		authorized.PUT("/me/notifications", userHandler.SetNotifications)
		authorized.GET("/users/search", userHandler.Search)

		// Friend routes
		authorized.GET("/friends", friendHandler.List)
		authorized.POST("/friends", friendHandler.SendRequest)
		authorized.GET("/friends/pending", friendHandler.Pending)
		authorized.POST("/friends/:id/accept", friendHandler.Accept)
		authorized.DELETE("/friends/:id", friendHandler.Remove)

		// Group routes
		authorized.POST("/groups", groupHandler.Create)
		authorized.GET("/groups", groupHandler.GetAll)
		authorized.GET("/groups/:id", groupHandler.GetByID)
		authorized.POST("/groups/:id/members", groupHandler.AddMember)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.GetAll)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.GET("/tasks/:id/reminder", taskHandler.Reminder)
		authorized.GET("/feed", taskHandler.Feed)

		// Sharing routes
		authorized.POST("/tasks/:id/share/user", sharedTaskHandler.ShareWithUser)
		authorized.POST("/tasks/:id/share/group", sharedTaskHandler.ShareWithGroup)
		authorized.GET("/shared-tasks", sharedTaskHandler.GetAll)
		authorized.GET("/shared-tasks/:id", sharedTaskHandler.GetByID)
		authorized.PUT("/shared-tasks/:id", sharedTaskHandler.Update)
		authorized.DELETE("/shared-tasks/:id", sharedTaskHandler.Delete)

		// Notification routes
		authorized.GET("/notifications", notificationHandler.GetAll)
		authorized.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authorized.POST("/notifications/:id/read", notificationHandler.MarkRead)
	}

	return &Server{
		Engine:     r,
		DB:         db,
		Config:     cfg,
		Dispatcher: platform.NewDispatcher(alertRepo, cfg.AlertPoll),
	}
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		s.Dispatcher.Run(dispatchCtx)
	}()

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	stopDispatch()
	<-dispatchDone

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
