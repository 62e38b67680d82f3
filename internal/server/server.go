package server

import (
	"context"
	"log"
	"strings"
	"time"

	"anoa.com/pocmarket/internal/config"
	"anoa.com/pocmarket/internal/middleware"
	"anoa.com/pocmarket/pkg/ratelimiter"
	"anoa.com/pocmarket/pkg/storage"

	attachmentHttp "anoa.com/pocmarket/internal/modules/attachment/delivery/http"
	attachmentRepo "anoa.com/pocmarket/internal/modules/attachment/repository"
	attachmentService "anoa.com/pocmarket/internal/modules/attachment/service"

	blogHttp "anoa.com/pocmarket/internal/modules/blog/delivery/http"
	blogRepo "anoa.com/pocmarket/internal/modules/blog/repository"
	blogService "anoa.com/pocmarket/internal/modules/blog/service"

	contractHttp "anoa.com/pocmarket/internal/modules/contract/delivery/http"
	contractRepo "anoa.com/pocmarket/internal/modules/contract/repository"
	contractService "anoa.com/pocmarket/internal/modules/contract/service"

	messageHttp "anoa.com/pocmarket/internal/modules/message/delivery/http"
	messageRepo "anoa.com/pocmarket/internal/modules/message/repository"
	messageService "anoa.com/pocmarket/internal/modules/message/service"

	notiHttp "anoa.com/pocmarket/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/pocmarket/internal/modules/notification/repository"
	notifService "anoa.com/pocmarket/internal/modules/notification/service"

	projectHttp "anoa.com/pocmarket/internal/modules/project/delivery/http"
	projectRepo "anoa.com/pocmarket/internal/modules/project/repository"
	projectService "anoa.com/pocmarket/internal/modules/project/service"

	proposalHttp "anoa.com/pocmarket/internal/modules/proposal/delivery/http"
	proposalRepo "anoa.com/pocmarket/internal/modules/proposal/repository"
	proposalService "anoa.com/pocmarket/internal/modules/proposal/service"

	reviewHttp "anoa.com/pocmarket/internal/modules/review/delivery/http"
	reviewRepo "anoa.com/pocmarket/internal/modules/review/repository"
	reviewService "anoa.com/pocmarket/internal/modules/review/service"

	searchHttp "anoa.com/pocmarket/internal/modules/search/delivery/http"
	searchRepo "anoa.com/pocmarket/internal/modules/search/repository"
	searchService "anoa.com/pocmarket/internal/modules/search/service"

	userHttp "anoa.com/pocmarket/internal/modules/user/delivery/http"
	userRepo "anoa.com/pocmarket/internal/modules/user/repository"
	userService "anoa.com/pocmarket/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	usersRepo := userRepo.NewUserRepository(db)

	fileStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	meiliSvc := searchService.NewMeiliService(meiliClient, cfg.MeiliMasterKey)

	limiter := ratelimiter.New(redisClient)

	// Auth and users
	authSvc := userService.NewAuthService(cfg, usersRepo, meiliSvc)
	authHandler := userHttp.NewAuthHandler(authSvc)

	userSvc := userService.NewUserService(usersRepo, meiliSvc)
	userHandler := userHttp.NewUserHandler(userSvc)
	adminHandler := userHttp.NewAdminHandler(userSvc)

	// Notifications
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient)

	// Projects
	projectsRepo := projectRepo.NewProjectRepository(db)
	projectSvc := projectService.NewProjectService(projectsRepo, usersRepo, meiliSvc)
	projectHandler := projectHttp.NewProjectHandler(projectSvc)

	// Proposals
	proposalsRepo := proposalRepo.NewProposalRepository(db)
	proposalSvc := proposalService.NewProposalService(proposalsRepo, projectsRepo, usersRepo, notificationSvc, meiliSvc, limiter, cfg.ProposalCooldown)
	proposalHandler := proposalHttp.NewProposalHandler(proposalSvc)

	// Contracts
	contractsRepo := contractRepo.NewContractRepository(db)
	contractSvc := contractService.NewContractService(contractsRepo, projectsRepo)
	contractHandler := contractHttp.NewContractHandler(contractSvc)

	// Messages
	messagesRepo := messageRepo.NewMessageRepository(db)
	messageSvc := messageService.NewMessageService(messagesRepo, contractsRepo, proposalsRepo, notificationSvc, limiter, cfg.MessageCooldown)
	messageHandler := messageHttp.NewMessageHandler(messageSvc)

	// Reviews and badges
	reviewsRepo := reviewRepo.NewReviewRepository(db)
	reviewSvc := reviewService.NewReviewService(reviewsRepo, contractsRepo, notificationSvc)
	reviewHandler := reviewHttp.NewReviewHandler(reviewSvc)

	// Blog
	blogsRepo := blogRepo.NewBlogRepository(db)
	blogSvc := blogService.NewBlogService(blogsRepo, meiliSvc)
	blogHandler := blogHttp.NewBlogHandler(blogSvc)

	// Search
	searchesRepo := searchRepo.NewSearchRepository(db)
	searchSvc := searchService.NewSearchService(searchesRepo, usersRepo, meiliSvc)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	// Attachments
	attachmentsRepo := attachmentRepo.NewAttachmentRepository(db)
	attachmentSvc := attachmentService.NewAttachmentService(attachmentsRepo, fileStorage, cfg.CloudinaryUploadFolder)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	// Orphan upload cleanup, runs every 12 hours.
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			log.Println("🧹 Running orphan attachment cleanup...")
			if removed, err := attachmentSvc.CleanupOrphans(context.Background()); err != nil {
				log.Printf("❌ Error cleaning up orphan attachments: %v", err)
			} else {
				log.Printf("✅ Orphan attachment cleanup completed, removed %d", removed)
			}
		}
	}()

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(usersRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}

	api.GET("/projects", projectHandler.ListProjects)
	api.GET("/projects/:id", projectHandler.GetProject)
	api.GET("/users/:id", userHandler.GetUser)
	api.GET("/reviews", reviewHandler.ListReviews)
	api.GET("/users/:id/badges", reviewHandler.ListBadges)
	api.GET("/blogs", blogHandler.ListBlogs)
	api.GET("/blogs/:id", blogHandler.GetBlog)
	api.GET("/search", searchHandler.Search)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/users", adminHandler.GetAllUsers)
			adminGroup.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)
		}

		// User routes
		protected.PATCH("/users/me", userHandler.UpdateMe)
		protected.POST("/users/me/role", userHandler.SwitchRole)

		// Project routes
		protected.POST("/projects", projectHandler.CreateProject)
		protected.PATCH("/projects/:id", projectHandler.UpdateProject)
		protected.PATCH("/projects/:id/status", projectHandler.UpdateProjectStatus)
		protected.DELETE("/projects/:id", projectHandler.DeleteProject)

		// Proposal routes
		protected.POST("/proposals", proposalHandler.SubmitProposal)
		protected.GET("/proposals/me", proposalHandler.ListMyProposals)
		protected.GET("/proposals/:id", proposalHandler.GetProposal)
		protected.PATCH("/proposals/:id", proposalHandler.UpdateProposal)
		protected.POST("/proposals/:id/status", proposalHandler.DecideProposal)
		protected.POST("/proposals/:id/withdraw", proposalHandler.WithdrawProposal)
		protected.GET("/proposals/:id/messages", messageHandler.GetProposalThread)
		protected.POST("/proposals/:id/messages", messageHandler.SendProposalMessage)

		// Contract routes
		protected.GET("/contracts", contractHandler.ListMyContracts)
		protected.GET("/contracts/:id", contractHandler.GetContract)
		protected.PATCH("/contracts/:id/status", contractHandler.UpdateContractStatus)
		protected.GET("/contracts/:id/messages", messageHandler.GetContractThread)
		protected.POST("/contracts/:id/messages", messageHandler.SendContractMessage)

		// Message routes
		protected.PATCH("/messages/:id/pin", messageHandler.PinMessage)

		// Review routes
		protected.POST("/reviews", reviewHandler.CreateReview)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Blog routes
		protected.POST("/blogs", blogHandler.CreateBlog)
		protected.GET("/blogs/me", blogHandler.ListMyBlogs)
		protected.PATCH("/blogs/:id", blogHandler.UpdateBlog)
		protected.DELETE("/blogs/:id", blogHandler.DeleteBlog)

		// Other protected routes
		protected.GET("/search/token", searchHandler.SearchToken)
		protected.POST("/upload", attachmentHandler.Upload)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := strings.Split(allowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
