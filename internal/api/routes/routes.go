package routes

import (
	"time"

	"casework-service/internal/api/handlers"
	"casework-service/internal/api/middleware"
	"casework-service/internal/services"
	"casework-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type Router struct {
	engine              *gin.Engine
	wsHandler           *handlers.WSHandler
	statusHandler       *handlers.StatusHandler
	authHandler         *handlers.AuthHandler
	userHandler         *handlers.UserHandler
	notificationHandler *handlers.NotificationHandler
	queueHandler        *handlers.QueueHandler
	documentHandler     *handlers.DocumentHandler
	rateLimitMW         *middleware.RateLimitMiddleware
	authMW              *middleware.AuthMiddleware
}

type Services struct {
	User         *services.UserService
	Redis        *services.RedisService
	Notification *services.NotificationService
	Queue        *services.QueueService
	Document     *services.DocumentService
}

func NewRouter(manager *websocket.Manager, svc Services, jwtSecret string) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	return &Router{
		engine:              engine,
		wsHandler:           handlers.NewWSHandler(manager, svc.Redis, svc.Notification),
		statusHandler:       handlers.NewStatusHandler(manager),
		authHandler:         handlers.NewAuthHandler(svc.User),
		userHandler:         handlers.NewUserHandler(svc.User, svc.Redis),
		notificationHandler: handlers.NewNotificationHandler(svc.Notification),
		queueHandler:        handlers.NewQueueHandler(svc.Queue),
		documentHandler:     handlers.NewDocumentHandler(svc.Document),
		rateLimitMW:         middleware.NewRateLimitMiddleware(svc.Redis),
		authMW:              middleware.NewAuthMiddleware(jwtSecret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", r.statusHandler.Healthz)
	r.engine.GET("/status", r.statusHandler.Status)

	// WebSocket endpoints. Browsers cannot set headers on the upgrade
	// request, so authenticated sockets pass the JWT as ?token=.
	ws := r.engine.Group("/ws")
	{
		ws.GET("/public", r.wsHandler.Public)

		authed := ws.Group("/")
		authed.Use(r.authMW.WSAuth())
		{
			authed.GET("/notifications", r.wsHandler.Notifications)
			authed.GET("/queue", r.wsHandler.Queue)
			authed.GET("/volunteer",
				r.authMW.RequireRole(websocket.RoleVolunteer, websocket.RoleAdmin),
				r.wsHandler.Volunteer)
			authed.GET("/documents",
				r.authMW.RequireRole(websocket.RoleAdmin),
				r.wsHandler.Documents)
		}
	}

	api := r.engine.Group("/api/v1")

	// Public routes (no authentication required)
	public := api.Group("/auth")
	public.Use(r.rateLimitMW.RateLimitIP(50, time.Minute))
	{
		public.POST("/register", r.authHandler.Register)
		public.POST("/login", r.authHandler.Login)
	}

	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		users := auth.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("/profile", r.userHandler.GetProfile)
			users.GET("/online", r.userHandler.OnlineCount)
		}

		notifications := auth.Group("/notifications")
		notifications.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			notifications.GET("/", r.notificationHandler.List)
			notifications.PUT("/:id/read", r.notificationHandler.MarkRead)
			notifications.POST("/",
				r.authMW.RequireRole(websocket.RoleAdmin, websocket.RoleVolunteer),
				r.notificationHandler.Create)
		}

		queue := auth.Group("/queue")
		queue.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			queue.POST("/check-in", r.queueHandler.CheckIn)
			queue.DELETE("/", r.queueHandler.Leave)
			queue.GET("/position", r.queueHandler.Position)
			queue.POST("/serve-next",
				r.authMW.RequireRole(websocket.RoleAdmin, websocket.RoleVolunteer),
				r.queueHandler.ServeNext)
		}

		documents := auth.Group("/documents")
		documents.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			documents.POST("/", r.documentHandler.Upload)
			documents.GET("/", r.documentHandler.List)
			documents.GET("/pending",
				r.authMW.RequireRole(websocket.RoleAdmin),
				r.documentHandler.ListPending)
			documents.PUT("/:id/verify",
				r.authMW.RequireRole(websocket.RoleAdmin),
				r.documentHandler.Verify)
		}

		auth.GET("/ws/stats", r.wsHandler.Stats)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
