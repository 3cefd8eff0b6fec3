// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"

	"github.com/balaguruva/admin-backend/internal/config"
	"github.com/balaguruva/admin-backend/internal/handlers"
	"github.com/balaguruva/admin-backend/internal/middleware"
	"github.com/balaguruva/admin-backend/internal/repository"
	"github.com/balaguruva/admin-backend/internal/services"
	"github.com/balaguruva/admin-backend/internal/utils"
)

// Infrastructure carries the optional outside systems. Nil fields are
// simply not used.
type Infrastructure struct {
	Redis   *redis.Client
	Events  services.EventPublisher
	Storage *services.StorageService
}

// App is the wired HTTP application plus the services main drives directly.
type App struct {
	Engine   *gin.Engine
	Sequence *services.SequenceService
	Contacts *services.ContactService
	Feed     *services.OrderFeed

	limiters []*middleware.RateLimiter
}

// Close stops background helpers owned by the router.
func (a *App) Close() {
	a.Feed.Close()
	for _, l := range a.limiters {
		l.Stop()
	}
}

func Initialize(store *repository.Store, cfg *config.Config, infra Infrastructure) *App {
	// Reject unknown JSON fields on every bound request
	binding.EnableDecoderDisallowUnknownFields = true

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize services
	var cache services.StatsCache
	if infra.Redis != nil {
		cache = services.NewRedisStatsCache(infra.Redis, cfg.Redis.StatsTTL)
	}
	dashboardService := services.NewDashboardService(store, cache)
	feed := services.NewOrderFeed(originChecker(cfg.CORS.AllowedOrigins))

	publishers := services.MultiPublisher{feed, dashboardService}
	if infra.Events != nil {
		publishers = append(publishers, infra.Events)
	}

	storageService := infra.Storage
	if storageService == nil {
		storageService = &services.StorageService{}
	}

	sequenceService := services.NewSequenceService(store)
	productService := services.NewProductService(store, sequenceService, storageService, publishers)
	exportService := services.NewExportService(productService)
	orderService := services.NewOrderService(store, cfg, publishers)
	contactService := services.NewContactService(store, cfg, publishers)
	userService := services.NewUserService(store)
	authService := services.NewAuthService(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, exportService, cfg.Uploads.MaxImageBytes)
	orderHandler := handlers.NewOrderHandler(orderService)
	contactHandler := handlers.NewContactHandler(contactService)
	userHandler := handlers.NewUserHandler(userService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, feed)

	app := &App{
		Sequence: sequenceService,
		Contacts: contactService,
		Feed:     feed,
	}

	// Initialize Gin router
	r := gin.New()
	r.MaxMultipartMemory = cfg.Uploads.MaxImageBytes + 1<<20

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())

	loginLimit := []gin.HandlerFunc{}
	uploadLimit := []gin.HandlerFunc{}
	if cfg.RateLimit.Enabled {
		general := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		login := perMinuteLimiter(cfg.RateLimit.LoginPerMinute)
		upload := perMinuteLimiter(cfg.RateLimit.UploadsPerMinute)
		app.limiters = append(app.limiters, general, login, upload)

		r.Use(general.Middleware())
		loginLimit = append(loginLimit, login.Middleware())
		uploadLimit = append(uploadLimit, upload.Middleware())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":           "healthy",
			"version":          "1.0.0",
			"orderFeedClients": feed.Clients(),
		})
	})

	admin := middleware.AdminGate(cfg.Admin.RequireAuth)
	with := func(chains ...[]gin.HandlerFunc) []gin.HandlerFunc {
		var out []gin.HandlerFunc
		for _, chain := range chains {
			out = append(out, chain...)
		}
		return out
	}
	handle := func(h gin.HandlerFunc) []gin.HandlerFunc { return []gin.HandlerFunc{h} }

	api := r.Group("/api")
	{
		// Authentication routes
		api.POST("/auth/admin/login", with(loginLimit, handle(authHandler.AdminLogin))...)

		// Product routes
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)
		api.POST("/products", with(admin, uploadLimit, handle(productHandler.CreateProduct))...)
		api.PUT("/products/:id", with(admin, uploadLimit, handle(productHandler.UpdateProduct))...)
		api.DELETE("/products/:id", with(admin, handle(productHandler.DeleteProduct))...)
		api.GET("/deleted-products", with(admin, handle(productHandler.GetDeletedProducts))...)
		api.GET("/exports/products", with(admin, handle(productHandler.ExportProducts))...)

		// Order routes
		orders := api.Group("/orders")
		{
			orders.GET("/admin/all", with(admin, handle(orderHandler.GetAllOrders))...)
			orders.PUT("/admin/:id/status", with(admin, handle(orderHandler.AdminUpdateOrderStatus))...)

			orders.GET("", middleware.AuthRequired(), orderHandler.GetMyOrders)
			orders.POST("", middleware.AuthRequired(), orderHandler.CreateOrder)
			orders.GET("/:id", middleware.AuthRequired(), orderHandler.GetOrder)
			orders.PUT("/:id/status", middleware.AuthRequired(), orderHandler.UpdateMyOrderStatus)
		}

		// Contact and user routes
		api.GET("/contacts", with(admin, handle(contactHandler.GetContacts))...)
		api.POST("/contacts", contactHandler.CreateContact)
		api.GET("/users", with(admin, handle(userHandler.GetUsers))...)

		// Dashboard routes
		api.GET("/dashboard/stats", with(admin, handle(dashboardHandler.GetStats))...)
		api.GET("/events/orders", with(admin, handle(dashboardHandler.OrderFeed))...)
	}

	app.Engine = r
	return app
}

func perMinuteLimiter(n int) *middleware.RateLimiter {
	n = max(n, 1)
	return middleware.NewRateLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

// originChecker applies the CORS allow-list to websocket upgrades.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*") {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
