package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"venuedash/internal/infra/config"
	"venuedash/internal/infra/obs"
)

type VenueHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
}

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	Commit(c *gin.Context)
}

type SessionHTTP interface {
	Open(c *gin.Context)
	Get(c *gin.Context)
	Toggle(c *gin.Context)
	SetMode(c *gin.Context)
	Commit(c *gin.Context)
}

type BookingHTTP interface {
	List(c *gin.Context)
	UpdateStatus(c *gin.Context)
}

type Handlers struct {
	Venue        VenueHTTP
	Availability AvailabilityHTTP
	Session      SessionHTTP
	Booking      BookingHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.Operator())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", obs.HeaderOperatorID},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.HeaderRequestID,
		},
		MaxAge: 12 * time.Hour,
	}))
	if cfg.WriteRateLimit > 0 {
		router.Use(newWriteLimiter(cfg.WriteRateLimit, cfg.WriteRateBurst).Middleware())
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Venue != nil {
		api.GET("/venues", h.Venue.List)
		api.GET("/venues/:id", h.Venue.Get)
	}
	if h.Availability != nil {
		api.GET("/venues/:id/calendar", h.Availability.Calendar)
		api.POST("/venues/:id/availability", h.Availability.Commit)
	}
	if h.Session != nil {
		api.POST("/venues/:id/availability/sessions", h.Session.Open)
		sessions := api.Group("/availability/sessions")
		sessions.GET("/:sid", h.Session.Get)
		sessions.POST("/:sid/toggle", h.Session.Toggle)
		sessions.PUT("/:sid/mode", h.Session.SetMode)
		sessions.POST("/:sid/commit", h.Session.Commit)
	}
	if h.Booking != nil {
		api.GET("/venues/:id/bookings", h.Booking.List)
		api.PATCH("/bookings/:id/status", h.Booking.UpdateStatus)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
