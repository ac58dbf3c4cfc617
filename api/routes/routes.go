package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/config"
	"github.com/ArowuTest/luckyticket-backend/internal/handlers"
	"github.com/ArowuTest/luckyticket-backend/internal/middleware"
	"github.com/ArowuTest/luckyticket-backend/pkg/jwt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerDependencies holds everything the router wires together
type HandlerDependencies struct {
	AuthHandler   *handlers.AuthHandler
	TicketHandler *handlers.TicketHandler
	Tokens        *jwt.TokenService
	Logger        *slog.Logger
	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Ping reports storage health for GET /health; nil always reports ok.
	Ping func(ctx context.Context) error
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			if err := deps.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	protect := middleware.JWTAuthMiddleware(deps.Tokens, deps.Logger)
	adminOnly := middleware.AdminOnly()

	// Auth routes
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
		auth.GET("/me", protect, deps.AuthHandler.GetMe)
		auth.GET("/users", protect, adminOnly, deps.AuthHandler.GetUsers)
	}

	// Ticket routes
	tickets := router.Group("/luckyticket", protect)
	{
		tickets.POST("/generate", adminOnly, deps.TicketHandler.GenerateTicket)
		tickets.GET("/list", adminOnly, deps.TicketHandler.GetTickets)
		tickets.POST("/redeem", deps.TicketHandler.RedeemTicket)
		tickets.GET("/available", deps.TicketHandler.GetAvailableTickets)
		tickets.GET("/my-tickets", deps.TicketHandler.GetUserTickets)
	}

	return router
}
