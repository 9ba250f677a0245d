package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/wardenlock/warden/internal/api/handlers"
	"github.com/wardenlock/warden/internal/api/middleware"
	"github.com/wardenlock/warden/internal/audit"
	"github.com/wardenlock/warden/internal/auth"
	"github.com/wardenlock/warden/internal/challenge"
	"github.com/wardenlock/warden/internal/grants"
	"github.com/wardenlock/warden/internal/models"
	"github.com/wardenlock/warden/internal/monitor"
	"github.com/wardenlock/warden/internal/procctl"
	"github.com/wardenlock/warden/internal/rules"
	"github.com/wardenlock/warden/internal/services"
)

// Deps carries the engine pieces the API surface exposes.
type Deps struct {
	DB                  *gorm.DB
	Registry            *rules.Registry
	Store               *rules.Store
	Verifier            *auth.Verifier
	AuthService         *services.AuthService
	NotificationService *services.NotificationService
	AuditLog            *audit.Log
	Grants              *grants.Store
	Broker              *challenge.Broker
	Scanner             procctl.Scanner
	Scheduler           *monitor.Scheduler
	Metrics             *prometheus.Registry
}

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, deps Deps) error {
	if err := deps.DB.AutoMigrate(
		&models.Notification{},
		&models.NotificationProvider{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	router.GET("/api/v1/health", handlers.HealthHandler)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("/")
	protected.Use(middleware.Auth(deps.AuthService))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		ruleHandler := handlers.NewRuleHandler(deps.Registry, deps.Store, deps.Verifier)
		protected.GET("/rules", ruleHandler.List)
		protected.POST("/rules", ruleHandler.Upsert)
		protected.DELETE("/rules", ruleHandler.Delete)

		auditHandler := handlers.NewAuditHandler(deps.AuditLog)
		protected.GET("/audit", auditHandler.List)
		protected.DELETE("/audit", auditHandler.Clear)

		grantHandler := handlers.NewGrantHandler(deps.Grants)
		protected.GET("/grants", grantHandler.List)
		protected.DELETE("/grants", grantHandler.Revoke)

		challengeHandler := handlers.NewChallengeHandler(deps.Broker)
		protected.GET("/challenges/pending", challengeHandler.Pending)
		protected.POST("/challenges/:id/respond", challengeHandler.Respond)

		processHandler := handlers.NewProcessHandler(deps.Scanner)
		protected.GET("/processes", processHandler.List)

		statusHandler := handlers.NewStatusHandler(deps.Scheduler)
		protected.GET("/status", statusHandler.Status)
		protected.POST("/monitoring/start", statusHandler.StartMonitoring)
		protected.POST("/monitoring/stop", statusHandler.StopMonitoring)

		notificationHandler := handlers.NewNotificationHandler(deps.NotificationService)
		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		protected.GET("/notifications/providers", notificationHandler.ListProviders)
		protected.POST("/notifications/providers", notificationHandler.CreateProvider)
		protected.DELETE("/notifications/providers/:id", notificationHandler.DeleteProvider)
		protected.POST("/notifications/providers/test", notificationHandler.TestProvider)
	}

	return nil
}
