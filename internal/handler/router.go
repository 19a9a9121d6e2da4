package handler

import (
	"net/http"

	"banksantri/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidation()

	r := gin.New()
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())
	r.Use(MetricsMiddleware())

	h := NewHandler(db, rdb, cfg)

	api := r.Group("/api/v1")
	{
		movement := api.Group("/account-movement")
		{
			movement.GET("", h.ListMovements)
			movement.POST("", h.PostMovement)
			// static segments before /:id
			movement.GET("/daily-summary", h.DailySummary)
			movement.GET("/account/:account_number/history", h.AccountHistory)
			movement.GET("/:id", h.GetMovement)
			movement.PUT("/:id", h.UpdateMovement)
			movement.DELETE("/:id", h.DeleteMovement)
		}

		account := api.Group("/account")
		{
			account.POST("", h.OpenAccount)
			account.GET("/:account_number", h.GetAccount)
			account.PUT("/:account_number/status", h.SetAccountStatus)
			account.GET("/:account_number/reconcile", h.ReconcileAccount)
		}

		api.GET("/transaction-type", h.ListTransactionTypes)
	}

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
