package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/HarryWebAI/myerp/config"
	"github.com/HarryWebAI/myerp/handlers"
	"github.com/HarryWebAI/myerp/middlewares"
	"github.com/HarryWebAI/myerp/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func registerRoutes(r *gin.Engine) {
	r.POST("/login/", handlers.Login)

	api := r.Group("/", middlewares.RequireLogin())
	{
		api.GET("/staff/", handlers.ListStaff)
		api.POST("/staff/", middlewares.RequireBoss(), handlers.CreateStaff)
		api.PUT("/staff/:uid/", middlewares.RequireBoss(), handlers.UpdateStaff)
		api.POST("/staff/:uid/password/", handlers.ResetPassword)

		api.GET("/installers/", handlers.ListInstallers)
		api.POST("/installers/", handlers.CreateInstaller)

		api.GET("/brands/", handlers.ListBrands)
		api.POST("/brands/", middlewares.RequireBoss(), handlers.CreateBrand)
		api.PUT("/brands/:id/", middlewares.RequireBoss(), handlers.UpdateBrand)

		api.GET("/categories/", handlers.ListCategories)
		api.POST("/categories/", middlewares.RequireBoss(), handlers.CreateCategory)
		api.PUT("/categories/:id/", middlewares.RequireBoss(), handlers.UpdateCategory)

		api.GET("/clients/", handlers.ListClients)
		api.POST("/clients/", handlers.CreateClient)
		api.GET("/clients/:uid/", handlers.GetClient)
		api.PUT("/clients/:uid/", handlers.UpdateClient)
		api.GET("/clients/:uid/followups/", handlers.ListFollowUpRecords)
		api.POST("/followups/", handlers.CreateFollowUpRecord)

		api.GET("/inventory/", handlers.ListInventories)
		api.POST("/inventory/", middlewares.RequireStorekeeper(), handlers.CreateInventory)
		api.PUT("/inventory/:id/", middlewares.RequireStorekeeper(), handlers.UpdateInventory)
		api.GET("/allinventory/", handlers.AllInventories)

		api.POST("/purchase/", middlewares.RequireStorekeeper(), handlers.CreatePurchase)
		api.GET("/purchase/list/", handlers.ListPurchases)
		api.GET("/purchase/detail/:id/", handlers.GetPurchase)
		api.PUT("/purchase/detail/update/:id/", middlewares.RequireStorekeeper(), handlers.UpdatePurchaseDetail)
		api.DELETE("/purchase/detail/delete/:id/", middlewares.RequireStorekeeper(), handlers.DeletePurchaseDetail)
		api.PUT("/purchase/cost/update/:id/", middlewares.RequireStorekeeper(), handlers.UpdatePurchaseCost)

		api.POST("/receive/", middlewares.RequireStorekeeper(), handlers.CreateReceive)
		api.GET("/receive/list/", handlers.ListReceives)
		api.GET("/receive/detail/:id/", handlers.GetReceive)
		api.PUT("/receive/detail/update/:id/", middlewares.RequireStorekeeper(), handlers.UpdateReceiveDetail)
		api.DELETE("/receive/detail/delete/:id/", middlewares.RequireStorekeeper(), handlers.DeleteReceiveDetail)

		api.GET("/orders/", handlers.ListOrders)
		api.POST("/orders/", handlers.CreateOrder)
		api.GET("/orders/:id/", handlers.GetOrder)
		api.POST("/order-install/:id/", middlewares.RequireStorekeeper(), handlers.InstallOrder)
		api.DELETE("/orders/:id/", handlers.VoidOrder)
		api.POST("/orders/:id/balance-payments/", handlers.PayBalance)
		api.GET("/orders/:id/balance-payments/", handlers.ListBalancePayments)
		api.GET("/orders/:id/logs/", handlers.ListOperationLogs)

		api.GET("/home/", handlers.Home)
		api.GET("/download/", handlers.DownloadInventory)
		api.POST("/stocktake/", middlewares.RequireBoss(), handlers.Stocktake)
	}
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Shutdown coordination: handle SIGTERM for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on dependency readiness.
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production require an explicit allowlist; in development allow all.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.AuthMiddleware())
	r.Use(gin.Recovery())

	registerRoutes(r)

	// Start listening before dependencies are up; the readiness gate answers
	// 503 until they are.
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running it as a
	// separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}
