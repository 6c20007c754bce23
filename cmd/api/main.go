package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/marketgo/storefront-api/internal/config"
	"github.com/marketgo/storefront-api/internal/handler"
	"github.com/marketgo/storefront-api/internal/middleware"
	"github.com/marketgo/storefront-api/internal/repository"
	"github.com/marketgo/storefront-api/internal/service"
	"github.com/marketgo/storefront-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Repositories
	txm := repository.NewTxManager(dbPool)
	userRepo := repository.NewUserRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	submissionRepo := repository.NewSubmissionRepository(dbPool)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	productSvc := service.NewProductService(productRepo, txm, redisClient)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, productRepo, txm, amqpCh)
	submissionSvc := service.NewSubmissionService(submissionRepo, productRepo, userRepo, txm)

	// Initial admin account, created once.
	if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		log.Error("bootstrap admin", "error", err)
		os.Exit(1)
	}

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	productH := handler.NewProductHandler(productSvc, authSvc)
	cartH := handler.NewCartHandler(cartSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	submissionH := handler.NewSubmissionHandler(submissionSvc)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	cacheWorker := worker.NewCacheWorker(amqpCh, productSvc, redisClient, log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	authed := middleware.AuthMiddleware(cfg.JWT.Secret)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)

		users := v1.Group("/users", authed)
		users.GET("/me", authH.Me)
		users.POST("/become-seller", authH.BecomeSeller)

		products := v1.Group("/products")
		products.GET("", productH.List)
		products.GET("/:id", productH.GetByID)
		products.GET("/:id/reviews", productH.ListReviews)
		products.POST("/:id/reviews", authed, productH.UpsertReview)

		adminProducts := products.Group("", authed, middleware.AdminOnly())
		adminProducts.POST("", productH.Create)
		adminProducts.PUT("/:id", productH.Update)
		adminProducts.DELETE("/:id", productH.Delete)

		cart := v1.Group("/cart", authed)
		cart.GET("", cartH.GetCart)
		cart.POST("/items", cartH.AddItem)
		cart.PUT("/items/:id", cartH.UpdateItem)
		cart.DELETE("/items/:id", cartH.DeleteItem)

		orders := v1.Group("/orders", authed)
		orders.POST("", orderH.PlaceOrder)
		orders.GET("", orderH.ListOrders)
		orders.GET("/:id", orderH.GetOrder)
		orders.POST("/:id/cancel", orderH.CancelOrder)
		orders.POST("/:id/return", orderH.RequestReturn)

		adminOrders := v1.Group("/orders/admin", authed, middleware.AdminOnly())
		adminOrders.GET("/all", orderH.AdminList)
		adminOrders.PUT("/:id/status", orderH.AdminUpdateStatus)
		adminOrders.GET("/stats", orderH.AdminStats)

		sellers := v1.Group("/sellers", authed, middleware.SellerOnly())
		sellers.POST("/products/submit", submissionH.Submit)
		sellers.GET("/products/submissions", submissionH.ListMine)
		sellers.GET("/dashboard", submissionH.Dashboard)

		adminSubs := v1.Group("/admin/product-submissions", authed, middleware.AdminOnly())
		adminSubs.GET("", submissionH.AdminList)
		adminSubs.POST("/:id/approve", submissionH.Approve)
		adminSubs.POST("/:id/reject", submissionH.Reject)
	}

	if err := cacheWorker.Start(ctx); err != nil {
		log.Error("start cache worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	cacheWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
