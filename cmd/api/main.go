package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"defidojo/backend/internal/config"
	"defidojo/backend/internal/engine"
	"defidojo/backend/internal/handler"
	"defidojo/backend/internal/ledger"
	"defidojo/backend/internal/middleware"
	"defidojo/backend/internal/oracle"
	"defidojo/backend/internal/repository"
	"defidojo/backend/internal/service"
	"defidojo/backend/pkg/jwt"
	"defidojo/backend/pkg/logger"
	"defidojo/backend/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.GetLogger()

	log.Info("Starting DEFIDOJO Backend...")
	log.Infof("Environment: %s", cfg.Server.Env)

	// Initialize Redis
	log.Info("Connecting to Redis...")
	redisClient, err := redis.New(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	log.Info("✓ Redis connected")

	// Set Gin mode
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Apply middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimit.RequestsPerMinute))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "Redis connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"redis":  "connected",
		})
	})

	// Initialize session manager
	sessionManager := jwt.NewManager(cfg.Session.Secret, cfg.Session.TokenExpire)

	// Initialize the core: ledger, oracle, engine
	bank := ledger.New()
	priceOracle := oracle.New()

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(redisClient)
	governanceRepo := repository.NewGovernanceRepository(redisClient)

	tradingEngine := engine.New(bank, priceOracle, governanceRepo, engine.Params{
		TradeFeeRate:       cfg.Game.TradeFeeRate,
		FlashLoanFeeRate:   cfg.Game.FlashLoanFeeRate,
		MinCollateralRatio: cfg.Game.MinCollateralRatio,
	})
	achievementController := engine.NewAchievementController(bank)

	// Initialize WebSocket hub
	hub := service.NewWSHub()
	go hub.Run()

	// Initialize services
	playerService := service.NewPlayerService(bank, accountRepo, governanceRepo, sessionManager)
	tradingService := service.NewTradingService(tradingEngine, achievementController, accountRepo, hub)

	// Initialize handlers
	playerHandler := handler.NewPlayerHandler(playerService, hub)
	tradingHandler := handler.NewTradingHandler(tradingService)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "pong",
				"time":    time.Now().Unix(),
			})
		})

		// Session route
		v1.POST("/auth/session", playerHandler.OpenSession)

		// Player routes
		players := v1.Group("/players")
		players.Use(middleware.Auth(playerService))
		{
			players.POST("/register", playerHandler.Register)
			players.GET("/me", playerHandler.GetPlayerInfo)
			players.GET("/me/account", playerHandler.GetAccount)
			players.GET("/me/tokens/:token", playerHandler.GetTokenPosition)
		}

		// Trading routes
		trading := v1.Group("")
		trading.Use(middleware.Auth(playerService))
		{
			trading.POST("/trade/buy", tradingHandler.Buy)
			trading.POST("/trade/sell", tradingHandler.Sell)
			trading.POST("/trade/swap", tradingHandler.Swap)
			trading.POST("/stake", tradingHandler.Stake)
			trading.POST("/unstake", tradingHandler.Unstake)
			trading.POST("/lend", tradingHandler.Lend)
			trading.POST("/borrow", tradingHandler.Borrow)
			trading.POST("/repay", tradingHandler.Repay)
			trading.POST("/flash-loan", tradingHandler.FlashLoan)
			trading.POST("/yield-farm", tradingHandler.YieldFarm)
			trading.POST("/governance/vote", tradingHandler.Vote)
			trading.POST("/trades/record", tradingHandler.RecordTrade)
			trading.POST("/achievements/unlock", tradingHandler.UnlockAchievement)

			trading.GET("/ws", playerHandler.ServeWS)
		}

		// Scenario and leaderboard routes
		game := v1.Group("")
		game.Use(middleware.Auth(playerService))
		{
			game.GET("/scenarios", playerHandler.ListScenarios)
			game.POST("/scenarios/:tag/start", playerHandler.StartScenario)
			game.GET("/governance/proposals", playerHandler.ListProposals)
			game.GET("/leaderboard", playerHandler.Leaderboard)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Server starting on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", err)
		}
	}()

	log.Info("✓ Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", err)
	}

	log.Info("Server exited")
}
