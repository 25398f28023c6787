package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/monkeymind-api/internal/config"
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	"github.com/yourusername/monkeymind-api/internal/handler"
	"github.com/yourusername/monkeymind-api/internal/middleware"
	"github.com/yourusername/monkeymind-api/internal/question"
	pgRepo "github.com/yourusername/monkeymind-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/monkeymind-api/internal/repository/redis"
	"github.com/yourusername/monkeymind-api/internal/service"
	"github.com/yourusername/monkeymind-api/internal/service/gamemanager"
	ws "github.com/yourusername/monkeymind-api/internal/websocket"
	"github.com/yourusername/monkeymind-api/pkg/auth"
	"github.com/yourusername/monkeymind-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	lobbyRepo := pgRepo.NewLobbyRepo(db)
	resultRepo := pgRepo.NewMatchResultRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем провайдер вопросов: внешний API с кешем в Redis
	// и резервным пулом на случай отказа
	bananaClient := question.NewBananaClient(
		cfg.Banana.APIURL,
		cfg.Banana.APIKey,
		time.Duration(cfg.Banana.TimeoutSec)*time.Second,
	)
	questionProvider := question.NewProvider(bananaClient, cacheRepo, time.Duration(cfg.Banana.CacheTTLSec)*time.Second)

	// Инициализируем WebSocket
	wsHub := ws.NewHub()
	wsManager := ws.NewManager(wsHub)

	// Инициализируем игровое ядро
	gameManager := service.NewGameManager(
		gameConfigFrom(cfg.Game),
		lobbyRepo,
		userRepo,
		resultRepo,
		questionProvider,
		wsManager,
	)

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, jwtService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	lobbyService := service.NewLobbyService(lobbyRepo, userRepo, gameManager, wsManager, entity.LobbySettings{
		QuestionCount: cfg.Game.DefaultQuestionCount,
		TimeLimitSec:  cfg.Game.DefaultTimeLimitSec,
	})
	userService := service.NewUserService(userRepo, resultRepo)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	lobbyHandler := handler.NewLobbyHandler(lobbyService, gameManager)
	userHandler := handler.NewUserHandler(userService)

	allowedOrigins := []string{
		"http://localhost:5173",
		"http://localhost:3000",
	}
	if cfg.Server.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.Server.FrontendURL)
	}
	wsHandler := handler.NewWSHandler(wsManager, lobbyService, gameManager, jwtService, allowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация: строгий лимит против перебора PIN
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.Limit(middleware.AuthRateLimitConfig()))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Игроки
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.GetMe)
			users.GET("/me/matches", userHandler.GetMatchHistory)
		}

		// Лидерборд (публичный маршрут)
		api.GET("/leaderboard", userHandler.GetLeaderboard)

		// Лобби
		lobbies := api.Group("/lobbies")
		lobbies.Use(authMiddleware.RequireAuth())
		lobbies.Use(rateLimiter.Limit(middleware.LobbyRateLimitConfig()))
		{
			lobbies.POST("", lobbyHandler.CreateLobby)
			lobbies.GET("", lobbyHandler.ListLobbies)

			lobbyWithCode := lobbies.Group("/:code")
			lobbyWithCode.Use(middleware.ValidateLobbyCode("code"))
			{
				lobbyWithCode.GET("", lobbyHandler.GetLobby)
				lobbyWithCode.POST("/join", lobbyHandler.JoinLobby)
				lobbyWithCode.POST("/leave", lobbyHandler.LeaveLobby)
				lobbyWithCode.PUT("/settings", lobbyHandler.UpdateSettings)
				lobbyWithCode.POST("/start", lobbyHandler.StartMatch)
			}
		}
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	gameManager.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}

// gameConfigFrom переводит секундные настройки в тайминги игрового ядра.
// Нулевые значения заменяются умолчаниями.
func gameConfigFrom(game config.GameConfig) *gamemanager.Config {
	cfg := gamemanager.DefaultConfig()
	if game.FirstQuestionDelaySec > 0 {
		cfg.FirstQuestionDelay = time.Duration(game.FirstQuestionDelaySec) * time.Second
	}
	if game.GracePeriodSec > 0 {
		cfg.GracePeriod = time.Duration(game.GracePeriodSec) * time.Second
	}
	if game.FallbackBufferSec > 0 {
		cfg.FallbackBuffer = time.Duration(game.FallbackBufferSec) * time.Second
	}
	if game.MaxMatchDurationSec > 0 {
		cfg.MaxMatchDuration = time.Duration(game.MaxMatchDurationSec) * time.Second
	}
	if game.StaleAfterSec > 0 {
		cfg.StaleAfter = time.Duration(game.StaleAfterSec) * time.Second
	}
	if game.SweepIntervalSec > 0 {
		cfg.SweepInterval = time.Duration(game.SweepIntervalSec) * time.Second
	}
	return cfg
}
