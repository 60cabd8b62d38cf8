package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/auth"
	"github.com/BuzzLyutic/task-manager-api/internal/config"
	"github.com/BuzzLyutic/task-manager-api/internal/db"
	"github.com/BuzzLyutic/task-manager-api/internal/handler"
	"github.com/BuzzLyutic/task-manager-api/internal/repo"
	"github.com/BuzzLyutic/task-manager-api/internal/service"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключаем логгер
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Migrate {
		if err := db.Migrate(cfg.DatabaseURL, logger); err != nil {
			logger.Fatal("Failed to migrate the Database", zap.Error(err))
		}
	}

	// Подключаем БД
	pool, err := db.Connect(context.Background(), cfg.DatabaseURL, db.PoolOptions{
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Database", zap.Error(err)) // Fatal потому что дальнейшая работа теряет смысл
	}
	defer pool.Close() // Запланированное закрытие соединения
	logger.Info("Successfully connected to the Database!")

	hasher, err := auth.NewBcryptHasher(cfg.Bcrypt.Cost)
	if err != nil {
		logger.Fatal("Invalid bcrypt settings", zap.Error(err))
	}
	tokens, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.TTL)
	if err != nil {
		logger.Fatal("Invalid token settings", zap.Error(err))
	}

	users := repo.NewUserRepo(pool)
	tasks := repo.NewTaskRepo(pool)

	accounts, err := service.NewAccountService(users, hasher, tokens, logger)
	if err != nil {
		logger.Fatal("Failed to init account service", zap.Error(err))
	}

	router := handler.NewRouter(handler.RouterDeps{
		Accounts: handler.NewAccountHandler(accounts, logger),
		Tasks:    handler.NewTaskHandler(service.NewTaskService(tasks, logger), logger),
		Auth:     service.NewAuthGateway(tokens, users, logger),
		Logger:   logger,
	})

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
		return
	}
	logger.Info("Server stopped successfully!")
}
