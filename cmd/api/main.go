package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"talkative-chat/config"
	"talkative-chat/internal/domain/chat"
	"talkative-chat/internal/domain/message"
	"talkative-chat/internal/domain/user"
	"talkative-chat/internal/handler"
	"talkative-chat/internal/middleware"
	"talkative-chat/internal/realtime"
	appredis "talkative-chat/internal/redis"
	"talkative-chat/internal/repository"
	"talkative-chat/internal/services"
	"talkative-chat/internal/storage"
	"talkative-chat/pkg/database"
	"talkative-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.New(cfg.AppMode)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&user.User{},
		&chat.Chat{},
		&chat.Member{},
		&message.Message{},
	); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	redisClient := appredis.NewClient(appredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	presence := appredis.NewPresenceStore(redisClient, 5*time.Minute)

	var s3Client *storage.Client
	if cfg.S3Bucket != "" {
		s3Client, err = storage.NewClient(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			log.Fatal("s3 client failed", zap.Error(err))
		}
	}

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	chatService := services.NewChatService(chatRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, chatRepo)
	uploadService := services.NewUploadService(s3Client)
	presenceService := services.NewPresenceService(presence, userRepo)

	hub := realtime.NewHub(realtime.Config{MaxJoinedRooms: cfg.WSMaxJoinedRooms}, presenceService)
	go hub.Run(ctx)

	if cfg.AppMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, uploadService, presenceService)
	chatHandler := handler.NewChatHandler(chatService)
	messageHandler := handler.NewMessageHandler(messageService)
	wsHandler := realtime.NewWSHandler(hub, authService)

	api := r.Group("/api")
	{
		api.POST("/user", authHandler.Register)
		api.POST("/user/login", authHandler.Login)

		protected := api.Group("", middleware.AuthMiddleware(authService))
		{
			protected.GET("/user", userHandler.Search)
			protected.GET("/user/online", userHandler.OnlineUsers)
			protected.GET("/user/profile", userHandler.GetProfile)
			protected.PUT("/user/profile", userHandler.UpdateProfile)
			protected.POST("/user/avatar", userHandler.PresignAvatar)

			protected.POST("/chat", chatHandler.Access)
			protected.GET("/chat", chatHandler.List)
			protected.POST("/chat/group", chatHandler.CreateGroup)
			protected.PUT("/chat/rename", chatHandler.RenameGroup)
			protected.PUT("/chat/groupadd", chatHandler.AddMember)
			protected.PUT("/chat/groupremove", chatHandler.RemoveMember)

			protected.POST("/message", messageHandler.Send)
			protected.GET("/message/:chatId", messageHandler.List)
		}
	}

	r.GET("/ws", wsHandler.Connect)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.AppPort),
		Handler: r,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}
