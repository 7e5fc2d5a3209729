package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"menstrualcare-api/internal/auth"
	"menstrualcare-api/internal/chatbot"
	"menstrualcare-api/internal/config"
	apphttp "menstrualcare-api/internal/http"
	"menstrualcare-api/internal/realtime"
	"menstrualcare-api/internal/repository"
	"menstrualcare-api/internal/repository/mongo"
	"menstrualcare-api/internal/repository/sqlite"
	"menstrualcare-api/internal/service"
	"menstrualcare-api/internal/storage"
)

type repositories struct {
	users    repository.UserRepository
	chats    repository.ChatRepository
	sessions repository.ChatbotRepository
	close    func()
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.IsDevelopment() {
		logger.SetLevel(logrus.DebugLevel)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer repos.close()

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	hub := realtime.NewHub(cfg.Realtime.SendBuffer, logger)
	chatService := service.NewChatService(repos.chats, hub, logger)
	handler := apphttp.NewHandler(apphttp.Deps{
		Users:   service.NewUserService(repos.users, auth.NewHasher(cfg.Auth.BcryptCost)),
		Chats:   chatService,
		Chatbot: service.NewChatbotService(repos.sessions, chatbot.NewMatcher(chatbot.DefaultTopics)),
		Transcripts: service.NewTranscriptService(chatService, storageSvc, service.TranscriptOptions{
			KeyPrefix: cfg.Storage.KeyPrefix,
			LinkTTL:   cfg.Storage.LinkTTL,
		}),
		Tokens:      tokens,
		Gateway:     realtime.NewGateway(hub, tokens, cfg.Server.CORSOrigin, logger),
		Logger:      logger,
		CORSOrigin:  cfg.Server.CORSOrigin,
		Development: cfg.IsDevelopment(),
	})

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s (env %s, driver %s)", cfg.Server.Addr, cfg.Server.Env, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// hijacked websocket connections are not tracked by Shutdown
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func openRepositories(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, db, err := mongo.Open(ctx, cfg.Database.URI, cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		repos := &repositories{
			users:    mongo.NewUserRepository(db),
			chats:    mongo.NewChatRepository(db),
			sessions: mongo.NewChatbotRepository(db),
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(closeCtx); err != nil {
					logger.Warnf("disconnect mongo: %v", err)
				}
			},
		}
		if err := initAll(ctx, repos); err != nil {
			repos.close()
			return nil, err
		}
		logger.Infof("using mongo database %s", cfg.Database.Name)
		return repos, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		repos := &repositories{
			users:    sqlite.NewUserRepository(db),
			chats:    sqlite.NewChatRepository(db),
			sessions: sqlite.NewChatbotRepository(db),
			close: func() {
				if err := db.Close(); err != nil {
					logger.Warnf("close sqlite: %v", err)
				}
			},
		}
		if err := sqlite.InitAll(ctx, repos.users, repos.chats, repos.sessions); err != nil {
			repos.close()
			return nil, err
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		return repos, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func initAll(ctx context.Context, repos *repositories) error {
	if err := repos.users.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	if err := repos.chats.Init(ctx); err != nil {
		return fmt.Errorf("init chat repository: %w", err)
	}
	if err := repos.sessions.Init(ctx); err != nil {
		return fmt.Errorf("init chatbot repository: %w", err)
	}
	return nil
}

// buildStorage returns a nil service when no bucket is configured, which
// leaves transcript export disabled.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("storage bucket not set, transcript export disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, cfg.Storage.Bucket), nil
}
