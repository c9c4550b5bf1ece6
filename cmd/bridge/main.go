package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/askthebridge/bridge/internal/ai"
	"github.com/askthebridge/bridge/internal/config"
	"github.com/askthebridge/bridge/internal/db"
	"github.com/askthebridge/bridge/internal/filestore"
	"github.com/askthebridge/bridge/internal/handler"
	"github.com/askthebridge/bridge/internal/job"
	"github.com/askthebridge/bridge/internal/middleware"
	"github.com/askthebridge/bridge/internal/repo"
	"github.com/askthebridge/bridge/internal/schedule"
	"github.com/askthebridge/bridge/internal/service"
)

const effectPoolSize = 64

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "bridge",
		Short: "bridge backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run bridge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	knowledgeRepo := repo.NewKnowledgeRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)
	partnerRepo := repo.NewPartnerRepo(conn)
	documentRepo := repo.NewDocumentRepo(conn)
	conversationRepo := repo.NewConversationRepo(conn)
	turnRepo := repo.NewTurnRepo(conn)
	clickRepo := repo.NewClickRepo(conn)
	expertRepo := repo.NewExpertRepo(conn)
	userRepo := repo.NewUserRepo(conn)
	codeRepo := repo.NewVerificationCodeRepo(conn)

	chatProvider, err := ai.NewChatProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init chat provider: %w", err)
	}
	embedProvider, err := ai.NewEmbedProvider(cfg.AI.EmbedProvider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	chatClient := ai.NewChatClient(chatProvider, cfg.AI.ChatModel)
	embedder := ai.NewCachedEmbedder(ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel))
	callTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	effects, err := service.NewEffects(effectPoolSize)
	if err != nil {
		return fmt.Errorf("init effect pool: %w", err)
	}
	defer effects.Close()

	mailSender := service.NewEmailSender(cfg.Mail)
	answerService := service.NewAnswerService(embedder, chatClient,
		knowledgeRepo, chunkRepo, partnerRepo, turnRepo, conversationRepo,
		effects, callTimeout)
	chatService := service.NewChatService(answerService, chatClient, turnRepo, conversationRepo, effects, callTimeout)
	conversationService := service.NewConversationService(conversationRepo, turnRepo)
	analyticsService := service.NewAnalyticsService(clickRepo, effects)
	authService := service.NewAuthService(userRepo, codeRepo, mailSender, effects,
		[]byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	helpService := service.NewHelpService(expertRepo, userRepo, mailSender)
	ingestService, err := service.NewIngestService(partnerRepo, documentRepo, chunkRepo,
		knowledgeRepo, embedder, store, callTimeout)
	if err != nil {
		return fmt.Errorf("init ingest service: %w", err)
	}
	defer ingestService.Close()

	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService),
		Chat:          handler.NewChatHandler(chatService),
		Conversations: handler.NewConversationHandler(conversationService),
		Help:          handler.NewHelpHandler(helpService),
		Analytics:     handler.NewAnalyticsHandler(analyticsService),
		Admin:         handler.NewAdminHandler(ingestService, partnerRepo, expertRepo),
		Files:         handler.NewFileHandler(store, documentRepo),
		JWTSecret:     []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewCodeCleanupJob(codeRepo), "*/10 * * * *"); err != nil {
		return err
	}
	if err := scheduler.AddJob(job.NewEmbeddingBackfillJob(knowledgeRepo, embedder, callTimeout), "*/5 * * * *"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
