package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/askthebridge/bridge/internal/ai"
	"github.com/askthebridge/bridge/internal/config"
	"github.com/askthebridge/bridge/internal/filestore"
	"github.com/askthebridge/bridge/internal/handler"
	"github.com/askthebridge/bridge/internal/middleware"
	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/password"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
	"github.com/askthebridge/bridge/internal/service"
	"github.com/askthebridge/bridge/test/testutil"
)

type noopSender struct{}

func (noopSender) Send(ctx context.Context, to, toName, subject, body string) error {
	return nil
}

type stubChat struct {
	reply string
}

func (s stubChat) Chat(ctx context.Context, messages []ai.Message, temperature float32) (string, error) {
	return s.reply, nil
}

// stubEmbedder always fails so the answer pipeline skips the vector tiers
// and tests stay deterministic against a shared database.
type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding unavailable")
}

func (stubEmbedder) ModelName() string {
	return "stub-embed"
}

type testEnv struct {
	router  http.Handler
	turns   *repo.TurnRepo
	seed    func(email, code, name, plainPassword string) error
	cleanup func()
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, dbCleanup := testutil.OpenTestDB(t)

	knowledgeRepo := repo.NewKnowledgeRepo(db)
	chunkRepo := repo.NewChunkRepo(db)
	partnerRepo := repo.NewPartnerRepo(db)
	documentRepo := repo.NewDocumentRepo(db)
	conversationRepo := repo.NewConversationRepo(db)
	turnRepo := repo.NewTurnRepo(db)
	clickRepo := repo.NewClickRepo(db)
	expertRepo := repo.NewExpertRepo(db)
	userRepo := repo.NewUserRepo(db)
	codeRepo := repo.NewVerificationCodeRepo(db)

	tmpDir, err := os.MkdirTemp("", "bridge-files-*")
	require.NoError(t, err)
	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": tmpDir},
	})
	require.NoError(t, err)

	effects, err := service.NewEffects(4)
	require.NoError(t, err)

	jwtSecret := []byte("test-secret")
	chat := stubChat{reply: "stubbed model reply"}
	embedder := stubEmbedder{}
	callTimeout := time.Second

	answerService := service.NewAnswerService(embedder, chat,
		knowledgeRepo, chunkRepo, partnerRepo, turnRepo, conversationRepo,
		effects, callTimeout)
	chatService := service.NewChatService(answerService, chat, turnRepo, conversationRepo, effects, callTimeout)
	conversationService := service.NewConversationService(conversationRepo, turnRepo)
	analyticsService := service.NewAnalyticsService(clickRepo, effects)
	authService := service.NewAuthService(userRepo, codeRepo, noopSender{}, effects, jwtSecret, time.Hour)
	helpService := service.NewHelpService(expertRepo, userRepo, noopSender{})
	ingestService, err := service.NewIngestService(partnerRepo, documentRepo, chunkRepo,
		knowledgeRepo, embedder, store, callTimeout)
	require.NoError(t, err)

	deps := handler.RouterDeps{
		Auth:          handler.NewAuthHandler(authService),
		Chat:          handler.NewChatHandler(chatService),
		Conversations: handler.NewConversationHandler(conversationService),
		Help:          handler.NewHelpHandler(helpService),
		Analytics:     handler.NewAnalyticsHandler(analyticsService),
		Admin:         handler.NewAdminHandler(ingestService, partnerRepo, expertRepo),
		Files:         handler.NewFileHandler(store, documentRepo),
		JWTSecret:     jwtSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	seed := func(email, code, name, plainPassword string) error {
		codeHash, err := password.Hash(code)
		if err != nil {
			return err
		}
		passwordHash, err := password.Hash(plainPassword)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(map[string]string{
			"name":          name,
			"password_hash": passwordHash,
		})
		if err != nil {
			return err
		}
		now := timeutil.NowUnix()
		return codeRepo.Create(context.Background(), &model.VerificationCode{
			ID:        service.NewID(),
			Email:     email,
			Purpose:   model.CodePurposeSignup,
			CodeHash:  codeHash,
			Payload:   string(payload),
			Ctime:     now,
			ExpiresAt: now + 300,
		})
	}

	return &testEnv{
		router: engine,
		turns:  turnRepo,
		seed:   seed,
		cleanup: func() {
			ingestService.Close()
			effects.Close()
			dbCleanup()
			_ = os.RemoveAll(tmpDir)
		},
	}
}
