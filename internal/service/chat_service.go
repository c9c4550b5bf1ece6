package service

import (
	"context"
	"strings"
	"time"

	"github.com/askthebridge/bridge/internal/ai"
	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
)

type ChatRequest struct {
	Message        string
	ConversationID string
	CallerRole     string
	UserEmail      string
}

// ChatService fronts the answer pipeline and sequences turn persistence
// around it. Persistence is best-effort: the caller gets its answer whether
// or not the writes land.
type ChatService struct {
	answers       *AnswerService
	chat          ai.IChatClient
	turns         *repo.TurnRepo
	conversations *repo.ConversationRepo
	effects       *Effects
	callTimeout   time.Duration
}

func NewChatService(answers *AnswerService, chat ai.IChatClient,
	turns *repo.TurnRepo, conversations *repo.ConversationRepo,
	effects *Effects, callTimeout time.Duration) *ChatService {
	return &ChatService{
		answers:       answers,
		chat:          chat,
		turns:         turns,
		conversations: conversations,
		effects:       effects,
		callTimeout:   callTimeout,
	}
}

func (s *ChatService) Ask(ctx context.Context, req *ChatRequest) *model.Answer {
	answer := s.answers.Resolve(ctx, req.Message, req.CallerRole, req.ConversationID)
	if req.ConversationID != "" {
		s.persistExchange(req, answer)
	}
	return answer
}

// AskAI bypasses the knowledge tiers and goes straight to the model with
// conversational memory. Used when the user explicitly picks the ask_ai
// follow-up action.
func (s *ChatService) AskAI(ctx context.Context, req *ChatRequest) *model.Answer {
	history := s.answers.LoadMemory(ctx, req.ConversationID)
	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: continuityPrompt})
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: req.Message})

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	text, err := s.chat.Chat(callCtx, messages, generalTemperature)
	if err != nil {
		return &model.Answer{
			Text:    degradedAnswer,
			Source:  model.SourceError,
			Actions: []string{},
		}
	}
	answer := &model.Answer{
		Text:    text,
		Source:  model.SourceAskAI,
		Actions: []string{},
	}
	if req.ConversationID != "" {
		s.effects.Go("persist-ask-ai-turn", func(ctx context.Context) error {
			return s.appendTurn(ctx, req.ConversationID, model.RoleAssistant,
				text, string(model.SourceAskAI), req.UserEmail)
		})
	}
	return answer
}

// persistExchange appends the user turn and the assistant turn in one effect
// so their store-assigned sequence numbers keep conversational order.
func (s *ChatService) persistExchange(req *ChatRequest, answer *model.Answer) {
	content := answerText(answer)
	s.effects.Go("persist-exchange", func(ctx context.Context) error {
		if err := s.appendTurn(ctx, req.ConversationID, model.RoleUser,
			req.Message, model.RoleUser, req.UserEmail); err != nil {
			return err
		}
		if err := s.appendTurn(ctx, req.ConversationID, model.RoleAssistant,
			content, string(answer.Source), req.UserEmail); err != nil {
			return err
		}
		return s.conversations.Touch(ctx, req.ConversationID, timeutil.NowUnix())
	})
}

func (s *ChatService) appendTurn(ctx context.Context, conversationID, role, content, source, authorEmail string) error {
	return s.turns.Append(ctx, &model.ConversationTurn{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Source:         source,
		AuthorEmail:    authorEmail,
		Ctime:          timeutil.NowUnix(),
	})
}

// answerText flattens a multi-partner answer into one persistable string.
func answerText(answer *model.Answer) string {
	if answer.Text != "" || len(answer.Partners) == 0 {
		return answer.Text
	}
	parts := make([]string, 0, len(answer.Partners))
	for _, partner := range answer.Partners {
		parts = append(parts, partner.PartnerName+": "+partner.Answer)
	}
	return strings.Join(parts, "\n\n")
}
