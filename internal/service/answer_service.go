package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/askthebridge/bridge/internal/ai"
	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
)

const (
	qaMatchThreshold    = 0.75
	chunkMatchThreshold = 0.72
	chunkMatchLimit     = 8
	chunksPerPartner    = 2
	memoryWindow        = 15
	generalTemperature  = float32(0.7)
	titleTemperature    = float32(0.3)
)

const noAnswerFallback = "Oops! You caught us.\n" +
	"We don't have the answer just yet, but TheBridge is always growing.\n" +
	"Try Ask AI, Ask a Specialist or Ask an Ambassador."

const degradedAnswer = "AI temporary error. Please try again."

const continuityPrompt = "You are TheBridge AI — a single cohesive conversational intelligence.\n\n" +
	"Maintain strict conversational continuity.\n" +
	"Always treat short follow-ups like 'more', 'continue', 'give me three more', " +
	"or similar phrases as referring to your immediately previous response.\n\n" +
	"Never change topic unless the user clearly introduces a new one.\n" +
	"Never reinterpret a follow-up as a different subject.\n\n" +
	"Adapt naturally to the user's tone.\n" +
	"If they ask for jokes, continue joking.\n" +
	"If they ask technical questions, stay structured and precise.\n\n" +
	"You are not a database. You are one continuous intelligence."

const titlePrompt = "Create a short 4-6 word title summarizing this topic."

// domainKeywords gates the tier-3 fallback to questions about the platform's
// subject area. Matching is substring containment on normalized text.
var domainKeywords = []string{
	"yacht", "crew", "captain", "flag", "port state", "psc",
	"manning", "inspection", "maritime", "ism", "isps",
	"engine", "bridge", "deck", "charter", "mca", "class",
}

var standardActions = []string{model.ActionAskAI, model.ActionAskSpecialist, model.ActionAskAmbassador}

type KnowledgeSearcher interface {
	Nearest(ctx context.Context, emb []float32, threshold float64, limit int) ([]model.KnowledgeMatch, error)
}

type ChunkSearcher interface {
	Nearest(ctx context.Context, emb []float32, threshold float64, limit int) ([]model.ChunkMatch, error)
}

type PartnerLabeler interface {
	GetBadgeLabel(ctx context.Context, partnerID string) (string, error)
}

type MemoryLoader interface {
	ListRecent(ctx context.Context, conversationID string, limit int) ([]*model.ConversationTurn, error)
}

type TitleSaver interface {
	UpdateTitle(ctx context.Context, conversationID, title string, mtime int64) error
}

// AnswerService resolves a question through the tiered pipeline: semantic
// knowledge match, partner document match, domain fallback, then a general
// model call with conversational memory. Tiers are consulted in strict order
// and the first hit wins; a dependency failure inside tiers 1-3 counts as a
// miss, never as a request failure.
type AnswerService struct {
	embedder    ai.IEmbedder
	chat        ai.IChatClient
	knowledge   KnowledgeSearcher
	chunks      ChunkSearcher
	partners    PartnerLabeler
	memory      MemoryLoader
	titles      TitleSaver
	effects     *Effects
	callTimeout time.Duration
}

func NewAnswerService(embedder ai.IEmbedder, chat ai.IChatClient,
	knowledge KnowledgeSearcher, chunks ChunkSearcher, partners PartnerLabeler,
	memory MemoryLoader, titles TitleSaver, effects *Effects, callTimeout time.Duration) *AnswerService {
	return &AnswerService{
		embedder:    embedder,
		chat:        chat,
		knowledge:   knowledge,
		chunks:      chunks,
		partners:    partners,
		memory:      memory,
		titles:      titles,
		effects:     effects,
		callTimeout: callTimeout,
	}
}

// Resolve always returns a well-formed answer; the caller never sees a raw
// pipeline failure.
func (s *AnswerService) Resolve(ctx context.Context, question, callerRole, conversationID string) *model.Answer {
	logger := logutil.GetLogger(ctx)
	norm := normalizeText(question)

	emb := s.embedQuestion(ctx, question)

	if emb != nil {
		if answer := s.matchKnowledge(ctx, norm, emb); answer != nil {
			return answer
		}
		if answer := s.matchDocuments(ctx, emb); answer != nil {
			return answer
		}
	}

	if containsDomainKeyword(norm) {
		return &model.Answer{
			Text:         noAnswerFallback,
			Source:       model.SourceDomainFallback,
			Actions:      standardActions,
			RequiresAuth: callerRole == model.CallerTypeGuest,
		}
	}

	history := s.LoadMemory(ctx, conversationID)
	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: continuityPrompt})
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: question})

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	text, err := s.chat.Chat(callCtx, messages, generalTemperature)
	if err != nil {
		logger.Error("general model call failed", zap.Error(err))
		return &model.Answer{
			Text:    degradedAnswer,
			Source:  model.SourceError,
			Actions: []string{},
		}
	}

	answer := &model.Answer{
		Text:    text,
		Source:  model.SourceModelGeneral,
		Actions: []string{},
	}
	if conversationID != "" && len(history) <= 1 {
		answer.NewTitle = s.generateTitle(ctx, question, conversationID)
	}
	return answer
}

func (s *AnswerService) embedQuestion(ctx context.Context, question string) []float32 {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	emb, err := s.embedder.Embed(callCtx, question)
	if err != nil {
		logutil.GetLogger(ctx).Error("question embedding failed", zap.Error(err))
		return nil
	}
	return emb
}

// matchKnowledge is tier 1. Semantic search always uses the raw question
// text; normalization is only for deciding the exact_match tag.
func (s *AnswerService) matchKnowledge(ctx context.Context, norm string, emb []float32) *model.Answer {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	matches, err := s.knowledge.Nearest(callCtx, emb, qaMatchThreshold, 1)
	if err != nil {
		logutil.GetLogger(ctx).Error("knowledge search failed", zap.Error(err))
		return nil
	}
	if len(matches) == 0 {
		return nil
	}
	match := matches[0]
	source := model.SourceSemanticQA
	if normalizeText(match.Question) == norm {
		source = model.SourceExactMatch
	}
	return &model.Answer{
		Text:       match.Answer,
		Source:     source,
		Actions:    standardActions,
		Similarity: math.Round(match.Similarity*1000) / 1000,
	}
}

// matchDocuments is tier 2. Chunks group by partner in rank order; a partner
// whose label lookup fails is skipped without dropping the other groups.
func (s *AnswerService) matchDocuments(ctx context.Context, emb []float32) *model.Answer {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	matches, err := s.chunks.Nearest(callCtx, emb, chunkMatchThreshold, chunkMatchLimit)
	if err != nil {
		logutil.GetLogger(ctx).Error("chunk search failed", zap.Error(err))
		return nil
	}
	if len(matches) == 0 {
		return nil
	}

	var order []string
	grouped := make(map[string][]string)
	for _, match := range matches {
		if _, ok := grouped[match.PartnerID]; !ok {
			order = append(order, match.PartnerID)
		}
		grouped[match.PartnerID] = append(grouped[match.PartnerID], match.Content)
	}

	// Label lookups are independent reads, so they run concurrently.
	labels := make([]string, len(order))
	errs := make([]error, len(order))
	var wg sync.WaitGroup
	for i, partnerID := range order {
		wg.Add(1)
		go func(i int, partnerID string) {
			defer wg.Done()
			labels[i], errs[i] = s.partners.GetBadgeLabel(ctx, partnerID)
		}(i, partnerID)
	}
	wg.Wait()

	var formatted []model.PartnerAnswer
	for i, partnerID := range order {
		if errs[i] != nil {
			logutil.GetLogger(ctx).Warn("partner lookup failed, skipping group",
				zap.String("partner_id", partnerID), zap.Error(errs[i]))
			continue
		}
		chunks := grouped[partnerID]
		if len(chunks) > chunksPerPartner {
			chunks = chunks[:chunksPerPartner]
		}
		formatted = append(formatted, model.PartnerAnswer{
			PartnerName: labels[i],
			Answer:      strings.Join(chunks, " "),
		})
	}
	if len(formatted) == 0 {
		return nil
	}
	return &model.Answer{
		Partners: formatted,
		Source:   model.SourceDocumentMulti,
		Actions:  standardActions,
	}
}

// LoadMemory returns the last memoryWindow user/assistant turns as model
// messages, oldest first. It fails soft: any read error yields no memory.
func (s *AnswerService) LoadMemory(ctx context.Context, conversationID string) []ai.Message {
	if conversationID == "" {
		return nil
	}
	turns, err := s.memory.ListRecent(ctx, conversationID, memoryWindow)
	if err != nil {
		logutil.GetLogger(ctx).Error("memory load failed", zap.Error(err))
		return nil
	}
	var messages []ai.Message
	for _, turn := range turns {
		if turn.Role != model.RoleUser && turn.Role != model.RoleAssistant {
			continue
		}
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.Content})
	}
	return messages
}

// generateTitle runs a short constrained model call for a new conversation's
// label and persists it off the request path. Failure to title never fails
// the main response.
func (s *AnswerService) generateTitle(ctx context.Context, question, conversationID string) string {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	title, err := s.chat.Chat(callCtx, []ai.Message{
		{Role: ai.RoleSystem, Content: titlePrompt},
		{Role: ai.RoleUser, Content: question},
	}, titleTemperature)
	if err != nil {
		logutil.GetLogger(ctx).Warn("title generation failed", zap.Error(err))
		return ""
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	s.effects.Go("persist-title", func(ctx context.Context) error {
		return s.titles.UpdateTitle(ctx, conversationID, title, timeutil.NowUnix())
	})
	return title
}

// normalizeText lowercases and strips ASCII punctuation for keyword and
// exact-match comparison. Never used for embedding input.
func normalizeText(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			return -1
		}
		return r
	}, lowered)
}

func containsDomainKeyword(norm string) bool {
	for _, keyword := range domainKeywords {
		if strings.Contains(norm, keyword) {
			return true
		}
	}
	return false
}
