package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/askthebridge/bridge/internal/ai"
	"github.com/askthebridge/bridge/internal/model"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
)

type fakeEmbedder struct {
	emb   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.emb, nil
}

func (f *fakeEmbedder) ModelName() string {
	return "test-embed"
}

type chatCall struct {
	messages    []ai.Message
	temperature float32
}

type fakeChat struct {
	reply string
	err   error
	calls []chatCall
}

func (f *fakeChat) Chat(ctx context.Context, messages []ai.Message, temperature float32) (string, error) {
	f.calls = append(f.calls, chatCall{messages: messages, temperature: temperature})
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeKnowledge struct {
	matches []model.KnowledgeMatch
	err     error
	calls   int
}

func (f *fakeKnowledge) Nearest(ctx context.Context, emb []float32, threshold float64, limit int) ([]model.KnowledgeMatch, error) {
	f.calls++
	return f.matches, f.err
}

type fakeChunks struct {
	matches []model.ChunkMatch
	err     error
}

func (f *fakeChunks) Nearest(ctx context.Context, emb []float32, threshold float64, limit int) ([]model.ChunkMatch, error) {
	return f.matches, f.err
}

type fakePartners struct {
	labels map[string]string
}

func (f *fakePartners) GetBadgeLabel(ctx context.Context, partnerID string) (string, error) {
	label, ok := f.labels[partnerID]
	if !ok {
		return "", appErr.ErrNotFound
	}
	return label, nil
}

// slowPartners records how many label lookups are in flight at once.
type slowPartners struct {
	labels      map[string]string
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (f *slowPartners) GetBadgeLabel(ctx context.Context, partnerID string) (string, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	label, ok := f.labels[partnerID]
	if !ok {
		return "", appErr.ErrNotFound
	}
	return label, nil
}

type fakeMemory struct {
	turns []*model.ConversationTurn
	err   error
}

// ListRecent mirrors the store contract: newest limit turns, oldest first.
func (f *fakeMemory) ListRecent(ctx context.Context, conversationID string, limit int) ([]*model.ConversationTurn, error) {
	if f.err != nil {
		return nil, f.err
	}
	turns := f.turns
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

type fakeTitles struct {
	saved map[string]string
}

func (f *fakeTitles) UpdateTitle(ctx context.Context, conversationID, title string, mtime int64) error {
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[conversationID] = title
	return nil
}

type answerFixture struct {
	embedder  *fakeEmbedder
	chat      *fakeChat
	knowledge *fakeKnowledge
	chunks    *fakeChunks
	partners  *fakePartners
	memory    *fakeMemory
	titles    *fakeTitles
	svc       *AnswerService
}

func newAnswerFixture(t *testing.T) *answerFixture {
	t.Helper()
	fx := &answerFixture{
		embedder:  &fakeEmbedder{emb: []float32{0.1, 0.2}},
		chat:      &fakeChat{reply: "model says hi"},
		knowledge: &fakeKnowledge{},
		chunks:    &fakeChunks{},
		partners:  &fakePartners{labels: map[string]string{}},
		memory:    &fakeMemory{},
		titles:    &fakeTitles{},
	}
	effects, err := NewEffects(4)
	require.NoError(t, err)
	t.Cleanup(effects.Close)
	fx.svc = NewAnswerService(fx.embedder, fx.chat, fx.knowledge, fx.chunks,
		fx.partners, fx.memory, fx.titles, effects, time.Second)
	return fx
}

func TestResolveKnowledgeExactMatch(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.knowledge.matches = []model.KnowledgeMatch{{
		ID:         "k1",
		Question:   "What is the ISM code?",
		Answer:     "The ISM code is the international safety management standard.",
		Similarity: 0.87654,
	}}

	answer := fx.svc.Resolve(context.Background(), "what is the ism code", model.CallerTypeGuest, "")
	require.Equal(t, model.SourceExactMatch, answer.Source)
	require.Equal(t, fx.knowledge.matches[0].Answer, answer.Text)
	require.Equal(t, 0.877, answer.Similarity)
	require.Equal(t, standardActions, answer.Actions)
	require.False(t, answer.RequiresAuth)
	require.Empty(t, fx.chat.calls)
}

func TestResolveKnowledgeSemanticMatch(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.knowledge.matches = []model.KnowledgeMatch{{
		ID:         "k1",
		Question:   "What is the ISM code?",
		Answer:     "answer text",
		Similarity: 0.8,
	}}

	answer := fx.svc.Resolve(context.Background(), "explain the ism code to me", model.CallerTypeUser, "")
	require.Equal(t, model.SourceSemanticQA, answer.Source)
	require.Equal(t, "answer text", answer.Text)
}

func TestResolveDocumentMatchSkipsFailedPartner(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.chunks.matches = []model.ChunkMatch{
		{ID: "c1", PartnerID: "p1", Content: "alpha one"},
		{ID: "c2", PartnerID: "p2", Content: "beta one"},
		{ID: "c3", PartnerID: "p1", Content: "alpha two"},
		{ID: "c4", PartnerID: "p3", Content: "gamma one"},
		{ID: "c5", PartnerID: "p1", Content: "alpha three"},
	}
	fx.partners.labels = map[string]string{
		"p1": "Partner One",
		"p3": "Partner Three",
	}

	answer := fx.svc.Resolve(context.Background(), "vague document question", model.CallerTypeGuest, "")
	require.Equal(t, model.SourceDocumentMulti, answer.Source)
	require.Len(t, answer.Partners, 2)
	require.Equal(t, "Partner One", answer.Partners[0].PartnerName)
	require.Equal(t, "alpha one alpha two", answer.Partners[0].Answer)
	require.Equal(t, "Partner Three", answer.Partners[1].PartnerName)
	require.Equal(t, "gamma one", answer.Partners[1].Answer)
	require.Empty(t, fx.chat.calls)
}

func TestResolveDocumentMatchLooksUpLabelsConcurrently(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.chunks.matches = []model.ChunkMatch{
		{ID: "c1", PartnerID: "p1", Content: "alpha one"},
		{ID: "c2", PartnerID: "p2", Content: "beta one"},
		{ID: "c3", PartnerID: "p3", Content: "gamma one"},
	}
	partners := &slowPartners{labels: map[string]string{
		"p1": "Partner One",
		"p2": "Partner Two",
		"p3": "Partner Three",
	}}
	effects, err := NewEffects(4)
	require.NoError(t, err)
	t.Cleanup(effects.Close)
	svc := NewAnswerService(fx.embedder, fx.chat, fx.knowledge, fx.chunks,
		partners, fx.memory, fx.titles, effects, time.Second)

	answer := svc.Resolve(context.Background(), "vague document question", model.CallerTypeGuest, "")
	require.Equal(t, model.SourceDocumentMulti, answer.Source)
	require.Len(t, answer.Partners, 3)
	require.Equal(t, "Partner One", answer.Partners[0].PartnerName)
	require.Greater(t, partners.maxInFlight, 1)
}

func TestResolveDomainFallbackGatesGuests(t *testing.T) {
	fx := newAnswerFixture(t)

	answer := fx.svc.Resolve(context.Background(), "what is minimum safe manning", model.CallerTypeGuest, "")
	require.Equal(t, model.SourceDomainFallback, answer.Source)
	require.Equal(t, noAnswerFallback, answer.Text)
	require.True(t, answer.RequiresAuth)
	require.Equal(t, standardActions, answer.Actions)
	require.Empty(t, fx.chat.calls)

	answer = fx.svc.Resolve(context.Background(), "what is minimum safe manning", model.CallerTypeUser, "")
	require.Equal(t, model.SourceDomainFallback, answer.Source)
	require.False(t, answer.RequiresAuth)
}

func TestResolveGeneralModelWithMemory(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.memory.turns = []*model.ConversationTurn{
		{Role: model.RoleUser, Content: "earlier question"},
		{Role: model.RoleAssistant, Content: "earlier reply"},
	}

	answer := fx.svc.Resolve(context.Background(), "tell me a joke", model.CallerTypeUser, "conv1")
	require.Equal(t, model.SourceModelGeneral, answer.Source)
	require.Equal(t, "model says hi", answer.Text)
	require.Empty(t, answer.Actions)
	require.False(t, answer.RequiresAuth)

	// One answer call only; two prior turns means no titling.
	require.Len(t, fx.chat.calls, 1)
	call := fx.chat.calls[0]
	require.Equal(t, generalTemperature, call.temperature)
	require.Equal(t, ai.RoleSystem, call.messages[0].Role)
	require.Equal(t, continuityPrompt, call.messages[0].Content)
	require.Equal(t, "earlier question", call.messages[1].Content)
	require.Equal(t, "earlier reply", call.messages[2].Content)
	require.Equal(t, "tell me a joke", call.messages[3].Content)
	require.Empty(t, answer.NewTitle)
}

func TestResolveGeneralModelTitlesFirstTurn(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.chat.reply = "Sailing Basics Overview"
	fx.memory.turns = []*model.ConversationTurn{
		{Role: model.RoleUser, Content: "only prior turn"},
	}

	answer := fx.svc.Resolve(context.Background(), "tell me a joke", model.CallerTypeUser, "conv1")
	require.Equal(t, model.SourceModelGeneral, answer.Source)
	require.Len(t, fx.chat.calls, 2)
	require.Equal(t, titleTemperature, fx.chat.calls[1].temperature)
	require.Equal(t, titlePrompt, fx.chat.calls[1].messages[0].Content)
	require.Equal(t, "Sailing Basics Overview", answer.NewTitle)
}

func TestResolveGeneralModelSkipsTitleWithoutConversation(t *testing.T) {
	fx := newAnswerFixture(t)

	answer := fx.svc.Resolve(context.Background(), "tell me a joke", model.CallerTypeGuest, "")
	require.Equal(t, model.SourceModelGeneral, answer.Source)
	require.Len(t, fx.chat.calls, 1)
	require.Empty(t, answer.NewTitle)
}

func TestResolveModelFailureReturnsDegradedAnswer(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.chat.err = errors.New("upstream down")

	answer := fx.svc.Resolve(context.Background(), "tell me a joke", model.CallerTypeUser, "conv1")
	require.Equal(t, model.SourceError, answer.Source)
	require.Equal(t, degradedAnswer, answer.Text)
	require.Empty(t, answer.Actions)
	require.False(t, answer.RequiresAuth)
	require.Len(t, fx.chat.calls, 1)
}

func TestResolveEmbedFailureFallsThroughToKeywords(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.embedder.err = errors.New("embed service down")
	fx.knowledge.matches = []model.KnowledgeMatch{{Question: "q", Answer: "a", Similarity: 0.9}}

	answer := fx.svc.Resolve(context.Background(), "crew visa requirements", model.CallerTypeGuest, "")
	require.Equal(t, model.SourceDomainFallback, answer.Source)
	require.Zero(t, fx.knowledge.calls)
}

func TestLoadMemoryWindowKeepsNewestFifteen(t *testing.T) {
	fx := newAnswerFixture(t)
	for i := 1; i <= 16; i++ {
		role := model.RoleUser
		if i%2 == 0 {
			role = model.RoleAssistant
		}
		fx.memory.turns = append(fx.memory.turns, &model.ConversationTurn{
			Role:    role,
			Content: fmt.Sprintf("turn-%d", i),
		})
	}

	messages := fx.svc.LoadMemory(context.Background(), "conv1")
	require.Len(t, messages, 15)
	require.Equal(t, "turn-2", messages[0].Content)
	require.Equal(t, "turn-16", messages[14].Content)

	again := fx.svc.LoadMemory(context.Background(), "conv1")
	require.Equal(t, messages, again)
}

func TestLoadMemoryFailsSoft(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.memory.err = errors.New("db down")
	require.Empty(t, fx.svc.LoadMemory(context.Background(), "conv1"))
}

func TestLoadMemoryFiltersNonChatRoles(t *testing.T) {
	fx := newAnswerFixture(t)
	fx.memory.turns = []*model.ConversationTurn{
		{Role: model.RoleUser, Content: "question"},
		{Role: "system", Content: "internal note"},
		{Role: model.RoleAssistant, Content: "reply"},
	}
	messages := fx.svc.LoadMemory(context.Background(), "conv1")
	require.Len(t, messages, 2)
	require.Equal(t, "question", messages[0].Content)
	require.Equal(t, "reply", messages[1].Content)
}

func TestNormalizeText(t *testing.T) {
	require.Equal(t, "what is minimum safe manning", normalizeText("  What is minimum safe manning?!  "))
	require.Equal(t, "psc inspections", normalizeText("P.S.C. inspections"))
	require.Equal(t, "", normalizeText("?!,."))
}

func TestContainsDomainKeyword(t *testing.T) {
	require.True(t, containsDomainKeyword("rules about port state control"))
	require.True(t, containsDomainKeyword("my yacht charter"))
	require.False(t, containsDomainKeyword("tell me a joke"))
}
