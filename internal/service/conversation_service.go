package service

import (
	"context"
	"strings"

	"github.com/askthebridge/bridge/internal/model"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
)

type ConversationService struct {
	conversations *repo.ConversationRepo
	turns         *repo.TurnRepo
}

func NewConversationService(conversations *repo.ConversationRepo, turns *repo.TurnRepo) *ConversationService {
	return &ConversationService{conversations: conversations, turns: turns}
}

// Create starts a conversation. An empty ownerEmail makes a guest
// conversation that can be attached to an account later.
func (s *ConversationService) Create(ctx context.Context, ownerEmail, title string) (*model.Conversation, error) {
	now := timeutil.NowUnix()
	conv := &model.Conversation{
		ID:         newID(),
		OwnerEmail: strings.ToLower(strings.TrimSpace(ownerEmail)),
		Title:      strings.TrimSpace(title),
		Ctime:      now,
		Mtime:      now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *ConversationService) ListByOwner(ctx context.Context, ownerEmail string) ([]*model.Conversation, error) {
	return s.conversations.ListByOwner(ctx, strings.ToLower(strings.TrimSpace(ownerEmail)))
}

// Messages returns a conversation's turns in order. Owners only; guests may
// read ownerless conversations they hold the id for.
func (s *ConversationService) Messages(ctx context.Context, conversationID, callerEmail string) ([]*model.ConversationTurn, error) {
	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.OwnerEmail != "" && !strings.EqualFold(conv.OwnerEmail, callerEmail) {
		return nil, appErr.ErrForbidden
	}
	return s.turns.ListByConversation(ctx, conversationID)
}

// AttachGuest claims guest conversations for a freshly authenticated user.
// Ids that are unknown or already owned are skipped, not fatal.
func (s *ConversationService) AttachGuest(ctx context.Context, userEmail string, conversationIDs []string) (int, error) {
	email := strings.ToLower(strings.TrimSpace(userEmail))
	if email == "" {
		return 0, appErr.ErrInvalid
	}
	attached := 0
	for _, conversationID := range conversationIDs {
		if err := s.conversations.UpdateOwner(ctx, conversationID, email, timeutil.NowUnix()); err != nil {
			if appErr.IsNotFound(err) {
				continue
			}
			return attached, err
		}
		attached++
	}
	return attached, nil
}
