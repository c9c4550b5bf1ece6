package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/askthebridge/bridge/internal/model"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
	"github.com/askthebridge/bridge/internal/repo"
)

type HelpService struct {
	experts *repo.ExpertRepo
	users   *repo.UserRepo
	mailer  EmailSender
}

func NewHelpService(experts *repo.ExpertRepo, users *repo.UserRepo, mailer EmailSender) *HelpService {
	return &HelpService{experts: experts, users: users, mailer: mailer}
}

func (s *HelpService) ListExperts(ctx context.Context, role string) ([]*model.Expert, error) {
	if role != model.ExpertRoleSpecialist && role != model.ExpertRoleAmbassador {
		return nil, appErr.ErrInvalid
	}
	return s.experts.ListActiveByRole(ctx, role)
}

// SendHelpRequest mails a user's question to the selected experts. The
// selection is re-validated against the active expert roster so clients
// cannot route mail to arbitrary addresses.
func (s *HelpService) SendHelpRequest(ctx context.Context, userEmail, role, question string, expertEmails []string) (int, error) {
	if role != model.ExpertRoleSpecialist && role != model.ExpertRoleAmbassador {
		return 0, appErr.ErrInvalid
	}
	question = strings.TrimSpace(question)
	if question == "" || len(expertEmails) == 0 {
		return 0, appErr.ErrInvalid
	}
	experts, err := s.experts.GetActiveByEmails(ctx, role, expertEmails)
	if err != nil {
		return 0, err
	}
	if len(experts) == 0 {
		return 0, appErr.ErrNotFound
	}

	userEmail = strings.ToLower(strings.TrimSpace(userEmail))
	userName := userEmail
	if user, err := s.users.GetByEmail(ctx, userEmail); err == nil && user.Name != "" {
		userName = user.Name
	}

	sent := 0
	for _, expert := range experts {
		body := fmt.Sprintf(helpMailBody, expert.Name, userName, role, question)
		if err := s.mailer.Send(ctx, expert.Email, expert.Name, helpMailSubject, body); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
