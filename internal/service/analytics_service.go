package service

import (
	"context"

	"github.com/askthebridge/bridge/internal/model"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
)

// AnalyticsService records follow-up action clicks. Recording happens off
// the request path; a failed write is logged and never surfaced.
type AnalyticsService struct {
	clicks  *repo.ClickRepo
	effects *Effects
}

func NewAnalyticsService(clicks *repo.ClickRepo, effects *Effects) *AnalyticsService {
	return &AnalyticsService{clicks: clicks, effects: effects}
}

func (s *AnalyticsService) RecordClick(ctx context.Context, click *model.ClickEvent) error {
	if click.Button == "" {
		return appErr.ErrInvalid
	}
	if click.UserType != model.CallerTypeUser {
		click.UserType = model.CallerTypeGuest
	}
	click.ID = newID()
	click.Ctime = timeutil.NowUnix()
	event := *click
	s.effects.Go("record-click", func(ctx context.Context) error {
		return s.clicks.Create(ctx, &event)
	})
	return nil
}
