package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/dbutil"
)

type ClickRepo struct {
	db *sql.DB
}

func NewClickRepo(db *sql.DB) *ClickRepo {
	return &ClickRepo{db: db}
}

func (r *ClickRepo) Create(ctx context.Context, click *model.ClickEvent) error {
	data := map[string]interface{}{
		"id":              click.ID,
		"conversation_id": click.ConversationID,
		"button":          click.Button,
		"question":        click.Question,
		"user_email":      click.UserEmail,
		"user_type":       click.UserType,
		"ctime":           click.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("user_clicks", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
