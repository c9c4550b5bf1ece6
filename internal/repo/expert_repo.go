package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/dbutil"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
)

var expertFields = []string{"id", "name", "email", "role", "description", "active", "ctime"}

type ExpertRepo struct {
	db *sql.DB
}

func NewExpertRepo(db *sql.DB) *ExpertRepo {
	return &ExpertRepo{db: db}
}

func (r *ExpertRepo) Create(ctx context.Context, expert *model.Expert) error {
	data := map[string]interface{}{
		"id":          expert.ID,
		"name":        expert.Name,
		"email":       expert.Email,
		"role":        expert.Role,
		"description": expert.Description,
		"active":      expert.Active,
		"ctime":       expert.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("experts", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ExpertRepo) ListActiveByRole(ctx context.Context, role string) ([]*model.Expert, error) {
	where := map[string]interface{}{"role": role, "active": 1, "_orderby": "name asc"}
	sqlStr, args, err := builder.BuildSelect("experts", where, expertFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	return r.queryExperts(ctx, sqlStr, args)
}

// GetActiveByEmails resolves the recipient set for a help request. Unknown
// or inactive addresses are simply absent from the result.
func (r *ExpertRepo) GetActiveByEmails(ctx context.Context, role string, emails []string) ([]*model.Expert, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	where := map[string]interface{}{
		"role":     role,
		"active":   1,
		"email in": emails,
	}
	sqlStr, args, err := builder.BuildSelect("experts", where, expertFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	return r.queryExperts(ctx, sqlStr, args)
}

func (r *ExpertRepo) queryExperts(ctx context.Context, sqlStr string, args []interface{}) ([]*model.Expert, error) {
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var experts []*model.Expert
	for rows.Next() {
		var expert model.Expert
		if err := rows.Scan(&expert.ID, &expert.Name, &expert.Email, &expert.Role,
			&expert.Description, &expert.Active, &expert.Ctime); err != nil {
			return nil, err
		}
		experts = append(experts, &expert)
	}
	return experts, rows.Err()
}
