package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/dbutil"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
)

type PartnerRepo struct {
	db *sql.DB
}

func NewPartnerRepo(db *sql.DB) *PartnerRepo {
	return &PartnerRepo{db: db}
}

func (r *PartnerRepo) Get(ctx context.Context, partnerID string) (*model.Partner, error) {
	where := map[string]interface{}{"id": partnerID}
	sqlStr, args, err := builder.BuildSelect("partners", where, []string{"id", "badge_label", "active", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var partner model.Partner
	if err := rows.Scan(&partner.ID, &partner.BadgeLabel, &partner.Active, &partner.Ctime); err != nil {
		return nil, err
	}
	return &partner, nil
}

// GetBadgeLabel resolves the display label for a partner. Missing partners
// surface as appErr.ErrNotFound so callers can skip them.
func (r *PartnerRepo) GetBadgeLabel(ctx context.Context, partnerID string) (string, error) {
	partner, err := r.Get(ctx, partnerID)
	if err != nil {
		return "", err
	}
	return partner.BadgeLabel, nil
}

func (r *PartnerRepo) Create(ctx context.Context, partner *model.Partner) error {
	data := map[string]interface{}{
		"id":          partner.ID,
		"badge_label": partner.BadgeLabel,
		"active":      partner.Active,
		"ctime":       partner.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("partners", []map[string]interface{}{data})
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

func (r *PartnerRepo) ListActive(ctx context.Context) ([]*model.Partner, error) {
	where := map[string]interface{}{"active": 1, "_orderby": "ctime asc"}
	sqlStr, args, err := builder.BuildSelect("partners", where, []string{"id", "badge_label", "active", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var partners []*model.Partner
	for rows.Next() {
		var partner model.Partner
		if err := rows.Scan(&partner.ID, &partner.BadgeLabel, &partner.Active, &partner.Ctime); err != nil {
			return nil, err
		}
		partners = append(partners, &partner)
	}
	return partners, rows.Err()
}
