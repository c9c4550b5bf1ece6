package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/dbutil"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
)

var verificationCodeFields = []string{"id", "email", "purpose", "code_hash", "payload", "used", "ctime", "expires_at"}

type VerificationCodeRepo struct {
	db *sql.DB
}

func NewVerificationCodeRepo(db *sql.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

func (r *VerificationCodeRepo) Create(ctx context.Context, code *model.VerificationCode) error {
	data := map[string]interface{}{
		"id":         code.ID,
		"email":      code.Email,
		"purpose":    code.Purpose,
		"code_hash":  code.CodeHash,
		"payload":    code.Payload,
		"used":       code.Used,
		"ctime":      code.Ctime,
		"expires_at": code.ExpiresAt,
	}
	sqlStr, args, err := builder.BuildInsert("verification_codes", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// LatestByEmail returns the newest unused code for an address and purpose.
func (r *VerificationCodeRepo) LatestByEmail(ctx context.Context, email, purpose string) (*model.VerificationCode, error) {
	where := map[string]interface{}{
		"email":    email,
		"purpose":  purpose,
		"used":     0,
		"_orderby": "ctime desc",
		"_limit":   []uint{1},
	}
	sqlStr, args, err := builder.BuildSelect("verification_codes", where, verificationCodeFields)
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
	var code model.VerificationCode
	if err := rows.Scan(&code.ID, &code.Email, &code.Purpose, &code.CodeHash,
		&code.Payload, &code.Used, &code.Ctime, &code.ExpiresAt); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *VerificationCodeRepo) MarkUsed(ctx context.Context, codeID string) error {
	where := map[string]interface{}{"id": codeID, "used": 0}
	update := map[string]interface{}{"used": 1}
	sqlStr, args, err := builder.BuildUpdate("verification_codes", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// DeleteExpired removes codes past their expiry. Used codes older than the
// cutoff go too so the table stays small.
func (r *VerificationCodeRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	const query = `DELETE FROM verification_codes WHERE expires_at < $1 OR used = 1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
