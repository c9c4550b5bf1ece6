package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/dbutil"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.PartnerDocument) error {
	data := map[string]interface{}{
		"id":         doc.ID,
		"partner_id": doc.PartnerID,
		"title":      doc.Title,
		"file_key":   doc.FileKey,
		"ctime":      doc.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("partner_documents", []map[string]interface{}{data})
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

func (r *DocumentRepo) Get(ctx context.Context, documentID string) (*model.PartnerDocument, error) {
	where := map[string]interface{}{"id": documentID}
	sqlStr, args, err := builder.BuildSelect("partner_documents", where, []string{"id", "partner_id", "title", "file_key", "ctime"})
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
	var doc model.PartnerDocument
	if err := rows.Scan(&doc.ID, &doc.PartnerID, &doc.Title, &doc.FileKey, &doc.Ctime); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) ListByPartner(ctx context.Context, partnerID string) ([]*model.PartnerDocument, error) {
	where := map[string]interface{}{"partner_id": partnerID, "_orderby": "ctime asc"}
	sqlStr, args, err := builder.BuildSelect("partner_documents", where, []string{"id", "partner_id", "title", "file_key", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var docs []*model.PartnerDocument
	for rows.Next() {
		var doc model.PartnerDocument
		if err := rows.Scan(&doc.ID, &doc.PartnerID, &doc.Title, &doc.FileKey, &doc.Ctime); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}
