package repo

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/askthebridge/bridge/internal/model"
)

type KnowledgeRepo struct {
	db *sql.DB
}

func NewKnowledgeRepo(db *sql.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// Nearest returns up to limit entries whose cosine similarity to emb is at
// least threshold, best match first.
func (r *KnowledgeRepo) Nearest(ctx context.Context, emb []float32, threshold float64, limit int) ([]model.KnowledgeMatch, error) {
	const query = `
		SELECT id, question, answer, 1 - (embedding <=> $1) AS similarity
		FROM knowledge_entries
		WHERE embedding IS NOT NULL AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(emb), threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var matches []model.KnowledgeMatch
	for rows.Next() {
		var m model.KnowledgeMatch
		if err := rows.Scan(&m.ID, &m.Question, &m.Answer, &m.Similarity); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ListMissingEmbeddings returns entries the backfill job still has to embed.
func (r *KnowledgeRepo) ListMissingEmbeddings(ctx context.Context, limit int) ([]model.KnowledgeEntry, error) {
	const query = `
		SELECT id, partner_id, question, answer, ctime
		FROM knowledge_entries
		WHERE embedding IS NULL
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.KnowledgeEntry
	for rows.Next() {
		var e model.KnowledgeEntry
		if err := rows.Scan(&e.ID, &e.PartnerID, &e.Question, &e.Answer, &e.Ctime); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *KnowledgeRepo) Insert(ctx context.Context, entry *model.KnowledgeEntry) error {
	const query = `
		INSERT INTO knowledge_entries (id, partner_id, question, answer, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var emb interface{}
	if entry.Embedding != nil {
		emb = pgvector.NewVector(entry.Embedding)
	}
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.PartnerID,
		entry.Question,
		entry.Answer,
		emb,
		entry.Ctime,
	)
	return err
}

func (r *KnowledgeRepo) UpdateEmbedding(ctx context.Context, id string, emb []float32) error {
	const query = `UPDATE knowledge_entries SET embedding = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, pgvector.NewVector(emb), id)
	return err
}
