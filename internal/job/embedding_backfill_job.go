package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/askthebridge/bridge/internal/ai"
	"github.com/askthebridge/bridge/internal/repo"
)

const backfillBatchSize = 50

// EmbeddingBackfillJob embeds knowledge entries whose ingestion-time
// embedding call failed, so they become searchable without re-ingestion.
type EmbeddingBackfillJob struct {
	knowledge   *repo.KnowledgeRepo
	embedder    ai.IEmbedder
	callTimeout time.Duration
}

func NewEmbeddingBackfillJob(knowledge *repo.KnowledgeRepo, embedder ai.IEmbedder, callTimeout time.Duration) *EmbeddingBackfillJob {
	return &EmbeddingBackfillJob{knowledge: knowledge, embedder: embedder, callTimeout: callTimeout}
}

func (j *EmbeddingBackfillJob) Name() string {
	return "knowledge_embedding_backfill"
}

func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	entries, err := j.knowledge.ListMissingEmbeddings(ctx, backfillBatchSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	logger := logutil.GetLogger(ctx)
	done := 0
	for _, entry := range entries {
		emb, err := j.embed(ctx, entry.Question)
		if err != nil {
			logger.Warn("backfill embedding failed", zap.String("entry_id", entry.ID), zap.Error(err))
			continue
		}
		if err := j.knowledge.UpdateEmbedding(ctx, entry.ID, emb); err != nil {
			return err
		}
		done++
	}
	logger.Info("embedding backfill batch complete", zap.Int("embedded", done), zap.Int("total", len(entries)))
	return nil
}

func (j *EmbeddingBackfillJob) embed(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, j.callTimeout)
	defer cancel()
	return j.embedder.Embed(callCtx, text)
}
