package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/askthebridge/bridge/internal/ai"
	"github.com/askthebridge/bridge/internal/filestore"
	"github.com/askthebridge/bridge/internal/model"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
)

const ingestEmbedWorkers = 4

var (
	crRegexp       = regexp.MustCompile(`\r`)
	blankRunRegexp = regexp.MustCompile(`\n\s*\n+`)
	spaceRunRegexp = regexp.MustCompile(`[ \t]+`)
)

// IngestService turns an extracted partner document into searchable chunks.
// The raw file is archived in the file store; the text is cleaned, chunked,
// embedded and written to the chunk index.
type IngestService struct {
	partners    *repo.PartnerRepo
	documents   *repo.DocumentRepo
	chunks      *repo.ChunkRepo
	knowledge   *repo.KnowledgeRepo
	embedder    ai.IEmbedder
	files       filestore.Store
	embedPool   *ants.Pool
	callTimeout time.Duration
}

func NewIngestService(partners *repo.PartnerRepo, documents *repo.DocumentRepo,
	chunks *repo.ChunkRepo, knowledge *repo.KnowledgeRepo, embedder ai.IEmbedder,
	files filestore.Store, callTimeout time.Duration) (*IngestService, error) {
	pool, err := ants.NewPool(ingestEmbedWorkers)
	if err != nil {
		return nil, err
	}
	return &IngestService{
		partners:    partners,
		documents:   documents,
		chunks:      chunks,
		knowledge:   knowledge,
		embedder:    embedder,
		files:       files,
		embedPool:   pool,
		callTimeout: callTimeout,
	}, nil
}

// Close releases the embedding worker pool. The service must not be used
// after Close.
func (s *IngestService) Close() {
	s.embedPool.Release()
}

type IngestResult struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

// IngestDocument requires the partner to exist. file may be nil when the
// caller only has extracted text. All chunks are embedded before anything is
// stored: a single embedding failure aborts the document so no unsearchable
// or partially indexed document is left behind.
func (s *IngestService) IngestDocument(ctx context.Context, partnerID, title, text string,
	file filestore.ReadSeekCloser, fileSize int64) (*IngestResult, error) {
	if _, err := s.partners.Get(ctx, partnerID); err != nil {
		return nil, err
	}
	text = cleanText(text)
	if text == "" {
		return nil, appErr.ErrInvalid
	}

	pieces := ai.ChunkDocument(text)
	embeddings, err := s.embedPieces(ctx, pieces)
	if err != nil {
		return nil, err
	}

	doc := &model.PartnerDocument{
		ID:        newID(),
		PartnerID: partnerID,
		Title:     strings.TrimSpace(title),
		Ctime:     timeutil.NowUnix(),
	}
	if file != nil {
		doc.FileKey = doc.ID
		if err := s.files.Save(ctx, doc.FileKey, file, fileSize); err != nil {
			return nil, err
		}
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	for i, piece := range pieces {
		chunk := &model.DocumentChunk{
			ID:         newID(),
			PartnerID:  partnerID,
			DocumentID: doc.ID,
			Content:    piece,
			Embedding:  embeddings[i],
			Ctime:      timeutil.NowUnix(),
		}
		if err := s.chunks.Insert(ctx, chunk); err != nil {
			return nil, err
		}
	}
	return &IngestResult{DocumentID: doc.ID, Chunks: len(pieces)}, nil
}

// embedPieces runs chunk embeddings on the worker pool and fails as a whole
// on the first error.
func (s *IngestService) embedPieces(ctx context.Context, pieces []string) ([][]float32, error) {
	embeddings := make([][]float32, len(pieces))
	errs := make([]error, len(pieces))
	var wg sync.WaitGroup
	for i, piece := range pieces {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			embeddings[i], errs[i] = s.embedChunk(ctx, piece)
		}
		if err := s.embedPool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			logutil.GetLogger(ctx).Warn("chunk embedding failed, aborting document",
				zap.Int("chunk", i), zap.Error(err))
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
	}
	return embeddings, nil
}

// IngestQA adds one curated question/answer pair to the knowledge index.
// When embedding fails the entry is still stored and left for the backfill
// job to pick up.
func (s *IngestService) IngestQA(ctx context.Context, partnerID, question, answer string) (*model.KnowledgeEntry, error) {
	if _, err := s.partners.Get(ctx, partnerID); err != nil {
		return nil, err
	}
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return nil, appErr.ErrInvalid
	}
	entry := &model.KnowledgeEntry{
		ID:        newID(),
		PartnerID: partnerID,
		Question:  question,
		Answer:    answer,
		Ctime:     timeutil.NowUnix(),
	}
	emb, err := s.embedChunk(ctx, question)
	if err != nil {
		logutil.GetLogger(ctx).Warn("qa embedding failed, deferring to backfill",
			zap.String("partner_id", partnerID), zap.Error(err))
	} else {
		entry.Embedding = emb
	}
	if err := s.knowledge.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *IngestService) embedChunk(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.embedder.Embed(callCtx, text)
}

// cleanText normalizes line endings and collapses whitespace runs before
// chunking.
func cleanText(text string) string {
	text = crRegexp.ReplaceAllString(text, "\n")
	text = blankRunRegexp.ReplaceAllString(text, "\n\n")
	text = spaceRunRegexp.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
