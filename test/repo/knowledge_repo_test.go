package repo_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
	"github.com/askthebridge/bridge/internal/service"
	"github.com/askthebridge/bridge/test/testutil"
)

// axisEmbedding returns a unit vector along the given axis so cosine
// similarity between entries is exactly 0 or 1.
func axisEmbedding(axis int) []float32 {
	emb := make([]float32, 1536)
	emb[axis] = 1
	return emb
}

// randomAxes picks distinct axes so reruns against a shared database never
// collide with rows from earlier runs.
func randomAxes(n int) []int {
	perm := rand.Perm(1536)
	return perm[:n]
}

func TestKnowledgeRepoNearestThreshold(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	knowledge := repo.NewKnowledgeRepo(db)
	partnerID := service.NewID()
	axes := randomAxes(3)

	match := &model.KnowledgeEntry{
		ID:        service.NewID(),
		PartnerID: partnerID,
		Question:  "what is the ism code",
		Answer:    "safety management standard",
		Embedding: axisEmbedding(axes[0]),
		Ctime:     timeutil.NowUnix(),
	}
	other := &model.KnowledgeEntry{
		ID:        service.NewID(),
		PartnerID: partnerID,
		Question:  "unrelated question",
		Answer:    "unrelated answer",
		Embedding: axisEmbedding(axes[1]),
		Ctime:     timeutil.NowUnix(),
	}
	require.NoError(t, knowledge.Insert(context.Background(), match))
	require.NoError(t, knowledge.Insert(context.Background(), other))

	matches, err := knowledge.Nearest(context.Background(), axisEmbedding(axes[0]), 0.75, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, match.ID, matches[0].ID)
	require.InDelta(t, 1.0, matches[0].Similarity, 0.001)

	// Orthogonal query sits below the threshold.
	matches, err = knowledge.Nearest(context.Background(), axisEmbedding(axes[2]), 0.75, 1)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestKnowledgeRepoBackfill(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	knowledge := repo.NewKnowledgeRepo(db)
	entry := &model.KnowledgeEntry{
		ID:        service.NewID(),
		PartnerID: service.NewID(),
		Question:  "pending question",
		Answer:    "pending answer",
		Ctime:     timeutil.NowUnix(),
	}
	require.NoError(t, knowledge.Insert(context.Background(), entry))

	pending, err := knowledge.ListMissingEmbeddings(context.Background(), 100)
	require.NoError(t, err)
	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	require.Contains(t, ids, entry.ID)

	axis := randomAxes(1)[0]
	require.NoError(t, knowledge.UpdateEmbedding(context.Background(), entry.ID, axisEmbedding(axis)))

	pending, err = knowledge.ListMissingEmbeddings(context.Background(), 100)
	require.NoError(t, err)
	for _, p := range pending {
		require.NotEqual(t, entry.ID, p.ID)
	}

	matches, err := knowledge.Nearest(context.Background(), axisEmbedding(axis), 0.9, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, entry.ID, matches[0].ID)
}
