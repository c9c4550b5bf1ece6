package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func para(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func TestChunkDocumentDropsShortFragments(t *testing.T) {
	chunks := ChunkDocument("# Heading\n\ntoo short to keep")
	require.Empty(t, chunks)
}

func TestChunkDocumentKeepsHeadingWithSection(t *testing.T) {
	body := para("regulation", 40)
	chunks := ChunkDocument("## Safe Manning\n\n" + body)
	require.Len(t, chunks, 1)
	require.True(t, strings.HasPrefix(chunks[0], "Safe Manning\n"))
	require.Contains(t, chunks[0], "regulation")
}

func TestChunkDocumentSplitsLongSections(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("## Crew Requirements\n\n")
	for i := 0; i < 8; i++ {
		sb.WriteString(para("requirement", 60))
		sb.WriteString("\n\n")
	}
	chunks := ChunkDocument(sb.String())
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		require.GreaterOrEqual(t, len(chunk), chunkMinChars)
		require.True(t, strings.HasPrefix(chunk, "Crew Requirements\n"))
	}
}

func TestChunkDocumentNewTopLevelHeadingStartsNewChunk(t *testing.T) {
	doc := "# First Section\n\n" + para("alpha", 50) + "\n\n# Second Section\n\n" + para("beta", 50)
	chunks := ChunkDocument(doc)
	require.Len(t, chunks, 2)
	require.True(t, strings.HasPrefix(chunks[0], "First Section\n"))
	require.True(t, strings.HasPrefix(chunks[1], "Second Section\n"))
	require.NotContains(t, chunks[0], "beta")
}
