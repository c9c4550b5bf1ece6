package model

// DocumentChunk is a fragment of a partner document with its own embedding.
type DocumentChunk struct {
	ID         string    `json:"id"`
	PartnerID  string    `json:"partner_id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
	Ctime      int64     `json:"ctime"`
}

// ChunkMatch is a nearest-neighbour hit against the chunk index, ordered by
// descending similarity.
type ChunkMatch struct {
	ID         string  `json:"id"`
	PartnerID  string  `json:"partner_id"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}
