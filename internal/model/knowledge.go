package model

// KnowledgeEntry is a partner-curated question/answer pair. Entries are
// authored by the offline ingestion flow and are read-only to the serving
// path.
type KnowledgeEntry struct {
	ID        string    `json:"id"`
	PartnerID string    `json:"partner_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Embedding []float32 `json:"-"`
	Ctime     int64     `json:"ctime"`
}

// KnowledgeMatch is a nearest-neighbour hit against the knowledge index.
type KnowledgeMatch struct {
	ID         string  `json:"id"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Similarity float64 `json:"similarity"`
}
