package model

// AnswerSource identifies which pipeline tier produced a response. Exactly
// one source is set per answer.
type AnswerSource string

const (
	SourceExactMatch     AnswerSource = "exact_match"
	SourceSemanticQA     AnswerSource = "semantic_qa"
	SourceDocumentMulti  AnswerSource = "semantic_document_multi"
	SourceDomainFallback AnswerSource = "domain_fallback"
	SourceModelGeneral   AnswerSource = "model_general"
	SourceAskAI          AnswerSource = "ask_ai"
	SourceError          AnswerSource = "error"
)

const (
	ActionAskAI         = "ask_ai"
	ActionAskSpecialist = "ask_specialist"
	ActionAskAmbassador = "ask_ambassador"
)

// PartnerAnswer is one formatted group of a multi-partner document match.
type PartnerAnswer struct {
	PartnerName string `json:"partner_name"`
	Answer      string `json:"answer"`
}

// Answer is the pipeline's output contract. Text is set for single-answer
// sources; Partners is set only for SourceDocumentMulti.
type Answer struct {
	Text         string          `json:"answer,omitempty"`
	Partners     []PartnerAnswer `json:"answers,omitempty"`
	Source       AnswerSource    `json:"source"`
	Actions      []string        `json:"actions"`
	RequiresAuth bool            `json:"requires_auth"`
	NewTitle     string          `json:"new_title,omitempty"`
	Similarity   float64         `json:"similarity,omitempty"`
}
