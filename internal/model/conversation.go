package model

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Conversation struct {
	ID         string `json:"id"`
	OwnerEmail string `json:"owner_email"`
	Title      string `json:"title"`
	Ctime      int64  `json:"ctime"`
	Mtime      int64  `json:"mtime"`
}

// ConversationTurn is one persisted message. Seq is assigned by the store at
// insert time; ordering by (seq, id) is the conversational order.
type ConversationTurn struct {
	ID             int64  `json:"id"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	Source         string `json:"source"`
	AuthorEmail    string `json:"author_email,omitempty"`
	Seq            int64  `json:"seq"`
	Ctime          int64  `json:"ctime"`
}
