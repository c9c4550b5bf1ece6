package model

const (
	CallerTypeUser  = "user"
	CallerTypeGuest = "guest"
)

// ClickEvent records a user selecting a follow-up action. Recording is
// append-only and best-effort.
type ClickEvent struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id,omitempty"`
	Button         string `json:"button"`
	Question       string `json:"question"`
	UserEmail      string `json:"user_email,omitempty"`
	UserType       string `json:"user_type"`
	Ctime          int64  `json:"ctime"`
}
