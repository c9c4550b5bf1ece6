package model

const (
	CodePurposeSignup        = "signup"
	CodePurposePasswordReset = "password_reset"
)

// VerificationCode is an expiring emailed code. The code itself is stored
// hashed; Payload carries signup data (name, password hash) until verified.
type VerificationCode struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Purpose   string `json:"purpose"`
	CodeHash  string `json:"code_hash"`
	Payload   string `json:"payload,omitempty"`
	Used      int    `json:"used"`
	Ctime     int64  `json:"ctime"`
	ExpiresAt int64  `json:"expires_at"`
}
