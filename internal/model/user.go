package model

type UserProfile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Verified     int    `json:"verified"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
