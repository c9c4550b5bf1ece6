package model

type Partner struct {
	ID         string `json:"id"`
	BadgeLabel string `json:"badge_label"`
	Active     int    `json:"active"`
	Ctime      int64  `json:"ctime"`
}

type PartnerDocument struct {
	ID        string `json:"id"`
	PartnerID string `json:"partner_id"`
	Title     string `json:"title"`
	FileKey   string `json:"file_key,omitempty"`
	Ctime     int64  `json:"ctime"`
}
