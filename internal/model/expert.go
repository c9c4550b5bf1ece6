package model

const (
	ExpertRoleSpecialist = "specialist"
	ExpertRoleAmbassador = "ambassador"
)

type Expert struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Active      int    `json:"active"`
	Ctime       int64  `json:"ctime"`
}
