package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleAdherent = "adherent"
)

// User is an authentication identity. Adherent users are linked to the
// member record they act for; admin users are not.
type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	MemberID  *uint     `json:"member_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
