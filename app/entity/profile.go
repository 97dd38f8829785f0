package entity

import "time"

const ProfileRoleAdmin = "admin"

type Profile struct {
	ID        string
	Email     string
	Role      string
	CreatedAt time.Time
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == ProfileRoleAdmin
}
