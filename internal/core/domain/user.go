package domain

import "time"

type User struct {
	ID           int
	Username     string `validate:"required,min=3,max=50"`
	Email        string `validate:"required,email,max=255"`
	PasswordHash string
	CreatedAt    time.Time
}

func (u *User) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"created_at": u.CreatedAt,
	}
}
