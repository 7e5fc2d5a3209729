package domain

import "time"

// User represents a registered account together with its tracking profile.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          int       `json:"age"`
	Weight       float64   `json:"weight"`
	Height       float64   `json:"height"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileUpdate carries a partial profile change. Zero values are left untouched.
type ProfileUpdate struct {
	Name   string
	Age    int
	Weight float64
	Height float64
}

// Apply copies the non-zero fields of p onto user.
func (p ProfileUpdate) Apply(user *User) {
	if p.Name != "" {
		user.Name = p.Name
	}
	if p.Age != 0 {
		user.Age = p.Age
	}
	if p.Weight != 0 {
		user.Weight = p.Weight
	}
	if p.Height != 0 {
		user.Height = p.Height
	}
}
