package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	FirstName      string `gorm:"not null"`
	LastName       string `gorm:"not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	HashedPassword string `gorm:"not null"`
	Verified       bool   `gorm:"default:false"`

	// Present only while the account is unverified.
	VerificationCode *string

	// Relationships
	Projects []Project `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Profile is the public projection of a user. The password hash is never
// part of any response.
type Profile struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Verified  bool   `json:"verified"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Verified:  u.Verified,
	}
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
