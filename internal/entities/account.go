package entities

import (
	"time"
)

// Account represents one registered user in the credential store.
//
// Verification and session token columns are nullable: a verification token
// exists only while the account is unverified, and a session token only after
// a successful login. SQLite unique indexes ignore NULLs, so the uniqueness
// constraints apply exactly to the tokens that are present.
type Account struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string `gorm:"size:100" json:"-"`

	Verified           bool       `gorm:"not null;default:false" json:"verified"`
	VerificationToken  *string    `gorm:"uniqueIndex;size:64" json:"-"`
	VerificationExpiry *time.Time `json:"-"`

	SessionToken  *string    `gorm:"uniqueIndex;size:64" json:"-"`
	SessionExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
