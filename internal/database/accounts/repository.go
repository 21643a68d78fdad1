// Package accounts provides database operations for the credential store.
//
// # Usage
//
//	repo := accounts.NewRepository(db)
//	acct, err := repo.GetByUsername("alice")
package accounts

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/freakishcode/Blog-App/internal/entities"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("account already exists")
)

// Repository handles all account database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new accounts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account. Uniqueness of username, email and tokens is
// enforced by the database, so two concurrent registrations for the same
// username cannot both succeed.
func (r *Repository) Create(account *entities.Account) error {
	err := r.db.Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// GetByUsername retrieves an account by its exact username.
func (r *Repository) GetByUsername(username string) (*entities.Account, error) {
	return r.first("username = ?", username)
}

// GetByEmail retrieves an account by email.
func (r *Repository) GetByEmail(email string) (*entities.Account, error) {
	return r.first("email = ?", email)
}

// ExistsByUsernameOrEmail reports whether any account holds the given
// username or email.
func (r *Repository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Account{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByVerificationToken retrieves the unverified account holding the token.
// Verified accounts never match: their verification token has been cleared.
func (r *Repository) GetByVerificationToken(token string) (*entities.Account, error) {
	return r.first("verification_token = ? AND verified = ?", token, false)
}

// MarkVerified flips the account to verified and clears its verification
// token in a single statement. The token is part of the WHERE clause so a
// concurrent consumer of the same token loses the race and sees ErrNotFound.
func (r *Repository) MarkVerified(id uint, token string) error {
	result := r.db.Model(&entities.Account{}).
		Where("id = ? AND verification_token = ? AND verified = ?", id, token, false).
		Updates(map[string]any{
			"verified":            true,
			"verification_token":  nil,
			"verification_expiry": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceVerificationToken installs a fresh verification token on an
// unverified account, invalidating any previous one.
func (r *Repository) ReplaceVerificationToken(id uint, token string, expiry time.Time) error {
	result := r.db.Model(&entities.Account{}).
		Where("id = ? AND verified = ?", id, false).
		Updates(map[string]any{
			"verification_token":  token,
			"verification_expiry": expiry,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSessionToken overwrites the account's session token and expiry in a
// single statement. Only the most recent login's token remains valid.
func (r *Repository) SetSessionToken(id uint, token string, expiry time.Time) error {
	result := r.db.Model(&entities.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"session_token":  token,
			"session_expiry": expiry,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBySessionToken retrieves an account by its current session token.
// Expiry is checked by the caller at read time.
func (r *Repository) GetBySessionToken(token string) (*entities.Account, error) {
	return r.first("session_token = ?", token)
}

// ReapExpiredTokens clears verification and session tokens whose expiry has
// passed. Correctness never depends on this; expired tokens are rejected at
// read time regardless.
func (r *Repository) ReapExpiredTokens(now time.Time) (int64, error) {
	verification := r.db.Model(&entities.Account{}).
		Where("verification_token IS NOT NULL AND verification_expiry < ?", now).
		Updates(map[string]any{
			"verification_token":  nil,
			"verification_expiry": nil,
		})
	if verification.Error != nil {
		return 0, verification.Error
	}

	session := r.db.Model(&entities.Account{}).
		Where("session_token IS NOT NULL AND session_expiry < ?", now).
		Updates(map[string]any{
			"session_token":  nil,
			"session_expiry": nil,
		})
	if session.Error != nil {
		return verification.RowsAffected, session.Error
	}

	return verification.RowsAffected + session.RowsAffected, nil
}

func (r *Repository) first(query string, args ...any) (*entities.Account, error) {
	var account entities.Account
	err := r.db.Where(query, args...).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
