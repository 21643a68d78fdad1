package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/freakishcode/Blog-App/internal/config"
	"github.com/freakishcode/Blog-App/internal/database/accounts"
	"github.com/freakishcode/Blog-App/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrDuplicateAccount   = errors.New("username or email already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountNotVerified = errors.New("account is not verified")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionInvalid     = errors.New("session expired or invalid")
	ErrStoreUnavailable   = errors.New("credential store unavailable")
)

// CredentialStore is the persistence abstraction holding Account records.
type CredentialStore interface {
	Create(account *entities.Account) error
	GetByUsername(username string) (*entities.Account, error)
	GetByEmail(email string) (*entities.Account, error)
	ExistsByUsernameOrEmail(username, email string) (bool, error)
	GetByVerificationToken(token string) (*entities.Account, error)
	MarkVerified(id uint, token string) error
	ReplaceVerificationToken(id uint, token string, expiry time.Time) error
	SetSessionToken(id uint, token string, expiry time.Time) error
	GetBySessionToken(token string) (*entities.Account, error)
}

// Notifier delivers verification tokens out of band. The token never appears
// in an API response; it only travels through this interface.
type Notifier interface {
	SendVerification(email, token string) error
}

// Session is what a successful login hands back to the caller.
type Session struct {
	Username string
	Token    string
}

// Service implements the credential and session lifecycle: registration with
// email verification, login, and session resume.
type Service struct {
	store    CredentialStore
	notifier Notifier
	config   config.Auth
}

// NewService creates a new authentication service.
func NewService(store CredentialStore, notifier Notifier, cfg config.Auth) *Service {
	if cfg.VerificationTTL == 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	return &Service{
		store:    store,
		notifier: notifier,
		config:   cfg,
	}
}

// Register creates an unverified account and dispatches a verification mail.
// A notification failure does not roll the account back; the account exists,
// pending verification, and the token can be re-sent later.
func (s *Service) Register(username, email, password string) (*entities.Account, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	// Friendly pre-check; the unique indexes settle any race on insert.
	exists, err := s.store.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return nil, storeErr("checking existing account", err)
	}
	if exists {
		return nil, ErrDuplicateAccount
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	token, err := NewToken(VerificationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	expiry := ExpiryAfter(s.config.VerificationTTL)

	account := &entities.Account{
		Username:           username,
		Email:              email,
		PasswordHash:       passwordHash,
		Verified:           false,
		VerificationToken:  &token,
		VerificationExpiry: &expiry,
	}

	if err := s.store.Create(account); err != nil {
		if errors.Is(err, accounts.ErrDuplicate) {
			return nil, ErrDuplicateAccount
		}
		return nil, storeErr("creating account", err)
	}

	if err := s.notifier.SendVerification(email, token); err != nil {
		log.Printf("Failed to dispatch verification mail for %s: %v", username, err)
	}

	return account, nil
}

// Verify consumes a verification token and activates the account. Unknown,
// already-consumed and already-verified tokens are indistinguishable to the
// caller; only a known-but-expired token is reported separately.
func (s *Service) Verify(token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	account, err := s.store.GetByVerificationToken(token)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrInvalidToken
		}
		return storeErr("looking up verification token", err)
	}

	if account.VerificationExpiry == nil || time.Now().After(*account.VerificationExpiry) {
		return ErrTokenExpired
	}

	if err := s.store.MarkVerified(account.ID, token); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			// A concurrent request consumed the token first.
			return ErrInvalidToken
		}
		return storeErr("marking account verified", err)
	}

	return nil
}

// ResendVerification issues a fresh verification token for an unverified
// account. It reports success even when no matching account exists so the
// endpoint cannot be used to probe for registered addresses.
func (s *Service) ResendVerification(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}

	account, err := s.store.GetByEmail(email)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil
		}
		return storeErr("looking up account", err)
	}
	if account.Verified {
		return nil
	}

	token, err := NewToken(VerificationTokenBytes)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	expiry := ExpiryAfter(s.config.VerificationTTL)

	if err := s.store.ReplaceVerificationToken(account.ID, token, expiry); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			// Verified in the meantime; nothing to resend.
			return nil
		}
		return storeErr("replacing verification token", err)
	}

	if err := s.notifier.SendVerification(email, token); err != nil {
		log.Printf("Failed to dispatch verification mail for %s: %v", account.Username, err)
	}

	return nil
}

// Login checks credentials and issues a new session token, replacing any
// previous one. An unknown username and a wrong password produce the same
// error; only the unverified state is distinguished.
func (s *Service) Login(username, password string) (*Session, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	account, err := s.store.GetByUsername(username)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("looking up account", err)
	}

	if !account.Verified {
		return nil, ErrAccountNotVerified
	}

	if err := CheckPassword(password, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := NewToken(SessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	expiry := ExpiryAfter(s.config.SessionTTL)

	if err := s.store.SetSessionToken(account.ID, token, expiry); err != nil {
		return nil, storeErr("saving session token", err)
	}

	return &Session{Username: account.Username, Token: token}, nil
}

// AutoLogin resolves a previously issued session token to its username.
// It is a read-only check: the token is neither rotated nor extended.
// Absent, wrong and expired tokens are indistinguishable.
func (s *Service) AutoLogin(token string) (string, error) {
	if token == "" {
		return "", ErrSessionInvalid
	}

	account, err := s.store.GetBySessionToken(token)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return "", ErrSessionInvalid
		}
		return "", storeErr("looking up session token", err)
	}

	if account.SessionExpiry == nil || !account.SessionExpiry.After(time.Now()) {
		return "", ErrSessionInvalid
	}

	return account.Username, nil
}

// storeErr wraps a persistence fault so callers see the taxonomy error while
// logs retain the underlying cause.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
