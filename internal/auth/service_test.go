package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/freakishcode/Blog-App/internal/config"
	"github.com/freakishcode/Blog-App/internal/database/accounts"
	"github.com/freakishcode/Blog-App/internal/entities"
)

// captureNotifier records dispatched verification mail for assertions.
type captureNotifier struct {
	emails []string
	tokens []string
	err    error
}

func (n *captureNotifier) SendVerification(email, token string) error {
	if n.err != nil {
		return n.err
	}
	n.emails = append(n.emails, email)
	n.tokens = append(n.tokens, token)
	return nil
}

func (n *captureNotifier) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, n.tokens, "no verification mail dispatched")
	return n.tokens[len(n.tokens)-1]
}

func setupService(t *testing.T) (*Service, *captureNotifier, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Account{}))

	notifier := &captureNotifier{}
	svc := NewService(accounts.NewRepository(db), notifier, config.Auth{BcryptCost: 10})
	return svc, notifier, db
}

func getAccount(t *testing.T, db *gorm.DB, username string) *entities.Account {
	t.Helper()
	var account entities.Account
	require.NoError(t, db.Where("username = ?", username).First(&account).Error)
	return &account
}

func TestService_Register(t *testing.T) {
	svc, notifier, db := setupService(t)

	account, err := svc.Register("alice", "alice@x.com", "s3cret!")

	require.NoError(t, err)
	assert.False(t, account.Verified)
	require.NotNil(t, account.VerificationToken)
	assert.Len(t, *account.VerificationToken, VerificationTokenBytes*2)
	require.NotNil(t, account.VerificationExpiry)
	assert.True(t, account.VerificationExpiry.After(time.Now()))
	assert.Nil(t, account.SessionToken)

	// The plaintext password never hits the store
	stored := getAccount(t, db, "alice")
	assert.NotEqual(t, "s3cret!", stored.PasswordHash)
	assert.NoError(t, CheckPassword("s3cret!", stored.PasswordHash))

	// Token delivered out of band only
	require.Len(t, notifier.emails, 1)
	assert.Equal(t, "alice@x.com", notifier.emails[0])
	assert.Equal(t, *account.VerificationToken, notifier.tokens[0])
}

func TestService_Register_Validation(t *testing.T) {
	svc, _, _ := setupService(t)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"missing username", "", "a@x.com", "pw", ErrUsernameRequired},
		{"missing email", "alice", "", "pw", ErrEmailRequired},
		{"missing password", "alice", "a@x.com", "", ErrPasswordRequired},
		{"malformed email", "alice", "not-an-email", "pw", ErrEmailInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Register_Duplicate(t *testing.T) {
	svc, _, db := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	original := getAccount(t, db, "alice")

	_, err = svc.Register("alice", "other@x.com", "s3cret!")
	assert.ErrorIs(t, err, ErrDuplicateAccount)

	_, err = svc.Register("other", "alice@x.com", "s3cret!")
	assert.ErrorIs(t, err, ErrDuplicateAccount)

	// The existing account is untouched
	after := getAccount(t, db, "alice")
	assert.Equal(t, original.PasswordHash, after.PasswordHash)
	assert.Equal(t, original.VerificationToken, after.VerificationToken)
}

func TestService_Register_NotifierFailureDoesNotRollBack(t *testing.T) {
	svc, notifier, db := setupService(t)
	notifier.err = errors.New("smtp unreachable")

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")

	require.NoError(t, err)
	account := getAccount(t, db, "alice")
	assert.False(t, account.Verified)
	assert.NotNil(t, account.VerificationToken)
}

func TestService_Verify(t *testing.T) {
	svc, notifier, db := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	token := notifier.lastToken(t)

	// Wrong token first
	assert.ErrorIs(t, svc.Verify("ffffffffffffffffffffffffffffffff"), ErrInvalidToken)

	// Correct token activates the account and clears the token
	require.NoError(t, svc.Verify(token))
	account := getAccount(t, db, "alice")
	assert.True(t, account.Verified)
	assert.Nil(t, account.VerificationToken)
	assert.Nil(t, account.VerificationExpiry)

	// Single use: re-presenting the consumed token is rejected
	assert.ErrorIs(t, svc.Verify(token), ErrInvalidToken)
}

func TestService_Verify_Expired(t *testing.T) {
	svc, notifier, db := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	token := notifier.lastToken(t)

	err = db.Model(&entities.Account{}).
		Where("username = ?", "alice").
		Update("verification_expiry", time.Now().Add(-time.Hour)).Error
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(token), ErrTokenExpired)

	// Expiry does not silently extend or flip the account
	account := getAccount(t, db, "alice")
	assert.False(t, account.Verified)
}

func TestService_Verify_EmptyToken(t *testing.T) {
	svc, _, _ := setupService(t)

	assert.ErrorIs(t, svc.Verify(""), ErrInvalidToken)
}

func TestService_Login_Unverified(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)

	// Correct credentials, but the account has not been verified
	_, err = svc.Login("alice", "s3cret!")
	assert.ErrorIs(t, err, ErrAccountNotVerified)
}

func TestService_Login_InvalidCredentialsIndistinguishable(t *testing.T) {
	svc, notifier, _ := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	require.NoError(t, svc.Verify(notifier.lastToken(t)))

	_, wrongPassword := svc.Login("alice", "nope")
	_, unknownUser := svc.Login("nobody", "s3cret!")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownUser)
}

func TestService_LoginAndAutoLogin(t *testing.T) {
	svc, notifier, _ := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	require.NoError(t, svc.Verify(notifier.lastToken(t)))

	first, err := svc.Login("alice", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Username)
	assert.Len(t, first.Token, SessionTokenBytes*2)

	// A second login replaces the session token
	second, err := svc.Login("alice", "s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// The replaced token no longer resumes a session
	_, err = svc.AutoLogin(first.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)

	username, err := svc.AutoLogin(second.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestService_AutoLogin_Expired(t *testing.T) {
	svc, notifier, db := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	require.NoError(t, svc.Verify(notifier.lastToken(t)))

	session, err := svc.Login("alice", "s3cret!")
	require.NoError(t, err)

	err = db.Model(&entities.Account{}).
		Where("username = ?", "alice").
		Update("session_expiry", time.Now().Add(-time.Minute)).Error
	require.NoError(t, err)

	_, err = svc.AutoLogin(session.Token)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestService_AutoLogin_UnknownOrEmpty(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.AutoLogin("")
	assert.ErrorIs(t, err, ErrSessionInvalid)

	_, err = svc.AutoLogin("ffffffffffffffffffffffffffffffffffffffff")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestService_AutoLogin_ReadOnly(t *testing.T) {
	svc, notifier, db := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	require.NoError(t, svc.Verify(notifier.lastToken(t)))

	session, err := svc.Login("alice", "s3cret!")
	require.NoError(t, err)
	before := getAccount(t, db, "alice")

	_, err = svc.AutoLogin(session.Token)
	require.NoError(t, err)

	// Resume neither rotates the token nor extends its expiry
	after := getAccount(t, db, "alice")
	assert.Equal(t, before.SessionToken, after.SessionToken)
	assert.Equal(t, before.SessionExpiry.Unix(), after.SessionExpiry.Unix())
}

func TestService_ResendVerification(t *testing.T) {
	svc, notifier, _ := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	firstToken := notifier.lastToken(t)

	require.NoError(t, svc.ResendVerification("alice@x.com"))
	secondToken := notifier.lastToken(t)
	assert.NotEqual(t, firstToken, secondToken)

	// The replaced token is dead, the fresh one works
	assert.ErrorIs(t, svc.Verify(firstToken), ErrInvalidToken)
	assert.NoError(t, svc.Verify(secondToken))
}

func TestService_ResendVerification_NoEnumeration(t *testing.T) {
	svc, notifier, _ := setupService(t)

	// Unknown address: success reported, nothing dispatched
	require.NoError(t, svc.ResendVerification("nobody@x.com"))
	assert.Empty(t, notifier.emails)

	// Verified account: same
	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)
	require.NoError(t, svc.Verify(notifier.lastToken(t)))
	sent := len(notifier.emails)

	require.NoError(t, svc.ResendVerification("alice@x.com"))
	assert.Len(t, notifier.emails, sent)
}

func TestService_StoreUnavailable(t *testing.T) {
	svc, _, db := setupService(t)

	_, err := svc.Register("alice", "alice@x.com", "s3cret!")
	require.NoError(t, err)

	// Simulate an unreachable store
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.Login("alice", "s3cret!")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.Register("bob", "bob@x.com", "pw")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, svc.Verify("deadbeefdeadbeefdeadbeefdeadbeef"), ErrStoreUnavailable)

	_, err = svc.AutoLogin("ffffffffffffffffffffffffffffffffffffffff")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
