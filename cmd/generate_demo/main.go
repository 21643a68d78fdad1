// Command generate_demo creates a demo database with sample accounts in every
// lifecycle state: verified with a live session, verified without one,
// pending verification, and pending with an expired token.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/freakishcode/Blog-App/internal/auth"
	"github.com/freakishcode/Blog-App/internal/database"
	"github.com/freakishcode/Blog-App/internal/database/accounts"
	"github.com/freakishcode/Blog-App/internal/entities"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"
	demoPassword            = "s3cret!"
	demoBcryptCost          = 10
)

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := accounts.NewRepository(db.DB)

	passwordHash, err := auth.HashPassword(demoPassword, demoBcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	for _, account := range demoAccounts(passwordHash) {
		if err := repo.Create(account); err != nil {
			log.Printf("Failed to save account %s: %v", account.Username, err)
			continue
		}
		log.Printf("Saved: %s <%s> (verified=%v)", account.Username, account.Email, account.Verified)
	}

	log.Printf("Demo database generated successfully! All accounts use the password %q", demoPassword)
}

func demoAccounts(passwordHash string) []*entities.Account {
	now := time.Now()

	sessionToken := mustToken(auth.SessionTokenBytes)
	sessionExpiry := now.Add(7 * 24 * time.Hour)

	pendingToken := mustToken(auth.VerificationTokenBytes)
	pendingExpiry := now.Add(24 * time.Hour)

	staleToken := mustToken(auth.VerificationTokenBytes)
	staleExpiry := now.Add(-time.Hour)

	return []*entities.Account{
		{
			Username:      "alice",
			Email:         "alice@example.com",
			PasswordHash:  passwordHash,
			Verified:      true,
			SessionToken:  &sessionToken,
			SessionExpiry: &sessionExpiry,
		},
		{
			Username:     "bob",
			Email:        "bob@example.com",
			PasswordHash: passwordHash,
			Verified:     true,
		},
		{
			Username:           "carol",
			Email:              "carol@example.com",
			PasswordHash:       passwordHash,
			VerificationToken:  &pendingToken,
			VerificationExpiry: &pendingExpiry,
		},
		{
			Username:           "dave",
			Email:              "dave@example.com",
			PasswordHash:       passwordHash,
			VerificationToken:  &staleToken,
			VerificationExpiry: &staleExpiry,
		},
	}
}

func mustToken(n int) string {
	token, err := auth.NewToken(n)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	return token
}
