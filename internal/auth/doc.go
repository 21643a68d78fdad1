// Package auth implements the credential and session lifecycle: account
// registration with email verification, password login, and token-based
// session resume.
//
// # Configuration
//
//	AUTH_BCRYPT_COST=12          # bcrypt cost factor
//	AUTH_VERIFICATION_TTL=24h    # verification token lifetime
//	AUTH_SESSION_TTL=168h        # session token lifetime (7 days)
//	AUTH_MAX_LOGIN_ATTEMPTS=5    # failed logins before lockout
//
// # Usage
//
// Wire the service in the entrypoint:
//
//	repo := accounts.NewRepository(db.DB)
//	service := auth.NewService(repo, notifier, cfg.Auth)
//	controller := auth.NewAuthController(service, cfg.Auth)
//	controller.RegisterRoutes(router)
//
// Protect routes with the session middleware:
//
//	router.GET("/api/auth/me", middleware.RequireSession(), handler)
package auth
