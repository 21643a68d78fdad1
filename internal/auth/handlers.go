package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freakishcode/Blog-App/internal/config"
)

// Response is the wire shape of every auth endpoint. Non-success responses
// never carry a username or token.
type Response struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token,omitempty"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type autoLoginRequest struct {
	Token string `json:"token"`
}

type resendRequest struct {
	Email string `json:"email"`
}

// AuthController handles the authentication JSON endpoints.
type AuthController struct {
	service     *Service
	rateLimiter *RateLimiter
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, cfg config.Auth) *AuthController {
	rateLimiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})

	return &AuthController{
		service:     service,
		rateLimiter: rateLimiter,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/register", ac.Register)
	router.POST("/api/auth/verify", ac.Verify)
	router.POST("/api/auth/login", ac.Login)
	router.POST("/api/auth/auto-login", ac.AutoLogin)
	router.POST("/api/auth/resend-verification", ac.ResendVerification)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// Register handles account registration.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	_, err := ac.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameRequired),
			errors.Is(err, ErrEmailRequired),
			errors.Is(err, ErrPasswordRequired):
			fail(c, http.StatusBadRequest, "All fields are required for registration.")
		case errors.Is(err, ErrEmailInvalid):
			fail(c, http.StatusBadRequest, "Invalid email format.")
		case errors.Is(err, ErrPasswordTooLong):
			fail(c, http.StatusBadRequest, "Password is too long.")
		case errors.Is(err, ErrDuplicateAccount):
			fail(c, http.StatusConflict, "Username or email already exists.")
		default:
			storeFail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Registration successful! Please check your email to verify your account.",
	})
}

// Verify handles email verification via the token from the mailed link.
func (ac *AuthController) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Missing verification token.")
		return
	}

	if err := ac.service.Verify(req.Token); err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			fail(c, http.StatusBadRequest, "Verification link expired.")
		case errors.Is(err, ErrInvalidToken):
			fail(c, http.StatusBadRequest, "Invalid or expired token.")
		default:
			storeFail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Email verified successfully. You can now log in.",
	})
}

// Login handles credential checks and session token issuance.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Username and password required.")
		return
	}

	clientIP := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		fail(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	session, err := ac.service.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameRequired), errors.Is(err, ErrPasswordRequired):
			fail(c, http.StatusBadRequest, "Username and password required.")
		case errors.Is(err, ErrAccountNotVerified):
			ac.rateLimiter.RecordFailure(clientIP, req.Username)
			fail(c, http.StatusForbidden, "Please verify your email before logging in.")
		case errors.Is(err, ErrInvalidCredentials):
			ac.rateLimiter.RecordFailure(clientIP, req.Username)
			fail(c, http.StatusUnauthorized, "Invalid username or password.")
		default:
			storeFail(c, err)
		}
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Username)

	c.JSON(http.StatusOK, Response{
		Success:  true,
		Message:  "Login successful.",
		Username: session.Username,
		Token:    session.Token,
	})
}

// AutoLogin resolves a stored session token to its username.
func (ac *AuthController) AutoLogin(c *gin.Context) {
	var req autoLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Missing token.")
		return
	}

	username, err := ac.service.AutoLogin(req.Token)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			fail(c, http.StatusUnauthorized, "Session expired or invalid.")
			return
		}
		storeFail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:  true,
		Message:  "Auto-login successful.",
		Username: username,
	})
}

// ResendVerification issues a fresh verification token. The response is the
// same whether or not the address belongs to a pending registration.
func (ac *AuthController) ResendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Missing email address.")
		return
	}

	if err := ac.service.ResendVerification(req.Email); err != nil {
		switch {
		case errors.Is(err, ErrEmailRequired), errors.Is(err, ErrEmailInvalid):
			fail(c, http.StatusBadRequest, "Invalid email format.")
		default:
			storeFail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "If that address has a pending registration, a new verification email has been sent.",
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

func storeFail(c *gin.Context, err error) {
	if errors.Is(err, ErrStoreUnavailable) {
		fail(c, http.StatusServiceUnavailable, "Service temporarily unavailable.")
		return
	}
	fail(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
