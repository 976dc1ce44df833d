package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/elemephant/backend/internal/platform/apierr"
	"github.com/elemephant/backend/internal/platform/logger"
)

// Session is the minimal capability the catalog checks before admin
// operations.
type Session struct {
	IsAdmin bool `json:"isAdmin"`
}

// AuthService gates the admin surface. With no admin token configured it is
// a stub that grants every caller; with ADMIN_API_TOKEN set, Login exchanges
// the token for a short-lived JWT and Verify enforces it.
type AuthService interface {
	Enabled() bool
	Login(adminToken string) (string, error)
	Verify(bearerToken string) (*Session, error)
}

type authService struct {
	log        *logger.Logger
	adminToken string
	signingKey []byte
	tokenTTL   time.Duration
}

func NewAuthService(baseLog *logger.Logger, adminToken, jwtSecret string, tokenTTL time.Duration) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	if adminToken == "" {
		serviceLog.Warn("ADMIN_API_TOKEN not set; all callers are treated as admin")
	}
	return &authService{
		log:        serviceLog,
		adminToken: adminToken,
		signingKey: []byte(jwtSecret),
		tokenTTL:   tokenTTL,
	}
}

func (as *authService) Enabled() bool {
	return as.adminToken != ""
}

func (as *authService) Login(adminToken string) (string, error) {
	if !as.Enabled() {
		return "", apierr.Validationf("admin login is not configured")
	}
	if adminToken != as.adminToken {
		return "", apierr.Unauthorized(fmt.Errorf("invalid admin token"))
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(as.signingKey)
	if err != nil {
		as.log.Error("failed to sign admin token", "error", err)
		return "", apierr.Internal(fmt.Errorf("sign token: %w", err))
	}
	return signed, nil
}

func (as *authService) Verify(bearerToken string) (*Session, error) {
	if !as.Enabled() {
		return &Session{IsAdmin: true}, nil
	}
	if bearerToken == "" {
		return nil, apierr.Unauthorized(fmt.Errorf("missing token"))
	}

	parsed, err := jwt.ParseWithClaims(bearerToken, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apierr.Unauthorized(fmt.Errorf("invalid token"))
	}
	return &Session{IsAdmin: true}, nil
}
