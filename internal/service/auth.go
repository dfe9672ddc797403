package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidToken       = errors.New("invalid token")
)

const (
	// SessionCookieName is the cookie carrying the admin session token.
	SessionCookieName = "admin-token"
	// DevSecret signs tokens when no secret is configured.
	DevSecret = "jambearum-secret-key-2024"
	// TokenTTL is the fixed lifetime of a session token and its cookie.
	TokenTTL          = 24 * time.Hour
	DefaultBcryptCost = 12
)

// AuthConfig tunes the session service. BcryptCost exists for tests;
// deployments always run at DefaultBcryptCost.
type AuthConfig struct {
	Secret     string
	Secure     bool // mark the cookie Secure (production)
	BcryptCost int
}

// AuthService authenticates admins and issues, verifies and revokes their
// session tokens. It holds no per-request state.
type AuthService struct {
	store    *store.Store
	secret   []byte
	ttl      time.Duration
	secure   bool
	cost     int
	denylist Denylist
	now      func() time.Time
}

// NewAuthService builds a session service. Zero config values fall back to
// the development secret, a 24 hour lifetime and bcrypt cost 12.
func NewAuthService(st *store.Store, cfg AuthConfig) *AuthService {
	secret := cfg.Secret
	if secret == "" {
		secret = DevSecret
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	return &AuthService{
		store:  st,
		secret: []byte(secret),
		ttl:    TokenTTL,
		secure: cfg.Secure,
		cost:   cost,
		now:    time.Now,
	}
}

// WithDenylist enables token revocation on logout.
func (s *AuthService) WithDenylist(d Denylist) *AuthService {
	s.denylist = d
	return s
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// HashPassword returns the bcrypt hash of password at the configured cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// ValidateCredentials checks username and password against active admins and
// records the login time on success. Unknown, inactive and wrong-password
// attempts all return ErrInvalidCredentials.
func (s *AuthService) ValidateCredentials(ctx context.Context, username, password string) (*model.AdminUser, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	admin, err := s.store.GetActiveAdminByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.store.UpdateAdminLastLogin(ctx, admin.ID); err != nil {
		return nil, fmt.Errorf("record last login: %w", err)
	}

	return &model.AdminUser{
		ID:        admin.ID,
		Username:  admin.Username,
		Role:      admin.Role,
		LoginTime: s.now().UnixMilli(),
	}, nil
}

type sessionClaims struct {
	AdminID   string     `json:"id"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	LoginTime int64      `json:"loginTime"`
	// ExpiresNano is the exact expiry in Unix nanoseconds. The registered
	// exp claim only has whole seconds and is rounded up to keep it from
	// cutting a session short.
	ExpiresNano int64 `json:"expNs"`
	jwt.RegisteredClaims
}

// CreateToken signs an HS256 session token for user that expires after the
// configured lifetime.
func (s *AuthService) CreateToken(user *model.AdminUser) (string, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		AdminID:     user.ID,
		Username:    user.Username,
		Role:        user.Role,
		LoginTime:   user.LoginTime,
		ExpiresNano: expires.UnixNano(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(expires)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parse(tokenStr string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresNano == 0 || !s.now().Before(time.Unix(0, claims.ExpiresNano)) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ceilSecond rounds t up to the next whole second.
func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}

// VerifyToken checks the signature, structure and expiry of a session token
// and returns the identity it carries. Any failure, including revocation,
// is reported as ErrInvalidToken. Roles are not checked here.
func (s *AuthService) VerifyToken(ctx context.Context, tokenStr string) (*model.AdminUser, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil {
		revoked, err := s.denylist.Contains(ctx, tokenKey(tokenStr))
		if err != nil || revoked {
			return nil, ErrInvalidToken
		}
	}

	return &model.AdminUser{
		ID:        claims.AdminID,
		Username:  claims.Username,
		Role:      claims.Role,
		LoginTime: claims.LoginTime,
	}, nil
}

// Revoke denylists a still-valid token for the rest of its lifetime. It is
// a no-op without a denylist or for tokens that no longer verify.
func (s *AuthService) Revoke(ctx context.Context, tokenStr string) error {
	if s.denylist == nil || tokenStr == "" {
		return nil
	}
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Add(ctx, tokenKey(tokenStr), ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// CurrentAdmin returns the verified identity carried by the request's session
// cookie, without checking its role.
func (s *AuthService) CurrentAdmin(r *http.Request) (*model.AdminUser, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	user, err := s.VerifyToken(r.Context(), c.Value)
	if err != nil {
		return nil, false
	}
	return user, true
}

// IsAuthenticatedAdmin reports whether the request carries a valid session
// cookie for a user with the admin role.
func (s *AuthService) IsAuthenticatedAdmin(r *http.Request) bool {
	user, ok := s.CurrentAdmin(r)
	return ok && user.IsAdmin()
}

// SetSessionCookie attaches the session token to the response.
func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokenKey identifies a token in the denylist without storing it verbatim.
func tokenKey(tokenStr string) string {
	h := sha256.Sum256([]byte(tokenStr))
	return hex.EncodeToString(h[:])
}
