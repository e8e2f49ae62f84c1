package auth

import (
	"errors"
	"fmt"
	"time"

	"queueroom/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Виды токенов
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
	KindGuest   = "guest"
)

var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Claims is the payload of every token. For access and refresh tokens the
// subject is the user id and Username the display name. For guest tokens
// the subject is the queue entry id and Username the guest email.
type Claims struct {
	Username string `json:"username"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens. Access and guest tokens share
// the access secret.
type Tokens struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	guestTTL      time.Duration
	now           func() time.Time
}

func NewTokens(cfg config.JWTConfig) *Tokens {
	return &Tokens{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		guestTTL:      cfg.GuestTTL,
		now:           time.Now,
	}
}

func (t *Tokens) IssueAccess(userID, name string) (string, error) {
	return t.sign(KindAccess, userID, name, t.accessTTL, t.accessSecret)
}

func (t *Tokens) IssueRefresh(userID, name string) (string, error) {
	return t.sign(KindRefresh, userID, name, t.refreshTTL, t.refreshSecret)
}

// IssueGuest mints the token an anonymous participant uses to leave the
// queue. It is bound to the entry, so it stops working once the entry is
// gone.
func (t *Tokens) IssueGuest(entryID, email string) (string, error) {
	return t.sign(KindGuest, entryID, email, t.guestTTL, t.accessSecret)
}

func (t *Tokens) sign(kind, subject, username string, ttl time.Duration, secret []byte) (string, error) {
	now := t.now()
	claims := Claims{
		Username: username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccess verifies a token signed with the access secret. Both access
// and guest tokens pass; callers dispatch on Claims.Kind.
func (t *Tokens) ParseAccess(tokenString string) (*Claims, error) {
	claims, err := t.parse(tokenString, t.accessSecret)
	if err != nil {
		return nil, err
	}
	if claims.Kind != KindAccess && claims.Kind != KindGuest {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (t *Tokens) ParseRefresh(tokenString string) (*Claims, error) {
	claims, err := t.parse(tokenString, t.refreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.Kind != KindRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (t *Tokens) parse(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
