// Package auth issues and verifies the HS256 bearer tokens used by the REST and realtime surfaces.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/im-delivery/internal/conversation"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims user_id 为字符串身份
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Tokens 签发与校验
type Tokens struct {
	secret []byte
	expire time.Duration
	now    func() time.Time
}

func NewTokens(secret string, expire time.Duration) *Tokens {
	if expire <= 0 {
		expire = 7 * 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), expire: expire, now: time.Now}
}

func (t *Tokens) Issue(userID string) (string, error) {
	if !conversation.ValidID(userID) {
		return "", ErrInvalidToken
	}
	now := t.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expire)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse 返回 token 中的用户 id
func (t *Tokens) Parse(tokenStr string) (string, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return "", ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if !conversation.ValidID(userID) {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// FromHeader 解析 "Bearer <token>"
func (t *Tokens) FromHeader(h string) (string, error) {
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", ErrInvalidToken
	}
	return t.Parse(h[len(prefix):])
}
