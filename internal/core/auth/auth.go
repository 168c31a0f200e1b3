package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taste-trip/internal/infrastructure/config"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDisabled 未設定簽章金鑰
var ErrDisabled = errors.New("auth: token verification disabled")

// Claims 權杖內容
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Identity 驗證後的使用者身分
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier HS256 權杖驗證
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier 依設定創建驗證器
func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer}
}

// Enabled 是否已設定簽章金鑰
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify 驗證簽章、有效期限與簽發者
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	if !v.Enabled() {
		return nil, ErrDisabled
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token: missing subject")
	}

	return &Identity{Subject: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// Issue 簽發權杖
func (v *Verifier) Issue(id Identity, ttl time.Duration) (string, error) {
	if !v.Enabled() {
		return "", ErrDisabled
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: id.Email,
		Name:  id.Name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// BearerToken 從 Authorization 標頭取出權杖
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
