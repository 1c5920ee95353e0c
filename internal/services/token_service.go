package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Назначение токена. Токены, подписанные тем же секретом для других
// целей, здесь не принимаются.
const verificationPurpose = "email-verification"

// TokenPayload — содержимое верификационного токена.
type TokenPayload struct {
	Email  string
	APIKey string
}

type TokenService interface {
	Issue(email, apiKey string) (string, error)
	// Verify — maxAge отсчитывается от момента выпуска (iat).
	Verify(token string, maxAge time.Duration) (*TokenPayload, error)
}

type verificationClaims struct {
	Email   string `json:"email"`
	APIKey  string `json:"api_key"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) TokenService {
	return &tokenService{secret: []byte(secret), now: time.Now}
}

func (s *tokenService) Issue(email, apiKey string) (string, error) {
	claims := &verificationClaims{
		Email:   email,
		APIKey:  apiKey,
		Purpose: verificationPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token sign: %w", err)
	}
	return signed, nil
}

func (s *tokenService) Verify(tokenStr string, maxAge time.Duration) (*TokenPayload, error) {
	claims := &verificationClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// принимаем только HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Purpose != verificationPurpose {
		return nil, fmt.Errorf("%w: wrong purpose", ErrTokenInvalid)
	}
	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing issue time", ErrTokenInvalid)
	}
	if s.now().After(claims.IssuedAt.Add(maxAge)) {
		return nil, ErrTokenExpired
	}
	return &TokenPayload{Email: claims.Email, APIKey: claims.APIKey}, nil
}
