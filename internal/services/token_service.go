package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL используется, если время жизни токена не задано в конфигурации.
const DefaultAccessTokenTTL = 30 * time.Minute

// TokenService выпускает и проверяет подписанные HS256 токены доступа.
// Субъект токена (sub) содержит имя пользователя.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// TokenOption настраивает TokenService.
type TokenOption func(*TokenService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService создает сервис токенов. Пустой секрет недопустим.
func NewTokenService(secret, issuer string, opts ...TokenOption) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	s := &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue создает токен для subject со временем жизни ttl.
// Время истечения вычисляется один раз и записывается в токен без изменений.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}
	if subject == "" {
		return "", fmt.Errorf("%w: пустой субъект", ErrInvalidToken)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись, алгоритм, издателя и срок действия токена
// и возвращает его субъект.
func (s *TokenService) Verify(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Ошибки сервиса токенов.
var (
	ErrInvalidToken = errors.New("недействительный токен")
	ErrInvalidTTL   = errors.New("время жизни токена должно быть положительным")
	ErrEmptySecret  = errors.New("секретный ключ JWT не задан")
)
