package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the signature checked out but the embedded
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid covers everything else: malformed input, bad
	// signature, unexpected algorithm, non-numeric subject. Callers
	// get no finer detail.
	ErrTokenInvalid = errors.New("invalid token")
)

const DefaultTokenTTL = 30 * time.Minute

type JWT struct {
	Secret string
	TTL    time.Duration
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	return &JWT{Secret: secret, TTL: ttl}
}

func (j *JWT) Issue(userId int) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userId),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
	})

	return token.SignedString([]byte(j.Secret))
}

func (j *JWT) Verify(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}

		return []byte(j.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}

		return 0, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)

	if !ok || !token.Valid {
		return 0, ErrTokenInvalid
	}

	userId, err := strconv.Atoi(claims.Subject)

	if err != nil {
		return 0, ErrTokenInvalid
	}

	return userId, nil
}
