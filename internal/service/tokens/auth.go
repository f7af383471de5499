// Package tokens выпуск и проверка jwt токенов пользователей.
package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "groph-points"

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
)

// UserClaims содержит только ID пользователя. Роль в токен не кладется, так как может быть изменена админом,
// ее проверяют по базе.
type UserClaims struct {
	jwt.RegisteredClaims
	ID int64
}

func GenerateUserJWT(id int64, expire time.Duration, key []byte) (string, error) {
	now := time.Now()
	userClaims := UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
		ID: id,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, userClaims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating user jwt token: %s", err.Error())
	}
	return tokenString, nil
}

// ParseUserID проверяет подпись и срок действия токена и возвращает ID пользователя.
// Для просроченного токена возвращается ErrTokenExpired.
func ParseUserID(tokenString string, key []byte) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, new(UserClaims), func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("parsing user jwt token: %w", err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || claims.ID <= 0 || claims.Subject != strconv.FormatInt(claims.ID, 10) {
		return 0, ErrInvalidClaims
	}
	return claims.ID, nil
}
