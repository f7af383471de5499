package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fsdevblog/groph-points/internal/service/tokens"
	"github.com/gin-gonic/gin"
)

var ErrTokenNotExist = errors.New("token not exist")

const CurrentUserIDKey = "currentUserID"

// checkAuthorization извлекает токен из заголовка Authorization и возвращает ID юзера из него. Если токен
// не передан, вернется ошибка ErrTokenNotExist.
func checkAuthorization(c *gin.Context, jwtTokenSecret []byte) (int64, error) {
	tokenHeader := c.GetHeader("Authorization")
	bearer := "Bearer "

	if len(tokenHeader) <= len(bearer) || tokenHeader[:len(bearer)] != bearer {
		return 0, ErrTokenNotExist
	}

	userID, err := tokens.ParseUserID(tokenHeader[len(bearer):], jwtTokenSecret)
	if err != nil {
		return 0, fmt.Errorf("check authorization: %w", err)
	}
	return userID, nil
}

// AuthRequired проверяет, что запрос авторизован. Записывает в контекст (поле CurrentUserIDKey)
// id юзера.
func AuthRequired(jwtTokenSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := checkAuthorization(c, jwtTokenSecret)
		if err != nil {
			if errors.Is(err, ErrTokenNotExist) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			_ = c.AbortWithError(http.StatusUnauthorized, err).SetType(gin.ErrorTypePrivate)
			return
		}
		c.Set(CurrentUserIDKey, userID)
		c.Next()
	}
}

// NonAuthRequired пропускает запросы без токена или с недействительным токеном.
func NonAuthRequired(jwtTokenSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := checkAuthorization(c, jwtTokenSecret)
		if err == nil {
			_ = c.AbortWithError(http.StatusConflict, errors.New("already authorized")).
				SetType(gin.ErrorTypePublic)
			return
		}

		c.Next()
	}
}

// CurrentUserID берет из контекста gin ID текущего юзера. ID устанавливается в AuthRequired. В случае,
// если значения в контексте нет или ошибка утверждения типа - вернется 0.
func CurrentUserID(c *gin.Context) int64 {
	userIDStr, exist := c.Get(CurrentUserIDKey)
	if !exist {
		return 0
	}
	userID, ok := userIDStr.(int64)
	if !ok {
		return 0
	}
	return userID
}
