package middlewares

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/gin-gonic/gin"
)

const CurrentUserRoleKey = "currentUserRole"

const userLookupTimeout = 3 * time.Second

var ErrRoleNotAllowed = errors.New("forbidden for your role")

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// RequireRole пропускает только юзеров с одной из ролей roles. Роль берется из базы, а не из токена,
// так как админ может ее изменить. Должен стоять после AuthRequired. Записывает роль в контекст
// (поле CurrentUserRoleKey).
func RequireRole(finder UserFinder, roles ...domain.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, userLookupTimeout)
		defer cancel()

		user, err := finder.FindByID(ctx, CurrentUserID(c))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				_ = c.AbortWithError(http.StatusUnauthorized, err).SetType(gin.ErrorTypePrivate)
				return
			}
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
			return
		}

		if !slices.Contains(roles, user.Role) {
			_ = c.AbortWithError(http.StatusForbidden, ErrRoleNotAllowed).SetType(gin.ErrorTypePublic)
			return
		}

		c.Set(CurrentUserRoleKey, user.Role)
		c.Next()
	}
}

// CurrentUserRole роль текущего юзера, установленная RequireRole. Если роли в контексте нет, возвращает
// пустую строку.
func CurrentUserRole(c *gin.Context) domain.RoleType {
	role, exist := c.Get(CurrentUserRoleKey)
	if !exist {
		return ""
	}
	r, _ := role.(domain.RoleType)
	return r
}
