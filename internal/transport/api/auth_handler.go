package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/gin-gonic/gin"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthHandler struct {
	userService UserServicer
}

func NewAuthHandler(userService UserServicer) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

type UserRegisterParams struct {
	Email    string `binding:"required,email,max_bytes=255" json:"email"`
	Name     string `binding:"required,min=1,max=255"       json:"name"`
	Password string `binding:"required,min=6,max_bytes=72"  json:"password"`
}

type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

// Register POST RouteGroup + RegisterRoute. Регистрирует пользователя с ролью user и аутентифицирует его.
func (h *AuthHandler) Register(c *gin.Context) {
	var params UserRegisterParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, jwtToken, createErr := h.userService.Register(ctx, service.RegisterUserArgs{
		Email:    params.Email,
		Name:     params.Name,
		Password: params.Password,
	})
	if createErr != nil {
		abortWithServiceError(c, createErr)
		return
	}

	c.Header("Authorization", "Bearer "+jwtToken)
	c.JSON(http.StatusCreated, AuthResponse{User: newUserResponse(user), Token: jwtToken})
}

type UserLoginParams struct {
	Email    string `binding:"required,email,max_bytes=255" json:"email"`
	Password string `binding:"required,min=6,max_bytes=72"  json:"password"`
}

// Login POST RouteGroup + LoginRoute. Аутентификация по паре email/пароль.
func (h *AuthHandler) Login(c *gin.Context) {
	var params UserLoginParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, token, err := h.userService.Login(ctx, service.LoginUserArgs{
		Email:    params.Email,
		Password: params.Password,
	})

	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrPasswordMissMatch) {
			_ = c.AbortWithError(http.StatusUnauthorized, ErrInvalidCredentials).SetType(gin.ErrorTypePublic)
			_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.Header("Authorization", "Bearer "+token)

	c.JSON(http.StatusOK, AuthResponse{User: newUserResponse(user), Token: token})
}
