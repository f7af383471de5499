package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/gin-gonic/gin"
)

type UsersHandler struct {
	svs UserServicer
}

func NewUsersHandler(svs UserServicer) *UsersHandler {
	return &UsersHandler{svs: svs}
}

// Me GET RouteGroup + MeRoute. Профиль текущего юзера.
func (h *UsersHandler) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.svs.FindByID(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

type UpdateNameParams struct {
	Name string `binding:"required,min=1,max=255" json:"name"`
}

// UpdateName PUT RouteGroup + UsersRoute. Меняет имя текущего юзера.
func (h *UsersHandler) UpdateName(c *gin.Context) {
	var params UpdateNameParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.svs.UpdateName(ctx, getUserIDFromContext(c), params.Name)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

type ChangePasswordParams struct {
	OldPassword string `binding:"required" json:"oldPassword"`
	NewPassword string `binding:"required,min=6,max_bytes=72" json:"newPassword"`
}

// ChangePassword PUT RouteGroup + MyPasswordRoute. Ответ без тела.
func (h *UsersHandler) ChangePassword(c *gin.Context) {
	var params ChangePasswordParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.svs.ChangePassword(ctx, getUserIDFromContext(c), params.OldPassword, params.NewPassword); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Index GET RouteGroup + UsersRoute. Все юзеры, только для админа.
func (h *UsersHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	users, err := h.svs.GetAll(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	resp := make([]*UserResponse, len(users))
	for i := range users {
		resp[i] = newUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Show GET RouteGroup + UserRoute.
func (h *UsersHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.svs.FindByID(ctx, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

type SetRoleParams struct {
	Role domain.RoleType `binding:"required,oneof=admin merchant user" json:"role"`
}

// SetRole PUT RouteGroup + UserRoleRoute. Меняет роль юзера.
func (h *UsersHandler) SetRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var params SetRoleParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.svs.SetRole(ctx, id, params.Role)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}
