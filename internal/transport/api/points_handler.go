package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PointsHandler struct {
	svs PointsServicer
}

func NewPointsHandler(svs PointsServicer) *PointsHandler {
	return &PointsHandler{svs: svs}
}

// Index GET RouteGroup + MyPointsRoute. Балансы текущего юзера у всех мерчантов.
func (h *PointsHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balances, err := h.svs.GetUserPoints(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	resp := make([]PointsResponse, len(balances))
	for i := range balances {
		resp[i] = newPointsResponse(&balances[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Show GET RouteGroup + MyMerchantPointsRoute. Баланс текущего юзера у мерчанта :id.
func (h *PointsHandler) Show(c *gin.Context) {
	merchantID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.svs.GetUserPointsWithMerchant(ctx, getUserIDFromContext(c), merchantID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPointsResponse(balance))
}
