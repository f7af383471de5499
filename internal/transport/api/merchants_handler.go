package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/fsdevblog/groph-points/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MerchantsHandler struct {
	svs MerchantServicer
}

func NewMerchantsHandler(svs MerchantServicer) *MerchantsHandler {
	return &MerchantsHandler{svs: svs}
}

type AddressParams struct {
	Street  string `binding:"required,max_bytes=255" json:"street"`
	Zip     string `binding:"required,max_bytes=32"  json:"zip"`
	City    string `binding:"required,max_bytes=255" json:"city"`
	Country string `binding:"required,max_bytes=255" json:"country"`
}

type MerchantParams struct {
	Name string `binding:"required,min=1,max=255" json:"name"`
	// PointsPercentage доля от суммы покупки, например 0.02.
	PointsPercentage decimal.Decimal `binding:"gte=0,lte=1" json:"pointsPercentage"`
	Address          AddressParams   `json:"address"`
}

func (p MerchantParams) toArgs() service.MerchantArgs {
	return service.MerchantArgs{
		Name:             p.Name,
		PointsPercentage: p.PointsPercentage,
		Address: repoargs.SaveAddress{
			Street:  p.Address.Street,
			Zip:     p.Address.Zip,
			City:    p.Address.City,
			Country: p.Address.Country,
		},
	}
}

func currentActor(c *gin.Context) service.Actor {
	return service.Actor{ID: getUserIDFromContext(c), Role: middlewares.CurrentUserRole(c)}
}

// Index GET RouteGroup + MerchantsRoute.
func (h *MerchantsHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	merchants, err := h.svs.GetAll(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	resp := make([]*MerchantResponse, len(merchants))
	for i := range merchants {
		resp[i] = newMerchantResponse(&merchants[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Mine GET RouteGroup + MyMerchantsRoute. Мерчанты, которыми владеет текущий юзер.
func (h *MerchantsHandler) Mine(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	merchants, err := h.svs.GetByUserID(ctx, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	resp := make([]*MerchantResponse, len(merchants))
	for i := range merchants {
		resp[i] = newMerchantResponse(&merchants[i])
	}
	c.JSON(http.StatusOK, resp)
}

// Show GET RouteGroup + MerchantRoute.
func (h *MerchantsHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	merchant, err := h.svs.FindByID(ctx, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMerchantResponse(merchant))
}

// Create POST RouteGroup + MerchantsRoute. Владельцем становится текущий юзер.
func (h *MerchantsHandler) Create(c *gin.Context) {
	var params MerchantParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	merchant, err := h.svs.Create(ctx, getUserIDFromContext(c), params.toArgs())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newMerchantResponse(merchant))
}

// Update PUT RouteGroup + MerchantRoute.
func (h *MerchantsHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var params MerchantParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	merchant, err := h.svs.Update(ctx, currentActor(c), id, params.toArgs())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMerchantResponse(merchant))
}

// Delete DELETE RouteGroup + MerchantRoute.
func (h *MerchantsHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.svs.Delete(ctx, currentActor(c), id); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
