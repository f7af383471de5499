package api

import (
	"context"
	"net/http"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/gin-gonic/gin"
)

type TransactionsHandler struct {
	svs        TransactionServicer
	settlement SettlementServicer
}

func NewTransactionsHandler(svs TransactionServicer, settlement SettlementServicer) *TransactionsHandler {
	return &TransactionsHandler{svs: svs, settlement: settlement}
}

type CreateTransactionParams struct {
	MerchantID      int64  `binding:"required,gt=0"             json:"merchantId"`
	Amount          *int64 `binding:"required,gte=0"            json:"amount"`
	PointsUsed      int64  `binding:"gte=0"                     json:"pointsUsed"`
	FormattedAmount string `binding:"required,max_bytes=64"     json:"formattedAmount"`
	Message         string `binding:"max_bytes=1024"            json:"message"`
}

// Create POST RouteGroup + TransactionsRoute. Проводит покупку текущего юзера у мерчанта.
func (h *TransactionsHandler) Create(c *gin.Context) {
	var params CreateTransactionParams
	if !bindJSON(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	tx, err := h.settlement.Settle(ctx, service.SettleArgs{
		UserID:          getUserIDFromContext(c),
		MerchantID:      params.MerchantID,
		Amount:          domain.Amount(*params.Amount),
		PointsUsed:      domain.Amount(params.PointsUsed),
		FormattedAmount: params.FormattedAmount,
		Message:         params.Message,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTransactionResponse(tx))
}

// Index GET RouteGroup + TransactionsRoute. Все транзакции, только для админа.
func (h *TransactionsHandler) Index(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	txs, err := h.svs.GetAll(ctx)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionsResponse(txs))
}

// Show GET RouteGroup + TransactionRoute.
func (h *TransactionsHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	tx, err := h.svs.FindByID(ctx, id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionResponse(tx))
}

// Mine GET RouteGroup + MyTransactionsRoute?amount=&page=. Транзакции текущего юзера постранично.
func (h *TransactionsHandler) Mine(c *gin.Context) {
	page, pageErr := parsePage(c)
	if pageErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, pageErr).SetType(gin.ErrorTypePublic)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	txs, err := h.svs.GetByUserID(ctx, getUserIDFromContext(c), page)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionsResponse(txs))
}

// ByMerchant GET RouteGroup + MyMerchantTransactionsRoute?id=&amount=&page=. Транзакции мерчанта, которым
// владеет текущий юзер.
func (h *TransactionsHandler) ByMerchant(c *gin.Context) {
	merchantID, idErr := parseID(c.Query("id"))
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypePublic)
		return
	}
	page, pageErr := parsePage(c)
	if pageErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, pageErr).SetType(gin.ErrorTypePublic)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	txs, err := h.svs.GetByMerchantID(ctx, getUserIDFromContext(c), merchantID, page)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTransactionsResponse(txs))
}
