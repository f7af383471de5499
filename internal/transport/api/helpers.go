package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const maxPageSize = 100

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidPageSize = errors.New("please send in a valid amount")
	ErrInvalidPage     = errors.New("please send in a valid page")
)

func getUserIDFromContext(c *gin.Context) int64 {
	return middlewares.CurrentUserID(c)
}

// parseID разбирает положительный int64 из строки. Используется для параметров пути и query.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// paramID параметр пути с именем name. В случае ошибки прерывает запрос с кодом 400 и возвращает false.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := parseID(c.Param(name))
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypePublic)
		return 0, false
	}
	return id, true
}

// parsePage собирает domain.Page из query параметров amount (размер страницы) и page (номер с нуля).
// Оба параметра обязательны.
func parsePage(c *gin.Context) (domain.Page, error) {
	size, sizeErr := strconv.ParseUint(c.Query("amount"), 10, 64)
	if sizeErr != nil || size == 0 || size > maxPageSize {
		return domain.Page{}, ErrInvalidPageSize
	}
	number, numberErr := strconv.ParseUint(c.Query("page"), 10, 64)
	if numberErr != nil || number > math.MaxUint {
		return domain.Page{}, ErrInvalidPage
	}
	page := domain.Page{Size: uint(size), Number: uint(number)}
	if _, rangeErr := page.Offset(); rangeErr != nil {
		return domain.Page{}, ErrInvalidPage
	}
	return page, nil
}

// bindJSON биндит тело запроса. Ошибки валидации отдаются с кодом 422, прочие ошибки разбора - 400.
func bindJSON(c *gin.Context, params any) bool {
	bindErr := c.ShouldBindJSON(params)
	if bindErr == nil {
		return true
	}
	var valErrs validator.ValidationErrors
	if errors.As(bindErr, &valErrs) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
		return false
	}
	_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
	return false
}

// statusFromErr код ответа для ошибки сервисного слоя.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrInsufficientPoints):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// abortWithServiceError прерывает запрос с кодом из statusFromErr. Клиенту отдается только причина ошибки,
// исходная ошибка попадает в лог. Ошибки хранилища наружу не раскрываются.
func abortWithServiceError(c *gin.Context, err error) {
	status := statusFromErr(err)

	var reasonErr *domain.ReasonError
	if status == http.StatusInternalServerError || !errors.As(err, &reasonErr) {
		_ = c.AbortWithError(status, err).SetType(gin.ErrorTypePrivate)
		return
	}

	_ = c.AbortWithError(status, errors.New(reasonErr.Reason)).SetType(gin.ErrorTypePublic)
	_ = c.Error(err).SetType(gin.ErrorTypePrivate)
}
