package metrics

import (
	"errors"

	"github.com/fsdevblog/groph-points/internal/domain"
)

// Значения метки result для settlements_total.
const (
	ResultOK              = "ok"
	ResultNotFound        = "not_found"
	ResultInvalidArgument = "invalid_argument"
	ResultInvalidState    = "invalid_state"
	ResultForbidden       = "forbidden"
	ResultStorage         = "storage"
)

// ResultFromErr возвращает значение метки result по ошибке сервиса.
func ResultFromErr(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return ResultInvalidArgument
	case errors.Is(err, domain.ErrInvalidState):
		return ResultInvalidState
	case errors.Is(err, domain.ErrForbidden):
		return ResultForbidden
	default:
		return ResultStorage
	}
}
