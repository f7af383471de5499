package domain

import (
	"math"
	"math/bits"
)

type RoleType string

const (
	RoleAdmin    RoleType = "admin"
	RoleMerchant RoleType = "merchant"
	RoleUser     RoleType = "user"
)

// IsValid проверяет, что роль входит в список известных.
func (r RoleType) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMerchant, RoleUser:
		return true
	default:
		return false
	}
}

// DefaultMessage сообщение, которое сохраняется в транзакции вместо пустого.
const DefaultMessage = "No message"

// Page окно выборки для постраничных списков.
type Page struct {
	Size   uint
	Number uint
}

func (p Page) Limit() uint {
	return p.Size
}

// Offset кол-во пропускаемых записей: Size * Number. Нумерация страниц начинается с нуля.
// Если произведение не помещается в int64, возвращается ErrPageOutOfRange.
func (p Page) Offset() (uint, error) {
	hi, lo := bits.Mul(p.Size, p.Number)
	if hi != 0 || uint64(lo) > math.MaxInt64 {
		return 0, ErrPageOutOfRange
	}
	return lo, nil
}

// CachedResponse сохраненный ответ на запрос с заголовком Idempotency-Key.
type CachedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}
