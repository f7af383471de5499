package domain

import (
	"fmt"
	"math"
)

const maxAmount = math.MaxInt64

// Amount денежная сумма (или кол-во баллов) в минимальных единицах валюты: центах, эре и т.п.
// Значение никогда не бывает отрицательным, арифметика, уходящая в минус, возвращает ошибку.
type Amount int64

// NewAmount создает Amount. Для отрицательных значений возвращает ошибку вида ErrInvalidArgument.
func NewAmount(v int64) (Amount, error) {
	if v < 0 {
		return 0, NewReasonError(ErrInvalidArgument, fmt.Sprintf("amount must not be negative, got %d", v))
	}
	return Amount(v), nil
}

func (a Amount) Int64() int64 {
	return int64(a)
}

// Sub возвращает a - b. Если b > a, возвращается ErrAmountUnderflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrAmountUnderflow
	}
	return a - b, nil
}

// Add возвращает a + b. При переполнении int64 возвращается ErrAmountOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if a > maxAmount-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}
