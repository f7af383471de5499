// Package psswd хеширование паролей через bcrypt.
package psswd

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes bcrypt учитывает только первые 72 байта пароля, более длинные пароли отклоняются.
const MaxPasswordBytes = 72

const DefaultCost = bcrypt.DefaultCost

var ErrPasswordTooLong = errors.New("password is too long")

type Hasher struct {
	cost int
}

// New создает Hasher. Если cost вне допустимого для bcrypt диапазона, используется DefaultCost.
func New(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return Hasher{cost: cost}
}

func (h Hasher) HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	cost := h.cost
	if cost == 0 {
		cost = DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %s", err.Error())
	}
	return string(bytes), nil
}

func (h Hasher) ComparePassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
