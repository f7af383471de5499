package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Email     string
	Name      string
	Password  string
	Role      RoleType
}

type Address struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Street    string
	Zip       string
	City      string
	Country   string
}

type Merchant struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    int64
	Name      string
	// PointsPercentage доля суммы покупки, начисляемая баллами. Например, 0.02 - два процента.
	PointsPercentage decimal.Decimal
	Address          *Address
}

// PointsEarned вычисляет кол-во баллов, начисляемых за покупку на сумму net (уже за вычетом списанных баллов).
// Дробная часть всегда отбрасывается.
func (m *Merchant) PointsEarned(net Amount) (Amount, error) {
	if m.PointsPercentage.IsNegative() {
		return 0, NewReasonError(ErrInvalidArgument, "merchant points percentage is negative")
	}
	earned := decimal.NewFromInt(net.Int64()).Mul(m.PointsPercentage).Floor()
	if earned.GreaterThan(decimal.NewFromInt(maxAmount)) {
		return 0, ErrAmountOverflow
	}
	return Amount(earned.IntPart()), nil
}

// PointsBalance текущий баланс баллов пользователя у конкретного мерчанта. Пара (UserID, MerchantID) уникальна.
type PointsBalance struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     int64
	MerchantID int64
	Amount     Amount
}

// Transaction неизменяемая запись о проведенной покупке.
type Transaction struct {
	ID              int64
	CreatedAt       time.Time
	Amount          Amount
	PointsUsed      Amount
	PointsEarned    Amount
	FormattedAmount string
	Message         string
	MerchantID      int64
	UserID          int64

	// Merchant и User заполняются только при проведении транзакции, списки их не содержат.
	Merchant *Merchant
	User     *User
}
