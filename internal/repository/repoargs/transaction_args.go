package repoargs

import "github.com/fsdevblog/groph-points/internal/domain"

type CreateTransaction struct {
	UserID          int64
	MerchantID      int64
	Amount          domain.Amount
	PointsUsed      domain.Amount
	PointsEarned    domain.Amount
	FormattedAmount string
	Message         string
}

type UpsertBalance struct {
	UserID     int64
	MerchantID int64
	Amount     domain.Amount
}
