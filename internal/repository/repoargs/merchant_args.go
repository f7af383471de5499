package repoargs

import "github.com/shopspring/decimal"

type SaveAddress struct {
	Street  string
	Zip     string
	City    string
	Country string
}

type CreateMerchant struct {
	UserID           int64
	AddressID        int64
	Name             string
	PointsPercentage decimal.Decimal
}

type UpdateMerchant struct {
	ID               int64
	Name             string
	PointsPercentage decimal.Decimal
}
