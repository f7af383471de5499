package api

import (
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/shopspring/decimal"
)

type UserResponse struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      domain.RoleType `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func newUserResponse(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type AddressResponse struct {
	ID      int64  `json:"id"`
	Street  string `json:"street"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type MerchantResponse struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"userId"`
	Name             string           `json:"name"`
	PointsPercentage decimal.Decimal  `json:"pointsPercentage"`
	Address          *AddressResponse `json:"address,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func newMerchantResponse(m *domain.Merchant) *MerchantResponse {
	if m == nil {
		return nil
	}
	resp := &MerchantResponse{
		ID:               m.ID,
		UserID:           m.UserID,
		Name:             m.Name,
		PointsPercentage: m.PointsPercentage,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Address != nil {
		resp.Address = &AddressResponse{
			ID:      m.Address.ID,
			Street:  m.Address.Street,
			Zip:     m.Address.Zip,
			City:    m.Address.City,
			Country: m.Address.Country,
		}
	}
	return resp
}

type PointsResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	MerchantID int64     `json:"merchantId"`
	Amount     int64     `json:"amount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func newPointsResponse(b *domain.PointsBalance) PointsResponse {
	return PointsResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		MerchantID: b.MerchantID,
		Amount:     b.Amount.Int64(),
		UpdatedAt:  b.UpdatedAt,
	}
}

type TransactionResponse struct {
	ID              int64             `json:"id"`
	Amount          int64             `json:"amount"`
	PointsUsed      int64             `json:"pointsUsed"`
	PointsEarned    int64             `json:"pointsEarned"`
	FormattedAmount string            `json:"formattedAmount"`
	Message         string            `json:"message"`
	MerchantID      int64             `json:"merchantId"`
	UserID          int64             `json:"userId"`
	Merchant        *MerchantResponse `json:"merchant,omitempty"`
	User            *UserResponse     `json:"user,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

func newTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		Amount:          t.Amount.Int64(),
		PointsUsed:      t.PointsUsed.Int64(),
		PointsEarned:    t.PointsEarned.Int64(),
		FormattedAmount: t.FormattedAmount,
		Message:         t.Message,
		MerchantID:      t.MerchantID,
		UserID:          t.UserID,
		Merchant:        newMerchantResponse(t.Merchant),
		User:            newUserResponse(t.User),
		CreatedAt:       t.CreatedAt,
	}
}

func newTransactionsResponse(txs []domain.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, len(txs))
	for i := range txs {
		resp[i] = newTransactionResponse(&txs[i])
	}
	return resp
}
