package service

import (
	"context"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type UserRepository interface {
	CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id int64, role domain.RoleType) (*domain.User, error)
	UpdateName(ctx context.Context, id int64, name string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) (*domain.User, error)
}

type AddressRepository interface {
	Create(ctx context.Context, address repoargs.SaveAddress) (*domain.Address, error)
	Update(ctx context.Context, id int64, address repoargs.SaveAddress) (*domain.Address, error)
}

// MerchantRepository справочник мерчантов. FindByID используется движком проведения транзакций
// для получения процента начисления баллов.
type MerchantRepository interface {
	Create(ctx context.Context, merchant repoargs.CreateMerchant) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Merchant, error)
	GetAll(ctx context.Context) ([]domain.Merchant, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Merchant, error)
	Update(ctx context.Context, merchant repoargs.UpdateMerchant) error
	SoftDelete(ctx context.Context, id int64) error
}

type PointsBalanceRepository interface {
	LockPair(ctx context.Context, userID, merchantID int64) error
	FindByPair(ctx context.Context, userID, merchantID int64) (*domain.PointsBalance, error)
	GetForUpdate(ctx context.Context, userID, merchantID int64) (*domain.PointsBalance, error)
	Upsert(ctx context.Context, args repoargs.UpsertBalance) (*domain.PointsBalance, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.PointsBalance, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, args repoargs.CreateTransaction) (*domain.Transaction, error)
	FindByID(ctx context.Context, id int64) (*domain.Transaction, error)
	GetAll(ctx context.Context) ([]domain.Transaction, error)
	GetByUserID(ctx context.Context, userID int64, page domain.Page) ([]domain.Transaction, error)
	GetByMerchantID(ctx context.Context, merchantID int64, page domain.Page) ([]domain.Transaction, error)
}

// SettlementRecorder получает результат каждой попытки проведения транзакции.
type SettlementRecorder interface {
	RecordSettlement(result string, earned, used domain.Amount)
}
