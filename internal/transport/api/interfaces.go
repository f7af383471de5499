package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	SetRole(ctx context.Context, id int64, role domain.RoleType) (*domain.User, error)
	UpdateName(ctx context.Context, id int64, name string) (*domain.User, error)
	ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error
}

type MerchantServicer interface {
	Create(ctx context.Context, ownerID int64, args service.MerchantArgs) (*domain.Merchant, error)
	Update(ctx context.Context, actor service.Actor, merchantID int64, args service.MerchantArgs) (*domain.Merchant, error)
	Delete(ctx context.Context, actor service.Actor, merchantID int64) error
	FindByID(ctx context.Context, id int64) (*domain.Merchant, error)
	GetAll(ctx context.Context) ([]domain.Merchant, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Merchant, error)
}

type PointsServicer interface {
	GetUserPoints(ctx context.Context, userID int64) ([]domain.PointsBalance, error)
	GetUserPointsWithMerchant(ctx context.Context, userID, merchantID int64) (*domain.PointsBalance, error)
}

type TransactionServicer interface {
	GetAll(ctx context.Context) ([]domain.Transaction, error)
	FindByID(ctx context.Context, id int64) (*domain.Transaction, error)
	GetByUserID(ctx context.Context, userID int64, page domain.Page) ([]domain.Transaction, error)
	GetByMerchantID(ctx context.Context, userID, merchantID int64, page domain.Page) ([]domain.Transaction, error)
}

type SettlementServicer interface {
	Settle(ctx context.Context, args service.SettleArgs) (*domain.Transaction, error)
}
