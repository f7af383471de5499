package service

import (
	"context"
	"errors"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/pkg/uow"
)

type PointsService struct {
	balanceRepo PointsBalanceRepository
}

func NewPointsService(u uow.UOW) (*PointsService, error) {
	rName := uow.RepositoryName(repoargs.PointsBalanceRepoName)
	balanceRepo, err := uow.GetRepositoryAs[PointsBalanceRepository](u, rName)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &PointsService{balanceRepo: balanceRepo}, nil
}

// GetUserPoints все балансы пользователя.
func (p *PointsService) GetUserPoints(ctx context.Context, userID int64) ([]domain.PointsBalance, error) {
	balances, err := p.balanceRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewStorageError("getting user points", err)
	}
	return balances, nil
}

// GetUserPointsWithMerchant баланс пользователя у мерчанта. Если пользователь еще не совершал покупок у мерчанта,
// возвращает domain.ErrBalanceNotFound.
func (p *PointsService) GetUserPointsWithMerchant(
	ctx context.Context,
	userID, merchantID int64,
) (*domain.PointsBalance, error) {
	balance, err := p.balanceRepo.FindByPair(ctx, userID, merchantID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, domain.NewStorageError("getting user points with merchant", err)
	}
	return balance, nil
}
