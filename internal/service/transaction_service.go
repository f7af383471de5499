package service

import (
	"context"
	"errors"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/pkg/uow"
)

// TransactionService чтение истории транзакций. Транзакции создаются только через SettlementService.
type TransactionService struct {
	transactionRepo TransactionRepository
	merchantRepo    MerchantRepository
}

func NewTransactionService(u uow.UOW) (*TransactionService, error) {
	transactionRepo, err := uow.GetRepositoryAs[TransactionRepository](u, uow.RepositoryName(repoargs.TransactionRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	merchantRepo, err := uow.GetRepositoryAs[MerchantRepository](u, uow.RepositoryName(repoargs.MerchantRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &TransactionService{
		transactionRepo: transactionRepo,
		merchantRepo:    merchantRepo,
	}, nil
}

func (t *TransactionService) GetAll(ctx context.Context) ([]domain.Transaction, error) {
	txs, err := t.transactionRepo.GetAll(ctx)
	if err != nil {
		return nil, domain.NewStorageError("getting transactions", err)
	}
	return txs, nil
}

func (t *TransactionService) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	tx, err := t.transactionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, domain.NewStorageError("getting transaction", err)
	}
	return tx, nil
}

// GetByUserID транзакции пользователя, от новых к старым.
func (t *TransactionService) GetByUserID(
	ctx context.Context,
	userID int64,
	page domain.Page,
) ([]domain.Transaction, error) {
	txs, err := t.transactionRepo.GetByUserID(ctx, userID, page)
	if err != nil {
		return nil, domain.NewStorageError("getting user transactions", err)
	}
	return txs, nil
}

// GetByMerchantID транзакции мерчанта, от новых к старым. Доступно только владельцу мерчанта, иначе
// возвращается domain.ErrNotMerchantOwner.
func (t *TransactionService) GetByMerchantID(
	ctx context.Context,
	userID, merchantID int64,
	page domain.Page,
) ([]domain.Transaction, error) {
	merchant, merchantErr := t.merchantRepo.FindByID(ctx, merchantID)
	if merchantErr != nil {
		if errors.Is(merchantErr, domain.ErrRecordNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, domain.NewStorageError("getting merchant", merchantErr)
	}
	if merchant.UserID != userID {
		return nil, domain.ErrNotMerchantOwner
	}

	txs, err := t.transactionRepo.GetByMerchantID(ctx, merchantID, page)
	if err != nil {
		return nil, domain.NewStorageError("getting merchant transactions", err)
	}
	return txs, nil
}
