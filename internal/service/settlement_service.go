package service

import (
	"context"
	"errors"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/metrics"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/pkg/keylock"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/sirupsen/logrus"
)

// balanceKey ключ сериализации работы с балансом.
type balanceKey struct {
	userID     int64
	merchantID int64
}

type SettlementService struct {
	uow      uow.UOW
	locks    *keylock.Locker[balanceKey]
	recorder SettlementRecorder
	log      *logrus.Entry
}

// NewSettlementService recorder может быть nil.
func NewSettlementService(u uow.UOW, recorder SettlementRecorder, l *logrus.Logger) *SettlementService {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &SettlementService{
		uow:      u,
		locks:    keylock.New[balanceKey](),
		recorder: recorder,
		log:      l.WithField("component", "settlement"),
	}
}

type SettleArgs struct {
	UserID          int64
	MerchantID      int64
	Amount          domain.Amount
	PointsUsed      domain.Amount
	FormattedAmount string
	Message         string
}

// settlementRepos репозитории, привязанные к одной транзакции.
type settlementRepos struct {
	users        UserRepository
	merchants    MerchantRepository
	balances     PointsBalanceRepository
	transactions TransactionRepository
}

// Settle проводит покупку: проверяет списание баллов, начисляет новые баллы, сохраняет транзакцию и обновляет
// (или создает) баланс пары пользователь/мерчант.
//
// Все операции над балансом одной пары выполняются строго последовательно: сначала берется блокировка
// внутри процесса, затем внутри транзакции БД advisory блокировка пары и блокировка строки баланса.
// Запись транзакции и баланса происходит в одной транзакции БД, любая ошибка откатывает обе.
//
// Ошибки: domain.ErrNotFound (мерчант не найден), domain.ErrInvalidState (списание без баланса),
// domain.ErrInvalidArgument (недостаточно баллов, некорректные суммы), domain.ErrStorage.
func (s *SettlementService) Settle(ctx context.Context, args SettleArgs) (*domain.Transaction, error) {
	tx, err := s.settle(ctx, args)

	result := metrics.ResultFromErr(err)
	if s.recorder != nil {
		if tx != nil {
			s.recorder.RecordSettlement(result, tx.PointsEarned, tx.PointsUsed)
		} else {
			s.recorder.RecordSettlement(result, 0, 0)
		}
	}

	entry := s.log.WithFields(logrus.Fields{
		"userID":     args.UserID,
		"merchantID": args.MerchantID,
		"amount":     args.Amount,
		"pointsUsed": args.PointsUsed,
		"result":     result,
	})
	if err != nil {
		entry.WithError(err).Warn("settlement rejected")
		return nil, err
	}
	entry.WithFields(logrus.Fields{
		"transactionID": tx.ID,
		"pointsEarned":  tx.PointsEarned,
	}).Info("transaction settled")
	return tx, nil
}

func (s *SettlementService) settle(ctx context.Context, args SettleArgs) (*domain.Transaction, error) {
	if args.Amount < 0 || args.PointsUsed < 0 {
		return nil, domain.NewReasonError(domain.ErrInvalidArgument, "amount and points used must not be negative")
	}

	message := args.Message
	if message == "" {
		message = domain.DefaultMessage
	}

	unlock, lockErr := s.locks.Lock(ctx, balanceKey{userID: args.UserID, merchantID: args.MerchantID})
	if lockErr != nil {
		return nil, domain.NewStorageError("waiting for balance lock", lockErr)
	}
	defer unlock()

	var settled *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repos, reposErr := getSettlementRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		merchant, merchantErr := repos.merchants.FindByID(c, args.MerchantID)
		if merchantErr != nil {
			if errors.Is(merchantErr, domain.ErrRecordNotFound) {
				return domain.ErrMerchantNotFound
			}
			return domain.NewStorageError("resolving merchant", merchantErr)
		}

		if err := repos.balances.LockPair(c, args.UserID, args.MerchantID); err != nil {
			return domain.NewStorageError("locking balance", err)
		}

		before, balanceErr := currentBalance(c, repos.balances, args)
		if balanceErr != nil {
			return balanceErr
		}

		net, netErr := args.Amount.Sub(args.PointsUsed)
		if netErr != nil {
			return netErr //nolint:wrapcheck
		}
		earned, earnedErr := merchant.PointsEarned(net)
		if earnedErr != nil {
			return earnedErr //nolint:wrapcheck
		}

		// before >= PointsUsed проверено в currentBalance.
		after, afterErr := (before - args.PointsUsed).Add(earned)
		if afterErr != nil {
			return afterErr //nolint:wrapcheck
		}

		created, createErr := repos.transactions.Create(c, repoargs.CreateTransaction{
			UserID:          args.UserID,
			MerchantID:      args.MerchantID,
			Amount:          args.Amount,
			PointsUsed:      args.PointsUsed,
			PointsEarned:    earned,
			FormattedAmount: args.FormattedAmount,
			Message:         message,
		})
		if createErr != nil {
			return domain.NewStorageError("saving transaction", createErr)
		}

		if _, err := repos.balances.Upsert(c, repoargs.UpsertBalance{
			UserID:     args.UserID,
			MerchantID: args.MerchantID,
			Amount:     after,
		}); err != nil {
			return domain.NewStorageError("saving balance", err)
		}

		user, userErr := repos.users.FindByID(c, args.UserID)
		if userErr != nil {
			return domain.NewStorageError("loading user", userErr)
		}

		created.Merchant = merchant
		created.User = user
		settled = created
		return nil
	})

	if txErr != nil {
		return nil, domain.NewStorageError("settling transaction", txErr)
	}
	return settled, nil
}

// currentBalance возвращает баланс пары, заблокировав строку до конца транзакции, и проверяет, что списание
// баллов возможно. Отсутствие строки баланса означает нулевой баланс.
func currentBalance(ctx context.Context, repo PointsBalanceRepository, args SettleArgs) (domain.Amount, error) {
	balance, err := repo.GetForUpdate(ctx, args.UserID, args.MerchantID)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return 0, domain.NewStorageError("reading balance", err)
	}

	if balance == nil {
		if args.PointsUsed > 0 {
			return 0, domain.ErrNoPointsOnRecord
		}
		return 0, nil
	}

	if args.PointsUsed > balance.Amount {
		return 0, domain.ErrInsufficientPoints
	}
	return balance.Amount, nil
}

func getSettlementRepos(tx uow.TX) (*settlementRepos, error) {
	users, err := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if err != nil {
		return nil, domain.NewStorageError("getting user repository", err)
	}
	merchants, err := uow.GetAs[MerchantRepository](tx, uow.RepositoryName(repoargs.MerchantRepoName))
	if err != nil {
		return nil, domain.NewStorageError("getting merchant repository", err)
	}
	balances, err := uow.GetAs[PointsBalanceRepository](tx, uow.RepositoryName(repoargs.PointsBalanceRepoName))
	if err != nil {
		return nil, domain.NewStorageError("getting balance repository", err)
	}
	transactions, err := uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
	if err != nil {
		return nil, domain.NewStorageError("getting transaction repository", err)
	}
	return &settlementRepos{
		users:        users,
		merchants:    merchants,
		balances:     balances,
		transactions: transactions,
	}, nil
}
