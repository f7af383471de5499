package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

// memStore хранилище в памяти с транзакциями. Блокировок строк нет, поэтому сериализацию обеспечивает
// только сам сервис.
type memStore struct {
	mu           sync.Mutex
	users        map[int64]domain.User
	merchants    map[int64]domain.Merchant
	balances     map[balanceKey]domain.PointsBalance
	transactions []domain.Transaction
	nextID       int64
	failUpsert   bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[int64]domain.User),
		merchants: make(map[int64]domain.Merchant),
		balances:  make(map[balanceKey]domain.PointsBalance),
	}
}

func (m *memStore) balance(userID, merchantID int64) (domain.PointsBalance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[balanceKey{userID: userID, merchantID: merchantID}]
	return b, ok
}

func (m *memStore) transactionsCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

// memUOW выполняет fn и откатывает изменения, если fn вернула ошибку или ctx отменен.
type memUOW struct {
	store *memStore
}

func (u *memUOW) Register(uow.RepositoryName, uow.RepositoryFactory) error { return nil }

func (u *memUOW) GetRepository(uow.RepositoryName) (uow.Repository, error) {
	return nil, uow.ErrRepositoryNotRegistered
}

func (u *memUOW) Do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	tx := &memTX{journal: &memJournal{store: u.store}}
	if err := fn(ctx, tx); err != nil {
		tx.journal.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.journal.rollback()
		return err //nolint:wrapcheck
	}
	return nil
}

type memTX struct {
	journal *memJournal
}

func (t *memTX) Get(name uow.RepositoryName) (uow.Repository, error) {
	switch repoargs.RepositoryName(name) {
	case repoargs.UserRepoName:
		return memUserRepo{t.journal}, nil
	case repoargs.MerchantRepoName:
		return memMerchantRepo{t.journal}, nil
	case repoargs.PointsBalanceRepoName:
		return memBalanceRepo{t.journal}, nil
	case repoargs.TransactionRepoName:
		return memTransactionRepo{t.journal}, nil
	default:
		return nil, uow.ErrRepositoryNotRegistered
	}
}

// memJournal изменения одной транзакции, которые можно откатить.
type memJournal struct {
	store *memStore
	undo  []func()
}

func (j *memJournal) rollback() {
	j.store.mu.Lock()
	defer j.store.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

var errNotImplemented = errors.New("not implemented")

type memUserRepo struct {
	*memJournal
}

func (r memUserRepo) CreateUser(context.Context, repoargs.CreateUser) (*domain.User, error) {
	return nil, errNotImplemented
}

func (r memUserRepo) FindUserByEmail(context.Context, string) (*domain.User, error) {
	return nil, errNotImplemented
}

func (r memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &u, nil
}

func (r memUserRepo) GetAll(context.Context) ([]domain.User, error) {
	return nil, errNotImplemented
}

func (r memUserRepo) UpdateRole(context.Context, int64, domain.RoleType) (*domain.User, error) {
	return nil, errNotImplemented
}

func (r memUserRepo) UpdateName(context.Context, int64, string) (*domain.User, error) {
	return nil, errNotImplemented
}

func (r memUserRepo) UpdatePassword(context.Context, int64, string) (*domain.User, error) {
	return nil, errNotImplemented
}

type memMerchantRepo struct {
	*memJournal
}

func (r memMerchantRepo) Create(context.Context, repoargs.CreateMerchant) (int64, error) {
	return 0, errNotImplemented
}

func (r memMerchantRepo) FindByID(_ context.Context, id int64) (*domain.Merchant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.merchants[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &m, nil
}

func (r memMerchantRepo) GetAll(context.Context) ([]domain.Merchant, error) {
	return nil, errNotImplemented
}

func (r memMerchantRepo) GetByUserID(context.Context, int64) ([]domain.Merchant, error) {
	return nil, errNotImplemented
}

func (r memMerchantRepo) Update(context.Context, repoargs.UpdateMerchant) error {
	return errNotImplemented
}

func (r memMerchantRepo) SoftDelete(context.Context, int64) error {
	return errNotImplemented
}

type memBalanceRepo struct {
	*memJournal
}

func (r memBalanceRepo) LockPair(context.Context, int64, int64) error {
	return nil
}

func (r memBalanceRepo) FindByPair(_ context.Context, userID, merchantID int64) (*domain.PointsBalance, error) {
	b, ok := r.store.balance(userID, merchantID)
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &b, nil
}

func (r memBalanceRepo) GetForUpdate(ctx context.Context, userID, merchantID int64) (*domain.PointsBalance, error) {
	b, err := r.FindByPair(ctx, userID, merchantID)
	// Даем другим горутинам шанс прочитать тот же баланс.
	runtime.Gosched()
	time.Sleep(time.Millisecond)
	return b, err
}

func (r memBalanceRepo) Upsert(_ context.Context, args repoargs.UpsertBalance) (*domain.PointsBalance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failUpsert {
		return nil, domain.ErrUnknown
	}
	key := balanceKey{userID: args.UserID, merchantID: args.MerchantID}
	prev, existed := r.store.balances[key]
	r.undo = append(r.undo, func() {
		if existed {
			r.store.balances[key] = prev
		} else {
			delete(r.store.balances, key)
		}
	})
	b := domain.PointsBalance{UserID: args.UserID, MerchantID: args.MerchantID, Amount: args.Amount}
	r.store.balances[key] = b
	return &b, nil
}

func (r memBalanceRepo) GetByUserID(context.Context, int64) ([]domain.PointsBalance, error) {
	return nil, errNotImplemented
}

type memTransactionRepo struct {
	*memJournal
}

func (r memTransactionRepo) Create(_ context.Context, args repoargs.CreateTransaction) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextID++
	tx := domain.Transaction{
		ID:              r.store.nextID,
		CreatedAt:       time.Now(),
		Amount:          args.Amount,
		PointsUsed:      args.PointsUsed,
		PointsEarned:    args.PointsEarned,
		FormattedAmount: args.FormattedAmount,
		Message:         args.Message,
		MerchantID:      args.MerchantID,
		UserID:          args.UserID,
	}
	r.store.transactions = append(r.store.transactions, tx)
	id := tx.ID
	r.undo = append(r.undo, func() {
		for i := range r.store.transactions {
			if r.store.transactions[i].ID == id {
				r.store.transactions = append(r.store.transactions[:i], r.store.transactions[i+1:]...)
				return
			}
		}
	})
	return &tx, nil
}

func (r memTransactionRepo) FindByID(context.Context, int64) (*domain.Transaction, error) {
	return nil, errNotImplemented
}

func (r memTransactionRepo) GetAll(context.Context) ([]domain.Transaction, error) {
	return nil, errNotImplemented
}

func (r memTransactionRepo) GetByUserID(context.Context, int64, domain.Page) ([]domain.Transaction, error) {
	return nil, errNotImplemented
}

func (r memTransactionRepo) GetByMerchantID(context.Context, int64, domain.Page) ([]domain.Transaction, error) {
	return nil, errNotImplemented
}

type SettlementConcurrencyTestSuite struct {
	suite.Suite
	store   *memStore
	service *SettlementService
}

func TestSettlementConcurrencySuite(t *testing.T) {
	suite.Run(t, new(SettlementConcurrencyTestSuite))
}

func (s *SettlementConcurrencyTestSuite) SetupTest() {
	s.store = newMemStore()
	s.store.users[1] = domain.User{ID: 1, Email: "user@example.com"}
	s.store.users[2] = domain.User{ID: 2, Email: "other@example.com"}
	s.store.merchants[10] = domain.Merchant{ID: 10, UserID: 3, PointsPercentage: decimal.Zero}
	s.store.merchants[20] = domain.Merchant{ID: 20, UserID: 3, PointsPercentage: decimal.RequireFromString("0.02")}

	logger, _ := test.NewNullLogger()
	s.service = NewSettlementService(&memUOW{store: s.store}, nil, logger)
}

func (s *SettlementConcurrencyTestSuite) TestConcurrentRedemptionOfWholeBalance() {
	const startBalance = domain.Amount(50)
	const callers = 16
	s.store.balances[balanceKey{userID: 1, merchantID: 10}] = domain.PointsBalance{
		UserID: 1, MerchantID: 10, Amount: startBalance,
	}

	var mu sync.Mutex
	var succeeded, rejected int

	var g errgroup.Group
	for range callers {
		g.Go(func() error {
			_, err := s.service.Settle(context.Background(), SettleArgs{
				UserID:     1,
				MerchantID: 10,
				Amount:     startBalance,
				PointsUsed: startBalance,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientPoints):
				rejected++
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(1, succeeded)
	s.Equal(callers-1, rejected)
	b, ok := s.store.balance(1, 10)
	s.Require().True(ok)
	s.Equal(domain.Amount(0), b.Amount)
	s.Equal(1, s.store.transactionsCount())
	s.Zero(s.service.locks.Len())
}

func (s *SettlementConcurrencyTestSuite) TestDifferentPairsDoNotBlockEachOther() {
	// Пара (1, 20) занята, пара (2, 20) должна проводиться без ожидания.
	unlock, err := s.service.locks.Lock(context.Background(), balanceKey{userID: 1, merchantID: 20})
	s.Require().NoError(err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	tx, settleErr := s.service.Settle(ctx, SettleArgs{UserID: 2, MerchantID: 20, Amount: 500})
	s.Require().NoError(settleErr)
	s.Equal(domain.Amount(10), tx.PointsEarned)
}

func (s *SettlementConcurrencyTestSuite) TestRepeatedSettleIsNotIdempotent() {
	args := SettleArgs{UserID: 1, MerchantID: 20, Amount: 500, FormattedAmount: "5,00 kr"}

	first, err := s.service.Settle(context.Background(), args)
	s.Require().NoError(err)
	second, err := s.service.Settle(context.Background(), args)
	s.Require().NoError(err)

	s.NotEqual(first.ID, second.ID)
	s.Equal(2, s.store.transactionsCount())
	b, ok := s.store.balance(1, 20)
	s.Require().True(ok)
	s.Equal(domain.Amount(20), b.Amount)
}

func (s *SettlementConcurrencyTestSuite) TestFailedBalanceWriteRollsBackTransaction() {
	s.store.failUpsert = true

	_, err := s.service.Settle(context.Background(), SettleArgs{UserID: 1, MerchantID: 20, Amount: 500})
	s.Require().ErrorIs(err, domain.ErrStorage)

	s.Equal(0, s.store.transactionsCount())
	_, ok := s.store.balance(1, 20)
	s.False(ok)
}

func (s *SettlementConcurrencyTestSuite) TestOverRedemptionLeavesStateUntouched() {
	s.store.balances[balanceKey{userID: 1, merchantID: 20}] = domain.PointsBalance{
		UserID: 1, MerchantID: 20, Amount: 5,
	}

	_, err := s.service.Settle(context.Background(), SettleArgs{UserID: 1, MerchantID: 20, Amount: 100, PointsUsed: 6})
	s.Require().ErrorIs(err, domain.ErrInvalidArgument)

	s.Equal(0, s.store.transactionsCount())
	b, _ := s.store.balance(1, 20)
	s.Equal(domain.Amount(5), b.Amount)
}
