package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepositoryName string
type Repository any
type RepositoryFactory func(DBTX) Repository

type UnitOfWork struct {
	conn         *pgxpool.Pool
	repositories map[RepositoryName]RepositoryFactory
	txOptions    pgx.TxOptions
}

// NewUnitOfWork создает UnitOfWork. По умолчанию транзакции открываются с уровнем изоляции ReadCommitted,
// изменить его можно через WithIsoLevel.
func NewUnitOfWork(conn *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{
		conn:         conn,
		repositories: make(map[RepositoryName]RepositoryFactory),
		txOptions:    pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
	}
}

// WithIsoLevel устанавливает уровень изоляции транзакций, открываемых через Do.
func (u *UnitOfWork) WithIsoLevel(level pgx.TxIsoLevel) *UnitOfWork {
	u.txOptions.IsoLevel = level
	return u
}

// Register регистрирует фабрику репозитория под именем name. Если имя уже занято, возвращает
// ошибку ErrRepositoryAlreadyRegistered.
func (u *UnitOfWork) Register(name RepositoryName, factory RepositoryFactory) error {
	if _, ok := u.repositories[name]; ok {
		return ErrRepositoryAlreadyRegistered
	}
	u.repositories[name] = factory
	return nil
}

// Do выполняет fn внутри одной транзакции. Если fn вернула ошибку, запаниковала или ctx отменен до коммита,
// транзакция откатывается целиком.
func (u *UnitOfWork) Do(ctx context.Context, fn func(context.Context, TX) error) (err error) {
	tx, txErr := u.conn.BeginTx(ctx, u.txOptions)
	if txErr != nil {
		return errors.Join(ErrBeginTx, txErr)
	}
	defer func() {
		// Rollback выполняем с отдельным контекстом: отмененный ctx не должен мешать откату.
		rollbackErr := tx.Rollback(context.WithoutCancel(ctx))
		if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			err = errors.Join(err, rollbackErr)
		}
	}()

	if transErr := fn(ctx, NewTransaction(tx, u.repositories)); transErr != nil {
		return transErr
	}
	if commitErr := tx.Commit(ctx); commitErr != nil {
		return errors.Join(ErrCommitTx, commitErr)
	}
	return nil
}

// GetRepository возвращает репозиторий, работающий вне транзакции, или ошибку ErrRepositoryNotRegistered.
func (u *UnitOfWork) GetRepository(name RepositoryName) (Repository, error) {
	if repoFactory, ok := u.repositories[name]; ok {
		return repoFactory(u.conn), nil
	}
	return nil, ErrRepositoryNotRegistered
}

// GetRepositoryAs возвращает репозиторий по имени name и приводит его к типу T. Возвращает ошибки
// ErrRepositoryNotRegistered и ErrInvalidRepositoryType.
func GetRepositoryAs[T any](u UOW, name RepositoryName) (T, error) {
	var res T
	repo, err := u.GetRepository(name)
	if err != nil {
		return res, err //nolint:wrapcheck
	}
	r, ok := repo.(T)
	if !ok {
		return res, ErrInvalidRepositoryType
	}
	return r, nil
}
