package pgrepo

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
)

const balanceColumns = `id, created_at, updated_at, user_id, merchant_id, amount`

type PointsBalanceRepository struct {
	db DBTX
}

func NewPointsBalanceRepository(conn DBTX) *PointsBalanceRepository {
	return &PointsBalanceRepository{db: conn}
}

// LockPair берет транзакционную advisory блокировку на пару (userID, merchantID). Блокировка снимается
// при завершении транзакции. Нужна, чтобы сериализовать работу с балансом, даже когда строки баланса еще нет
// и `FOR UPDATE` блокировать нечего. Вне транзакции вызов не имеет смысла.
func (p *PointsBalanceRepository) LockPair(ctx context.Context, userID, merchantID int64) error {
	key := fmt.Sprintf("points_balance:%d:%d", userID, merchantID)
	if _, err := p.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return convertErr(err, "locking balance of user %d with merchant %d", userID, merchantID)
	}
	return nil
}

// FindByPair возвращает баланс пользователя у мерчанта. Если записи нет, возвращает domain.ErrRecordNotFound.
// Запись при этом не создается.
func (p *PointsBalanceRepository) FindByPair(
	ctx context.Context,
	userID, merchantID int64,
) (*domain.PointsBalance, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM points_balances WHERE user_id = $1 AND merchant_id = $2`,
		userID, merchantID,
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, convertErr(err, "finding balance of user %d with merchant %d", userID, merchantID)
	}
	return balance, nil
}

// GetForUpdate то же что FindByPair, но блокирует строку до конца транзакции.
func (p *PointsBalanceRepository) GetForUpdate(
	ctx context.Context,
	userID, merchantID int64,
) (*domain.PointsBalance, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM points_balances WHERE user_id = $1 AND merchant_id = $2 FOR UPDATE`,
		userID, merchantID,
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, convertErr(err, "locking balance of user %d with merchant %d", userID, merchantID)
	}
	return balance, nil
}

// Upsert создает баланс или перезаписывает его значение. Отрицательное значение отклоняется
// с ошибкой domain.ErrInvalidArgument еще до обращения к базе.
func (p *PointsBalanceRepository) Upsert(
	ctx context.Context,
	args repoargs.UpsertBalance,
) (*domain.PointsBalance, error) {
	if args.Amount < 0 {
		return nil, fmt.Errorf("[repository/upserting balance] %w: negative amount %d",
			domain.ErrInvalidArgument, args.Amount)
	}
	row := p.db.QueryRow(ctx,
		`INSERT INTO points_balances (user_id, merchant_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, merchant_id) DO UPDATE SET amount = EXCLUDED.amount, updated_at = now()
		RETURNING `+balanceColumns,
		args.UserID, args.MerchantID, args.Amount.Int64(),
	)
	balance, err := scanBalance(row)
	if err != nil {
		return nil, convertErr(err, "upserting balance of user %d with merchant %d", args.UserID, args.MerchantID)
	}
	return balance, nil
}

// GetByUserID все балансы пользователя.
func (p *PointsBalanceRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.PointsBalance, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+balanceColumns+` FROM points_balances WHERE user_id = $1 ORDER BY id`, userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting balances of user %d", userID)
	}
	balances, collectErr := collectRows(rows, scanBalance)
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting balances of user %d", userID)
	}
	return balances, nil
}

func scanBalance(row pgx.Row) (*domain.PointsBalance, error) {
	var balance domain.PointsBalance
	var amount int64
	if err := row.Scan(
		&balance.ID,
		&balance.CreatedAt,
		&balance.UpdatedAt,
		&balance.UserID,
		&balance.MerchantID,
		&amount,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	balance.Amount = domain.Amount(amount)
	return &balance, nil
}
