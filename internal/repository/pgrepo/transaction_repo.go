package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, created_at, amount, points_used, points_earned, formatted_amount, message,
	merchant_id, user_id`

type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(conn DBTX) *TransactionRepository {
	return &TransactionRepository{db: conn}
}

// Create добавляет запись о транзакции. id и created_at назначает база.
func (t *TransactionRepository) Create(
	ctx context.Context,
	args repoargs.CreateTransaction,
) (*domain.Transaction, error) {
	row := t.db.QueryRow(ctx,
		`INSERT INTO transactions
			(amount, points_used, points_earned, formatted_amount, message, merchant_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+transactionColumns,
		args.Amount.Int64(),
		args.PointsUsed.Int64(),
		args.PointsEarned.Int64(),
		args.FormattedAmount,
		args.Message,
		args.MerchantID,
		args.UserID,
	)
	tx, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating transaction for user %d", args.UserID)
	}
	return tx, nil
}

func (t *TransactionRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := t.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "finding transaction by id %d", id)
	}
	return tx, nil
}

func (t *TransactionRepository) GetAll(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := t.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY id`)
	if err != nil {
		return nil, convertErr(err, "getting transactions")
	}
	txs, collectErr := collectRows(rows, scanTransaction)
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting transactions")
	}
	return txs, nil
}

// GetByUserID транзакции пользователя, от новых к старым.
func (t *TransactionRepository) GetByUserID(
	ctx context.Context,
	userID int64,
	page domain.Page,
) ([]domain.Transaction, error) {
	return t.getPaged(ctx, "user_id", userID, page)
}

// GetByMerchantID транзакции мерчанта, от новых к старым. Проверка владельца мерчанта на стороне сервиса.
func (t *TransactionRepository) GetByMerchantID(
	ctx context.Context,
	merchantID int64,
	page domain.Page,
) ([]domain.Transaction, error) {
	return t.getPaged(ctx, "merchant_id", merchantID, page)
}

// getPaged column подставляется в запрос как есть, поэтому передавать сюда можно только константы.
func (t *TransactionRepository) getPaged(
	ctx context.Context,
	column string,
	id int64,
	page domain.Page,
) ([]domain.Transaction, error) {
	limit, limitErr := safeConvertUintToInt64(page.Limit())
	if limitErr != nil {
		return nil, convertErr(limitErr, "getting transactions by %s %d", column, id)
	}
	rawOffset, rangeErr := page.Offset()
	if rangeErr != nil {
		return nil, rangeErr //nolint:wrapcheck
	}
	offset, offsetErr := safeConvertUintToInt64(rawOffset)
	if offsetErr != nil {
		return nil, convertErr(offsetErr, "getting transactions by %s %d", column, id)
	}

	rows, err := t.db.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+column+` = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`,
		id, limit, offset,
	)
	if err != nil {
		return nil, convertErr(err, "getting transactions by %s %d", column, id)
	}
	txs, collectErr := collectRows(rows, scanTransaction)
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting transactions by %s %d", column, id)
	}
	return txs, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amount, pointsUsed, pointsEarned int64
	if err := row.Scan(
		&tx.ID,
		&tx.CreatedAt,
		&amount,
		&pointsUsed,
		&pointsEarned,
		&tx.FormattedAmount,
		&tx.Message,
		&tx.MerchantID,
		&tx.UserID,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	tx.Amount = domain.Amount(amount)
	tx.PointsUsed = domain.Amount(pointsUsed)
	tx.PointsEarned = domain.Amount(pointsEarned)
	return &tx, nil
}
