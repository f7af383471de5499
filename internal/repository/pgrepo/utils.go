package pgrepo

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX общий интерфейс пула соединений и транзакции. Повторяет uow.DBTX, чтоб репозитории не зависели от uow.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// safeConvertUintToInt64 безопасно конвертирует uint в int64. В случае выхода значения за рамки диапазона
// возвращает ошибку.
func safeConvertUintToInt64(val uint) (int64, error) {
	if uint64(val) > math.MaxInt64 {
		return 0, fmt.Errorf("value is out of range: %d", val)
	}
	return int64(val), nil
}

// collectRows вычитывает все строки выборки через scan.
func collectRows[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()

	var result = make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return result, nil
}
