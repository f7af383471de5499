package pgrepo

import (
	"errors"
	"testing"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConvertErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrRecordNotFound},
		{name: "unique", err: &pgconn.PgError{Code: uniqueViolationCode}, want: domain.ErrDuplicateKey},
		{name: "foreign key", err: &pgconn.PgError{Code: foreignKeyViolationCode}, want: domain.ErrRecordNotFound},
		{name: "check", err: &pgconn.PgError{Code: checkViolationCode}, want: domain.ErrInvalidArgument},
		{name: "other pg error", err: &pgconn.PgError{Code: "40001"}, want: domain.ErrUnknown},
		{name: "plain error", err: errors.New("boom"), want: domain.ErrUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := convertErr(tc.err, "doing %s", "something")
			assert.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), "[repository/doing something]")
		})
	}

	assert.NoError(t, convertErr(nil, "nothing"))
}

func TestSafeConvertUintToInt64(t *testing.T) {
	v, err := safeConvertUintToInt64(16)
	assert.NoError(t, err)
	assert.Equal(t, int64(16), v)

	_, err = safeConvertUintToInt64(^uint(0))
	assert.Error(t, err)
}
