package pgrepo

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// merchantSelect выбирает мерчанта вместе с адресом. Удаленные (deleted_at IS NOT NULL) мерчанты не попадают
// в выборку.
const merchantSelect = `SELECT m.id, m.created_at, m.updated_at, m.user_id, m.name, m.points_percentage::text,
	a.id, a.created_at, a.updated_at, a.street, a.zip, a.city, a.country
	FROM merchants m
	JOIN addresses a ON a.id = m.address_id
	WHERE m.deleted_at IS NULL`

type MerchantRepository struct {
	db DBTX
}

func NewMerchantRepository(conn DBTX) *MerchantRepository {
	return &MerchantRepository{db: conn}
}

func (m *MerchantRepository) Create(ctx context.Context, merchant repoargs.CreateMerchant) (int64, error) {
	var id int64
	err := m.db.QueryRow(ctx,
		`INSERT INTO merchants (user_id, address_id, name, points_percentage)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING id`,
		merchant.UserID, merchant.AddressID, merchant.Name, merchant.PointsPercentage.String(),
	).Scan(&id)
	if err != nil {
		return 0, convertErr(err, "creating merchant")
	}
	return id, nil
}

// FindByID ищет мерчанта по id. Возвращает domain.ErrRecordNotFound, если мерчанта нет или он удален.
func (m *MerchantRepository) FindByID(ctx context.Context, id int64) (*domain.Merchant, error) {
	row := m.db.QueryRow(ctx, merchantSelect+` AND m.id = $1`, id)
	merchant, err := scanMerchant(row)
	if err != nil {
		return nil, convertErr(err, "finding merchant by id %d", id)
	}
	return merchant, nil
}

func (m *MerchantRepository) GetAll(ctx context.Context) ([]domain.Merchant, error) {
	rows, err := m.db.Query(ctx, merchantSelect+` ORDER BY m.id`)
	if err != nil {
		return nil, convertErr(err, "getting merchants")
	}
	merchants, collectErr := collectRows(rows, scanMerchant)
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting merchants")
	}
	return merchants, nil
}

func (m *MerchantRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Merchant, error) {
	rows, err := m.db.Query(ctx, merchantSelect+` AND m.user_id = $1 ORDER BY m.id`, userID)
	if err != nil {
		return nil, convertErr(err, "getting merchants by userID %d", userID)
	}
	merchants, collectErr := collectRows(rows, scanMerchant)
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting merchants by userID %d", userID)
	}
	return merchants, nil
}

func (m *MerchantRepository) Update(ctx context.Context, merchant repoargs.UpdateMerchant) error {
	tag, err := m.db.Exec(ctx,
		`UPDATE merchants SET name = $2, points_percentage = $3::numeric, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		merchant.ID, merchant.Name, merchant.PointsPercentage.String(),
	)
	if err != nil {
		return convertErr(err, "updating merchant %d", merchant.ID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "updating merchant %d", merchant.ID)
	}
	return nil
}

// SoftDelete помечает мерчанта удаленным. История транзакций и балансы остаются нетронутыми.
func (m *MerchantRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := m.db.Exec(ctx,
		`UPDATE merchants SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return convertErr(err, "deleting merchant %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "deleting merchant %d", id)
	}
	return nil
}

func scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	var merchant domain.Merchant
	var address domain.Address
	var percentage string
	if err := row.Scan(
		&merchant.ID,
		&merchant.CreatedAt,
		&merchant.UpdatedAt,
		&merchant.UserID,
		&merchant.Name,
		&percentage,
		&address.ID,
		&address.CreatedAt,
		&address.UpdatedAt,
		&address.Street,
		&address.Zip,
		&address.City,
		&address.Country,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	pct, parseErr := decimal.NewFromString(percentage)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing points percentage `%s`: %w", percentage, parseErr)
	}
	merchant.PointsPercentage = pct
	merchant.Address = &address
	return &merchant, nil
}
