package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
)

const addressColumns = `id, created_at, updated_at, street, zip, city, country`

type AddressRepository struct {
	db DBTX
}

func NewAddressRepository(conn DBTX) *AddressRepository {
	return &AddressRepository{db: conn}
}

func (a *AddressRepository) Create(ctx context.Context, address repoargs.SaveAddress) (*domain.Address, error) {
	row := a.db.QueryRow(ctx,
		`INSERT INTO addresses (street, zip, city, country) VALUES ($1, $2, $3, $4) RETURNING `+addressColumns,
		address.Street, address.Zip, address.City, address.Country,
	)
	dbAddress, err := scanAddress(row)
	if err != nil {
		return nil, convertErr(err, "creating address")
	}
	return dbAddress, nil
}

func (a *AddressRepository) Update(
	ctx context.Context,
	id int64,
	address repoargs.SaveAddress,
) (*domain.Address, error) {
	row := a.db.QueryRow(ctx,
		`UPDATE addresses SET street = $2, zip = $3, city = $4, country = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+addressColumns,
		id, address.Street, address.Zip, address.City, address.Country,
	)
	dbAddress, err := scanAddress(row)
	if err != nil {
		return nil, convertErr(err, "updating address %d", id)
	}
	return dbAddress, nil
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var address domain.Address
	if err := row.Scan(
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
	return &address, nil
}
