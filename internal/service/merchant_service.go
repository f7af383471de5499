package service

import (
	"context"
	"errors"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/shopspring/decimal"
)

type MerchantService struct {
	uow          uow.UOW
	merchantRepo MerchantRepository
}

func NewMerchantService(u uow.UOW) (*MerchantService, error) {
	merchantRepo, err := uow.GetRepositoryAs[MerchantRepository](u, uow.RepositoryName(repoargs.MerchantRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &MerchantService{
		uow:          u,
		merchantRepo: merchantRepo,
	}, nil
}

type MerchantArgs struct {
	Name             string
	PointsPercentage decimal.Decimal
	Address          repoargs.SaveAddress
}

// Actor пользователь, выполняющий действие.
type Actor struct {
	ID   int64
	Role domain.RoleType
}

// canManage владелец мерчанта или админ.
func (a Actor) canManage(m *domain.Merchant) bool {
	return a.Role == domain.RoleAdmin || m.UserID == a.ID
}

// Create создает мерчанта вместе с адресом. Владельцем становится ownerID.
func (m *MerchantService) Create(ctx context.Context, ownerID int64, args MerchantArgs) (*domain.Merchant, error) {
	if args.PointsPercentage.IsNegative() {
		return nil, domain.NewReasonError(domain.ErrInvalidArgument, "points percentage must not be negative")
	}

	var merchant *domain.Merchant
	txErr := m.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		addressRepo, merchantRepo, reposErr := getMerchantRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		address, addressErr := addressRepo.Create(c, args.Address)
		if addressErr != nil {
			return addressErr //nolint:wrapcheck
		}
		id, createErr := merchantRepo.Create(c, repoargs.CreateMerchant{
			UserID:           ownerID,
			AddressID:        address.ID,
			Name:             args.Name,
			PointsPercentage: args.PointsPercentage,
		})
		if createErr != nil {
			// FK на users: владельца не существует.
			if errors.Is(createErr, domain.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return createErr //nolint:wrapcheck
		}

		var findErr error
		merchant, findErr = merchantRepo.FindByID(c, id)
		return findErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, domain.NewStorageError("creating merchant", txErr)
	}
	return merchant, nil
}

// Update обновляет мерчанта и его адрес. Доступно владельцу и админу.
func (m *MerchantService) Update(
	ctx context.Context,
	actor Actor,
	merchantID int64,
	args MerchantArgs,
) (*domain.Merchant, error) {
	if args.PointsPercentage.IsNegative() {
		return nil, domain.NewReasonError(domain.ErrInvalidArgument, "points percentage must not be negative")
	}

	var merchant *domain.Merchant
	txErr := m.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		addressRepo, merchantRepo, reposErr := getMerchantRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		current, err := findManagedMerchant(c, merchantRepo, actor, merchantID)
		if err != nil {
			return err
		}

		if updErr := merchantRepo.Update(c, repoargs.UpdateMerchant{
			ID:               merchantID,
			Name:             args.Name,
			PointsPercentage: args.PointsPercentage,
		}); updErr != nil {
			return updErr //nolint:wrapcheck
		}
		if _, addrErr := addressRepo.Update(c, current.Address.ID, args.Address); addrErr != nil {
			return addrErr //nolint:wrapcheck
		}

		var findErr error
		merchant, findErr = merchantRepo.FindByID(c, merchantID)
		return findErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, domain.NewStorageError("updating merchant", txErr)
	}
	return merchant, nil
}

// Delete помечает мерчанта удаленным. Доступно владельцу и админу.
func (m *MerchantService) Delete(ctx context.Context, actor Actor, merchantID int64) error {
	if _, err := findManagedMerchant(ctx, m.merchantRepo, actor, merchantID); err != nil {
		return err
	}
	if err := m.merchantRepo.SoftDelete(ctx, merchantID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.ErrMerchantNotFound
		}
		return domain.NewStorageError("deleting merchant", err)
	}
	return nil
}

func (m *MerchantService) FindByID(ctx context.Context, id int64) (*domain.Merchant, error) {
	merchant, err := m.merchantRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, domain.NewStorageError("getting merchant", err)
	}
	return merchant, nil
}

func (m *MerchantService) GetAll(ctx context.Context) ([]domain.Merchant, error) {
	merchants, err := m.merchantRepo.GetAll(ctx)
	if err != nil {
		return nil, domain.NewStorageError("getting merchants", err)
	}
	return merchants, nil
}

// GetByUserID мерчанты, которыми владеет пользователь.
func (m *MerchantService) GetByUserID(ctx context.Context, userID int64) ([]domain.Merchant, error) {
	merchants, err := m.merchantRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewStorageError("getting user merchants", err)
	}
	return merchants, nil
}

func findManagedMerchant(
	ctx context.Context,
	repo MerchantRepository,
	actor Actor,
	merchantID int64,
) (*domain.Merchant, error) {
	merchant, err := repo.FindByID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrMerchantNotFound
		}
		return nil, domain.NewStorageError("getting merchant", err)
	}
	if !actor.canManage(merchant) {
		return nil, domain.ErrNotMerchantOwner
	}
	return merchant, nil
}

func getMerchantRepos(tx uow.TX) (AddressRepository, MerchantRepository, error) {
	addressRepo, err := uow.GetAs[AddressRepository](tx, uow.RepositoryName(repoargs.AddressRepoName))
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}
	merchantRepo, err := uow.GetAs[MerchantRepository](tx, uow.RepositoryName(repoargs.MerchantRepoName))
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}
	return addressRepo, merchantRepo, nil
}
