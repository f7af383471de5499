package service

import (
	"fmt"

	"github.com/fsdevblog/groph-points/internal/service/psswd"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	UserService        *UserService
	MerchantService    *MerchantService
	PointsService      *PointsService
	TransactionService *TransactionService
	SettlementService  *SettlementService
}

func Factory(
	unitOfWork uow.UOW,
	jwtSecret []byte,
	recorder SettlementRecorder,
	l *logrus.Logger,
) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork, jwtSecret, psswd.New(psswd.DefaultCost))
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	merchantService, merchantServiceErr := NewMerchantService(unitOfWork)
	if merchantServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", merchantServiceErr.Error())
	}

	pointsService, pointsServiceErr := NewPointsService(unitOfWork)
	if pointsServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", pointsServiceErr.Error())
	}

	transactionService, transactionServiceErr := NewTransactionService(unitOfWork)
	if transactionServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", transactionServiceErr.Error())
	}

	return &AppServices{
		UserService:        userService,
		MerchantService:    merchantService,
		PointsService:      pointsService,
		TransactionService: transactionService,
		SettlementService:  NewSettlementService(unitOfWork, recorder, l),
	}, nil
}
