package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/groph-points/internal/config"
	"github.com/fsdevblog/groph-points/internal/metrics"
	"github.com/fsdevblog/groph-points/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-points/internal/repository/redisrepo"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/fsdevblog/groph-points/internal/transport/api"
	"github.com/fsdevblog/groph-points/internal/transport/api/middlewares"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

const (
	metricsNamespace  = "points"
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	seedAdminTimeout  = 5 * time.Second
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.WithFields(logrus.Fields{
		"address":    a.Config.RunAddress,
		"migrations": a.Config.MigrationsDir,
		"redis":      a.Config.RedisAddr != "",
		"settleRate": a.Config.SettleRatePerMinute,
	}).Info("starting app")

	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %w", connErr)
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	appMetrics := metrics.New(metricsNamespace)
	jwtSecret := []byte(a.Config.JWTSecret)

	services, sErr := service.Factory(unitOfWork, jwtSecret, appMetrics, a.Logger)
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	if seedErr := a.seedAdmin(notifyCtx, services.UserService); seedErr != nil {
		return fmt.Errorf("app run: %w", seedErr)
	}

	var idempotencyStore middlewares.IdempotencyStore
	if a.Config.RedisAddr != "" {
		redisClient, redisErr := redisrepo.Connect(notifyCtx, a.Config.RedisAddr)
		if redisErr != nil {
			return fmt.Errorf("app run: %w", redisErr)
		}
		defer func() { _ = redisClient.Close() }()
		idempotencyStore = redisrepo.NewIdempotencyRepository(redisClient)
	}

	router, routerErr := api.New(api.RouterArgs{
		Logger:              a.Logger,
		Metrics:             appMetrics,
		IdempotencyStore:    idempotencyStore,
		SettleRatePerMinute: a.Config.SettleRatePerMinute,
		UserService:         services.UserService,
		MerchantService:     services.MerchantService,
		PointsService:       services.PointsService,
		TransactionService:  services.TransactionService,
		SettlementService:   services.SettlementService,
		JWTSecretKey:        jwtSecret,
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %w", routerErr)
	}

	server := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gCtx := errgroup.WithContext(notifyCtx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}
	return notifyCtx.Err() //nolint:wrapcheck
}

// seedAdmin создает админа из конфига, если email и пароль заданы.
func (a *App) seedAdmin(ctx context.Context, users *service.UserService) error {
	if a.Config.AdminEmail == "" || a.Config.AdminPassword == "" {
		return nil
	}
	seedCtx, cancel := context.WithTimeout(ctx, seedAdminTimeout)
	defer cancel()

	admin, err := users.EnsureAdmin(seedCtx, a.Config.AdminEmail, a.Config.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	a.Logger.WithField("userID", admin.ID).Info("admin account ensured")
	return nil
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := []struct {
		name    repoargs.RepositoryName
		factory uow.RepositoryFactory
	}{
		{repoargs.UserRepoName, func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewUserRepository(dbtx) }},
		{repoargs.AddressRepoName, func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewAddressRepository(dbtx) }},
		{repoargs.MerchantRepoName, func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewMerchantRepository(dbtx) }},
		{
			repoargs.PointsBalanceRepoName,
			func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewPointsBalanceRepository(dbtx) },
		},
		{
			repoargs.TransactionRepoName,
			func(dbtx uow.DBTX) uow.Repository { return pgrepo.NewTransactionRepository(dbtx) },
		},
	}
	for _, f := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(f.name), f.factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
