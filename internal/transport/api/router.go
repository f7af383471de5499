package api

import (
	"fmt"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/metrics"
	"github.com/fsdevblog/groph-points/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup                  = "/api"
	RegisterRoute               = "/register"
	LoginRoute                  = "/login"
	MeRoute                     = "/me"
	MyPasswordRoute             = "/me/password"
	MyPointsRoute               = "/me/points"
	MyMerchantPointsRoute       = "/me/points/:id"
	MyMerchantsRoute            = "/me/merchants"
	MyMerchantTransactionsRoute = "/me/merchants/transactions"
	MyTransactionsRoute         = "/me/transactions"
	UsersRoute                  = "/users"
	UserRoute                   = "/users/:id"
	UserRoleRoute               = "/users/:id/role"
	MerchantsRoute              = "/merchants"
	MerchantRoute               = "/merchants/:id"
	TransactionsRoute           = "/transactions"
	TransactionRoute            = "/transactions/:id"

	MetricsRoute = "/metrics"
)

type RouterArgs struct {
	Logger *logrus.Logger
	// Metrics если nil, метрики не собираются и MetricsRoute не регистрируется.
	Metrics *metrics.Metrics
	// IdempotencyStore если nil, заголовок Idempotency-Key игнорируется.
	IdempotencyStore    middlewares.IdempotencyStore
	SettleRatePerMinute int

	UserService        UserServicer
	MerchantService    MerchantServicer
	PointsService      PointsServicer
	TransactionService TransactionServicer
	SettlementService  SettlementServicer
	JWTSecretKey       []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}
	if args.Logger == nil {
		args.Logger = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.Logger(args.Logger))
	if args.Metrics != nil {
		r.Use(middlewares.Metrics(args.Metrics))
		r.GET(MetricsRoute, gin.WrapH(args.Metrics.Handler()))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	usersHandler := NewUsersHandler(args.UserService)
	merchantsHandler := NewMerchantsHandler(args.MerchantService)
	pointsHandler := NewPointsHandler(args.PointsService)
	transactionsHandler := NewTransactionsHandler(args.TransactionService, args.SettlementService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(MeRoute, usersHandler.Me)
	api.PUT(UsersRoute, usersHandler.UpdateName)
	api.PUT(MyPasswordRoute, usersHandler.ChangePassword)
	api.GET(MyPointsRoute, pointsHandler.Index)
	api.GET(MyMerchantPointsRoute, pointsHandler.Show)
	api.GET(MyMerchantsRoute, merchantsHandler.Mine)
	api.GET(MyMerchantTransactionsRoute, transactionsHandler.ByMerchant)
	api.GET(MyTransactionsRoute, transactionsHandler.Mine)
	api.GET(MerchantsRoute, merchantsHandler.Index)
	api.GET(MerchantRoute, merchantsHandler.Show)

	// повтор по Idempotency-Key отдается из кэша и не расходует лимит.
	var settle []gin.HandlerFunc
	if args.IdempotencyStore != nil {
		settle = append(settle, middlewares.Idempotency(args.IdempotencyStore, args.Logger))
	}
	settle = append(settle,
		middlewares.NewRateLimiter(args.SettleRatePerMinute).Middleware(),
		transactionsHandler.Create,
	)
	api.POST(TransactionsRoute, settle...)

	managers := api.Group("", middlewares.RequireRole(args.UserService, domain.RoleMerchant, domain.RoleAdmin))
	managers.POST(MerchantsRoute, merchantsHandler.Create)
	managers.PUT(MerchantRoute, merchantsHandler.Update)
	managers.DELETE(MerchantRoute, merchantsHandler.Delete)

	admins := api.Group("", middlewares.RequireRole(args.UserService, domain.RoleAdmin))
	admins.GET(UsersRoute, usersHandler.Index)
	admins.GET(UserRoute, usersHandler.Show)
	admins.PUT(UserRoleRoute, usersHandler.SetRole)
	admins.GET(TransactionsRoute, transactionsHandler.Index)
	admins.GET(TransactionRoute, transactionsHandler.Show)
	return r, nil
}
