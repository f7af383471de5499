package api

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/logger"
	"github.com/fsdevblog/groph-points/internal/service/tokens"
	"github.com/fsdevblog/groph-points/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-points/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

const (
	regularUserID  int64 = 1
	merchantUserID int64 = 2
	adminUserID    int64 = 3
)

// memIdempotencyStore хранилище ответов в памяти.
type memIdempotencyStore struct {
	mu    sync.Mutex
	items map[string]domain.CachedResponse
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{items: make(map[string]domain.CachedResponse)}
}

func (m *memIdempotencyStore) Get(_ context.Context, key string) (*domain.CachedResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.items[key]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &resp, nil
}

func (m *memIdempotencyStore) Save(_ context.Context, key string, resp domain.CachedResponse, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; !ok {
		m.items[key] = resp
	}
	return nil
}

func (m *memIdempotencyStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// handlerSuite общая часть тестов хендлеров: моки сервисов и роутер.
type handlerSuite struct {
	suite.Suite
	router *gin.Engine

	mockUserService        *mocks.MockUserServicer
	mockMerchantService    *mocks.MockMerchantServicer
	mockPointsService      *mocks.MockPointsServicer
	mockTransactionService *mocks.MockTransactionServicer
	mockSettlementService  *mocks.MockSettlementServicer
	idempotencyStore       *memIdempotencyStore

	jwtSecret []byte
}

func (s *handlerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *handlerSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())

	s.mockUserService = mocks.NewMockUserServicer(mockCtrl)
	s.mockMerchantService = mocks.NewMockMerchantServicer(mockCtrl)
	s.mockPointsService = mocks.NewMockPointsServicer(mockCtrl)
	s.mockTransactionService = mocks.NewMockTransactionServicer(mockCtrl)
	s.mockSettlementService = mocks.NewMockSettlementServicer(mockCtrl)
	s.idempotencyStore = newMemIdempotencyStore()
	s.jwtSecret = []byte("super secret key")

	s.router = s.newRouter(0)

	// роли проверяются по базе на каждый запрос к защищенным ролями роутам.
	for id, role := range map[int64]domain.RoleType{
		regularUserID:  domain.RoleUser,
		merchantUserID: domain.RoleMerchant,
		adminUserID:    domain.RoleAdmin,
	} {
		s.mockUserService.EXPECT().FindByID(gomock.Any(), id).
			Return(&domain.User{ID: id, Role: role, Email: "user@example.com"}, nil).AnyTimes()
	}
}

func (s *handlerSuite) newRouter(settleRate int) *gin.Engine {
	r, err := New(RouterArgs{
		Logger:              logger.New(io.Discard),
		IdempotencyStore:    s.idempotencyStore,
		SettleRatePerMinute: settleRate,
		UserService:         s.mockUserService,
		MerchantService:     s.mockMerchantService,
		PointsService:       s.mockPointsService,
		TransactionService:  s.mockTransactionService,
		SettlementService:   s.mockSettlementService,
		JWTSecretKey:        s.jwtSecret,
	})
	s.Require().NoError(err)
	return r
}

func (s *handlerSuite) token(userID int64) string {
	token, err := tokens.GenerateUserJWT(userID, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

// request выполняет запрос к s.router. body сериализуется в json, если не nil.
func (s *handlerSuite) request(
	method, url, token string,
	body any,
	opts ...func(*testutils.RequestOptions) error,
) *http.Response {
	return s.requestTo(s.router, method, url, token, body, opts...)
}

func (s *handlerSuite) requestTo(
	router http.Handler,
	method, url, token string,
	body any,
	opts ...func(*testutils.RequestOptions) error,
) *http.Response {
	reqOpts := []func(*testutils.RequestOptions) error{
		testutils.WithBearer(token),
		testutils.WithHeader("Accept", "application/json"),
	}
	if body != nil {
		reqOpts = append(reqOpts, testutils.WithJSON(body))
	}
	reqOpts = append(reqOpts, opts...)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: router,
		Method: method,
		URL:    url,
	}, reqOpts...)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = res.Body.Close() })
	return res
}

func (s *handlerSuite) errorText(res *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	s.Require().NoError(testutils.DecodeJSON(res, &body))
	return body.Error
}
