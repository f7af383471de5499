package redisrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

// fakeRedis реализует только команды, нужные репозиторию.
type fakeRedis struct {
	redis.Cmdable
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(val), nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

type IdempotencyRepoTestSuite struct {
	suite.Suite
	client *fakeRedis
	repo   *IdempotencyRepository
}

func (s *IdempotencyRepoTestSuite) SetupTest() {
	s.client = newFakeRedis()
	s.repo = NewIdempotencyRepository(s.client)
}

func TestIdempotencyRepo(t *testing.T) {
	suite.Run(t, new(IdempotencyRepoTestSuite))
}

func (s *IdempotencyRepoTestSuite) TestGet_Miss() {
	_, err := s.repo.Get(context.Background(), "1:abc")
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *IdempotencyRepoTestSuite) TestGet_RedisError() {
	s.client.getErr = errors.New("connection refused")
	_, err := s.repo.Get(context.Background(), "1:abc")
	s.Require().ErrorIs(err, domain.ErrUnknown)
}

func (s *IdempotencyRepoTestSuite) TestSaveAndGet() {
	ctx := context.Background()
	resp := domain.CachedResponse{StatusCode: 201, ContentType: "application/json", Body: []byte(`{"id":1}`)}

	s.Require().NoError(s.repo.Save(ctx, "1:abc", resp, time.Hour))
	s.Equal(time.Hour, s.client.ttls[idempotencyKeyPrefix+"1:abc"])

	got, err := s.repo.Get(ctx, "1:abc")
	s.Require().NoError(err)
	s.Equal(resp, *got)
}

func (s *IdempotencyRepoTestSuite) TestSave_DoesNotOverwrite() {
	ctx := context.Background()
	first := domain.CachedResponse{StatusCode: 201, Body: []byte(`{"id":1}`)}
	second := domain.CachedResponse{StatusCode: 201, Body: []byte(`{"id":2}`)}

	s.Require().NoError(s.repo.Save(ctx, "1:abc", first, time.Hour))
	s.Require().NoError(s.repo.Save(ctx, "1:abc", second, time.Hour))

	got, err := s.repo.Get(ctx, "1:abc")
	s.Require().NoError(err)
	s.Equal(first.Body, got.Body)
}
