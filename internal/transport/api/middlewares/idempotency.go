package middlewares

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/pkg/keylock"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"

	IdempotencyTTL = 24 * time.Hour

	maxIdempotencyKeyLen = 128
	idempotencyTimeout   = 2 * time.Second
)

var ErrIdempotencyKeyTooLong = errors.New("idempotency key is too long")

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*domain.CachedResponse, error)
	Save(ctx context.Context, key string, resp domain.CachedResponse, ttl time.Duration) error
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b) //nolint:wrapcheck
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s) //nolint:wrapcheck
}

// Idempotency повторяет сохраненный ответ для запросов с уже встречавшимся заголовком Idempotency-Key.
// Ключ действует в рамках юзера. Сохраняются только успешные (2xx) ответы: отклоненный запрос ничего не меняет
// и может быть повторен. Запросы с одним ключом обрабатываются по очереди. Недоступность хранилища
// не блокирует запросы, они выполняются как без ключа.
func Idempotency(store IdempotencyStore, l *logrus.Logger) gin.HandlerFunc {
	locks := keylock.New[string]()
	entry := l.WithField("component", "idempotency")

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			_ = c.AbortWithError(http.StatusBadRequest, ErrIdempotencyKeyTooLong).SetType(gin.ErrorTypePublic)
			return
		}
		scopedKey := strconv.FormatInt(CurrentUserID(c), 10) + ":" + key

		unlock, err := locks.Lock(c, scopedKey)
		if err != nil {
			_ = c.AbortWithError(http.StatusServiceUnavailable, err).SetType(gin.ErrorTypePrivate)
			return
		}
		defer unlock()

		if replay(c, store, scopedKey, entry) {
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: new(bytes.Buffer)}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c), idempotencyTimeout)
		defer cancel()
		resp := domain.CachedResponse{
			StatusCode:  status,
			ContentType: recorder.Header().Get("Content-Type"),
			Body:        recorder.body.Bytes(),
		}
		if saveErr := store.Save(ctx, scopedKey, resp, IdempotencyTTL); saveErr != nil {
			entry.WithError(saveErr).Warn("failed to save idempotent response")
		}
	}
}

// replay отдает сохраненный ответ, если он есть. Возвращает true, если ответ отдан.
func replay(c *gin.Context, store IdempotencyStore, key string, entry *logrus.Entry) bool {
	ctx, cancel := context.WithTimeout(c, idempotencyTimeout)
	defer cancel()

	cached, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			entry.WithError(err).Warn("failed to read idempotent response")
		}
		return false
	}

	c.Header(IdempotencyHitHeader, "true")
	c.Data(cached.StatusCode, cached.ContentType, cached.Body)
	c.Abort()
	return true
}
