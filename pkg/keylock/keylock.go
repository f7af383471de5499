// Package keylock реализует блокировку по ключу: вызовы с одинаковым ключом выполняются строго по очереди,
// с разными ключами - параллельно.
package keylock

import (
	"context"
	"sync"
)

type entry struct {
	ch   chan struct{}
	refs int
}

// Locker набор мьютексов, создаваемых по требованию. Запись о ключе удаляется, когда его никто не держит и не ждет.
type Locker[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

func New[K comparable]() *Locker[K] {
	return &Locker[K]{locks: make(map[K]*entry)}
}

// Lock блокирует ключ key. Ожидание прерывается отменой ctx, в этом случае возвращается ctx.Err().
// В случае успеха возвращает функцию освобождения блокировки, которую нужно вызвать ровно один раз.
func (l *Locker[K]) Lock(ctx context.Context, key K) (func(), error) {
	e := l.acquire(key)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err() //nolint:wrapcheck
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

// Len возвращает кол-во ключей, которые сейчас удерживаются или ожидаются.
func (l *Locker[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *Locker[K]) acquire(key K) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *Locker[K]) release(key K, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
