package service

import (
	"context"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncLocker 按试卷串行化同步流程。等待超时返回 util.ErrSyncBusy
type SyncLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

type localSyncLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
	wait  time.Duration
}

// NewLocalSyncLocker 进程内按 key 加锁，单实例部署使用
func NewLocalSyncLocker(wait time.Duration) SyncLocker {
	return &localSyncLocker{slots: make(map[string]*lockSlot), wait: wait}
}

func (l *localSyncLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	release := func() func() {
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.unref(key, slot)
			})
		}
	}

	// 锁空闲时直接获取，不与计时器竞争
	select {
	case slot.ch <- struct{}{}:
		return release(), nil
	default:
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
		return release(), nil
	case <-timer.C:
		l.unref(key, slot)
		return nil, util.ErrSyncBusy
	case <-ctx.Done():
		l.unref(key, slot)
		return nil, ctx.Err()
	}
}

func (l *localSyncLocker) unref(key string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

const (
	syncLockPrefix = "exam:sync:lock:"
	lockRetryDelay = 50 * time.Millisecond
)

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type redisSyncLocker struct {
	rdb  *redis.Client
	ttl  time.Duration
	wait time.Duration
}

// NewRedisSyncLocker 多实例部署时通过 SETNX 跨进程加锁
func NewRedisSyncLocker(rdb *redis.Client, ttl, wait time.Duration) SyncLocker {
	return &redisSyncLocker{rdb: rdb, ttl: ttl, wait: wait}
}

func (l *redisSyncLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := syncLockPrefix + key
	token := uuid.New().String()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, util.ErrSyncBusy
		}
		select {
		case <-time.After(lockRetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求可能已取消，释放锁不依赖调用方的 ctx
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.rdb, []string{lockKey}, token).Err(); err != nil {
				logger.Log.Warn("failed to release sync lock", zap.String("key", lockKey), zap.Error(err))
			}
		})
	}, nil
}
