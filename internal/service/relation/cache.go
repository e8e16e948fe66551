package relation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"harmony_server/pkg/constants"
	"harmony_server/pkg/enum/request"

	"go.uber.org/zap"
)

const cacheTTL = time.Minute * constants.REDIS_TIMEOUT

func incomingKey(kind request.Kind, userId uint) string {
	return fmt.Sprintf("%s%s_%d", constants.CACHE_INCOMING_REQUESTS, kind, userId)
}

func friendListKey(userId uint) string {
	return fmt.Sprintf("%s%d", constants.CACHE_FRIEND_LIST, userId)
}

// cacheGet 命中时把 JSON 解码到 out 并返回 true，缓存故障视为未命中
func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		zap.L().Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		zap.L().Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// generation key 的失效代数，每次 invalidate 加一
// 回填在读库之前取代数，写入前后各比对一次，代数变化说明期间发生过失效
func (s *Service) generation(key string) uint64 {
	v, ok := s.gens.Load(key)
	if !ok {
		return 0
	}
	return v.(*atomic.Uint64).Load()
}

func (s *Service) bumpGeneration(key string) {
	v, _ := s.gens.LoadOrStore(key, new(atomic.Uint64))
	v.(*atomic.Uint64).Add(1)
}

// cacheSet 异步回填缓存，gen 为读库之前取到的代数
func (s *Service) cacheSet(key string, value any, gen uint64) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		zap.L().Error("Marshal cache error", zap.Error(err), zap.String("key", key))
		return
	}
	s.cache.SubmitTask(func() {
		if s.generation(key) != gen {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(ctx, key, string(b), cacheTTL); err != nil {
			zap.L().Warn("cache set failed", zap.String("key", key), zap.Error(err))
			return
		}
		// Set 期间发生了失效，撤销这次回填
		if s.generation(key) != gen {
			if err := s.cache.Delete(ctx, key); err != nil {
				zap.L().Warn("cache revoke failed", zap.String("key", key), zap.Error(err))
			}
		}
	})
}

// invalidate 提交后同步删除受影响的缓存，返回前旧列表已不可读
func (s *Service) invalidate(keys ...string) {
	if s.cache == nil || len(keys) == 0 {
		return
	}
	for _, key := range keys {
		s.bumpGeneration(key)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			zap.L().Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
		}
	}
}
