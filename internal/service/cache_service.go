package service

import (
	"algolearn_backend/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cachePrefix = "algolearn:"

// CacheService Redis 缓存，按组管理键，支持整组失效。
// rdb 为 nil 时所有操作都退化为直读，方便本地和测试环境。
type CacheService struct {
	rdb        *redis.Client
	defaultTTL time.Duration
}

func NewCacheService(rdb *redis.Client) *CacheService {
	return &CacheService{
		rdb:        rdb,
		defaultTTL: time.Hour,
	}
}

func (c *CacheService) key(group string, identifier string) string {
	return cachePrefix + group + ":" + identifier
}

// Remember 读穿缓存：命中则反序列化进 dest，未命中执行 fetch 并回填
func (c *CacheService) Remember(ctx context.Context, group, identifier string, ttl time.Duration, dest interface{}, fetch func() (interface{}, error)) error {
	if c.rdb == nil {
		return c.fetchInto(dest, fetch)
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	key := c.key(group, identifier)
	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(cached), dest); err == nil {
			return nil
		}
		// 缓存损坏当作未命中
		c.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		logger.Log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return err
	}

	pipe := c.rdb.Pipeline()
	pipe.Set(ctx, key, b, ttl)
	pipe.SAdd(ctx, c.groupIndexKey(group), key)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (c *CacheService) Forget(ctx context.Context, group, identifier string) {
	if c.rdb == nil {
		return
	}
	key := c.key(group, identifier)
	c.rdb.Del(ctx, key)
	c.rdb.SRem(ctx, c.groupIndexKey(group), key)
}

// ForgetGroup 整组失效，写路径（挑战的增改）调用
func (c *CacheService) ForgetGroup(ctx context.Context, group string) {
	if c.rdb == nil {
		return
	}

	indexKey := c.groupIndexKey(group)
	keys, err := c.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		logger.Log.Warn("cache group lookup failed", zap.String("group", group), zap.Error(err))
		return
	}
	if len(keys) > 0 {
		c.rdb.Del(ctx, keys...)
	}
	c.rdb.Del(ctx, indexKey)
}

func (c *CacheService) groupIndexKey(group string) string {
	return cachePrefix + "index:" + strings.TrimSuffix(group, ":")
}

// PageIdentifier 分页缓存键
func PageIdentifier(page, limit int) string {
	return fmt.Sprintf("p%d-l%d", page, limit)
}

func (c *CacheService) fetchInto(dest interface{}, fetch func() (interface{}, error)) error {
	value, err := fetch()
	if err != nil {
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}
