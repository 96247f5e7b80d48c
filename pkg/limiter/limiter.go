// Package limiter token bucket rate limiting keyed by request route
// Package limiter 基于令牌桶的接口限流，按路由分桶
package limiter

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face limiter interface used by the middleware
// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule token bucket rule
// BucketRule 令牌桶规则
type BucketRule struct {
	// Key route prefix the rule applies to
	// Key 规则匹配的路由前缀
	Key string
	// FillInterval interval between refills
	// FillInterval 令牌填充间隔
	FillInterval time.Duration
	// Capacity bucket capacity
	// Capacity 桶容量
	Capacity int64
	// Quantum tokens added per interval
	// Quantum 每次填充的令牌数
	Quantum int64
}

// MethodLimiter limits by request path prefix
// MethodLimiter 按请求路径前缀限流
type MethodLimiter struct {
	mu      sync.RWMutex
	keys    []string
	buckets map[string]*ratelimit.Bucket
}

// NewMethodLimiter creates an empty limiter
// NewMethodLimiter 创建路由限流器
func NewMethodLimiter() Face {
	return &MethodLimiter{buckets: make(map[string]*ratelimit.Bucket)}
}

// Key returns the longest configured prefix matching the request path
// Key 返回与请求路径匹配的最长规则前缀，无匹配时返回空串
func (l *MethodLimiter) Key(c *gin.Context) string {
	path := c.Request.URL.Path
	l.mu.RLock()
	defer l.mu.RUnlock()
	best := ""
	for _, k := range l.keys {
		if strings.HasPrefix(path, k) && len(k) > len(best) {
			best = k
		}
	}
	return best
}

// GetBucket returns the bucket registered for key
// GetBucket 获取 key 对应的令牌桶
func (l *MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	if key == "" {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.buckets[key]
	return b, ok
}

// AddBuckets registers rules; an existing key is left untouched
// AddBuckets 注册令牌桶规则，已存在的 key 不覆盖
func (l *MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range rules {
		if _, ok := l.buckets[r.Key]; ok {
			continue
		}
		l.buckets[r.Key] = ratelimit.NewBucketWithQuantum(r.FillInterval, r.Capacity, r.Quantum)
		l.keys = append(l.keys, r.Key)
	}
	return l
}
