package middleware

import (
	"math"
	"strconv"

	"github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"
	"github.com/haierkeys/jot-sync-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// retryAfter whole seconds until the bucket yields one token
// retryAfter 令牌桶产出一个令牌所需的整秒数
func retryAfter(b *ratelimit.Bucket) string {
	rate := b.Rate()
	if rate <= 0 {
		return "1"
	}
	return strconv.Itoa(int(math.Max(1, math.Ceil(1/rate))))
}

// RateLimiter rejects requests whose route bucket is empty with 429 and a Retry-After hint
// RateLimiter 路由令牌桶耗尽时返回 429 并带 Retry-After
func RateLimiter(l limiter.Face) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket, ok := l.GetBucket(l.Key(c))
		if !ok || bucket.TakeAvailable(1) > 0 {
			c.Next()
			return
		}

		c.Header("Retry-After", retryAfter(bucket))
		app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
		c.Abort()
	}
}
