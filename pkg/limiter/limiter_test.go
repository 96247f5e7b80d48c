package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxFor(path string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, path, nil)
	return c
}

func TestMethodLimiter(t *testing.T) {
	l := NewMethodLimiter().AddBuckets(
		BucketRule{Key: "/api/user", FillInterval: time.Hour, Capacity: 2, Quantum: 1},
		BucketRule{Key: "/api/user/login", FillInterval: time.Hour, Capacity: 1, Quantum: 1},
	)

	assert.Equal(t, "/api/user/login", l.Key(ctxFor("/api/user/login")))
	assert.Equal(t, "/api/user", l.Key(ctxFor("/api/user/register")))
	assert.Equal(t, "", l.Key(ctxFor("/api/sync")))

	b, ok := l.GetBucket("/api/user/login")
	require.True(t, ok)
	assert.EqualValues(t, 1, b.TakeAvailable(1))
	assert.EqualValues(t, 0, b.TakeAvailable(1))

	_, ok = l.GetBucket("")
	assert.False(t, ok)
}
