package routers

import (
	"net/http"
	"net/http/pprof"

	"github.com/haierkeys/jot-sync-service/internal/middleware"
	"github.com/haierkeys/jot-sync-service/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// namedProfiles runtime profiles served under /debug/pprof/<name>
// namedProfiles 以 /debug/pprof/<name> 暴露的运行时 profile
var namedProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// NewPrivateRouter serves /metrics and /debug/vars behind the private token; pprof only in debug mode
// NewPrivateRouter 私有管理路由，令牌保护 /metrics 与 /debug/vars，debug 模式下额外开放 pprof
func NewPrivateRouter(runMode, authToken string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(logger))
	r.Use(middleware.SimpleAuthTokenWithConfig(authToken))

	r.GET("/debug/vars", api_router.Expvar)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if runMode == gin.DebugMode {
		mountPprof(r.Group("/debug/pprof"))
	}
	return r
}

func mountPprof(g *gin.RouterGroup) {
	g.GET("/", gin.WrapF(pprof.Index))
	g.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	g.GET("/profile", gin.WrapF(pprof.Profile))
	g.GET("/trace", gin.WrapF(pprof.Trace))
	g.Match([]string{http.MethodGet, http.MethodPost}, "/symbol", gin.WrapF(pprof.Symbol))
	for _, name := range namedProfiles {
		g.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
}
