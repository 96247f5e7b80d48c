package routers

import (
	"time"

	"github.com/haierkeys/jot-sync-service/internal/app"
	"github.com/haierkeys/jot-sync-service/internal/middleware"
	"github.com/haierkeys/jot-sync-service/internal/routers/api_router"
	"github.com/haierkeys/jot-sync-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// newLimiter 登录注册与同步接口的令牌桶
func newLimiter(syncPerSecond int64) limiter.Face {
	l := limiter.NewMethodLimiter().AddBuckets(
		limiter.BucketRule{
			Key:          "/api/user",
			FillInterval: time.Second,
			Capacity:     10,
			Quantum:      10,
		},
	)
	if syncPerSecond > 0 {
		l.AddBuckets(limiter.BucketRule{
			Key:          "/api/sync",
			FillInterval: time.Second,
			Capacity:     syncPerSecond,
			Quantum:      syncPerSecond,
		})
	}
	return l
}

// NewRouter 创建公开 API 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {
	cfg := appContainer.Config()
	lg := appContainer.Logger()

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.TraceMiddleware(cfg.Tracer))
		api.Use(middleware.AccessLogWithLogger(lg))
		api.Use(middleware.RecoveryWithLogger(lg))
		api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		api.Use(middleware.RateLimiter(newLimiter(cfg.App.SyncRateLimit)))
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.LangWithTranslator(uni))

		healthHandler := api_router.NewHealthHandler(appContainer)
		userHandler := api_router.NewUserHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		syncHandler := api_router.NewSyncHandler(appContainer)
		noteHandler := api_router.NewNoteHandler(appContainer)

		api.GET("/health", healthHandler.Check)
		api.GET("/health/ping", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)
		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)

		auth := api.Group("", middleware.UserAuthToken(appContainer.TokenManager))
		{
			auth.GET("/health/auth", healthHandler.AuthCheck)
			auth.GET("/user/info", userHandler.UserInfo)

			auth.POST("/sync", syncHandler.Sync)

			auth.GET("/notes", noteHandler.List)
			auth.GET("/note", noteHandler.Get)
			auth.POST("/note", noteHandler.Create)
			auth.PUT("/note", noteHandler.Update)
			auth.DELETE("/note", noteHandler.Delete)
		}
	}

	r.NoRoute(middleware.NoFound())

	return r
}
