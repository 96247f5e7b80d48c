package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	internalApp "github.com/haierkeys/jot-sync-service/internal/app"
	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/routers"
	"github.com/haierkeys/jot-sync-service/internal/task"
	"github.com/haierkeys/jot-sync-service/pkg/logger"
	"github.com/haierkeys/jot-sync-service/pkg/safe_close"
	"github.com/haierkeys/jot-sync-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	validatorV10 "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// weakTokenKeys token keys that ship in sample configs
// weakTokenKeys 示例配置中自带的令牌密钥
var weakTokenKeys = map[string]struct{}{
	"":                    {},
	"6666":                {},
	"jot-sync-Auth-Token": {},
}

// httpDrainTimeout time allowed for in-flight requests when a listener stops
// httpDrainTimeout 监听器停止时等待进行中请求的时间
const httpDrainTimeout = 5 * time.Second

const banner = `
       __      __     _____
      / /___  / /_   / ___/__  ______  _____
 __  / / __ \/ __/   \__ \/ / / / __ \/ ___/
/ /_/ / /_/ / /_    ___/ / /_/ / / / / /__
\____/\____/\__/   /____/\__, /_/ /_/\___/
                        /____/              `

// Server holds one running instance; a config reload builds a fresh one
// Server 一次运行实例，配置重载时整体重建
type Server struct {
	logger *zap.Logger
	config *internalApp.AppConfig
	ut     *ut.UniversalTranslator
	sc     *safe_close.SafeClose
	app    *internalApp.App
}

// hasWeakTokenKey reports whether the JWT signing key is a sample value
// hasWeakTokenKey 判断令牌签名密钥是否仍为示例值
func hasWeakTokenKey(cfg *internalApp.AppConfig) bool {
	_, weak := weakTokenKeys[strings.TrimSpace(cfg.Security.AuthTokenKey)]
	return weak
}

func warnWeakTokenKey(lg *zap.Logger) {
	line := strings.Repeat("=", 60)
	fmt.Fprintf(os.Stderr, "\n%s\nSECURITY WARNING: security.auth-token-key is a sample value.\nGenerate one with: openssl rand -base64 32\n%s\n\n", line, line)
	lg.Warn("security.auth-token-key is a sample value, tokens can be forged")
}

// NewServer loads config and wires every component, then attaches listeners to the close group
// NewServer 加载配置并装配各组件，随后把监听器挂到关闭组上
func NewServer(runEnv *runFlags) (*Server, error) {
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if runEnv.port != "" {
		appConfig.Server.HttpPort = normalizeListen(runEnv.port)
	}

	runMode := runEnv.runMode
	if runMode == "" {
		runMode = appConfig.Server.RunMode
	}
	if runMode == "" {
		runMode = gin.ReleaseMode
	}
	gin.SetMode(runMode)

	lg, err := logger.NewLogger(appConfig.GetLoggerConfig())
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}

	s := &Server{
		logger: lg,
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	if hasWeakTokenKey(appConfig) {
		warnWeakTokenKey(lg)
	}

	if err := ensureDirs(appConfig); err != nil {
		return nil, err
	}

	db, err := dao.NewDBEngineWithConfig(appConfig.GetDatabaseConfig(), lg)
	if err != nil {
		return nil, errors.Wrap(err, "open auth database")
	}

	if s.app, err = internalApp.NewApp(appConfig, lg, db); err != nil {
		return nil, errors.Wrap(err, "build app container")
	}

	if s.ut, err = newTranslator(lg); err != nil {
		return nil, errors.Wrap(err, "init validator")
	}

	startTasks(s)

	lg.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	lg.Warn("config loaded", zap.String("path", configRealpath))

	if addr := appConfig.Server.HttpPort; addr != "" {
		s.serve("api", s.newHTTPServer(addr, routers.NewRouter(s.app, s.ut)))
	}
	if addr := appConfig.Server.PrivateHttpListen; addr != "" {
		s.serve("private", s.newHTTPServer(addr, routers.NewPrivateRouter(runMode, appConfig.Server.PrivateAuthToken, lg)))
	}

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		ctx, cancel := context.WithTimeout(context.Background(), internalApp.DefaultShutdownTimeout)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			lg.Error("app container shutdown", zap.Error(err))
			return
		}
		lg.Info("app container stopped")
	})

	return s, nil
}

// normalizeListen turns a bare port like 9000 into :9000
// normalizeListen 将纯端口 9000 转为 :9000
func normalizeListen(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func (s *Server) newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        h,
		ReadTimeout:    time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(s.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

// serve runs srv until it fails or the close signal fires
// A listener failure closes the whole instance
// serve 运行 srv 直到出错或收到关闭信号，监听失败会关闭整个实例
func (s *Server) serve(name string, srv *http.Server) {
	s.logger.Info("http listener", zap.String("name", name), zap.String("addr", srv.Addr))

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			s.logger.Error("http listener failed", zap.String("name", name), zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), httpDrainTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error("http listener shutdown", zap.String("name", name), zap.Error(err))
			}
		}
	})
}

func startTasks(s *Server) {
	manager := task.NewManager(s.logger, s.sc, s.app)
	if err := manager.RegisterTasks(); err != nil {
		s.logger.Error("register tasks", zap.Error(err))
		return
	}
	manager.Start()
}

// newTranslator installs the custom binding validator and its en/zh messages
// newTranslator 安装自定义绑定校验器并注册中英文提示
func newTranslator(lg *zap.Logger) (*ut.UniversalTranslator, error) {
	binding.Validator = validator.NewCustomValidator()

	validate, ok := binding.Validator.Engine().(*validatorV10.Validate)
	if !ok {
		lg.Warn("binding validator engine is not validator/v10, translations disabled")
		return ut.New(en.New(), en.New()), nil
	}

	// 错误信息里使用 json 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	uni := ut.New(en.New(), en.New(), zh.New())
	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")
	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}
	return uni, nil
}

// ensureDirs creates the user data, log and sqlite directories
// ensureDirs 创建用户数据、日志与 sqlite 目录
func ensureDirs(cfg *internalApp.AppConfig) error {
	dirs := []string{cfg.App.UserDataDir}
	if cfg.Log.File != "" {
		dirs = append(dirs, filepath.Dir(cfg.Log.File))
	}
	if cfg.Database.Type == "sqlite" {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	return nil
}
