package cmd

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// debugEnv enables debug output before the configured logger exists
// debugEnv 在正式日志器就绪前开启调试输出
const debugEnv = "JOT_DEBUG"

// bootstrapLogger console logger used until the config is loaded
// bootstrapLogger 配置加载前使用的控制台日志器
var bootstrapLogger = newBootstrapLogger()

func newBootstrapLogger() *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if os.Getenv(debugEnv) != "" {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core, zap.AddCaller())
}
